package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tray/database"
	"tray/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB. It reads the
// availability collection too: the checkout transaction re-validates each
// slot against the consultant's current spec.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	availColl   *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		availColl:   db.Collection("availability"),
	}
}

func (repo *MongoBookingRepo) GetByID(id string) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var booking models.BookingRequest
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) FindByStudent(studentID string) ([]models.BookingRequest, error) {
	return repo.find(bson.M{"student_id": studentID})
}

func (repo *MongoBookingRepo) FindByConsultant(consultantID string) ([]models.BookingRequest, error) {
	return repo.find(bson.M{"consultant_id": consultantID})
}

func (repo *MongoBookingRepo) find(filter bson.M) ([]models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.BookingRequest
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// conflictFilter matches bookings that hold a slot: only accepted or
// completed statuses count, per the slot-conflict invariant.
func conflictFilter(consultantID, date, startTime string) bson.M {
	return bson.M{
		"consultant_id": consultantID,
		"date":          date,
		"start_time":    startTime,
		"status":        bson.M{"$in": []string{models.BookingAccepted, models.BookingCompleted}},
	}
}

func (repo *MongoBookingRepo) HasConflict(ctx context.Context, consultantID, date, startTime string) (bool, error) {
	count, err := repo.bookingColl.CountDocuments(ctx, conflictFilter(consultantID, date, startTime))
	if err != nil {
		return false, fmt.Errorf("conflict check failed: %w", err)
	}
	return count > 0, nil
}

func (repo *MongoBookingRepo) FindHeldSlots(consultantID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"consultant_id": consultantID,
		"status":        bson.M{"$in": []string{models.BookingAccepted, models.BookingCompleted}},
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching held slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	for cursor.Next(ctx) {
		var b models.BookingRequest
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		slots = append(slots, b.SlotRef())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return slots, nil
}

func (repo *MongoBookingRepo) UpdateStatus(id, status, paymentStatus string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":         status,
		"payment_status": paymentStatus,
		"updated_at":     time.Now(),
	}}
	res, err := repo.bookingColl.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found", id)
	}
	return nil
}

func (repo *MongoBookingRepo) MarkPaid(ctx context.Context, ids []string, chargeID string) error {
	update := bson.M{"$set": bson.M{
		"payment_status": models.PaymentPaid,
		"charge_id":      chargeID,
		"updated_at":     time.Now(),
	}}
	res, err := repo.bookingColl.UpdateMany(ctx, bson.M{"id": bson.M{"$in": ids}}, update)
	if err != nil {
		return fmt.Errorf("failed to mark bookings paid: %w", err)
	}
	if res.MatchedCount != int64(len(ids)) {
		return fmt.Errorf("marked %d of %d bookings paid", res.MatchedCount, len(ids))
	}
	return nil
}

func (repo *MongoBookingRepo) SetPayoutEligible(id string, eligible bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"payout_eligible": eligible, "updated_at": time.Now()}}
	if _, err := repo.bookingColl.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to set payout eligibility for booking %s: %w", id, err)
	}
	return nil
}

func (repo *MongoBookingRepo) MarkRefunded(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"payment_status":  models.PaymentRefunded,
		"payout_eligible": false,
		"updated_at":      time.Now(),
	}}
	if _, err := repo.bookingColl.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to mark booking %s refunded: %w", id, err)
	}
	return nil
}

func (repo *MongoBookingRepo) FindPayoutEligible(ctx context.Context) ([]models.BookingRequest, error) {
	filter := bson.M{
		"payment_status":      models.PaymentPaid,
		"status":              bson.M{"$in": []string{models.BookingCompleted, models.BookingAccepted}},
		"payment_transferred": false,
		"payout_eligible":     true,
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching payout-eligible bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.BookingRequest
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding payout-eligible bookings: %w", err)
	}
	return bookings, nil
}
