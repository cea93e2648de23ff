package completionRepo

import (
	"context"
	"fmt"
	"time"

	"tray/database"
	"tray/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCompletionRepo implements CompletionRepository using MongoDB.
type MongoCompletionRepo struct {
	completionColl *mongo.Collection
	refundColl     *mongo.Collection
}

// NewMongoCompletionRepo constructs a new instance of MongoCompletionRepo.
func NewMongoCompletionRepo() CompletionRepository {
	db := database.DB()
	return &MongoCompletionRepo{
		completionColl: db.Collection("session_completions"),
		refundColl:     db.Collection("refund_requests"),
	}
}

func (repo *MongoCompletionRepo) Create(sc *models.SessionCompletion) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	sc.CreatedAt = now
	sc.UpdatedAt = now
	if _, err := repo.completionColl.InsertOne(ctx, sc); err != nil {
		return fmt.Errorf("failed to insert session completion: %w", err)
	}
	return nil
}

func (repo *MongoCompletionRepo) GetByBooking(bookingID string) (*models.SessionCompletion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sc models.SessionCompletion
	if err := repo.completionColl.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&sc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching session completion for booking %s: %w", bookingID, err)
	}
	return &sc, nil
}

func (repo *MongoCompletionRepo) setRating(bookingID string, fields bson.M) (*models.SessionCompletion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sc models.SessionCompletion
	err := repo.completionColl.FindOneAndUpdate(ctx, bson.M{"booking_id": bookingID}, bson.M{"$set": fields}, opts).Decode(&sc)
	if err != nil {
		return nil, fmt.Errorf("failed to store rating for booking %s: %w", bookingID, err)
	}
	return &sc, nil
}

func (repo *MongoCompletionRepo) SetConsultantRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	return repo.setRating(bookingID, bson.M{
		"consultant_rating":   rating,
		"consultant_feedback": feedback,
	})
}

func (repo *MongoCompletionRepo) SetServiceRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	return repo.setRating(bookingID, bson.M{
		"service_rating":   rating,
		"service_feedback": feedback,
	})
}

func (repo *MongoCompletionRepo) MarkRefundRequested(bookingID, reason string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"refund_requested": true,
		"refund_reason":    reason,
		"updated_at":       time.Now(),
	}}
	if _, err := repo.completionColl.UpdateOne(ctx, bson.M{"booking_id": bookingID}, update); err != nil {
		return fmt.Errorf("failed to flag refund request for booking %s: %w", bookingID, err)
	}
	return nil
}

func (repo *MongoCompletionRepo) CreateRefundRequest(req *models.RefundRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if _, err := repo.refundColl.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert refund request: %w", err)
	}
	return nil
}

func (repo *MongoCompletionRepo) GetRefundRequest(id string) (*models.RefundRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var req models.RefundRequest
	if err := repo.refundColl.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, fmt.Errorf("error fetching refund request %s: %w", id, err)
	}
	return &req, nil
}

func (repo *MongoCompletionRepo) ResolveRefundRequest(id, status, notes, refundID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Only a pending request can be resolved.
	filter := bson.M{"id": id, "status": models.RefundPending}
	update := bson.M{"$set": bson.M{
		"status":      status,
		"admin_notes": notes,
		"refund_id":   refundID,
		"updated_at":  time.Now(),
	}}
	res, err := repo.refundColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to resolve refund request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("refund request %s not found or already resolved", id)
	}
	return nil
}

func (repo *MongoCompletionRepo) FindRefundRequests(status string) ([]models.RefundRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := repo.refundColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching refund requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.RefundRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding refund requests: %w", err)
	}
	return reqs, nil
}
