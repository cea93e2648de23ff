package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tray/models"
	"tray/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// runInTransaction executes fn inside a mongo multi-document transaction.
func (repo *MongoBookingRepo) runInTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// offeredInSpec reports whether the spec offers the slot's start time on its
// date, override first.
func offeredInSpec(spec *models.AvailabilitySpec, date, startTime string) (bool, error) {
	weekday, err := utils.WeekdayName(date)
	if err != nil {
		return false, err
	}
	for _, start := range spec.SlotsForDate(date, weekday) {
		if start == startTime {
			return true, nil
		}
	}
	return false, nil
}

// loadSpec fetches a consultant's availability spec inside the transaction.
// A consultant without one offers nothing.
func (repo *MongoBookingRepo) loadSpec(sc mongo.SessionContext, consultantID string) (*models.AvailabilitySpec, error) {
	var spec models.AvailabilitySpec
	if err := repo.availColl.FindOne(sc, bson.M{"consultant_id": consultantID}).Decode(&spec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching availability for consultant %s: %w", consultantID, err)
	}
	return &spec, nil
}

// CreateAllTransactionally re-checks every slot and inserts all bookings in
// one transaction. A slot must still be offered by the consultant's current
// availability spec and free of accepted or completed holders. All-or-nothing:
// a single bad slot aborts the whole batch so a student is never charged for
// a partial set of sessions.
func (repo *MongoBookingRepo) CreateAllTransactionally(ctx context.Context, bookings []*models.BookingRequest) ([]models.Slot, error) {
	var conflicting []models.Slot

	err := repo.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		conflicting = conflicting[:0]
		specs := make(map[string]*models.AvailabilitySpec)
		for _, b := range bookings {
			spec, loaded := specs[b.ConsultantID]
			if !loaded {
				var err error
				spec, err = repo.loadSpec(sc, b.ConsultantID)
				if err != nil {
					return err
				}
				specs[b.ConsultantID] = spec
			}
			if spec == nil {
				conflicting = append(conflicting, b.SlotRef())
				continue
			}
			offered, err := offeredInSpec(spec, b.Date, b.StartTime)
			if err != nil {
				return fmt.Errorf("bad slot %s: %w", b.SlotRef().Key(), err)
			}
			if !offered {
				conflicting = append(conflicting, b.SlotRef())
				continue
			}

			count, err := repo.bookingColl.CountDocuments(sc, conflictFilter(b.ConsultantID, b.Date, b.StartTime))
			if err != nil {
				return fmt.Errorf("conflict check failed for slot %s: %w", b.SlotRef().Key(), err)
			}
			if count > 0 {
				conflicting = append(conflicting, b.SlotRef())
			}
		}
		if len(conflicting) > 0 {
			return ErrSlotConflict
		}

		docs := make([]interface{}, 0, len(bookings))
		now := time.Now()
		for _, b := range bookings {
			b.CreatedAt = now
			b.UpdatedAt = now
			docs = append(docs, b)
		}
		if _, err := repo.bookingColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert bookings failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return conflicting, err
	}
	return nil, nil
}

// AcceptTransactionally flips a pending booking to accepted. The conflict
// check runs inside the same transaction that writes the status, so of two
// concurrent acceptances for one slot the second fails with ErrSlotConflict.
func (repo *MongoBookingRepo) AcceptTransactionally(ctx context.Context, bookingID string) error {
	return repo.runInTransaction(ctx, func(sc mongo.SessionContext) error {
		var booking models.BookingRequest
		if err := repo.bookingColl.FindOne(sc, bson.M{"id": bookingID}).Decode(&booking); err != nil {
			return fmt.Errorf("error fetching booking %s: %w", bookingID, err)
		}
		if booking.Status != models.BookingPending {
			return ErrNotPending
		}

		count, err := repo.bookingColl.CountDocuments(sc, conflictFilter(booking.ConsultantID, booking.Date, booking.StartTime))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotConflict
		}

		filter := bson.M{"id": bookingID, "status": models.BookingPending}
		update := bson.M{"$set": bson.M{"status": models.BookingAccepted, "updated_at": time.Now()}}
		res, err := repo.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("accept write failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotPending
		}
		return nil
	})
}
