package payoutRepo

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

// MongoPayoutRepo implements PayoutRepository using MongoDB.
type MongoPayoutRepo struct {
	batchColl   *mongo.Collection
	intentColl  *mongo.Collection
	bookingColl *mongo.Collection
}

// NewMongoPayoutRepo constructs a new instance of MongoPayoutRepo.
func NewMongoPayoutRepo() PayoutRepository {
	db := database.DB()
	return &MongoPayoutRepo{
		batchColl:   db.Collection("payout_batches"),
		intentColl:  db.Collection("transfer_intents"),
		bookingColl: db.Collection("bookings"),
	}
}

func (repo *MongoPayoutRepo) CreateIntent(ctx context.Context, intent *models.TransferIntent) error {
	now := time.Now()
	intent.CreatedAt = now
	intent.UpdatedAt = now
	intent.Status = models.IntentInitiated
	if _, err := repo.intentColl.InsertOne(ctx, intent); err != nil {
		return fmt.Errorf("failed to insert transfer intent: %w", err)
	}
	return nil
}

func (repo *MongoPayoutRepo) RecordTransferID(ctx context.Context, intentID, transferID string) error {
	update := bson.M{"$set": bson.M{"transfer_id": transferID, "updated_at": time.Now()}}
	res, err := repo.intentColl.UpdateOne(ctx, bson.M{"id": intentID}, update)
	if err != nil {
		return fmt.Errorf("failed to record transfer id on intent %s: %w", intentID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("transfer intent %s not found", intentID)
	}
	return nil
}

func (repo *MongoPayoutRepo) MarkIntentFailed(ctx context.Context, intentID, reason string) error {
	update := bson.M{"$set": bson.M{
		"status":         models.IntentFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	}}
	if _, err := repo.intentColl.UpdateOne(ctx, bson.M{"id": intentID}, update); err != nil {
		return fmt.Errorf("failed to mark intent %s failed: %w", intentID, err)
	}
	return nil
}

func (repo *MongoPayoutRepo) FindOpenIntents(ctx context.Context, consultantID string) ([]models.TransferIntent, error) {
	return repo.findIntents(ctx, bson.M{"consultant_id": consultantID, "status": models.IntentInitiated})
}

func (repo *MongoPayoutRepo) FindAllOpenIntents(ctx context.Context) ([]models.TransferIntent, error) {
	return repo.findIntents(ctx, bson.M{"status": models.IntentInitiated})
}

func (repo *MongoPayoutRepo) findIntents(ctx context.Context, filter bson.M) ([]models.TransferIntent, error) {
	cursor, err := repo.intentColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching open intents: %w", err)
	}
	defer cursor.Close(ctx)

	var intents []models.TransferIntent
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, fmt.Errorf("error decoding open intents: %w", err)
	}
	return intents, nil
}

// FinalizeBatch runs the post-transfer writes in one transaction: insert the
// PayoutBatch, flip paymentTransferred on every included booking, and close
// the intent. A refund that landed between the eligibility scan and the
// transfer surfaces here: the conditional update refuses to mark a refunded
// booking transferred, which aborts the whole transaction for review.
func (repo *MongoPayoutRepo) FinalizeBatch(ctx context.Context, batch *models.PayoutBatch, intentID string) error {
	client := repo.batchColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.batchColl.InsertOne(sc, batch); err != nil {
			return fmt.Errorf("insert payout batch failed: %w", err)
		}

		filter := bson.M{
			"id":                  bson.M{"$in": batch.BookingIDs},
			"payment_status":      models.PaymentPaid,
			"payment_transferred": false,
		}
		update := bson.M{"$set": bson.M{
			"payment_transferred": true,
			"transfer_id":         batch.TransferID,
			"payout_batch_id":     batch.ID,
			"updated_at":          time.Now(),
		}}
		res, err := repo.bookingColl.UpdateMany(sc, filter, update)
		if err != nil {
			return fmt.Errorf("marking bookings transferred failed: %w", err)
		}
		if res.ModifiedCount != int64(len(batch.BookingIDs)) {
			return fmt.Errorf("expected to mark %d bookings transferred, matched %d", len(batch.BookingIDs), res.ModifiedCount)
		}

		intentUpdate := bson.M{"$set": bson.M{
			"status":      models.IntentCompleted,
			"transfer_id": batch.TransferID,
			"updated_at":  time.Now(),
		}}
		if _, err := repo.intentColl.UpdateOne(sc, bson.M{"id": intentID}, intentUpdate); err != nil {
			return fmt.Errorf("completing intent failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("payout finalization failed: %w", err)
	}
	return nil
}

func (repo *MongoPayoutRepo) GetBatch(batchID string) (*models.PayoutBatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var batch models.PayoutBatch
	if err := repo.batchColl.FindOne(ctx, bson.M{"id": batchID}).Decode(&batch); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("payout batch %s not found", batchID)
		}
		return nil, fmt.Errorf("error fetching payout batch: %w", err)
	}
	return &batch, nil
}

func (repo *MongoPayoutRepo) ListByConsultant(consultantID string) ([]models.PayoutBatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "processed_at", Value: -1}})
	cursor, err := repo.batchColl.Find(ctx, bson.M{"consultant_id": consultantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching payout batches: %w", err)
	}
	defer cursor.Close(ctx)

	var batches []models.PayoutBatch
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, fmt.Errorf("error decoding payout batches: %w", err)
	}
	return batches, nil
}

func (repo *MongoPayoutRepo) RevenueSummary(ctx context.Context) (*models.RevenueSummary, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: "$total_earnings"}}},
			{Key: "platformFees", Value: bson.D{{Key: "$sum", Value: "$platform_fee"}}},
			{Key: "consultantPayouts", Value: bson.D{{Key: "$sum", Value: "$transfer_amount"}}},
			{Key: "batchCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := repo.batchColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("revenue aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalRevenue      float64 `bson:"totalRevenue"`
		PlatformFees      int64   `bson:"platformFees"`
		ConsultantPayouts int64   `bson:"consultantPayouts"`
		BatchCount        int     `bson:"batchCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding revenue summary: %w", err)
	}
	summary := &models.RevenueSummary{}
	if len(rows) > 0 {
		summary.TotalRevenue = rows[0].TotalRevenue
		summary.PlatformFees = rows[0].PlatformFees
		summary.ConsultantPayouts = rows[0].ConsultantPayouts
		summary.BatchCount = rows[0].BatchCount
	}
	return summary, nil
}
