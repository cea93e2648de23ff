package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo constructs a new instance of MongoPaymentRepo.
func NewMongoPaymentRepo() PaymentRepository {
	return &MongoPaymentRepo{
		coll: database.DB().Collection("payment_transactions"),
	}
}

func (repo *MongoPaymentRepo) Create(txn *models.PaymentTransaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("failed to record payment transaction: %w", err)
	}
	return nil
}

func (repo *MongoPaymentRepo) GetByChargeID(chargeID string) (*models.PaymentTransaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var txn models.PaymentTransaction
	if err := repo.coll.FindOne(ctx, bson.M{"charge_id": chargeID}).Decode(&txn); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("payment transaction for charge %s not found", chargeID)
		}
		return nil, fmt.Errorf("error fetching payment transaction: %w", err)
	}
	return &txn, nil
}

func (repo *MongoPaymentRepo) MarkRefunded(chargeID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": models.PaymentRefunded, "updated_at": time.Now()}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"charge_id": chargeID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark charge refunded: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment transaction for charge %s not found", chargeID)
	}
	return nil
}

func (repo *MongoPaymentRepo) ListByStudent(studentID string) ([]models.PaymentTransaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing payment transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []models.PaymentTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("error decoding payment transactions: %w", err)
	}
	return txns, nil
}
