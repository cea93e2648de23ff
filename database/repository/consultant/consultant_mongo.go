package consultantRepo

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

// MongoConsultantRepo implements ConsultantRepository using MongoDB.
type MongoConsultantRepo struct {
	coll *mongo.Collection
}

// NewMongoConsultantRepo constructs a new instance of MongoConsultantRepo.
func NewMongoConsultantRepo() ConsultantRepository {
	return &MongoConsultantRepo{
		coll: database.DB().Collection("consultants"),
	}
}

func (repo *MongoConsultantRepo) GetByID(consultantID string) (*models.Consultant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var consultant models.Consultant
	if err := repo.coll.FindOne(ctx, bson.M{"id": consultantID}).Decode(&consultant); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("consultant %s not found", consultantID)
		}
		return nil, fmt.Errorf("error fetching consultant: %w", err)
	}
	return &consultant, nil
}

func (repo *MongoConsultantRepo) Upsert(consultant *models.Consultant) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	_, err := repo.coll.UpdateOne(ctx, bson.M{"id": consultant.ID}, bson.M{"$set": consultant}, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert consultant: %w", err)
	}
	return nil
}

func (repo *MongoConsultantRepo) SetStripeAccountID(consultantID, accountID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"stripe_account_id": accountID}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": consultantID}, update)
	if err != nil {
		return fmt.Errorf("failed to set stripe account: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("consultant %s not found", consultantID)
	}
	return nil
}
