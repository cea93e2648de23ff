package availabilityRepo

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

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	return &MongoAvailabilityRepo{
		coll: database.DB().Collection("availability"),
	}
}

func (repo *MongoAvailabilityRepo) Upsert(spec *models.AvailabilitySpec) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	spec.UpdatedAt = time.Now().Unix()
	filter := bson.M{"consultant_id": spec.ConsultantID}
	update := bson.M{"$set": spec}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert availability for consultant %s: %w", spec.ConsultantID, err)
	}
	return nil
}

func (repo *MongoAvailabilityRepo) GetByConsultant(consultantID string) (*models.AvailabilitySpec, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var spec models.AvailabilitySpec
	filter := bson.M{"consultant_id": consultantID}
	if err := repo.coll.FindOne(ctx, filter).Decode(&spec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching availability for consultant %s: %w", consultantID, err)
	}
	return &spec, nil
}
