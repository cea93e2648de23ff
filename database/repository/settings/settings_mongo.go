package settingsRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tray/config"
	"tray/database"
	"tray/models"
	"tray/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsDocID = "platform"

// MongoSettingsRepo implements SettingsRepository using MongoDB.
type MongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo constructs a new instance of MongoSettingsRepo.
func NewMongoSettingsRepo() SettingsRepository {
	return &MongoSettingsRepo{
		coll: database.DB().Collection("platform_settings"),
	}
}

// Get returns the settings document, falling back to the configured default
// fee percent when none has been written yet. Reads go through the Redis
// cache; a cache miss or decode failure falls through to Mongo.
func (repo *MongoSettingsRepo) Get() (*models.PlatformSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cached, err := utils.GetCacheClient().Get(ctx, utils.SettingsCacheKey).Result(); err == nil {
		var settings models.PlatformSettings
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return &settings, nil
		}
	}

	var settings models.PlatformSettings
	if err := repo.coll.FindOne(ctx, bson.M{"id": settingsDocID}).Decode(&settings); err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.PlatformSettings{
				ID:         settingsDocID,
				FeePercent: config.AppConfig.DefaultFeePercent,
			}, nil
		}
		return nil, fmt.Errorf("error fetching platform settings: %w", err)
	}

	if data, err := json.Marshal(&settings); err == nil {
		utils.GetCacheClient().Set(ctx, utils.SettingsCacheKey, data, utils.SettingsCacheTTL)
	}
	return &settings, nil
}

func (repo *MongoSettingsRepo) SetFeePercent(percent float64, updatedBy string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"fee_percent": percent,
		"updated_by":  updatedBy,
		"updated_at":  time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"id": settingsDocID}, update, opts); err != nil {
		return fmt.Errorf("failed to update fee percent: %w", err)
	}
	// Invalidate the cached copy so the next read sees the new fee.
	utils.GetCacheClient().Del(ctx, utils.SettingsCacheKey)
	return nil
}
