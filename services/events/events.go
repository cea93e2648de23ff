package events

import (
	"context"
	"encoding/json"
	"time"

	"tray/config"
	"tray/models"
	"tray/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher emits domain events for external dispatchers (email, push). The
// core never formats or delivers notifications itself.
type Publisher interface {
	Publish(eventType string, payload map[string]interface{})
}

// RedisPublisher publishes events on a Redis channel. Publishing is
// best-effort: a failed publish is logged and dropped, never surfaced to the
// caller, so a flaky subscriber cannot break a booking or payout.
type RedisPublisher struct{}

// NewRedisPublisher constructs the default Redis-backed publisher.
func NewRedisPublisher() Publisher {
	return &RedisPublisher{}
}

func (p *RedisPublisher) Publish(eventType string, payload map[string]interface{}) {
	logger := utils.GetLogger()
	evt := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		EmittedAt: time.Now(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := utils.GetCacheClient().Publish(ctx, config.AppConfig.EventChannel, data).Err(); err != nil {
		logger.Error("failed to publish event", zap.String("type", eventType), zap.Error(err))
		return
	}
	logger.Debug("event published", zap.String("type", eventType), zap.String("id", evt.ID))
}

// NopPublisher discards all events. Used in tests and offline tooling.
type NopPublisher struct{}

func (NopPublisher) Publish(string, map[string]interface{}) {}
