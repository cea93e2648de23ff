package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tray/models"
	"tray/utils"

	"github.com/go-redis/redis/v8"
)

// CartStore persists carts between requests. A vanished cart is not an error:
// carts are advisory and reconstructible by the client.
type CartStore interface {
	Get(studentID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	Delete(studentID string) error
}

// RedisCartStore keeps each student's cart as one JSON value with a sliding
// TTL.
type RedisCartStore struct{}

// NewRedisCartStore constructs the default Redis-backed store.
func NewRedisCartStore() CartStore {
	return &RedisCartStore{}
}

func cartKey(studentID string) string {
	return utils.CartCachePrefix + studentID
}

func (st *RedisCartStore) Get(studentID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := utils.GetCartCacheClient().Get(ctx, cartKey(studentID)).Result()
	if err == redis.Nil {
		return &models.Cart{StudentID: studentID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

func (st *RedisCartStore) Save(cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := utils.GetCartCacheClient().Set(ctx, cartKey(cart.StudentID), data, utils.CartCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (st *RedisCartStore) Delete(studentID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := utils.GetCartCacheClient().Del(ctx, cartKey(studentID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
