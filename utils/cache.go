// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tray/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (platform settings, misc).
	CacheClient *redis.Client
	// CartCacheClient is the dedicated client for cart storage.
	CartCacheClient *redis.Client
	// LockClient is the dedicated client for distributed run locks.
	LockClient *redis.Client
)

// InitRedis initializes all Redis clients from AppConfig.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	CartCacheClient = newRedisClient(config.AppConfig.RedisCartDB)
	LockClient = newRedisClient(config.AppConfig.RedisLockDB)
}

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	}
	return CacheClient
}

// GetCartCacheClient returns the Redis client for cart storage.
func GetCartCacheClient() *redis.Client {
	if CartCacheClient == nil {
		CartCacheClient = newRedisClient(config.AppConfig.RedisCartDB)
	}
	return CartCacheClient
}

// GetLockClient returns the Redis client used for run locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		LockClient = newRedisClient(config.AppConfig.RedisLockDB)
	}
	return LockClient
}
