package payout

import (
	"context"
	"time"

	"tray/utils"

	"go.uber.org/zap"
)

// RunLock guards against overlapping payout runs across processes.
type RunLock interface {
	Acquire() (bool, error)
	Release()
}

// RedisRunLock implements RunLock with a SETNX key. The TTL bounds how long a
// crashed run can block the schedule.
type RedisRunLock struct{}

// NewRedisRunLock constructs the default distributed run lock.
func NewRedisRunLock() RunLock {
	return &RedisRunLock{}
}

func (l *RedisRunLock) Acquire() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return utils.GetLockClient().SetNX(ctx, utils.PayoutRunLockKey, time.Now().Format(time.RFC3339), utils.PayoutRunLockTTL).Result()
}

func (l *RedisRunLock) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := utils.GetLockClient().Del(ctx, utils.PayoutRunLockKey).Err(); err != nil {
		utils.GetLogger().Warn("failed to release payout run lock", zap.Error(err))
	}
}
