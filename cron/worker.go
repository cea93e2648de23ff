package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"tray/config"
	"tray/services/payout"

	"github.com/hibiken/asynq"
)

const TypePayoutRun = "payout:run"

// InitPayoutWorker runs the scheduled payout worker in background.
// The scheduler enqueues a payout:run task on the configured cron
// expression and the worker executes it.
func InitPayoutWorker(payoutSvc payout.PayoutService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePayoutRun, handlePayoutTask(payoutSvc))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(config.AppConfig.PayoutCron, asynq.NewTask(TypePayoutRun, nil)); err != nil {
		log.Fatalf("[PayoutWorker] ❗ Failed to register payout schedule %q: %v", config.AppConfig.PayoutCron, err)
	}

	go func() {
		log.Printf("[PayoutWorker] 🚀 Starting payout scheduler (%s)...", config.AppConfig.PayoutCron)
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[PayoutWorker] ❗ Scheduler stopped: %v", err)
		}
	}()

	go func() {
		log.Println("[PayoutWorker] 🚀 Starting payout worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PayoutWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PayoutWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handlePayoutTask(payoutSvc payout.PayoutService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		log.Println("[PayoutHandler] ⏰ Triggering scheduled payout run")

		summary, err := payoutSvc.Run(ctx)
		if err != nil {
			if errors.Is(err, payout.ErrRunInProgress) {
				// Another instance already holds the run lock; nothing to retry.
				log.Println("[PayoutHandler] ⚠️ Payout run already in progress, skipping")
				return nil
			}
			log.Printf("[PayoutHandler] ❌ Payout run failed: %v", err)
			return err
		}

		log.Printf("[PayoutHandler] ✅ Payout run done: processed=%d skipped=%d failed=%d total=%d cents",
			summary.Processed, summary.Skipped, summary.Failed, summary.TotalCents)
		return nil
	}
}
