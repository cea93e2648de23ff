// Package main provides administrative payout utilities.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tray/config"
	"tray/database"
	bookingRepo "tray/database/repository/booking"
	consultantRepo "tray/database/repository/consultant"
	payoutRepo "tray/database/repository/payout"
	settingsRepo "tray/database/repository/settings"
	"tray/services/events"
	"tray/services/payment"
	"tray/services/payout"
	"tray/utils"

	"github.com/stripe/stripe-go/v76"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: payoutctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run-payout-batch                 trigger a payout run now")
	fmt.Fprintln(os.Stderr, "  get-payout-history <consultantId>  list a consultant's payout batches")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	config.LoadConfig()
	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	svc := &payout.DefaultPayoutService{
		Payouts:     payoutRepo.NewMongoPayoutRepo(),
		Bookings:    bookingRepo.NewMongoBookingRepo(),
		Consultants: consultantRepo.NewMongoConsultantRepo(),
		Settings:    settingsRepo.NewMongoSettingsRepo(),
		Gateway:     payment.NewStripeGateway(),
		Events:      events.NewRedisPublisher(),
		Lock:        payout.NewRedisRunLock(),
	}

	switch os.Args[1] {
	case "run-payout-batch":
		runPayoutBatch(ctx, svc, os.Args[2:])
	case "get-payout-history":
		getPayoutHistory(svc, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func runPayoutBatch(ctx context.Context, svc payout.PayoutService, args []string) {
	fs := flag.NewFlagSet("run-payout-batch", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "output the run summary as JSON")
	fs.Parse(args)

	summary, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, payout.ErrRunInProgress) {
			fmt.Fprintln(os.Stderr, "Error: a payout run is already in progress")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Payout run finished: processed=%d skipped=%d failed=%d total=%d cents\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.TotalCents)
}

func getPayoutHistory(svc payout.PayoutService, args []string) {
	fs := flag.NewFlagSet("get-payout-history", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "output batches as JSON")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: payoutctl get-payout-history <consultantId>")
		os.Exit(2)
	}
	consultantID := fs.Arg(0)

	batches, err := svc.History(consultantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batches); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(batches) == 0 {
		fmt.Printf("No payouts recorded for consultant %s\n", consultantID)
		return
	}
	for _, b := range batches {
		fmt.Printf("%s  earnings=%.2f fee=%d transfer=%d ref=%s processed=%s\n",
			b.ID, b.TotalEarnings, b.PlatformFee, b.TransferAmount, b.TransferID,
			b.ProcessedAt.Format("2006-01-02 15:04"))
	}
}
