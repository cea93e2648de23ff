package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tray/config"
	"tray/cron"
	"tray/database"
	availabilityRepo "tray/database/repository/availability"
	bookingRepo "tray/database/repository/booking"
	completionRepo "tray/database/repository/completion"
	consultantRepo "tray/database/repository/consultant"
	paymentRepo "tray/database/repository/payment"
	payoutRepo "tray/database/repository/payout"
	settingsRepo "tray/database/repository/settings"
	"tray/handlers"
	"tray/middleware"
	"tray/routes"
	"tray/services/booking"
	"tray/services/cart"
	"tray/services/escrow"
	"tray/services/events"
	"tray/services/payment"
	"tray/services/payout"
	"tray/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	bookRepo := bookingRepo.NewMongoBookingRepo()
	complRepo := completionRepo.NewMongoCompletionRepo()
	consRepo := consultantRepo.NewMongoConsultantRepo()
	payRepo := paymentRepo.NewMongoPaymentRepo()
	batchRepo := payoutRepo.NewMongoPayoutRepo()
	platformRepo := settingsRepo.NewMongoSettingsRepo()

	// shared infrastructure.
	gateway := payment.NewStripeGateway()
	publisher := events.NewRedisPublisher()

	// services.
	bookingService := &booking.DefaultBookingService{
		Bookings:     bookRepo,
		Availability: availRepo,
		Gateway:      gateway,
		Events:       publisher,
	}

	cartService := &cart.DefaultCartService{
		Store:    cart.NewRedisCartStore(),
		Checker:  bookingService,
		Bookings: bookRepo,
		Payments: payRepo,
		Gateway:  gateway,
		Events:   publisher,
	}

	escrowService := &escrow.DefaultEscrowService{
		Completions: complRepo,
		Bookings:    bookRepo,
		Payments:    payRepo,
		Payouts:     batchRepo,
		Gateway:     gateway,
		Events:      publisher,
	}

	payoutService := &payout.DefaultPayoutService{
		Payouts:     batchRepo,
		Bookings:    bookRepo,
		Consultants: consRepo,
		Settings:    platformRepo,
		Gateway:     gateway,
		Events:      publisher,
		Lock:        payout.NewRedisRunLock(),
	}

	// Start the scheduled payout worker.
	cron.InitPayoutWorker(payoutService)

	availabilityHandler := handlers.NewAvailabilityHandler(bookingService)
	cartHandler := handlers.NewCartHandler(cartService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	payoutHandler := handlers.NewPayoutHandler(payoutService, payRepo, platformRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Availability endpoints.
		SetAvailabilityHandler: availabilityHandler.SetAvailabilityHandler,
		GetAvailabilityHandler: availabilityHandler.GetAvailabilityHandler,
		AvailableSlotsHandler:  availabilityHandler.AvailableSlotsHandler,
		BookedSlotsHandler:     availabilityHandler.BookedSlotsHandler,

		// Cart endpoints.
		GetCartHandler:       cartHandler.GetCartHandler,
		AddSlotsHandler:      cartHandler.AddSlotsHandler,
		IncrementSlotHandler: cartHandler.IncrementSlotHandler,
		DecrementSlotHandler: cartHandler.DecrementSlotHandler,
		RemoveItemHandler:    cartHandler.RemoveItemHandler,
		CheckoutHandler:      cartHandler.CheckoutHandler,

		// Booking endpoints.
		GetBookingHandler:         bookingHandler.GetBookingHandler,
		StudentBookingsHandler:    bookingHandler.StudentBookingsHandler,
		ConsultantBookingsHandler: bookingHandler.ConsultantBookingsHandler,
		AcceptBookingHandler:      bookingHandler.AcceptBookingHandler,
		DeclineBookingHandler:     bookingHandler.DeclineBookingHandler,
		CancelBookingHandler:      bookingHandler.CancelBookingHandler,

		// Escrow endpoints.
		CompleteSessionHandler: escrowHandler.CompleteSessionHandler,
		RateConsultantHandler:  escrowHandler.RateConsultantHandler,
		RateServiceHandler:     escrowHandler.RateServiceHandler,
		RequestRefundHandler:   escrowHandler.RequestRefundHandler,
		PendingRefundsHandler:  escrowHandler.PendingRefundsHandler,
		ReviewRefundHandler:    escrowHandler.ReviewRefundHandler,

		// Payout and admin endpoints.
		RunPayoutsHandler:       payoutHandler.RunPayoutsHandler,
		PayoutHistoryHandler:    payoutHandler.PayoutHistoryHandler,
		RevenueSummaryHandler:   payoutHandler.RevenueSummaryHandler,
		PaymentHistoryHandler:   payoutHandler.PaymentHistoryHandler,
		GetSettingsHandler:      payoutHandler.GetSettingsHandler,
		UpdateFeePercentHandler: payoutHandler.UpdateFeePercentHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
