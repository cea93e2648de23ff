package routes

import (
	"net/http"
	"time"

	"tray/handlers"
	"tray/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers consultants' bookable-hours endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		// Public: students browse open slots before signing in.
		api.GET("/:consultantId", hb.GetAvailabilityHandler)
		api.GET("/:consultantId/slots", hb.AvailableSlotsHandler)
		api.GET("/:consultantId/booked", hb.BookedSlotsHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole("consultant"))
		protected.PUT("", hb.SetAvailabilityHandler)
	}
}

// RegisterCartRoutes registers the slot selection and checkout endpoints.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cart")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole("student"))
		api.GET("", hb.GetCartHandler)
		api.POST("/items", hb.AddSlotsHandler)
		api.POST("/items/:itemId/increment", hb.IncrementSlotHandler)
		api.POST("/items/:itemId/decrement", hb.DecrementSlotHandler)
		api.DELETE("/items/:itemId", hb.RemoveItemHandler)
		api.POST("/checkout", hb.CheckoutHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/mine", middleware.RequireRole("student"), hb.StudentBookingsHandler)
		api.GET("/schedule", middleware.RequireRole("consultant"), hb.ConsultantBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/:id/accept", middleware.RequireRole("consultant"), hb.AcceptBookingHandler)
		api.POST("/:id/decline", middleware.RequireRole("consultant"), hb.DeclineBookingHandler)
		api.POST("/:id/cancel", middleware.RequireRole("student"), hb.CancelBookingHandler)
	}
}

// RegisterEscrowRoutes registers completion, rating and refund endpoints.
func RegisterEscrowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/:id/complete", middleware.RequireRole("consultant", "admin"), hb.CompleteSessionHandler)
		api.POST("/:id/rate-consultant", middleware.RequireRole("student"), hb.RateConsultantHandler)
		api.POST("/:id/rate-service", middleware.RequireRole("student"), hb.RateServiceHandler)
		api.POST("/:id/refund-request", middleware.RequireRole("student"), hb.RequestRefundHandler)
	}

	admin := r.Group("/api/admin/refunds")
	{
		admin.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole("admin"))
		admin.GET("", hb.PendingRefundsHandler)
		admin.POST("/:id/review", hb.ReviewRefundHandler)
	}
}

// RegisterPayoutRoutes registers payout, ledger and settings endpoints.
func RegisterPayoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payouts")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/history", middleware.RequireRole("consultant"), hb.PayoutHistoryHandler)
		api.GET("/payments", middleware.RequireRole("student"), hb.PaymentHistoryHandler)
	}

	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole("admin"))
		admin.POST("/payouts/run", hb.RunPayoutsHandler)
		admin.GET("/revenue", hb.RevenueSummaryHandler)
		admin.GET("/settings", hb.GetSettingsHandler)
		admin.PUT("/settings/fee", hb.UpdateFeePercentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterCartRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterEscrowRoutes(r, hb)
	RegisterPayoutRoutes(r, hb)
}
