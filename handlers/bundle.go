package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints.
	SetAvailabilityHandler gin.HandlerFunc
	GetAvailabilityHandler gin.HandlerFunc
	AvailableSlotsHandler  gin.HandlerFunc
	BookedSlotsHandler     gin.HandlerFunc

	// Cart endpoints.
	GetCartHandler       gin.HandlerFunc
	AddSlotsHandler      gin.HandlerFunc
	IncrementSlotHandler gin.HandlerFunc
	DecrementSlotHandler gin.HandlerFunc
	RemoveItemHandler    gin.HandlerFunc
	CheckoutHandler      gin.HandlerFunc

	// Booking endpoints.
	GetBookingHandler         gin.HandlerFunc
	StudentBookingsHandler    gin.HandlerFunc
	ConsultantBookingsHandler gin.HandlerFunc
	AcceptBookingHandler      gin.HandlerFunc
	DeclineBookingHandler     gin.HandlerFunc
	CancelBookingHandler      gin.HandlerFunc

	// Escrow endpoints.
	CompleteSessionHandler gin.HandlerFunc
	RateConsultantHandler  gin.HandlerFunc
	RateServiceHandler     gin.HandlerFunc
	RequestRefundHandler   gin.HandlerFunc
	PendingRefundsHandler  gin.HandlerFunc
	ReviewRefundHandler    gin.HandlerFunc

	// Payout and admin endpoints.
	RunPayoutsHandler       gin.HandlerFunc
	PayoutHistoryHandler    gin.HandlerFunc
	RevenueSummaryHandler   gin.HandlerFunc
	PaymentHistoryHandler   gin.HandlerFunc
	GetSettingsHandler      gin.HandlerFunc
	UpdateFeePercentHandler gin.HandlerFunc
}
