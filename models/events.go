package models

import "time"

// Domain event types consumed by external dispatchers (email, push).
const (
	EventBookingAccepted  = "booking.accepted"
	EventBookingCompleted = "booking.completed"
	EventPayoutProcessed  = "payout.processed"
	EventRefundApproved   = "refund.approved"
)

// Event is the envelope published on the event bus. This service only emits
// payloads; formatting and delivery belong to the subscribers.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	EmittedAt time.Time              `json:"emittedAt"`
}
