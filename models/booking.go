package models

import "time"

// Booking request statuses.
const (
	BookingPending   = "pending"
	BookingAccepted  = "accepted"
	BookingDeclined  = "declined"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment statuses, orthogonal to booking status.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Slot is a single bookable (date, start, end) unit for one consultant.
type Slot struct {
	Date      string `bson:"date" json:"date"`           // "2006-01-02"
	StartTime string `bson:"start_time" json:"startTime"` // "09:00 AM"
	EndTime   string `bson:"end_time" json:"endTime"`
}

// Key identifies a slot within one consultant's calendar.
func (s Slot) Key() string {
	return s.Date + "|" + s.StartTime
}

// BookingRequest is the durable server record of one reserved slot. It is the
// single source of truth for slot conflicts and is never hard-deleted.
type BookingRequest struct {
	ID           string  `bson:"id" json:"id"`
	StudentID    string  `bson:"student_id" json:"studentId"`
	ConsultantID string  `bson:"consultant_id" json:"consultantId"`
	ServiceID    string  `bson:"service_id" json:"serviceId"`
	Date         string  `bson:"date" json:"date"`
	StartTime    string  `bson:"start_time" json:"startTime"`
	EndTime      string  `bson:"end_time" json:"endTime"`
	Amount       float64 `bson:"amount" json:"amount"` // price for this single slot

	Status        string `bson:"status" json:"status"`
	PaymentStatus string `bson:"payment_status" json:"paymentStatus"`

	// Escrow / payout bookkeeping.
	PayoutEligible     bool   `bson:"payout_eligible" json:"payoutEligible"`
	PaymentTransferred bool   `bson:"payment_transferred" json:"paymentTransferred"`
	ChargeID           string `bson:"charge_id,omitempty" json:"chargeId,omitempty"`
	TransferID         string `bson:"transfer_id,omitempty" json:"transferId,omitempty"`
	PayoutBatchID      string `bson:"payout_batch_id,omitempty" json:"payoutBatchId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// SlotRef returns the booking's slot.
func (b *BookingRequest) SlotRef() Slot {
	return Slot{Date: b.Date, StartTime: b.StartTime, EndTime: b.EndTime}
}
