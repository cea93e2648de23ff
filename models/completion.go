package models

import "time"

// Refund request statuses.
const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundDenied   = "denied"
)

// SessionCompletion tracks the post-session rating state for one booking.
// Funds are only released to payout once both ratings exist.
type SessionCompletion struct {
	ID           string `bson:"id" json:"id"`
	BookingID    string `bson:"booking_id" json:"bookingId"`
	StudentID    string `bson:"student_id" json:"studentId"`
	ConsultantID string `bson:"consultant_id" json:"consultantId"`
	ServiceID    string `bson:"service_id" json:"serviceId"`

	ConsultantRating   int    `bson:"consultant_rating,omitempty" json:"consultantRating,omitempty"` // 1..5, 0 = unset
	ConsultantFeedback string `bson:"consultant_feedback,omitempty" json:"consultantFeedback,omitempty"`
	ServiceRating      int    `bson:"service_rating,omitempty" json:"serviceRating,omitempty"`
	ServiceFeedback    string `bson:"service_feedback,omitempty" json:"serviceFeedback,omitempty"`

	RefundRequested bool   `bson:"refund_requested" json:"refundRequested"`
	RefundReason    string `bson:"refund_reason,omitempty" json:"refundReason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullyRated reports whether both ratings have been submitted.
func (sc *SessionCompletion) FullyRated() bool {
	return sc.ConsultantRating > 0 && sc.ServiceRating > 0
}

// RefundRequest is a student's refund claim against a completed booking,
// resolved by an admin decision.
type RefundRequest struct {
	ID           string    `bson:"id" json:"id"`
	BookingID    string    `bson:"booking_id" json:"bookingId"`
	StudentID    string    `bson:"student_id" json:"studentId"`
	ConsultantID string    `bson:"consultant_id" json:"consultantId"`
	Amount       float64   `bson:"amount" json:"amount"`
	Reason       string    `bson:"reason" json:"reason"`
	Status       string    `bson:"status" json:"status"`
	AdminNotes   string    `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	RefundID     string    `bson:"refund_id,omitempty" json:"refundId,omitempty"` // processor refund reference
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
