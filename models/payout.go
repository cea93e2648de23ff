package models

import "time"

// Transfer intent statuses.
const (
	IntentInitiated = "initiated"
	IntentCompleted = "completed"
	IntentFailed    = "failed"
)

// PayoutBatch is one settlement run's transfer record for one consultant.
// The union of BookingIDs across all batches for a consultant is disjoint.
type PayoutBatch struct {
	ID             string    `bson:"id" json:"id"`
	ConsultantID   string    `bson:"consultant_id" json:"consultantId"`
	BookingIDs     []string  `bson:"booking_ids" json:"bookingIds"`
	TotalEarnings  float64   `bson:"total_earnings" json:"totalEarnings"`   // dollars
	PlatformFee    int64     `bson:"platform_fee" json:"platformFee"`       // cents
	TransferAmount int64     `bson:"transfer_amount" json:"transferAmount"` // cents
	FeePercent     float64   `bson:"fee_percent" json:"feePercent"`
	TransferID     string    `bson:"transfer_id" json:"transferReferenceId"`
	ProcessedAt    time.Time `bson:"processed_at" json:"processedAt"`
}

// TransferIntent is written before a processor transfer is attempted so an
// interrupted run leaves a durable trace. An intent left in "initiated" with a
// transfer reference means the transfer succeeded but the batch write did not;
// one without a reference means the outcome is unknown and must be reconciled
// before any re-attempt.
type TransferIntent struct {
	ID             string    `bson:"id" json:"id"` // also the processor idempotency key
	ConsultantID   string    `bson:"consultant_id" json:"consultantId"`
	BookingIDs     []string  `bson:"booking_ids" json:"bookingIds"`
	TotalEarnings  float64   `bson:"total_earnings" json:"totalEarnings"`
	PlatformFee    int64     `bson:"platform_fee" json:"platformFee"`
	TransferAmount int64     `bson:"transfer_amount" json:"transferAmount"`
	FeePercent     float64   `bson:"fee_percent" json:"feePercent"`
	Status         string    `bson:"status" json:"status"`
	TransferID     string    `bson:"transfer_id,omitempty" json:"transferId,omitempty"`
	FailureReason  string    `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// PayoutRunSummary reports one processor run's outcome.
type PayoutRunSummary struct {
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	TotalCents int64     `json:"totalCents"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}
