package models

import "time"

// PaymentTransaction is the ledger record for one captured checkout charge.
type PaymentTransaction struct {
	ID         string    `bson:"id" json:"id"`
	ChargeID   string    `bson:"charge_id" json:"chargeId"`
	StudentID  string    `bson:"student_id" json:"studentId"`
	BookingIDs []string  `bson:"booking_ids" json:"bookingIds"`
	Amount     float64   `bson:"amount" json:"amount"`
	Currency   string    `bson:"currency" json:"currency"`
	Status     string    `bson:"status" json:"status"` // "paid", "refunded"
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// AccountStatus mirrors the payment processor's readiness flags for a
// consultant's connected account.
type AccountStatus struct {
	AccountID      string `json:"accountId"`
	ChargesEnabled bool   `json:"chargesEnabled"`
	PayoutsEnabled bool   `json:"payoutsEnabled"`
}

// Ready reports whether the account can receive transfers.
func (s AccountStatus) Ready() bool {
	return s.ChargesEnabled && s.PayoutsEnabled
}

// RevenueSummary aggregates settled money movement for the admin dashboard.
type RevenueSummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	PlatformFees      int64   `json:"platformFeesCents"`
	ConsultantPayouts int64   `json:"consultantPayoutsCents"`
	BatchCount        int     `json:"batchCount"`
}
