package models

import "time"

// PlatformSettings holds mutable marketplace-wide knobs. The fee percent is
// read from here on every payout run so changes apply without a redeploy.
type PlatformSettings struct {
	ID         string    `bson:"id" json:"id"`
	FeePercent float64   `bson:"fee_percent" json:"feePercent"` // e.g. 10 for 10%
	UpdatedBy  string    `bson:"updated_by,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// Consultant is the minimal projection of a consultant profile this core
// needs: identity plus the payment-processor connected account.
type Consultant struct {
	ID              string `bson:"id" json:"id"`
	Name            string `bson:"name" json:"name"`
	StripeAccountID string `bson:"stripe_account_id,omitempty" json:"stripeAccountId,omitempty"`
}
