package payout

import "math"

// Split divides a consultant's earnings into the platform fee and the
// transfer amount, in integer cents. The two parts always sum exactly to the
// total: the fee is rounded and the transfer takes the remainder, so no cent
// is ever created or lost to float arithmetic.
func Split(totalEarnings, feePercent float64) (totalCents, feeCents, transferCents int64) {
	totalCents = int64(math.Round(totalEarnings * 100))
	feeCents = int64(math.Round(float64(totalCents) * feePercent / 100))
	transferCents = totalCents - feeCents
	return totalCents, feeCents, transferCents
}
