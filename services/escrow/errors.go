package escrow

import (
	"errors"
	"fmt"
)

// ErrRefundAlreadyResolved is returned when a reviewed request is reviewed
// again.
var ErrRefundAlreadyResolved = errors.New("refund request already resolved")

// InvalidRatingStateError rejects ratings against bookings that are not both
// completed and paid. Silently accepting one would let funds release without
// a real session behind them.
type InvalidRatingStateError struct {
	BookingID     string
	Status        string
	PaymentStatus string
}

func (e *InvalidRatingStateError) Error() string {
	return fmt.Sprintf("booking %s is not ratable (status=%s, payment=%s)",
		e.BookingID, e.Status, e.PaymentStatus)
}
