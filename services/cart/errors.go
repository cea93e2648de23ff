package cart

import (
	"errors"
	"fmt"
)

// ErrNoSlotsAvailable is returned when an increment finds no free slot on any
// date already present in the item. Picking an unrelated date silently would
// scatter a student's sessions, so the operation fails instead.
var ErrNoSlotsAvailable = errors.New("no additional slots available on the item's dates")

// ErrItemNotFound is returned when the cart holds no item with the given id.
var ErrItemNotFound = errors.New("cart item not found")

// ErrLastSlot is returned when a decrement would empty the item.
var ErrLastSlot = errors.New("item has only one slot; remove the item instead")

// PaymentCaptureError wraps a declined or failed charge. The bookings created
// during checkout stay pending and unpaid.
type PaymentCaptureError struct {
	Err error
}

func (e *PaymentCaptureError) Error() string {
	return fmt.Sprintf("payment capture failed: %v", e.Err)
}

func (e *PaymentCaptureError) Unwrap() error { return e.Err }
