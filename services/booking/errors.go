package booking

import (
	"errors"
	"fmt"

	"tray/models"
)

// ErrUseRefundPath is returned when a student tries to cancel an accepted,
// paid booking directly. Those cancellations must go through a refund review
// so the money trail stays auditable.
var ErrUseRefundPath = errors.New("accepted paid bookings are cancelled via a refund request")

// SlotConflictError reports the slots that were no longer available when a
// conditional write ran. User-recoverable: re-select and retry.
type SlotConflictError struct {
	Slots []models.Slot
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%d slot(s) no longer available", len(e.Slots))
}

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	BookingID string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s cannot move from %s to %s", e.BookingID, e.From, e.To)
}
