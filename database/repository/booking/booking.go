package bookingRepo

import (
	"context"
	"errors"

	"tray/models"
)

// ErrSlotConflict is returned when a conditional write finds another booking
// already holding the same (consultant, date, startTime) slot.
var ErrSlotConflict = errors.New("slot already held by a confirmed booking")

// ErrNotPending is returned when a status transition expects a pending booking.
var ErrNotPending = errors.New("booking is not pending")

// BookingRepository is the durable store for booking requests. All conflict
// checks run against this store; the cart layer is advisory only.
type BookingRepository interface {
	GetByID(id string) (*models.BookingRequest, error)
	FindByStudent(studentID string) ([]models.BookingRequest, error)
	FindByConsultant(consultantID string) ([]models.BookingRequest, error)
	// FindHeldSlots lists the slots currently held by accepted or completed
	// bookings for a consultant.
	FindHeldSlots(consultantID string) ([]models.Slot, error)
	// HasConflict reports whether an accepted or completed booking already
	// holds the given slot.
	HasConflict(ctx context.Context, consultantID, date, startTime string) (bool, error)
	// CreateAllTransactionally inserts every booking inside one transaction,
	// first re-checking that each slot is still offered by the consultant's
	// availability spec and free of conflicting holders. If any slot fails
	// either check the transaction aborts, no bookings are created, and the
	// bad slots are returned alongside ErrSlotConflict.
	CreateAllTransactionally(ctx context.Context, bookings []*models.BookingRequest) ([]models.Slot, error)
	// AcceptTransactionally moves a pending booking to accepted, re-running
	// the conflict check inside the same transaction that writes the status.
	AcceptTransactionally(ctx context.Context, bookingID string) error
	// UpdateStatus writes a new (status, paymentStatus) pair.
	UpdateStatus(id, status, paymentStatus string) error
	// MarkPaid flips the given bookings to paid, recording the charge.
	MarkPaid(ctx context.Context, ids []string, chargeID string) error
	SetPayoutEligible(id string, eligible bool) error
	// MarkRefunded sets paymentStatus=refunded and removes payout eligibility.
	MarkRefunded(id string) error
	// FindPayoutEligible returns paid, untransferred, rating-released bookings
	// in completed or accepted status.
	FindPayoutEligible(ctx context.Context) ([]models.BookingRequest, error)
}
