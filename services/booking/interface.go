package booking

import (
	"context"

	availabilityRepo "tray/database/repository/availability"
	bookingRepo "tray/database/repository/booking"
	"tray/models"
	"tray/services/events"
	"tray/services/payment"
)

// BookingService owns consultants' availability and the booking request
// lifecycle. All conflict decisions read the durable booking store.
type BookingService interface {
	// SetAvailability replaces a consultant's bookable-hours spec.
	SetAvailability(spec *models.AvailabilitySpec) error
	GetAvailability(consultantID string) (*models.AvailabilitySpec, error)
	// AvailableSlots resolves the offered slots for a date and filters out
	// those already held by accepted or completed bookings.
	AvailableSlots(ctx context.Context, consultantID, date string) ([]models.Slot, error)
	// IsSlotAvailable re-checks one slot against the spec and the booking
	// store. Cart state is never consulted.
	IsSlotAvailable(ctx context.Context, consultantID, date, startTime string) (bool, error)
	// BookedSlots lists the slots currently held for a consultant so
	// clients can grey them out.
	BookedSlots(consultantID string) ([]models.Slot, error)

	Accept(ctx context.Context, bookingID string) (*models.BookingRequest, error)
	Decline(ctx context.Context, bookingID string) (*models.BookingRequest, error)
	Cancel(ctx context.Context, bookingID, studentID string) (*models.BookingRequest, error)

	GetByID(bookingID string) (*models.BookingRequest, error)
	ListByStudent(studentID string) ([]models.BookingRequest, error)
	ListByConsultant(consultantID string) ([]models.BookingRequest, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Bookings     bookingRepo.BookingRepository
	Availability availabilityRepo.AvailabilityRepository
	Gateway      payment.Gateway
	Events       events.Publisher
}
