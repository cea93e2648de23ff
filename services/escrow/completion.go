package escrow

import (
	"context"
	"fmt"
	"time"

	"tray/models"

	"github.com/google/uuid"
)

// CompleteSession flips an accepted booking to completed and creates the
// rating record the release gate watches. Completed is terminal for status;
// the payment fields keep evolving through ratings and refunds.
func (s *DefaultEscrowService) CompleteSession(ctx context.Context, bookingID string) (*models.SessionCompletion, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingAccepted && b.Status != models.BookingCompleted {
		return nil, fmt.Errorf("booking %s cannot complete from status %s", bookingID, b.Status)
	}

	// Completing twice is a no-op.
	if existing, err := s.Completions.GetByBooking(bookingID); err == nil && existing != nil {
		return existing, nil
	}

	if b.Status == models.BookingAccepted {
		if err := s.Bookings.UpdateStatus(bookingID, models.BookingCompleted, b.PaymentStatus); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	sc := &models.SessionCompletion{
		ID:           uuid.New().String(),
		BookingID:    b.ID,
		StudentID:    b.StudentID,
		ConsultantID: b.ConsultantID,
		ServiceID:    b.ServiceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Completions.Create(sc); err != nil {
		return nil, err
	}

	s.Events.Publish(models.EventBookingCompleted, map[string]interface{}{
		"bookingId":    b.ID,
		"studentId":    b.StudentID,
		"consultantId": b.ConsultantID,
	})
	return sc, nil
}

func (s *DefaultEscrowService) ratable(bookingID string, rating int) (*models.BookingRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingCompleted || b.PaymentStatus != models.PaymentPaid {
		return nil, &InvalidRatingStateError{
			BookingID:     bookingID,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
		}
	}
	return b, nil
}

// RateConsultant stores the consultant rating.
func (s *DefaultEscrowService) RateConsultant(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	if _, err := s.ratable(bookingID, rating); err != nil {
		return nil, err
	}
	sc, err := s.Completions.SetConsultantRating(bookingID, rating, feedback)
	if err != nil {
		return nil, err
	}
	return sc, s.maybeRelease(sc)
}

// RateService stores the service rating.
func (s *DefaultEscrowService) RateService(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	if _, err := s.ratable(bookingID, rating); err != nil {
		return nil, err
	}
	sc, err := s.Completions.SetServiceRating(bookingID, rating, feedback)
	if err != nil {
		return nil, err
	}
	return sc, s.maybeRelease(sc)
}

// maybeRelease marks the booking eligible for the next payout run once both
// ratings exist. Either rating can arrive first.
func (s *DefaultEscrowService) maybeRelease(sc *models.SessionCompletion) error {
	if !sc.FullyRated() {
		return nil
	}
	if err := s.Bookings.SetPayoutEligible(sc.BookingID, true); err != nil {
		return fmt.Errorf("ratings stored but release failed: %w", err)
	}
	return nil
}
