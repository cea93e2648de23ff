package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tray/config"
	bookingRepo "tray/database/repository/booking"
	"tray/models"
	"tray/utils"

	"go.uber.org/zap"
)

// Accept confirms a pending booking. The conflict re-check and the status
// write happen in one transaction so two consultants' devices tapping accept
// on overlapping slots cannot both win.
func (s *DefaultBookingService) Accept(ctx context.Context, bookingID string) (*models.BookingRequest, error) {
	err := s.Bookings.AcceptTransactionally(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrSlotConflict) {
			b, getErr := s.Bookings.GetByID(bookingID)
			if getErr == nil {
				return nil, &SlotConflictError{Slots: []models.Slot{b.SlotRef()}}
			}
			return nil, &SlotConflictError{}
		}
		if errors.Is(err, bookingRepo.ErrNotPending) {
			b, getErr := s.Bookings.GetByID(bookingID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidTransitionError{BookingID: bookingID, From: b.Status, To: models.BookingAccepted}
		}
		return nil, err
	}

	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.Events.Publish(models.EventBookingAccepted, map[string]interface{}{
		"bookingId":    b.ID,
		"studentId":    b.StudentID,
		"consultantId": b.ConsultantID,
		"date":         b.Date,
		"startTime":    b.StartTime,
	})
	return b, nil
}

// Decline terminates a pending booking from the consultant side. If the
// student already paid, the charge portion is refunded before the status
// flips so a decline can never strand money in escrow.
func (s *DefaultBookingService) Decline(ctx context.Context, bookingID string) (*models.BookingRequest, error) {
	return s.terminate(ctx, bookingID, models.BookingDeclined)
}

// Cancel terminates a pending booking from the student side. Accepted paid
// bookings must go through a refund request instead.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, studentID string) (*models.BookingRequest, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentID != studentID {
		return nil, fmt.Errorf("booking %s does not belong to student %s", bookingID, studentID)
	}
	if b.Status == models.BookingAccepted {
		return nil, ErrUseRefundPath
	}
	return s.terminate(ctx, bookingID, models.BookingCancelled)
}

func (s *DefaultBookingService) terminate(ctx context.Context, bookingID, target string) (*models.BookingRequest, error) {
	logger := utils.GetLogger()
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, &InvalidTransitionError{BookingID: bookingID, From: b.Status, To: target}
	}

	paymentStatus := b.PaymentStatus
	if b.PaymentStatus == models.PaymentPaid {
		amountCents := int64(math.Round(b.Amount * 100))
		callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		refundID, refundErr := s.Gateway.Refund(callCtx, b.ChargeID, amountCents)
		cancel()
		if refundErr != nil {
			return nil, fmt.Errorf("could not refund booking %s: %w", bookingID, refundErr)
		}
		logger.Info("refunded terminated booking",
			zap.String("bookingID", bookingID),
			zap.String("refundID", refundID),
			zap.Int64("amountCents", amountCents),
			zap.String("currency", config.AppConfig.Currency),
		)
		paymentStatus = models.PaymentRefunded
	}

	if err := s.Bookings.UpdateStatus(bookingID, target, paymentStatus); err != nil {
		return nil, err
	}
	b.Status = target
	b.PaymentStatus = paymentStatus
	return b, nil
}

func (s *DefaultBookingService) GetByID(bookingID string) (*models.BookingRequest, error) {
	return s.Bookings.GetByID(bookingID)
}

func (s *DefaultBookingService) ListByStudent(studentID string) ([]models.BookingRequest, error) {
	return s.Bookings.FindByStudent(studentID)
}

func (s *DefaultBookingService) ListByConsultant(consultantID string) ([]models.BookingRequest, error) {
	return s.Bookings.FindByConsultant(consultantID)
}
