package escrow

import (
	"context"
	"fmt"
	"math"
	"time"

	"tray/models"
	"tray/services/payout"
	"tray/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestRefund opens a refund review for an accepted or completed booking.
// This is the only exit for an accepted paid booking, so a consultant who
// never shows up cannot trap a student's money. Nothing moves until an admin
// decides; the booking keeps whatever eligibility it had.
func (s *DefaultEscrowService) RequestRefund(bookingID, studentID, reason string) (*models.RefundRequest, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentID != studentID {
		return nil, fmt.Errorf("booking %s does not belong to student %s", bookingID, studentID)
	}
	if b.Status != models.BookingAccepted && b.Status != models.BookingCompleted {
		return nil, fmt.Errorf("refunds can only be requested for accepted or completed bookings, booking is %s", b.Status)
	}
	if b.PaymentStatus != models.PaymentPaid {
		return nil, fmt.Errorf("booking %s has no paid charge to refund", bookingID)
	}

	now := time.Now()
	req := &models.RefundRequest{
		ID:           uuid.New().String(),
		BookingID:    b.ID,
		StudentID:    b.StudentID,
		ConsultantID: b.ConsultantID,
		Amount:       b.Amount,
		Reason:       reason,
		Status:       models.RefundPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Completions.CreateRefundRequest(req); err != nil {
		return nil, err
	}
	// Accepted bookings have no completion record yet; nothing to flag.
	if b.Status == models.BookingCompleted {
		if err := s.Completions.MarkRefundRequested(bookingID, reason); err != nil {
			utils.GetLogger().Warn("refund request created but completion not flagged",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
	return req, nil
}

// ReviewRefund applies an admin decision. On approval the student gets the
// charge portion back, any transfer that already went out is clawed back net
// of the platform fee, and the booking is permanently excluded from payout.
func (s *DefaultEscrowService) ReviewRefund(ctx context.Context, requestID string, approve bool, notes string) (*models.RefundRequest, error) {
	logger := utils.GetLogger()

	req, err := s.Completions.GetRefundRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RefundPending {
		return nil, ErrRefundAlreadyResolved
	}

	if !approve {
		if err := s.Completions.ResolveRefundRequest(requestID, models.RefundDenied, notes, ""); err != nil {
			return nil, err
		}
		req.Status = models.RefundDenied
		req.AdminNotes = notes
		return req, nil
	}

	b, err := s.Bookings.GetByID(req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == models.PaymentRefunded {
		return nil, fmt.Errorf("booking %s is already refunded", b.ID)
	}

	amountCents := int64(math.Round(b.Amount * 100))
	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	refundID, err := s.Gateway.Refund(callCtx, b.ChargeID, amountCents)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("processor refund failed: %w", err)
	}

	// The student's refund already went out at this point. A failed
	// claw-back is an ops problem, not a reason to unwind the refund.
	if b.PaymentTransferred && b.TransferID != "" {
		if reverseCents, err := s.transferredPortion(b); err != nil {
			logger.Error("RECONCILIATION REQUIRED: could not compute reversal for refunded booking",
				zap.String("bookingID", b.ID), zap.Error(err))
		} else {
			callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			reversalID, err := s.Gateway.ReverseTransfer(callCtx, b.TransferID, reverseCents)
			cancel()
			if err != nil {
				logger.Error("RECONCILIATION REQUIRED: transfer reversal failed for refunded booking",
					zap.String("bookingID", b.ID),
					zap.String("transferID", b.TransferID),
					zap.Int64("amountCents", reverseCents),
					zap.Error(err),
				)
			} else {
				logger.Info("reversed paid-out transfer for refunded booking",
					zap.String("bookingID", b.ID),
					zap.String("reversalID", reversalID),
					zap.Int64("amountCents", reverseCents),
				)
			}
		}
	}

	if err := s.Bookings.MarkRefunded(b.ID); err != nil {
		return nil, fmt.Errorf("refund %s issued but booking not marked: %w", refundID, err)
	}
	// An accepted booking's session never happened: the approval doubles as
	// the cancellation.
	if b.Status == models.BookingAccepted {
		if err := s.Bookings.UpdateStatus(b.ID, models.BookingCancelled, models.PaymentRefunded); err != nil {
			return nil, fmt.Errorf("refund %s issued but booking not cancelled: %w", refundID, err)
		}
	}
	if err := s.Completions.ResolveRefundRequest(requestID, models.RefundApproved, notes, refundID); err != nil {
		return nil, err
	}
	s.settleLedger(b.ChargeID)

	s.Events.Publish(models.EventRefundApproved, map[string]interface{}{
		"bookingId": b.ID,
		"studentId": b.StudentID,
		"refundId":  refundID,
	})

	req.Status = models.RefundApproved
	req.AdminNotes = notes
	req.RefundID = refundID
	return req, nil
}

// transferredPortion computes how much of the booking's price actually
// reached the consultant, using the fee percent frozen on the payout batch.
func (s *DefaultEscrowService) transferredPortion(b *models.BookingRequest) (int64, error) {
	if b.PayoutBatchID == "" {
		return 0, fmt.Errorf("booking %s transferred without a batch reference", b.ID)
	}
	batch, err := s.Payouts.GetBatch(b.PayoutBatchID)
	if err != nil {
		return 0, err
	}
	_, _, transferCents := payout.Split(b.Amount, batch.FeePercent)
	return transferCents, nil
}

// settleLedger flips the charge's ledger entry to refunded once every booking
// it paid for has been refunded. Partial refunds leave the entry as paid.
func (s *DefaultEscrowService) settleLedger(chargeID string) {
	logger := utils.GetLogger()
	txn, err := s.Payments.GetByChargeID(chargeID)
	if err != nil {
		logger.Warn("could not load ledger entry for refunded charge",
			zap.String("chargeID", chargeID), zap.Error(err))
		return
	}
	for _, id := range txn.BookingIDs {
		b, err := s.Bookings.GetByID(id)
		if err != nil || b.PaymentStatus != models.PaymentRefunded {
			return
		}
	}
	if err := s.Payments.MarkRefunded(chargeID); err != nil {
		logger.Warn("failed to mark ledger entry refunded",
			zap.String("chargeID", chargeID), zap.Error(err))
	}
}

func (s *DefaultEscrowService) PendingRefunds() ([]models.RefundRequest, error) {
	return s.Completions.FindRefundRequests(models.RefundPending)
}
