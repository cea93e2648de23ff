package escrow

import (
	"context"

	bookingRepo "tray/database/repository/booking"
	completionRepo "tray/database/repository/completion"
	paymentRepo "tray/database/repository/payment"
	payoutRepo "tray/database/repository/payout"
	"tray/models"
	"tray/services/events"
	"tray/services/payment"
)

// EscrowService gates captured payments between charge and payout. Funds are
// released to the payout sweep only once the student has rated both the
// consultant and the service, or returned to the student through an approved
// refund.
type EscrowService interface {
	// CompleteSession moves an accepted booking to completed and opens its
	// rating record.
	CompleteSession(ctx context.Context, bookingID string) (*models.SessionCompletion, error)
	RateConsultant(bookingID string, rating int, feedback string) (*models.SessionCompletion, error)
	// RateService stores the service rating and, when both ratings now
	// exist, marks the booking eligible for the next payout run.
	RateService(bookingID string, rating int, feedback string) (*models.SessionCompletion, error)

	// RequestRefund opens a refund review for an accepted or completed
	// paid booking. Approving a refund on an accepted booking also cancels
	// it.
	RequestRefund(bookingID, studentID, reason string) (*models.RefundRequest, error)
	// ReviewRefund resolves a pending request. Approval refunds the charge
	// portion, reverses any transfer that already went out, and removes the
	// booking from payout eligibility for good. Denial leaves it eligible.
	ReviewRefund(ctx context.Context, requestID string, approve bool, notes string) (*models.RefundRequest, error)
	PendingRefunds() ([]models.RefundRequest, error)
}

// DefaultEscrowService is the production implementation.
type DefaultEscrowService struct {
	Completions completionRepo.CompletionRepository
	Bookings    bookingRepo.BookingRepository
	Payments    paymentRepo.PaymentRepository
	Payouts     payoutRepo.PayoutRepository
	Gateway     payment.Gateway
	Events      events.Publisher
}
