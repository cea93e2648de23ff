package payout

import (
	"context"

	bookingRepo "tray/database/repository/booking"
	consultantRepo "tray/database/repository/consultant"
	payoutRepo "tray/database/repository/payout"
	settingsRepo "tray/database/repository/settings"
	"tray/models"
	"tray/services/events"
	"tray/services/payment"
)

// PayoutService sweeps released escrow into consultant transfers. One run
// issues at most one transfer per consultant, and a booking can never be paid
// out twice.
type PayoutService interface {
	// Run executes one payout sweep. Concurrent runs are refused.
	Run(ctx context.Context) (*models.PayoutRunSummary, error)
	History(consultantID string) ([]models.PayoutBatch, error)
	Revenue(ctx context.Context) (*models.RevenueSummary, error)
}

// DefaultPayoutService is the production implementation.
type DefaultPayoutService struct {
	Payouts     payoutRepo.PayoutRepository
	Bookings    bookingRepo.BookingRepository
	Consultants consultantRepo.ConsultantRepository
	Settings    settingsRepo.SettingsRepository
	Gateway     payment.Gateway
	Events      events.Publisher
	Lock        RunLock
}

func (s *DefaultPayoutService) History(consultantID string) ([]models.PayoutBatch, error) {
	return s.Payouts.ListByConsultant(consultantID)
}

func (s *DefaultPayoutService) Revenue(ctx context.Context) (*models.RevenueSummary, error) {
	return s.Payouts.RevenueSummary(ctx)
}
