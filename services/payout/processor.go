package payout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tray/config"
	"tray/models"
	"tray/services/payment"
	"tray/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run executes one payout sweep: reconcile leftovers from interrupted runs,
// group released bookings per consultant, and issue at most one transfer per
// consultant. Every failure is isolated to its consultant; the run always
// reports a summary.
func (s *DefaultPayoutService) Run(ctx context.Context) (*models.PayoutRunSummary, error) {
	logger := utils.GetLogger()

	acquired, err := s.Lock.Acquire()
	if err != nil {
		return nil, fmt.Errorf("could not acquire payout run lock: %w", err)
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer s.Lock.Release()

	summary := &models.PayoutRunSummary{StartedAt: time.Now()}

	settings, err := s.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("could not load platform settings: %w", err)
	}

	eligible, err := s.Bookings.FindPayoutEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not query eligible bookings: %w", err)
	}

	groups := make(map[string][]models.BookingRequest)
	for _, b := range eligible {
		groups[b.ConsultantID] = append(groups[b.ConsultantID], b)
	}

	// Consultants with leftover intents get a pass even when nothing is
	// eligible right now, so interrupted runs always get cleaned up.
	openIntents, err := s.Payouts.FindAllOpenIntents(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not query open transfer intents: %w", err)
	}
	seen := make(map[string]bool, len(groups))
	consultantIDs := make([]string, 0, len(groups))
	for id := range groups {
		seen[id] = true
		consultantIDs = append(consultantIDs, id)
	}
	for _, intent := range openIntents {
		if !seen[intent.ConsultantID] {
			seen[intent.ConsultantID] = true
			consultantIDs = append(consultantIDs, intent.ConsultantID)
		}
	}
	sort.Strings(consultantIDs)

	logger.Info("payout run started",
		zap.Int("eligibleBookings", len(eligible)),
		zap.Int("consultants", len(consultantIDs)),
		zap.Float64("feePercent", settings.FeePercent),
	)

	for _, consultantID := range consultantIDs {
		s.processConsultant(ctx, consultantID, groups[consultantID], settings.FeePercent, summary)
	}

	summary.FinishedAt = time.Now()
	logger.Info("payout run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int64("totalCents", summary.TotalCents),
	)
	return summary, nil
}

func (s *DefaultPayoutService) processConsultant(ctx context.Context, consultantID string, bookings []models.BookingRequest, feePercent float64, summary *models.PayoutRunSummary) {
	logger := utils.GetLogger().With(zap.String("consultantID", consultantID))

	settled, blocked := s.reconcile(ctx, consultantID, logger)
	if blocked {
		summary.Skipped++
		return
	}

	// Bookings swept into a just-finalized leftover intent are no longer
	// payable in this run.
	var payable []models.BookingRequest
	for _, b := range bookings {
		if !settled[b.ID] {
			payable = append(payable, b)
		}
	}
	if len(payable) == 0 {
		return
	}

	var totalEarnings float64
	ids := make([]string, len(payable))
	for i, b := range payable {
		ids[i] = b.ID
		totalEarnings += b.Amount
	}

	if totalEarnings < config.AppConfig.MinimumPayoutAmount {
		logger.Info("below minimum payout, carrying over",
			zap.Float64("totalEarnings", totalEarnings),
			zap.Float64("minimum", config.AppConfig.MinimumPayoutAmount),
		)
		summary.Skipped++
		return
	}

	consultant, err := s.Consultants.GetByID(consultantID)
	if err != nil {
		logger.Error("could not load consultant", zap.Error(err))
		summary.Failed++
		return
	}
	if consultant.StripeAccountID == "" {
		logger.Warn("consultant has no connected account, skipping")
		summary.Skipped++
		return
	}

	statusCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	status, err := s.Gateway.GetAccountStatus(statusCtx, consultant.StripeAccountID)
	cancel()
	if err != nil {
		logger.Error("could not check account status", zap.Error(err))
		summary.Failed++
		return
	}
	if !status.Ready() {
		logger.Warn("connected account not ready for transfers, skipping",
			zap.Bool("chargesEnabled", status.ChargesEnabled),
			zap.Bool("payoutsEnabled", status.PayoutsEnabled),
		)
		summary.Skipped++
		return
	}

	_, feeCents, transferCents := Split(totalEarnings, feePercent)
	now := time.Now()
	intent := &models.TransferIntent{
		ID:             uuid.New().String(),
		ConsultantID:   consultantID,
		BookingIDs:     ids,
		TotalEarnings:  totalEarnings,
		PlatformFee:    feeCents,
		TransferAmount: transferCents,
		FeePercent:     feePercent,
		Status:         models.IntentInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Payouts.CreateIntent(ctx, intent); err != nil {
		logger.Error("could not record transfer intent", zap.Error(err))
		summary.Failed++
		return
	}

	transferCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	transferID, err := s.Gateway.Transfer(transferCtx, transferCents, config.AppConfig.Currency,
		consultant.StripeAccountID, intent.ID,
		fmt.Sprintf("payout of %d session(s) for consultant %s", len(ids), consultantID))
	cancel()
	if err != nil {
		if payment.IsDefiniteFailure(err) {
			logger.Error("transfer rejected by processor", zap.Error(err))
			if markErr := s.Payouts.MarkIntentFailed(ctx, intent.ID, err.Error()); markErr != nil {
				logger.Error("could not close failed intent", zap.Error(markErr))
			}
		} else {
			// Unknown outcome. The intent stays open so the next run
			// reconciles instead of re-transferring.
			logger.Error("transfer outcome unknown, intent left open for reconciliation", zap.Error(err))
		}
		summary.Failed++
		return
	}

	if err := s.Payouts.RecordTransferID(ctx, intent.ID, transferID); err != nil {
		logger.Error("transfer sent but reference not recorded",
			zap.String("transferID", transferID), zap.Error(err))
		summary.Failed++
		return
	}

	if err := s.finalizeIntent(ctx, intent, transferID); err != nil {
		// The intent carries the transfer reference, so the next run will
		// finish the bookkeeping without a second transfer.
		logger.Error("transfer sent but batch not finalized",
			zap.String("transferID", transferID), zap.Error(err))
		summary.Failed++
		return
	}

	s.Events.Publish(models.EventPayoutProcessed, map[string]interface{}{
		"consultantId":   consultantID,
		"bookingIds":     ids,
		"transferId":     transferID,
		"transferAmount": transferCents,
		"platformFee":    feeCents,
	})

	logger.Info("payout processed",
		zap.Int("bookings", len(ids)),
		zap.Int64("transferCents", transferCents),
		zap.Int64("feeCents", feeCents),
		zap.String("transferID", transferID),
	)
	summary.Processed++
	summary.TotalCents += transferCents
}

// finalizeIntent writes the batch and flips the bookings in one transaction.
func (s *DefaultPayoutService) finalizeIntent(ctx context.Context, intent *models.TransferIntent, transferID string) error {
	batch := &models.PayoutBatch{
		ID:             uuid.New().String(),
		ConsultantID:   intent.ConsultantID,
		BookingIDs:     intent.BookingIDs,
		TotalEarnings:  intent.TotalEarnings,
		PlatformFee:    intent.PlatformFee,
		TransferAmount: intent.TransferAmount,
		FeePercent:     intent.FeePercent,
		TransferID:     transferID,
		ProcessedAt:    time.Now(),
	}
	return s.Payouts.FinalizeBatch(ctx, batch, intent.ID)
}
