package payout

import (
	"context"

	"go.uber.org/zap"
)

// reconcile settles leftovers from interrupted runs before any new transfer
// for the consultant. An open intent with a transfer reference means the
// money already moved, so the batch bookkeeping is completed now. An open
// intent without a reference means the transfer outcome is unknown: the
// consultant is blocked from this run and flagged for manual review, because
// re-transferring could pay twice.
//
// Returns the booking ids settled by resumed intents and whether the
// consultant is blocked.
func (s *DefaultPayoutService) reconcile(ctx context.Context, consultantID string, logger *zap.Logger) (map[string]bool, bool) {
	settled := make(map[string]bool)

	intents, err := s.Payouts.FindOpenIntents(ctx, consultantID)
	if err != nil {
		logger.Error("could not query open transfer intents", zap.Error(err))
		return settled, true
	}

	blocked := false
	for _, intent := range intents {
		if intent.TransferID == "" {
			logger.Error("RECONCILIATION REQUIRED: open intent with unknown transfer outcome",
				zap.String("intentID", intent.ID),
				zap.Int64("transferCents", intent.TransferAmount),
			)
			blocked = true
			continue
		}

		if err := s.finalizeIntent(ctx, &intent, intent.TransferID); err != nil {
			logger.Error("could not finalize leftover intent",
				zap.String("intentID", intent.ID),
				zap.String("transferID", intent.TransferID),
				zap.Error(err),
			)
			blocked = true
			continue
		}
		logger.Info("finalized leftover intent from interrupted run",
			zap.String("intentID", intent.ID),
			zap.String("transferID", intent.TransferID),
		)
		for _, id := range intent.BookingIDs {
			settled[id] = true
		}
	}
	return settled, blocked
}
