package payoutRepo

import (
	"context"

	"tray/models"
)

// PayoutRepository stores payout batches and the transfer intents that make
// interrupted runs detectable. Batch finalization and the paymentTransferred
// flips happen in one transaction so no booking can land in two batches.
type PayoutRepository interface {
	// CreateIntent durably records an imminent transfer attempt.
	CreateIntent(ctx context.Context, intent *models.TransferIntent) error
	// RecordTransferID attaches the processor reference once the transfer
	// call has definitely succeeded.
	RecordTransferID(ctx context.Context, intentID, transferID string) error
	// MarkIntentFailed closes an intent whose transfer definitively failed.
	MarkIntentFailed(ctx context.Context, intentID, reason string) error
	// FindOpenIntents returns intents still in "initiated" for a consultant.
	FindOpenIntents(ctx context.Context, consultantID string) ([]models.TransferIntent, error)
	// FindAllOpenIntents returns every intent still in "initiated", so a
	// run can reconcile consultants with no currently eligible bookings.
	FindAllOpenIntents(ctx context.Context) ([]models.TransferIntent, error)
	// FinalizeBatch atomically inserts the batch, marks every included
	// booking transferred, and completes the intent.
	FinalizeBatch(ctx context.Context, batch *models.PayoutBatch, intentID string) error

	GetBatch(batchID string) (*models.PayoutBatch, error)
	ListByConsultant(consultantID string) ([]models.PayoutBatch, error)
	RevenueSummary(ctx context.Context) (*models.RevenueSummary, error)
}
