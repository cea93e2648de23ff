package payment

import (
	"context"

	"tray/models"
)

// Gateway abstracts the payment processor. All amounts are integer cents.
// Every call takes a context so callers can bound how long they wait; a
// timeout does NOT mean the processor rejected the call, see IsDefiniteFailure.
type Gateway interface {
	// CaptureCharge charges the student's payment source and returns the
	// processor charge reference.
	CaptureCharge(ctx context.Context, amountCents int64, currency, source, description string) (string, error)
	// Transfer moves funds to a consultant's connected account. The
	// idempotency key makes retries safe on the processor side.
	Transfer(ctx context.Context, amountCents int64, currency, destinationAccount, idempotencyKey, description string) (string, error)
	// Refund returns funds to the student for a captured charge.
	Refund(ctx context.Context, chargeID string, amountCents int64) (string, error)
	// ReverseTransfer claws back a completed transfer from a connected
	// account.
	ReverseTransfer(ctx context.Context, transferID string, amountCents int64) (string, error)
	// GetAccountStatus reports whether a connected account can receive
	// transfers.
	GetAccountStatus(ctx context.Context, accountID string) (*models.AccountStatus, error)
}
