package payment

import (
	"context"
	"errors"
	"fmt"

	"tray/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/charge"
	"github.com/stripe/stripe-go/v76/refund"
	reversal "github.com/stripe/stripe-go/v76/transferreversal"
	"github.com/stripe/stripe-go/v76/transfer"
)

// StripeGateway is the production Gateway backed by Stripe. The package-level
// stripe.Key must be set before use (done at startup).
type StripeGateway struct{}

// NewStripeGateway constructs the Stripe-backed gateway.
func NewStripeGateway() Gateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CaptureCharge(ctx context.Context, amountCents int64, currency, source, description string) (string, error) {
	params := &stripe.ChargeParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	if err := params.SetSource(source); err != nil {
		return "", fmt.Errorf("invalid payment source: %w", err)
	}
	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("charge failed: %w", err)
	}
	return ch.ID, nil
}

func (g *StripeGateway) Transfer(ctx context.Context, amountCents int64, currency, destinationAccount, idempotencyKey, description string) (string, error) {
	params := &stripe.TransferParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(idempotencyKey),
		},
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destinationAccount),
		Description: stripe.String(description),
	}
	tr, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("transfer failed: %w", err)
	}
	return tr.ID, nil
}

func (g *StripeGateway) Refund(ctx context.Context, chargeID string, amountCents int64) (string, error) {
	params := &stripe.RefundParams{
		Params: stripe.Params{Context: ctx},
		Charge: stripe.String(chargeID),
		Amount: stripe.Int64(amountCents),
	}
	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("refund failed: %w", err)
	}
	return r.ID, nil
}

func (g *StripeGateway) ReverseTransfer(ctx context.Context, transferID string, amountCents int64) (string, error) {
	params := &stripe.TransferReversalParams{
		Params: stripe.Params{Context: ctx},
		ID:     stripe.String(transferID),
		Amount: stripe.Int64(amountCents),
	}
	rev, err := reversal.New(params)
	if err != nil {
		return "", fmt.Errorf("transfer reversal failed: %w", err)
	}
	return rev.ID, nil
}

func (g *StripeGateway) GetAccountStatus(ctx context.Context, accountID string) (*models.AccountStatus, error) {
	params := &stripe.AccountParams{Params: stripe.Params{Context: ctx}}
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	return &models.AccountStatus{
		AccountID:      acct.ID,
		ChargesEnabled: acct.ChargesEnabled,
		PayoutsEnabled: acct.PayoutsEnabled,
	}, nil
}

// IsDefiniteFailure reports whether the processor definitively rejected the
// call. A false return on a non-nil error means the outcome is unknown (the
// request may have gone through) and the caller must reconcile, not retry.
func IsDefiniteFailure(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr)
}
