package payout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tray/config"
	"tray/models"
	"tray/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

// ---- in-memory fakes ----

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*models.BookingRequest
}

func newFakeBookingStore(bookings ...*models.BookingRequest) *fakeBookingStore {
	st := &fakeBookingStore{bookings: make(map[string]*models.BookingRequest)}
	for _, b := range bookings {
		st.bookings[b.ID] = b
	}
	return st
}

func (st *fakeBookingStore) GetByID(id string) (*models.BookingRequest, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	b, ok := st.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (st *fakeBookingStore) FindByStudent(string) ([]models.BookingRequest, error)    { return nil, nil }
func (st *fakeBookingStore) FindByConsultant(string) ([]models.BookingRequest, error) { return nil, nil }
func (st *fakeBookingStore) FindHeldSlots(string) ([]models.Slot, error)              { return nil, nil }
func (st *fakeBookingStore) HasConflict(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (st *fakeBookingStore) CreateAllTransactionally(context.Context, []*models.BookingRequest) ([]models.Slot, error) {
	return nil, nil
}
func (st *fakeBookingStore) AcceptTransactionally(context.Context, string) error { return nil }
func (st *fakeBookingStore) UpdateStatus(id, status, paymentStatus string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	b := st.bookings[id]
	b.Status = status
	b.PaymentStatus = paymentStatus
	return nil
}
func (st *fakeBookingStore) MarkPaid(context.Context, []string, string) error { return nil }
func (st *fakeBookingStore) SetPayoutEligible(id string, eligible bool) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bookings[id].PayoutEligible = eligible
	return nil
}
func (st *fakeBookingStore) MarkRefunded(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bookings[id].PaymentStatus = models.PaymentRefunded
	st.bookings[id].PayoutEligible = false
	return nil
}
func (st *fakeBookingStore) FindPayoutEligible(context.Context) ([]models.BookingRequest, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.BookingRequest
	for _, b := range st.bookings {
		if b.PaymentStatus == models.PaymentPaid && !b.PaymentTransferred && b.PayoutEligible &&
			(b.Status == models.BookingCompleted || b.Status == models.BookingAccepted) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakePayoutStore struct {
	mu       sync.Mutex
	bookings *fakeBookingStore
	intents  map[string]*models.TransferIntent
	batches  []models.PayoutBatch
}

func newFakePayoutStore(bookings *fakeBookingStore) *fakePayoutStore {
	return &fakePayoutStore{bookings: bookings, intents: make(map[string]*models.TransferIntent)}
}

func (st *fakePayoutStore) CreateIntent(_ context.Context, intent *models.TransferIntent) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	copied := *intent
	st.intents[intent.ID] = &copied
	return nil
}

func (st *fakePayoutStore) RecordTransferID(_ context.Context, intentID, transferID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.intents[intentID].TransferID = transferID
	return nil
}

func (st *fakePayoutStore) MarkIntentFailed(_ context.Context, intentID, reason string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.intents[intentID].Status = models.IntentFailed
	st.intents[intentID].FailureReason = reason
	return nil
}

func (st *fakePayoutStore) FindOpenIntents(_ context.Context, consultantID string) ([]models.TransferIntent, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.TransferIntent
	for _, intent := range st.intents {
		if intent.ConsultantID == consultantID && intent.Status == models.IntentInitiated {
			out = append(out, *intent)
		}
	}
	return out, nil
}

func (st *fakePayoutStore) FindAllOpenIntents(context.Context) ([]models.TransferIntent, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.TransferIntent
	for _, intent := range st.intents {
		if intent.Status == models.IntentInitiated {
			out = append(out, *intent)
		}
	}
	return out, nil
}

// FinalizeBatch mirrors the production transaction: all bookings must still
// be paid and untransferred or nothing is written.
func (st *fakePayoutStore) FinalizeBatch(_ context.Context, batch *models.PayoutBatch, intentID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bookings.mu.Lock()
	defer st.bookings.mu.Unlock()

	for _, id := range batch.BookingIDs {
		b, ok := st.bookings.bookings[id]
		if !ok || b.PaymentStatus != models.PaymentPaid || b.PaymentTransferred {
			return fmt.Errorf("booking %s no longer transferable", id)
		}
	}
	for _, id := range batch.BookingIDs {
		b := st.bookings.bookings[id]
		b.PaymentTransferred = true
		b.TransferID = batch.TransferID
		b.PayoutBatchID = batch.ID
	}
	st.batches = append(st.batches, *batch)
	st.intents[intentID].Status = models.IntentCompleted
	return nil
}

func (st *fakePayoutStore) GetBatch(batchID string) (*models.PayoutBatch, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.batches {
		if st.batches[i].ID == batchID {
			return &st.batches[i], nil
		}
	}
	return nil, fmt.Errorf("payout batch %s not found", batchID)
}

func (st *fakePayoutStore) ListByConsultant(consultantID string) ([]models.PayoutBatch, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []models.PayoutBatch
	for _, b := range st.batches {
		if b.ConsultantID == consultantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (st *fakePayoutStore) RevenueSummary(context.Context) (*models.RevenueSummary, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	summary := &models.RevenueSummary{BatchCount: len(st.batches)}
	for _, b := range st.batches {
		summary.TotalRevenue += b.TotalEarnings
		summary.PlatformFees += b.PlatformFee
		summary.ConsultantPayouts += b.TransferAmount
	}
	return summary, nil
}

type fakeConsultants struct {
	consultants map[string]*models.Consultant
}

func (f *fakeConsultants) GetByID(id string) (*models.Consultant, error) {
	c, ok := f.consultants[id]
	if !ok {
		return nil, fmt.Errorf("consultant %s not found", id)
	}
	return c, nil
}
func (f *fakeConsultants) Upsert(*models.Consultant) error          { return nil }
func (f *fakeConsultants) SetStripeAccountID(string, string) error  { return nil }

type fakeSettings struct{ feePercent float64 }

func (f *fakeSettings) Get() (*models.PlatformSettings, error) {
	return &models.PlatformSettings{ID: "platform", FeePercent: f.feePercent}, nil
}
func (f *fakeSettings) SetFeePercent(float64, string) error { return nil }

type transferCall struct {
	amountCents int64
	destination string
	key         string
}

type fakeGateway struct {
	mu            sync.Mutex
	transfers     []transferCall
	notReady      map[string]bool
	declineNext   bool
	timeoutNext   bool
	transferSeq   int
}

func (g *fakeGateway) CaptureCharge(context.Context, int64, string, string, string) (string, error) {
	return "ch_test", nil
}

func (g *fakeGateway) Transfer(_ context.Context, amountCents int64, _, destination, key, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.declineNext {
		g.declineNext = false
		return "", fmt.Errorf("transfer failed: %w", &stripe.Error{Msg: "insufficient platform balance"})
	}
	if g.timeoutNext {
		g.timeoutNext = false
		return "", errors.New("transfer failed: context deadline exceeded")
	}
	// Same idempotency key returns the same transfer reference.
	for i, call := range g.transfers {
		if call.key == key {
			return fmt.Sprintf("tr_%d", i+1), nil
		}
	}
	g.transfers = append(g.transfers, transferCall{amountCents: amountCents, destination: destination, key: key})
	g.transferSeq++
	return fmt.Sprintf("tr_%d", g.transferSeq), nil
}

func (g *fakeGateway) Refund(context.Context, string, int64) (string, error) {
	return "re_test", nil
}

func (g *fakeGateway) ReverseTransfer(context.Context, string, int64) (string, error) {
	return "trr_test", nil
}

func (g *fakeGateway) GetAccountStatus(_ context.Context, accountID string) (*models.AccountStatus, error) {
	ready := !g.notReady[accountID]
	return &models.AccountStatus{AccountID: accountID, ChargesEnabled: ready, PayoutsEnabled: ready}, nil
}

type fakeLock struct {
	mu   sync.Mutex
	held bool
}

func (l *fakeLock) Acquire() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
}

// ---- helpers ----

func eligibleBooking(id, consultantID string, amount float64) *models.BookingRequest {
	return &models.BookingRequest{
		ID:             id,
		StudentID:      "student-1",
		ConsultantID:   consultantID,
		ServiceID:      "svc-1",
		Date:           "2026-09-01",
		StartTime:      "09:00 AM",
		Amount:         amount,
		Status:         models.BookingCompleted,
		PaymentStatus:  models.PaymentPaid,
		PayoutEligible: true,
		ChargeID:       "ch_test",
	}
}

func newService(bookings *fakeBookingStore, feePercent float64) (*DefaultPayoutService, *fakePayoutStore, *fakeGateway) {
	payouts := newFakePayoutStore(bookings)
	gateway := &fakeGateway{notReady: make(map[string]bool)}
	svc := &DefaultPayoutService{
		Payouts:  payouts,
		Bookings: bookings,
		Consultants: &fakeConsultants{consultants: map[string]*models.Consultant{
			"cons-1": {ID: "cons-1", Name: "Ada", StripeAccountID: "acct_1"},
			"cons-2": {ID: "cons-2", Name: "Grace", StripeAccountID: "acct_2"},
		}},
		Settings: &fakeSettings{feePercent: feePercent},
		Gateway:  gateway,
		Events:   events.NopPublisher{},
		Lock:     &fakeLock{},
	}
	return svc, payouts, gateway
}

// ---- tests ----

func TestRunTransfersAndMarksBookings(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(
		eligibleBooking("b1", "cons-1", 60),
		eligibleBooking("b2", "cons-1", 40),
	)
	svc, payouts, gateway := newService(bookings, 10)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, int64(9000), gateway.transfers[0].amountCents)
	assert.Equal(t, "acct_1", gateway.transfers[0].destination)

	require.Len(t, payouts.batches, 1)
	batch := payouts.batches[0]
	assert.ElementsMatch(t, []string{"b1", "b2"}, batch.BookingIDs)
	assert.Equal(t, int64(1000), batch.PlatformFee)
	assert.Equal(t, int64(9000), batch.TransferAmount)

	for _, id := range []string{"b1", "b2"} {
		b, _ := bookings.GetByID(id)
		assert.True(t, b.PaymentTransferred)
		assert.Equal(t, batch.ID, b.PayoutBatchID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(eligibleBooking("b1", "cons-1", 50))
	svc, payouts, gateway := newService(bookings, 10)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)

	assert.Len(t, gateway.transfers, 1)
	assert.Len(t, payouts.batches, 1)
}

func TestRunSkipsUnreleasedBookings(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	unrated := eligibleBooking("b1", "cons-1", 80)
	unrated.PayoutEligible = false
	refunded := eligibleBooking("b2", "cons-1", 80)
	refunded.PaymentStatus = models.PaymentRefunded

	bookings := newFakeBookingStore(unrated, refunded)
	svc, _, gateway := newService(bookings, 10)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, gateway.transfers)
}

func TestRunMinimumPayoutCarryover(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(eligibleBooking("b1", "cons-1", 5))
	svc, _, gateway := newService(bookings, 10)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, gateway.transfers)

	b, _ := bookings.GetByID("b1")
	assert.False(t, b.PaymentTransferred, "carried-over bookings stay in the next run's window")

	// A second session pushes the consultant over the minimum.
	st := eligibleBooking("b2", "cons-1", 6)
	bookings.mu.Lock()
	bookings.bookings["b2"] = st
	bookings.mu.Unlock()

	summary, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, int64(990), gateway.transfers[0].amountCents) // 11.00 minus 10%
}

func TestRunIsolatesConsultantFailures(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(
		eligibleBooking("b1", "cons-1", 50),
		eligibleBooking("b2", "cons-2", 70),
	)
	svc, payouts, gateway := newService(bookings, 10)
	gateway.declineNext = true // first consultant's transfer is rejected

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)

	// The declined consultant's intent is closed, the other's batch landed.
	require.Len(t, payouts.batches, 1)
	assert.Equal(t, "cons-2", payouts.batches[0].ConsultantID)
	var failedIntents int
	for _, intent := range payouts.intents {
		if intent.Status == models.IntentFailed {
			failedIntents++
		}
	}
	assert.Equal(t, 1, failedIntents)
}

func TestRunSkipsUnreadyAccount(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(eligibleBooking("b1", "cons-1", 50))
	svc, _, gateway := newService(bookings, 10)
	gateway.notReady["acct_1"] = true

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, gateway.transfers)
}

func TestRunRefusedWhileLocked(t *testing.T) {
	bookings := newFakeBookingStore()
	svc, _, _ := newService(bookings, 10)
	svc.Lock.(*fakeLock).held = true

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunResumesIntentWithTransferReference(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	b := eligibleBooking("b1", "cons-1", 50)
	bookings := newFakeBookingStore(b)
	svc, payouts, gateway := newService(bookings, 10)

	// A previous run sent the transfer but crashed before finalizing.
	intent := &models.TransferIntent{
		ID:             "intent-1",
		ConsultantID:   "cons-1",
		BookingIDs:     []string{"b1"},
		TotalEarnings:  50,
		PlatformFee:    500,
		TransferAmount: 4500,
		FeePercent:     10,
		Status:         models.IntentInitiated,
		TransferID:     "tr_prev",
	}
	require.NoError(t, payouts.CreateIntent(context.Background(), intent))

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	// No new transfer goes out; the leftover intent is finalized instead.
	assert.Empty(t, gateway.transfers)
	assert.Equal(t, 0, summary.Processed)
	require.Len(t, payouts.batches, 1)
	assert.Equal(t, "tr_prev", payouts.batches[0].TransferID)
	assert.Equal(t, models.IntentCompleted, payouts.intents["intent-1"].Status)

	got, _ := bookings.GetByID("b1")
	assert.True(t, got.PaymentTransferred)
}

func TestRunBlocksConsultantOnUnknownOutcome(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(eligibleBooking("b1", "cons-1", 50))
	svc, payouts, gateway := newService(bookings, 10)

	// A previous run's transfer outcome is unknown: intent open, no
	// reference.
	intent := &models.TransferIntent{
		ID:           "intent-1",
		ConsultantID: "cons-1",
		BookingIDs:   []string{"b1"},
		Status:       models.IntentInitiated,
	}
	require.NoError(t, payouts.CreateIntent(context.Background(), intent))

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, gateway.transfers, "no transfer may go out until the intent is reconciled")
}

func TestRunTimeoutLeavesIntentOpen(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	bookings := newFakeBookingStore(eligibleBooking("b1", "cons-1", 50))
	svc, payouts, gateway := newService(bookings, 10)
	gateway.timeoutNext = true

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	var open int
	for _, intent := range payouts.intents {
		if intent.Status == models.IntentInitiated {
			open++
		}
	}
	assert.Equal(t, 1, open, "an unknown outcome must not close the intent")

	// The next run refuses to re-transfer for this consultant.
	summary, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, gateway.transfers)
}

func TestRunRefusesRefundedBookingInBatch(t *testing.T) {
	config.AppConfig.MinimumPayoutAmount = 10
	config.AppConfig.Currency = "usd"

	b := eligibleBooking("b1", "cons-1", 50)
	bookings := newFakeBookingStore(b)
	svc, payouts, _ := newService(bookings, 10)

	// Leftover intent holds a transfer reference, but the booking was
	// refunded after the crash. Finalization must refuse rather than mark
	// a refunded booking transferred.
	require.NoError(t, bookings.MarkRefunded("b1"))
	intent := &models.TransferIntent{
		ID:           "intent-1",
		ConsultantID: "cons-1",
		BookingIDs:   []string{"b1"},
		Status:       models.IntentInitiated,
		TransferID:   "tr_prev",
	}
	require.NoError(t, payouts.CreateIntent(context.Background(), intent))

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, payouts.batches)
	assert.Equal(t, models.IntentInitiated, payouts.intents["intent-1"].Status)
}
