package escrow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tray/models"
	"tray/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

type fakeBookings struct {
	bookings map[string]*models.BookingRequest
}

func (f *fakeBookings) GetByID(id string) (*models.BookingRequest, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	copied := *b
	return &copied, nil
}
func (f *fakeBookings) FindByStudent(string) ([]models.BookingRequest, error)    { return nil, nil }
func (f *fakeBookings) FindByConsultant(string) ([]models.BookingRequest, error) { return nil, nil }
func (f *fakeBookings) FindHeldSlots(string) ([]models.Slot, error)              { return nil, nil }
func (f *fakeBookings) HasConflict(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (f *fakeBookings) CreateAllTransactionally(context.Context, []*models.BookingRequest) ([]models.Slot, error) {
	return nil, nil
}
func (f *fakeBookings) AcceptTransactionally(context.Context, string) error { return nil }
func (f *fakeBookings) UpdateStatus(id, status, paymentStatus string) error {
	f.bookings[id].Status = status
	f.bookings[id].PaymentStatus = paymentStatus
	return nil
}
func (f *fakeBookings) MarkPaid(context.Context, []string, string) error { return nil }
func (f *fakeBookings) SetPayoutEligible(id string, eligible bool) error {
	f.bookings[id].PayoutEligible = eligible
	return nil
}
func (f *fakeBookings) MarkRefunded(id string) error {
	f.bookings[id].PaymentStatus = models.PaymentRefunded
	f.bookings[id].PayoutEligible = false
	return nil
}
func (f *fakeBookings) FindPayoutEligible(context.Context) ([]models.BookingRequest, error) {
	return nil, nil
}

type fakeCompletions struct {
	completions map[string]*models.SessionCompletion
	refunds     map[string]*models.RefundRequest
}

func newFakeCompletions() *fakeCompletions {
	return &fakeCompletions{
		completions: make(map[string]*models.SessionCompletion),
		refunds:     make(map[string]*models.RefundRequest),
	}
}

func (f *fakeCompletions) Create(sc *models.SessionCompletion) error {
	f.completions[sc.BookingID] = sc
	return nil
}
func (f *fakeCompletions) GetByBooking(bookingID string) (*models.SessionCompletion, error) {
	sc, ok := f.completions[bookingID]
	if !ok {
		return nil, fmt.Errorf("completion for booking %s not found", bookingID)
	}
	return sc, nil
}
func (f *fakeCompletions) SetConsultantRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	sc, err := f.GetByBooking(bookingID)
	if err != nil {
		return nil, err
	}
	sc.ConsultantRating = rating
	sc.ConsultantFeedback = feedback
	return sc, nil
}
func (f *fakeCompletions) SetServiceRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error) {
	sc, err := f.GetByBooking(bookingID)
	if err != nil {
		return nil, err
	}
	sc.ServiceRating = rating
	sc.ServiceFeedback = feedback
	return sc, nil
}
func (f *fakeCompletions) MarkRefundRequested(bookingID, reason string) error {
	sc, err := f.GetByBooking(bookingID)
	if err != nil {
		return err
	}
	sc.RefundRequested = true
	sc.RefundReason = reason
	return nil
}
func (f *fakeCompletions) CreateRefundRequest(req *models.RefundRequest) error {
	f.refunds[req.ID] = req
	return nil
}
func (f *fakeCompletions) GetRefundRequest(id string) (*models.RefundRequest, error) {
	req, ok := f.refunds[id]
	if !ok {
		return nil, fmt.Errorf("refund request %s not found", id)
	}
	copied := *req
	return &copied, nil
}
func (f *fakeCompletions) ResolveRefundRequest(id, status, notes, refundID string) error {
	req := f.refunds[id]
	req.Status = status
	req.AdminNotes = notes
	req.RefundID = refundID
	return nil
}
func (f *fakeCompletions) FindRefundRequests(status string) ([]models.RefundRequest, error) {
	var out []models.RefundRequest
	for _, req := range f.refunds {
		if req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

type fakePayments struct {
	txns map[string]*models.PaymentTransaction
}

func (f *fakePayments) Create(txn *models.PaymentTransaction) error {
	f.txns[txn.ChargeID] = txn
	return nil
}
func (f *fakePayments) GetByChargeID(chargeID string) (*models.PaymentTransaction, error) {
	txn, ok := f.txns[chargeID]
	if !ok {
		return nil, fmt.Errorf("payment transaction for charge %s not found", chargeID)
	}
	return txn, nil
}
func (f *fakePayments) MarkRefunded(chargeID string) error {
	f.txns[chargeID].Status = models.PaymentRefunded
	return nil
}
func (f *fakePayments) ListByStudent(string) ([]models.PaymentTransaction, error) { return nil, nil }

type fakePayouts struct {
	batches map[string]*models.PayoutBatch
}

func (f *fakePayouts) CreateIntent(context.Context, *models.TransferIntent) error     { return nil }
func (f *fakePayouts) RecordTransferID(context.Context, string, string) error         { return nil }
func (f *fakePayouts) MarkIntentFailed(context.Context, string, string) error         { return nil }
func (f *fakePayouts) FindOpenIntents(context.Context, string) ([]models.TransferIntent, error) {
	return nil, nil
}
func (f *fakePayouts) FindAllOpenIntents(context.Context) ([]models.TransferIntent, error) {
	return nil, nil
}
func (f *fakePayouts) FinalizeBatch(context.Context, *models.PayoutBatch, string) error { return nil }
func (f *fakePayouts) GetBatch(batchID string) (*models.PayoutBatch, error) {
	batch, ok := f.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("payout batch %s not found", batchID)
	}
	return batch, nil
}
func (f *fakePayouts) ListByConsultant(string) ([]models.PayoutBatch, error)       { return nil, nil }
func (f *fakePayouts) RevenueSummary(context.Context) (*models.RevenueSummary, error) {
	return nil, nil
}

type reversalCall struct {
	transferID  string
	amountCents int64
}

type fakeGateway struct {
	refunds         []string
	reversals       []reversalCall
	failNextReverse error
}

func (g *fakeGateway) CaptureCharge(context.Context, int64, string, string, string) (string, error) {
	return "ch_test", nil
}
func (g *fakeGateway) Transfer(context.Context, int64, string, string, string, string) (string, error) {
	return "tr_test", nil
}
func (g *fakeGateway) Refund(_ context.Context, chargeID string, _ int64) (string, error) {
	g.refunds = append(g.refunds, chargeID)
	return fmt.Sprintf("re_%d", len(g.refunds)), nil
}
func (g *fakeGateway) ReverseTransfer(_ context.Context, transferID string, amountCents int64) (string, error) {
	if g.failNextReverse != nil {
		err := g.failNextReverse
		g.failNextReverse = nil
		return "", err
	}
	g.reversals = append(g.reversals, reversalCall{transferID: transferID, amountCents: amountCents})
	return "trr_test", nil
}
func (g *fakeGateway) GetAccountStatus(_ context.Context, accountID string) (*models.AccountStatus, error) {
	return &models.AccountStatus{AccountID: accountID, ChargesEnabled: true, PayoutsEnabled: true}, nil
}

// ---- helpers ----

func paidBooking(id, status string) *models.BookingRequest {
	return &models.BookingRequest{
		ID:            id,
		StudentID:     "student-1",
		ConsultantID:  "cons-1",
		ServiceID:     "svc-1",
		Date:          "2026-09-01",
		StartTime:     "09:00 AM",
		Amount:        50,
		Status:        status,
		PaymentStatus: models.PaymentPaid,
		ChargeID:      "ch_test",
		CreatedAt:     time.Now(),
	}
}

func newService(bookings ...*models.BookingRequest) (*DefaultEscrowService, *fakeBookings, *fakeCompletions, *fakeGateway) {
	bk := &fakeBookings{bookings: make(map[string]*models.BookingRequest)}
	for _, b := range bookings {
		bk.bookings[b.ID] = b
	}
	completions := newFakeCompletions()
	gateway := &fakeGateway{}
	payments := &fakePayments{txns: make(map[string]*models.PaymentTransaction)}
	svc := &DefaultEscrowService{
		Completions: completions,
		Bookings:    bk,
		Payments:    payments,
		Payouts:     &fakePayouts{batches: make(map[string]*models.PayoutBatch)},
		Gateway:     gateway,
		Events:      events.NopPublisher{},
	}
	return svc, bk, completions, gateway
}

// ---- tests ----

func TestCompleteSessionRequiresAccepted(t *testing.T) {
	svc, _, _, _ := newService(paidBooking("b1", models.BookingPending))

	_, err := svc.CompleteSession(context.Background(), "b1")
	assert.Error(t, err)
}

func TestCompleteSessionOpensRatingRecord(t *testing.T) {
	svc, bk, _, _ := newService(paidBooking("b1", models.BookingAccepted))

	sc, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", sc.BookingID)
	assert.Equal(t, models.BookingCompleted, bk.bookings["b1"].Status)

	// Completing twice is harmless.
	again, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, sc.ID, again.ID)
}

func TestRatingRejectedOutsideCompletedPaid(t *testing.T) {
	svc, _, _, _ := newService(
		paidBooking("accepted", models.BookingAccepted),
		paidBooking("completed", models.BookingCompleted),
	)
	svc.Bookings.(*fakeBookings).bookings["completed"].PaymentStatus = models.PaymentRefunded

	_, err := svc.RateConsultant("accepted", 5, "great")
	var ratingErr *InvalidRatingStateError
	assert.ErrorAs(t, err, &ratingErr)

	_, err = svc.RateService("completed", 5, "")
	assert.ErrorAs(t, err, &ratingErr)
}

func TestRatingBoundsChecked(t *testing.T) {
	svc, _, _, _ := newService(paidBooking("b1", models.BookingAccepted))
	_, _ = svc.CompleteSession(context.Background(), "b1")

	_, err := svc.RateConsultant("b1", 0, "")
	assert.Error(t, err)
	_, err = svc.RateService("b1", 6, "")
	assert.Error(t, err)
}

func TestDualRatingReleasesFunds(t *testing.T) {
	svc, bk, _, _ := newService(paidBooking("b1", models.BookingAccepted))
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)

	_, err = svc.RateConsultant("b1", 5, "insightful")
	require.NoError(t, err)
	assert.False(t, bk.bookings["b1"].PayoutEligible, "one rating must not release funds")

	sc, err := svc.RateService("b1", 4, "")
	require.NoError(t, err)
	assert.True(t, sc.FullyRated())
	assert.True(t, bk.bookings["b1"].PayoutEligible)
	assert.False(t, bk.bookings["b1"].PaymentTransferred, "release only marks eligibility")
}

func TestDualRatingReleaseIsOrderIndependent(t *testing.T) {
	svc, bk, _, _ := newService(paidBooking("b1", models.BookingAccepted))
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)

	_, err = svc.RateService("b1", 4, "")
	require.NoError(t, err)
	assert.False(t, bk.bookings["b1"].PayoutEligible)

	_, err = svc.RateConsultant("b1", 5, "")
	require.NoError(t, err)
	assert.True(t, bk.bookings["b1"].PayoutEligible)
}

func TestRequestRefundOnlyAfterCompletion(t *testing.T) {
	svc, _, _, _ := newService(paidBooking("b1", models.BookingAccepted))

	_, err := svc.RequestRefund("b1", "student-1", "no show")
	assert.Error(t, err)
}

func TestApprovedRefundExcludesBookingFromPayout(t *testing.T) {
	svc, bk, completions, gateway := newService(paidBooking("b1", models.BookingAccepted))
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)
	bk.bookings["b1"].PayoutEligible = true

	req, err := svc.RequestRefund("b1", "student-1", "no show")
	require.NoError(t, err)
	assert.Equal(t, models.RefundPending, req.Status)

	resolved, err := svc.ReviewRefund(context.Background(), req.ID, true, "confirmed no-show")
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, resolved.Status)
	assert.NotEmpty(t, resolved.RefundID)

	assert.Equal(t, []string{"ch_test"}, gateway.refunds)
	assert.Empty(t, gateway.reversals, "nothing was transferred yet, nothing to claw back")
	assert.Equal(t, models.PaymentRefunded, bk.bookings["b1"].PaymentStatus)
	assert.False(t, bk.bookings["b1"].PayoutEligible)

	// Double review is refused.
	_, err = svc.ReviewRefund(context.Background(), req.ID, true, "")
	assert.ErrorIs(t, err, ErrRefundAlreadyResolved)
	assert.Len(t, completions.refunds, 1)
}

func TestDeniedRefundKeepsEligibility(t *testing.T) {
	svc, bk, _, gateway := newService(paidBooking("b1", models.BookingAccepted))
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)
	bk.bookings["b1"].PayoutEligible = true

	req, err := svc.RequestRefund("b1", "student-1", "changed my mind")
	require.NoError(t, err)

	resolved, err := svc.ReviewRefund(context.Background(), req.ID, false, "session took place")
	require.NoError(t, err)
	assert.Equal(t, models.RefundDenied, resolved.Status)
	assert.Empty(t, gateway.refunds)
	assert.Equal(t, models.PaymentPaid, bk.bookings["b1"].PaymentStatus)
	assert.True(t, bk.bookings["b1"].PayoutEligible)
}

func TestRefundAfterPayoutReversesTransfer(t *testing.T) {
	b := paidBooking("b1", models.BookingAccepted)
	svc, bk, _, gateway := newService(b)
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)

	// The booking was already swept into a batch with a 10% fee.
	bk.bookings["b1"].PaymentTransferred = true
	bk.bookings["b1"].TransferID = "tr_prev"
	bk.bookings["b1"].PayoutBatchID = "batch-1"
	svc.Payouts.(*fakePayouts).batches["batch-1"] = &models.PayoutBatch{
		ID:         "batch-1",
		FeePercent: 10,
	}

	req, err := svc.RequestRefund("b1", "student-1", "dispute")
	require.NoError(t, err)
	_, err = svc.ReviewRefund(context.Background(), req.ID, true, "upheld")
	require.NoError(t, err)

	require.Len(t, gateway.reversals, 1)
	assert.Equal(t, "tr_prev", gateway.reversals[0].transferID)
	// 50.00 booking at 10% fee: 4500 cents actually reached the consultant.
	assert.Equal(t, int64(4500), gateway.reversals[0].amountCents)
}

func TestRefundApprovalCancelsAcceptedBooking(t *testing.T) {
	svc, bk, _, gateway := newService(paidBooking("b1", models.BookingAccepted))

	// The session never took place; the student's money must still have an
	// exit while the booking sits in accepted.
	req, err := svc.RequestRefund("b1", "student-1", "consultant never showed up")
	require.NoError(t, err)

	resolved, err := svc.ReviewRefund(context.Background(), req.ID, true, "no session held")
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, resolved.Status)
	assert.Len(t, gateway.refunds, 1)
	assert.Equal(t, models.BookingCancelled, bk.bookings["b1"].Status)
	assert.Equal(t, models.PaymentRefunded, bk.bookings["b1"].PaymentStatus)
	assert.False(t, bk.bookings["b1"].PayoutEligible)
}

func TestRefundRejectedForPendingBooking(t *testing.T) {
	svc, _, _, gateway := newService(paidBooking("b1", models.BookingPending))

	_, err := svc.RequestRefund("b1", "student-1", "changed my mind")
	assert.Error(t, err)
	assert.Empty(t, gateway.refunds)
}

func TestReversalFailureStillRefundsStudent(t *testing.T) {
	b := paidBooking("b1", models.BookingAccepted)
	svc, bk, _, gateway := newService(b)
	_, err := svc.CompleteSession(context.Background(), "b1")
	require.NoError(t, err)

	bk.bookings["b1"].PaymentTransferred = true
	bk.bookings["b1"].TransferID = "tr_prev"
	bk.bookings["b1"].PayoutBatchID = "batch-1"
	svc.Payouts.(*fakePayouts).batches["batch-1"] = &models.PayoutBatch{
		ID:         "batch-1",
		FeePercent: 10,
	}
	gateway.failNextReverse = errors.New("connected account balance insufficient")

	req, err := svc.RequestRefund("b1", "student-1", "dispute")
	require.NoError(t, err)

	// The student's refund already went out when the claw-back fails, so
	// the review still resolves and the booking is marked refunded.
	resolved, err := svc.ReviewRefund(context.Background(), req.ID, true, "upheld")
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, resolved.Status)
	assert.Len(t, gateway.refunds, 1)
	assert.Empty(t, gateway.reversals)
	assert.Equal(t, models.PaymentRefunded, bk.bookings["b1"].PaymentStatus)
}
