package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tray/config"
	bookingRepo "tray/database/repository/booking"
	"tray/models"
	booking "tray/services/booking"
	"tray/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingWriter emulates the transactional booking store: configured
// conflict and unoffered keys abort the whole create, like the mongo repo's
// in-transaction checks against existing holders and the availability spec.
type fakeBookingWriter struct {
	conflicts map[string]bool // "consultantID|date|start"
	unoffered map[string]bool // slots the consultant's spec no longer offers
	created   []*models.BookingRequest
	paid      map[string]string // bookingID -> chargeID
}

func newFakeBookingWriter() *fakeBookingWriter {
	return &fakeBookingWriter{
		conflicts: make(map[string]bool),
		unoffered: make(map[string]bool),
		paid:      make(map[string]string),
	}
}

func (f *fakeBookingWriter) GetByID(id string) (*models.BookingRequest, error) {
	for _, b := range f.created {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("booking %s not found", id)
}
func (f *fakeBookingWriter) FindByStudent(string) ([]models.BookingRequest, error)    { return nil, nil }
func (f *fakeBookingWriter) FindByConsultant(string) ([]models.BookingRequest, error) { return nil, nil }
func (f *fakeBookingWriter) FindHeldSlots(string) ([]models.Slot, error)              { return nil, nil }
func (f *fakeBookingWriter) HasConflict(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (f *fakeBookingWriter) CreateAllTransactionally(_ context.Context, bookings []*models.BookingRequest) ([]models.Slot, error) {
	var conflicting []models.Slot
	for _, b := range bookings {
		key := b.ConsultantID + "|" + b.Date + "|" + b.StartTime
		if f.conflicts[key] || f.unoffered[key] {
			conflicting = append(conflicting, b.SlotRef())
		}
	}
	if len(conflicting) > 0 {
		return conflicting, bookingRepo.ErrSlotConflict
	}
	f.created = append(f.created, bookings...)
	return nil, nil
}
func (f *fakeBookingWriter) AcceptTransactionally(context.Context, string) error { return nil }
func (f *fakeBookingWriter) UpdateStatus(string, string, string) error           { return nil }
func (f *fakeBookingWriter) MarkPaid(_ context.Context, ids []string, chargeID string) error {
	for _, id := range ids {
		f.paid[id] = chargeID
	}
	return nil
}
func (f *fakeBookingWriter) SetPayoutEligible(string, bool) error { return nil }
func (f *fakeBookingWriter) MarkRefunded(string) error            { return nil }
func (f *fakeBookingWriter) FindPayoutEligible(context.Context) ([]models.BookingRequest, error) {
	return nil, nil
}

type fakeLedger struct {
	txns []*models.PaymentTransaction
}

func (f *fakeLedger) Create(txn *models.PaymentTransaction) error {
	f.txns = append(f.txns, txn)
	return nil
}
func (f *fakeLedger) GetByChargeID(string) (*models.PaymentTransaction, error) {
	return nil, errors.New("not found")
}
func (f *fakeLedger) MarkRefunded(string) error                                 { return nil }
func (f *fakeLedger) ListByStudent(string) ([]models.PaymentTransaction, error) { return nil, nil }

type captureGateway struct {
	declineCharge bool
	captured      []int64
}

func (g *captureGateway) CaptureCharge(_ context.Context, amountCents int64, _, _, _ string) (string, error) {
	if g.declineCharge {
		return "", errors.New("card declined")
	}
	g.captured = append(g.captured, amountCents)
	return "ch_ok", nil
}
func (g *captureGateway) Transfer(context.Context, int64, string, string, string, string) (string, error) {
	return "tr_test", nil
}
func (g *captureGateway) Refund(context.Context, string, int64) (string, error) {
	return "re_test", nil
}
func (g *captureGateway) ReverseTransfer(context.Context, string, int64) (string, error) {
	return "trr_test", nil
}
func (g *captureGateway) GetAccountStatus(context.Context, string) (*models.AccountStatus, error) {
	return &models.AccountStatus{ChargesEnabled: true, PayoutsEnabled: true}, nil
}

func newCheckoutService() (*DefaultCartService, *fakeBookingWriter, *fakeLedger, *captureGateway) {
	writer := newFakeBookingWriter()
	ledger := &fakeLedger{}
	gateway := &captureGateway{}
	svc := &DefaultCartService{
		Store:    newMemoryCartStore(),
		Checker:  &fakeFinder{},
		Bookings: writer,
		Payments: ledger,
		Gateway:  gateway,
		Events:   events.NopPublisher{},
	}
	return svc, writer, ledger, gateway
}

func TestCheckoutCreatesPaidBookingsAndClearsCart(t *testing.T) {
	config.AppConfig.Currency = "usd"
	svc, writer, ledger, gateway := newCheckoutService()

	_, err := svc.AddSlots("student-1", lineItem("cons-1", 49.99,
		slot("2026-09-01", "09:00 AM"),
		slot("2026-09-02", "10:00 AM"),
	))
	require.NoError(t, err)

	created, err := svc.Checkout(context.Background(), "student-1", "tok_visa", nil)
	require.NoError(t, err)
	require.Len(t, created, 2)

	for _, b := range created {
		assert.Equal(t, models.BookingPending, b.Status)
		assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
		assert.Equal(t, "ch_ok", b.ChargeID)
		assert.Equal(t, "ch_ok", writer.paid[b.ID])
	}

	require.Len(t, gateway.captured, 1)
	assert.Equal(t, int64(9998), gateway.captured[0], "two 49.99 slots charge 99.98")

	require.Len(t, ledger.txns, 1)
	assert.Equal(t, 99.98, ledger.txns[0].Amount)
	assert.Len(t, ledger.txns[0].BookingIDs, 2)

	cart, err := svc.GetCart("student-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutAllOrNothingOnConflict(t *testing.T) {
	config.AppConfig.Currency = "usd"
	svc, writer, _, gateway := newCheckoutService()

	_, err := svc.AddSlots("student-1", lineItem("cons-1", 50,
		slot("2026-09-01", "09:00 AM"),
		slot("2026-09-01", "10:00 AM"),
		slot("2026-09-02", "09:00 AM"),
		slot("2026-09-02", "10:00 AM"),
	))
	require.NoError(t, err)
	writer.conflicts["cons-1|2026-09-02|10:00 AM"] = true

	_, err = svc.Checkout(context.Background(), "student-1", "tok_visa", nil)
	var conflictErr *booking.SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Slots, 1)
	assert.Equal(t, "2026-09-02", conflictErr.Slots[0].Date)
	assert.Equal(t, "10:00 AM", conflictErr.Slots[0].StartTime)

	assert.Empty(t, writer.created, "no partial bookings on conflict")
	assert.Empty(t, gateway.captured, "no partial charges on conflict")

	cart, err := svc.GetCart("student-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "cart survives a failed checkout")
}

func TestCheckoutRejectsUnofferedSlot(t *testing.T) {
	config.AppConfig.Currency = "usd"
	svc, writer, _, gateway := newCheckoutService()

	_, err := svc.AddSlots("student-1", lineItem("cons-1", 50,
		slot("2026-09-01", "09:00 AM"),
		slot("2026-09-01", "11:00 AM"),
	))
	require.NoError(t, err)
	// The consultant withdrew the 11:00 slot after it was carted.
	writer.unoffered["cons-1|2026-09-01|11:00 AM"] = true

	_, err = svc.Checkout(context.Background(), "student-1", "tok_visa", nil)
	var conflictErr *booking.SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Slots, 1)
	assert.Equal(t, "2026-09-01", conflictErr.Slots[0].Date)
	assert.Equal(t, "11:00 AM", conflictErr.Slots[0].StartTime)

	assert.Empty(t, writer.created, "no bookings when a slot is no longer offered")
	assert.Empty(t, gateway.captured, "no charge when a slot is no longer offered")
}

func TestCheckoutCaptureFailureLeavesBookingsUnpaid(t *testing.T) {
	config.AppConfig.Currency = "usd"
	svc, writer, ledger, gateway := newCheckoutService()
	gateway.declineCharge = true

	_, err := svc.AddSlots("student-1", lineItem("cons-1", 50, slot("2026-09-01", "09:00 AM")))
	require.NoError(t, err)

	created, err := svc.Checkout(context.Background(), "student-1", "tok_visa", nil)
	var captureErr *PaymentCaptureError
	require.ErrorAs(t, err, &captureErr)

	require.Len(t, created, 1)
	assert.Equal(t, models.PaymentUnpaid, created[0].PaymentStatus)
	assert.Empty(t, writer.paid)
	assert.Empty(t, ledger.txns)
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	svc, _, _, _ := newCheckoutService()
	_, err := svc.Checkout(context.Background(), "student-1", "tok_visa", nil)
	assert.Error(t, err)
}
