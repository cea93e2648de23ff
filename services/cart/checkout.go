package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tray/config"
	bookingRepo "tray/database/repository/booking"
	"tray/models"
	booking "tray/services/booking"
	"tray/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Checkout turns the selected line items into booking requests and captures
// one charge for the whole batch. If any slot in the batch conflicts, nothing
// is created and the conflicting slots are returned. If the charge fails, the
// bookings remain pending and unpaid.
func (s *DefaultCartService) Checkout(ctx context.Context, studentID, sourceToken string, itemIDs []string) ([]models.BookingRequest, error) {
	logger := utils.GetLogger()

	cart, err := s.Store.Get(studentID)
	if err != nil {
		return nil, err
	}
	items, err := selectItems(cart, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	now := time.Now()
	var toCreate []*models.BookingRequest
	var totalCents int64
	for _, item := range items {
		for _, slot := range item.Slots {
			toCreate = append(toCreate, &models.BookingRequest{
				ID:            uuid.New().String(),
				StudentID:     studentID,
				ConsultantID:  item.ConsultantID,
				ServiceID:     item.ServiceID,
				Date:          slot.Date,
				StartTime:     slot.StartTime,
				EndTime:       slot.EndTime,
				Amount:        item.PricePerSlot,
				Status:        models.BookingPending,
				PaymentStatus: models.PaymentUnpaid,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			totalCents += int64(math.Round(item.PricePerSlot * 100))
		}
	}

	conflicting, err := s.Bookings.CreateAllTransactionally(ctx, toCreate)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrSlotConflict) {
			return nil, &booking.SlotConflictError{Slots: conflicting}
		}
		return nil, err
	}

	ids := make([]string, len(toCreate))
	created := make([]models.BookingRequest, len(toCreate))
	for i, b := range toCreate {
		ids[i] = b.ID
		created[i] = *b
	}

	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	chargeID, err := s.Gateway.CaptureCharge(callCtx, totalCents, config.AppConfig.Currency, sourceToken,
		fmt.Sprintf("checkout of %d session(s) for student %s", len(ids), studentID))
	cancel()
	if err != nil {
		logger.Warn("charge failed at checkout, bookings left unpaid",
			zap.String("studentID", studentID),
			zap.Int("bookings", len(ids)),
			zap.Error(err),
		)
		return created, &PaymentCaptureError{Err: err}
	}

	if err := s.Bookings.MarkPaid(ctx, ids, chargeID); err != nil {
		return nil, fmt.Errorf("charge %s captured but bookings not marked paid: %w", chargeID, err)
	}
	for i := range created {
		created[i].PaymentStatus = models.PaymentPaid
		created[i].ChargeID = chargeID
	}

	txn := &models.PaymentTransaction{
		ID:         uuid.New().String(),
		ChargeID:   chargeID,
		StudentID:  studentID,
		BookingIDs: ids,
		Amount:     float64(totalCents) / 100,
		Currency:   config.AppConfig.Currency,
		Status:     models.PaymentPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Payments.Create(txn); err != nil {
		logger.Error("failed to record payment ledger entry",
			zap.String("chargeID", chargeID), zap.Error(err))
	}

	s.clearCheckedOut(cart, items)

	logger.Info("checkout complete",
		zap.String("studentID", studentID),
		zap.Int("bookings", len(ids)),
		zap.Int64("totalCents", totalCents),
		zap.String("chargeID", chargeID),
	)
	return created, nil
}

// selectItems resolves the requested item ids, or the whole cart when none
// are given.
func selectItems(cart *models.Cart, itemIDs []string) ([]models.CartLineItem, error) {
	if len(itemIDs) == 0 {
		return cart.Items, nil
	}
	byID := make(map[string]models.CartLineItem, len(cart.Items))
	for _, it := range cart.Items {
		byID[it.ID] = it
	}
	items := make([]models.CartLineItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		it, ok := byID[id]
		if !ok {
			return nil, ErrItemNotFound
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *DefaultCartService) clearCheckedOut(cart *models.Cart, checkedOut []models.CartLineItem) {
	logger := utils.GetLogger()
	gone := make(map[string]bool, len(checkedOut))
	for _, it := range checkedOut {
		gone[it.ID] = true
	}
	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if !gone[it.ID] {
			kept = append(kept, it)
		}
	}
	cart.Items = kept

	var err error
	if len(cart.Items) == 0 {
		err = s.Store.Delete(cart.StudentID)
	} else {
		err = s.Store.Save(cart)
	}
	if err != nil {
		logger.Warn("failed to clear cart after checkout",
			zap.String("studentID", cart.StudentID), zap.Error(err))
	}
}
