package handlers

import (
	"errors"
	"net/http"

	"tray/services/booking"
	"tray/services/cart"
	"tray/services/escrow"
	"tray/services/payout"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Slot conflicts carry
// the losing slots so the client can re-render the picker.
func respondError(c *gin.Context, err error) {
	var conflictErr *booking.SlotConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":            "slot conflict",
			"conflictingSlots": conflictErr.Slots,
		})
		return
	}

	var captureErr *cart.PaymentCaptureError
	if errors.As(err, &captureErr) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": captureErr.Error()})
		return
	}

	var transitionErr *booking.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
		return
	}

	var ratingErr *escrow.InvalidRatingStateError
	if errors.As(err, &ratingErr) {
		c.JSON(http.StatusConflict, gin.H{"error": ratingErr.Error()})
		return
	}

	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrNoSlotsAvailable),
		errors.Is(err, cart.ErrLastSlot),
		errors.Is(err, booking.ErrUseRefundPath):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, payout.ErrRunInProgress),
		errors.Is(err, escrow.ErrRefundAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
