package handlers

import (
	"net/http"

	paymentRepo "tray/database/repository/payment"
	settingsRepo "tray/database/repository/settings"
	"tray/services/payout"

	"github.com/gin-gonic/gin"
)

// PayoutHandler exposes payout runs, history and platform administration.
type PayoutHandler struct {
	Svc      payout.PayoutService
	Payments paymentRepo.PaymentRepository
	Settings settingsRepo.SettingsRepository
}

func NewPayoutHandler(svc payout.PayoutService, payments paymentRepo.PaymentRepository, settings settingsRepo.SettingsRepository) *PayoutHandler {
	return &PayoutHandler{Svc: svc, Payments: payments, Settings: settings}
}

// RunPayoutsHandler triggers one sweep on demand. The scheduler runs the same
// code nightly.
func (h *PayoutHandler) RunPayoutsHandler(c *gin.Context) {
	summary, err := h.Svc.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PayoutHistoryHandler lists the calling consultant's settled batches.
func (h *PayoutHandler) PayoutHistoryHandler(c *gin.Context) {
	batches, err := h.Svc.History(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

func (h *PayoutHandler) RevenueSummaryHandler(c *gin.Context) {
	summary, err := h.Svc.Revenue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PaymentHistoryHandler lists the calling student's charges.
func (h *PayoutHandler) PaymentHistoryHandler(c *gin.Context) {
	txns, err := h.Payments.ListByStudent(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h *PayoutHandler) GetSettingsHandler(c *gin.Context) {
	settings, err := h.Settings.Get()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *PayoutHandler) UpdateFeePercentHandler(c *gin.Context) {
	var input struct {
		FeePercent float64 `json:"feePercent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.FeePercent < 0 || input.FeePercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fee percent must be between 0 and 100"})
		return
	}
	if err := h.Settings.SetFeePercent(input.FeePercent, c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}
	settings, err := h.Settings.Get()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
