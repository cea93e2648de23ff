package handlers

import (
	"net/http"

	"tray/services/escrow"

	"github.com/gin-gonic/gin"
)

// EscrowHandler exposes session completion, ratings and refund review.
type EscrowHandler struct {
	Svc escrow.EscrowService
}

func NewEscrowHandler(svc escrow.EscrowService) *EscrowHandler {
	return &EscrowHandler{Svc: svc}
}

func (h *EscrowHandler) CompleteSessionHandler(c *gin.Context) {
	sc, err := h.Svc.CompleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

type ratingInput struct {
	Rating   int    `json:"rating" binding:"required"`
	Feedback string `json:"feedback"`
}

func (h *EscrowHandler) RateConsultantHandler(c *gin.Context) {
	var input ratingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	sc, err := h.Svc.RateConsultant(c.Param("id"), input.Rating, input.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *EscrowHandler) RateServiceHandler(c *gin.Context) {
	var input ratingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	sc, err := h.Svc.RateService(c.Param("id"), input.Rating, input.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *EscrowHandler) RequestRefundHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req, err := h.Svc.RequestRefund(c.Param("id"), c.GetString("userID"), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// PendingRefundsHandler lists refund requests awaiting an admin decision.
func (h *EscrowHandler) PendingRefundsHandler(c *gin.Context) {
	reqs, err := h.Svc.PendingRefunds()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refundRequests": reqs})
}

func (h *EscrowHandler) ReviewRefundHandler(c *gin.Context) {
	var input struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req, err := h.Svc.ReviewRefund(c.Request.Context(), c.Param("id"), input.Approve, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
