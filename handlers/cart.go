package handlers

import (
	"net/http"

	"tray/models"
	"tray/services/cart"

	"github.com/gin-gonic/gin"
)

// CartHandler exposes the pre-checkout slot selection endpoints.
type CartHandler struct {
	Svc cart.CartService
}

func NewCartHandler(svc cart.CartService) *CartHandler {
	return &CartHandler{Svc: svc}
}

func (h *CartHandler) GetCartHandler(c *gin.Context) {
	crt, err := h.Svc.GetCart(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) AddSlotsHandler(c *gin.Context) {
	var input struct {
		ConsultantID    string        `json:"consultantId" binding:"required"`
		ServiceID       string        `json:"serviceId" binding:"required"`
		PricePerSlot    float64       `json:"pricePerSlot"`
		DurationMinutes int           `json:"durationMinutes"`
		Slots           []models.Slot `json:"slots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	crt, err := h.Svc.AddSlots(c.GetString("userID"), models.CartLineItem{
		ConsultantID:    input.ConsultantID,
		ServiceID:       input.ServiceID,
		PricePerSlot:    input.PricePerSlot,
		DurationMinutes: input.DurationMinutes,
		Slots:           input.Slots,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) IncrementSlotHandler(c *gin.Context) {
	crt, err := h.Svc.IncrementSlot(c.Request.Context(), c.GetString("userID"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) DecrementSlotHandler(c *gin.Context) {
	crt, err := h.Svc.DecrementSlot(c.GetString("userID"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

func (h *CartHandler) RemoveItemHandler(c *gin.Context) {
	crt, err := h.Svc.RemoveItem(c.GetString("userID"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

// CheckoutHandler converts cart items into paid bookings, all or nothing.
func (h *CartHandler) CheckoutHandler(c *gin.Context) {
	var input struct {
		SourceToken string   `json:"sourceToken" binding:"required"`
		ItemIDs     []string `json:"itemIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	bookings, err := h.Svc.Checkout(c.Request.Context(), c.GetString("userID"), input.SourceToken, input.ItemIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bookings": bookings})
}
