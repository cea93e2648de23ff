package handlers

import (
	"net/http"

	"tray/models"
	"tray/services/booking"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler exposes consultants' bookable-hours management.
type AvailabilityHandler struct {
	Svc booking.BookingService
}

func NewAvailabilityHandler(svc booking.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc}
}

// SetAvailabilityHandler replaces the calling consultant's spec.
func (h *AvailabilityHandler) SetAvailabilityHandler(c *gin.Context) {
	var spec models.AvailabilitySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	spec.ConsultantID = c.GetString("userID")

	if err := h.Svc.SetAvailability(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	spec, err := h.Svc.GetAvailability(c.Param("consultantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if spec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no availability configured"})
		return
	}
	c.JSON(http.StatusOK, spec)
}

// AvailableSlotsHandler lists the open slots for one consultant and date.
func (h *AvailabilityHandler) AvailableSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	slots, err := h.Svc.AvailableSlots(c.Request.Context(), c.Param("consultantId"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// BookedSlotsHandler lists the slots already held so clients can grey them
// out.
func (h *AvailabilityHandler) BookedSlotsHandler(c *gin.Context) {
	slots, err := h.Svc.BookedSlots(c.Param("consultantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
