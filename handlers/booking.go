package handlers

import (
	"net/http"

	"tray/services/booking"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking request lifecycle.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

// StudentBookingsHandler lists the calling student's bookings.
func (h *BookingHandler) StudentBookingsHandler(c *gin.Context) {
	bookings, err := h.Svc.ListByStudent(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ConsultantBookingsHandler lists the calling consultant's bookings.
func (h *BookingHandler) ConsultantBookingsHandler(c *gin.Context) {
	bookings, err := h.Svc.ListByConsultant(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	b, err := h.Svc.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) DeclineBookingHandler(c *gin.Context) {
	b, err := h.Svc.Decline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	b, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
