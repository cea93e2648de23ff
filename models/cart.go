package models

import "time"

// CartLineItem groups the slots a student selected for one
// (consultant, service) pair prior to checkout. The cart is advisory:
// conflicts are only enforced against the booking store at checkout.
type CartLineItem struct {
	ID              string    `json:"id"`
	ConsultantID    string    `json:"consultantId"`
	ServiceID       string    `json:"serviceId"`
	PricePerSlot    float64   `json:"pricePerSlot"`
	DurationMinutes int       `json:"durationMinutes"`
	Slots           []Slot    `json:"slots"`      // unique by (date, startTime), append order preserved
	Counter         int       `json:"counter"`    // len(Slots)
	TotalPrice      float64   `json:"totalPrice"` // Counter * PricePerSlot
	AddedAt         time.Time `json:"addedAt"`
}

// Recompute refreshes the derived counter and price fields.
func (it *CartLineItem) Recompute() {
	it.Counter = len(it.Slots)
	it.TotalPrice = float64(it.Counter) * it.PricePerSlot
}

// HasSlot reports whether the item already holds the (date, startTime) pair.
func (it *CartLineItem) HasSlot(date, startTime string) bool {
	for _, s := range it.Slots {
		if s.Date == date && s.StartTime == startTime {
			return true
		}
	}
	return false
}

// Cart is the full client-reconstructible cart for one student.
type Cart struct {
	StudentID string         `json:"studentId"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Subtotal sums all line item totals.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.TotalPrice
	}
	return total
}
