package cart

import (
	"context"
	"fmt"
	"time"

	"tray/models"

	"github.com/google/uuid"
)

func (s *DefaultCartService) GetCart(studentID string) (*models.Cart, error) {
	return s.Store.Get(studentID)
}

// AddSlots merges the given line item into the cart. An existing item for the
// same (consultant, service) absorbs only the slots it does not already hold.
func (s *DefaultCartService) AddSlots(studentID string, item models.CartLineItem) (*models.Cart, error) {
	if len(item.Slots) == 0 {
		return nil, fmt.Errorf("at least one slot is required")
	}
	if item.PricePerSlot < 0 {
		return nil, fmt.Errorf("price per slot cannot be negative")
	}

	cart, err := s.Store.Get(studentID)
	if err != nil {
		return nil, err
	}

	var target *models.CartLineItem
	for i := range cart.Items {
		if cart.Items[i].ConsultantID == item.ConsultantID && cart.Items[i].ServiceID == item.ServiceID {
			target = &cart.Items[i]
			break
		}
	}

	if target == nil {
		item.ID = uuid.New().String()
		item.AddedAt = time.Now()
		deduped := item.Slots[:0]
		seen := make(map[string]bool, len(item.Slots))
		for _, slot := range item.Slots {
			if !seen[slot.Key()] {
				seen[slot.Key()] = true
				deduped = append(deduped, slot)
			}
		}
		item.Slots = deduped
		item.Recompute()
		cart.Items = append(cart.Items, item)
	} else {
		for _, slot := range item.Slots {
			if !target.HasSlot(slot.Date, slot.StartTime) {
				target.Slots = append(target.Slots, slot)
			}
		}
		target.Recompute()
	}

	if err := s.Store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// IncrementSlot adds one free slot on a date the item already uses, asking
// the live conflict checker rather than any cached view. Serialized per item.
func (s *DefaultCartService) IncrementSlot(ctx context.Context, studentID, itemID string) (*models.Cart, error) {
	lock := s.itemLock(studentID, itemID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.Store.Get(studentID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}

	for _, date := range itemDates(item) {
		open, err := s.Checker.AvailableSlots(ctx, item.ConsultantID, date)
		if err != nil {
			return nil, err
		}
		for _, slot := range open {
			if !item.HasSlot(slot.Date, slot.StartTime) {
				item.Slots = append(item.Slots, slot)
				item.Recompute()
				if err := s.Store.Save(cart); err != nil {
					return nil, err
				}
				return cart, nil
			}
		}
	}
	return nil, ErrNoSlotsAvailable
}

// DecrementSlot drops the most recently added slot.
func (s *DefaultCartService) DecrementSlot(studentID, itemID string) (*models.Cart, error) {
	lock := s.itemLock(studentID, itemID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.Store.Get(studentID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if len(item.Slots) <= 1 {
		return nil, ErrLastSlot
	}

	item.Slots = item.Slots[:len(item.Slots)-1]
	item.Recompute()
	if err := s.Store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *DefaultCartService) RemoveItem(studentID, itemID string) (*models.Cart, error) {
	cart, err := s.Store.Get(studentID)
	if err != nil {
		return nil, err
	}
	kept := cart.Items[:0]
	found := false
	for _, it := range cart.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return nil, ErrItemNotFound
	}
	cart.Items = kept

	if len(cart.Items) == 0 {
		if err := s.Store.Delete(studentID); err != nil {
			return nil, err
		}
		return &models.Cart{StudentID: studentID}, nil
	}
	if err := s.Store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func findItem(cart *models.Cart, itemID string) *models.CartLineItem {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i]
		}
	}
	return nil
}

// itemDates returns the item's distinct dates in first-appearance order, so
// increments keep grouping sessions on the dates the student already chose.
func itemDates(item *models.CartLineItem) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, slot := range item.Slots {
		if !seen[slot.Date] {
			seen[slot.Date] = true
			dates = append(dates, slot.Date)
		}
	}
	return dates
}
