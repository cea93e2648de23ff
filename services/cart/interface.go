package cart

import (
	"context"
	"sync"

	bookingRepo "tray/database/repository/booking"
	paymentRepo "tray/database/repository/payment"
	"tray/models"
	"tray/services/events"
	"tray/services/payment"
)

// SlotFinder is the slice of the booking service the cart needs: live,
// conflict-filtered availability.
type SlotFinder interface {
	AvailableSlots(ctx context.Context, consultantID, date string) ([]models.Slot, error)
}

// CartService manages students' pre-checkout slot selections. The cart is
// advisory: nothing here reserves a slot, only checkout does, against the
// booking store.
type CartService interface {
	GetCart(studentID string) (*models.Cart, error)
	// AddSlots merges slots into the (consultant, service) line item,
	// deduplicating by (date, startTime).
	AddSlots(studentID string, item models.CartLineItem) (*models.Cart, error)
	// IncrementSlot adds one more available slot to the item, preferring
	// dates the item already contains.
	IncrementSlot(ctx context.Context, studentID, itemID string) (*models.Cart, error)
	// DecrementSlot removes the most recently added slot. Items never go
	// below one slot; use RemoveItem for that.
	DecrementSlot(studentID, itemID string) (*models.Cart, error)
	RemoveItem(studentID, itemID string) (*models.Cart, error)
	// Checkout converts the selected items into booking requests and
	// captures one charge for the whole batch, all or nothing.
	Checkout(ctx context.Context, studentID, sourceToken string, itemIDs []string) ([]models.BookingRequest, error)
}

// DefaultCartService is the production implementation.
type DefaultCartService struct {
	Store    CartStore
	Checker  SlotFinder
	Bookings bookingRepo.BookingRepository
	Payments paymentRepo.PaymentRepository
	Gateway  payment.Gateway
	Events   events.Publisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// itemLock returns the mutex serializing increments and decrements for one
// (student, item) pair. Two rapid taps must not both grab the same slot.
func (s *DefaultCartService) itemLock(studentID, itemID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	key := studentID + "|" + itemID
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
