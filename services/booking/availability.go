package booking

import (
	"context"
	"fmt"
	"time"

	"tray/models"
	"tray/utils"
)

// SetAvailability validates and stores a consultant's spec. Changes are not
// retroactive: slots already held by accepted bookings stay valid.
func (s *DefaultBookingService) SetAvailability(spec *models.AvailabilitySpec) error {
	if spec.ConsultantID == "" {
		return fmt.Errorf("consultant id is required")
	}
	if spec.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	for day, labels := range spec.WeekdayHours {
		for _, label := range labels {
			if utils.ParseClockToMinutes(label) < 0 {
				return fmt.Errorf("invalid time %q for %s", label, day)
			}
		}
	}
	for date, labels := range spec.DateOverrides {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("invalid override date %q", date)
		}
		for _, label := range labels {
			if utils.ParseClockToMinutes(label) < 0 {
				return fmt.Errorf("invalid time %q for %s", label, date)
			}
		}
	}
	spec.UpdatedAt = time.Now().Unix()
	return s.Availability.Upsert(spec)
}

func (s *DefaultBookingService) GetAvailability(consultantID string) (*models.AvailabilitySpec, error) {
	return s.Availability.GetByConsultant(consultantID)
}

// offeredSlots resolves the spec for one date into concrete slots.
func offeredSlots(spec *models.AvailabilitySpec, consultantID, date string) ([]models.Slot, error) {
	weekday, err := utils.WeekdayName(date)
	if err != nil {
		return nil, err
	}
	starts := spec.SlotsForDate(date, weekday)
	slots := make([]models.Slot, 0, len(starts))
	for _, start := range starts {
		end, err := utils.SlotEndTime(start, spec.SlotDuration)
		if err != nil {
			return nil, fmt.Errorf("bad slot start %q in spec for %s: %w", start, consultantID, err)
		}
		slots = append(slots, models.Slot{Date: date, StartTime: start, EndTime: end})
	}
	return slots, nil
}

func (s *DefaultBookingService) AvailableSlots(ctx context.Context, consultantID, date string) ([]models.Slot, error) {
	spec, err := s.Availability.GetByConsultant(consultantID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}
	offered, err := offeredSlots(spec, consultantID, date)
	if err != nil {
		return nil, err
	}

	held, err := s.Bookings.FindHeldSlots(consultantID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(held))
	for _, slot := range held {
		taken[slot.Key()] = true
	}

	open := make([]models.Slot, 0, len(offered))
	for _, slot := range offered {
		if !taken[slot.Key()] {
			open = append(open, slot)
		}
	}
	return open, nil
}

// IsSlotAvailable checks the spec first (override beats weekday rule), then
// the booking store for a confirmed holder.
func (s *DefaultBookingService) IsSlotAvailable(ctx context.Context, consultantID, date, startTime string) (bool, error) {
	spec, err := s.Availability.GetByConsultant(consultantID)
	if err != nil {
		return false, err
	}
	if spec == nil {
		return false, nil
	}
	weekday, err := utils.WeekdayName(date)
	if err != nil {
		return false, err
	}
	offered := false
	for _, start := range spec.SlotsForDate(date, weekday) {
		if start == startTime {
			offered = true
			break
		}
	}
	if !offered {
		return false, nil
	}

	conflict, err := s.Bookings.HasConflict(ctx, consultantID, date, startTime)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

func (s *DefaultBookingService) BookedSlots(consultantID string) ([]models.Slot, error) {
	return s.Bookings.FindHeldSlots(consultantID)
}
