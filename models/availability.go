package models

// AvailabilitySpec holds a consultant's bookable slot start-times, either as a
// recurring weekly template or as specific-date overrides. Overrides take
// precedence over the weekday template for that date.
type AvailabilitySpec struct {
	ConsultantID  string              `bson:"consultant_id" json:"consultantId"`
	WeekdayHours  map[string][]string `bson:"weekday_hours,omitempty" json:"weekdayHours,omitempty"`   // key: lowercase weekday, e.g. "monday"
	DateOverrides map[string][]string `bson:"date_overrides,omitempty" json:"dateOverrides,omitempty"` // key: "2006-01-02"
	SlotDuration  int                 `bson:"slot_duration" json:"slotDuration"` // minutes per slot
	UpdatedAt     int64               `bson:"updated_at" json:"updatedAt"`
}

// SlotsForDate resolves the offered slot start-times for a date, override first.
func (a *AvailabilitySpec) SlotsForDate(date string, weekday string) []string {
	if slots, ok := a.DateOverrides[date]; ok {
		return slots
	}
	return a.WeekdayHours[weekday]
}
