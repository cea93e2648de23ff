package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRe = regexp.MustCompile(`(?i)(\d+)[:.](\d+)\s*(AM|PM)`)

// ParseClockToMinutes converts a 12-hour clock label such as "09:00 AM" to
// minutes from midnight. Returns -1 when the label cannot be parsed.
func ParseClockToMinutes(label string) int {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return -1
	}
	hours, err1 := strconv.Atoi(m[1])
	minutes, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return -1
	}
	period := strings.ToUpper(m[3])
	if period == "PM" && hours != 12 {
		hours += 12
	}
	if period == "AM" && hours == 12 {
		hours = 0
	}
	return hours*60 + minutes
}

// FormatMinutesToClock renders minutes from midnight as a 12-hour clock label.
func FormatMinutesToClock(total int) string {
	total = ((total % (24 * 60)) + 24*60) % (24 * 60)
	hours24 := total / 60
	minutes := total % 60
	period := "AM"
	if hours24 >= 12 {
		period = "PM"
	}
	hours12 := hours24 % 12
	if hours12 == 0 {
		hours12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hours12, minutes, period)
}

// SlotEndTime derives a slot's end label from its start label and duration.
func SlotEndTime(startLabel string, durationMinutes int) (string, error) {
	start := ParseClockToMinutes(startLabel)
	if start < 0 {
		return "", fmt.Errorf("unparseable time label %q", startLabel)
	}
	return FormatMinutesToClock(start + durationMinutes), nil
}

// WeekdayName returns the lowercase weekday for a "2006-01-02" date string.
func WeekdayName(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return strings.ToLower(t.Weekday().String()), nil
}
