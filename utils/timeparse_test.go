package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockToMinutes(t *testing.T) {
	assert.Equal(t, 540, ParseClockToMinutes("09:00 AM"))
	assert.Equal(t, 540, ParseClockToMinutes("09.00 AM"))
	assert.Equal(t, 0, ParseClockToMinutes("12:00 AM"))
	assert.Equal(t, 720, ParseClockToMinutes("12:00 PM"))
	assert.Equal(t, 13*60+30, ParseClockToMinutes("01:30 PM"))
	assert.Equal(t, -1, ParseClockToMinutes("not a time"))
}

func TestFormatMinutesToClock(t *testing.T) {
	assert.Equal(t, "09:00 AM", FormatMinutesToClock(540))
	assert.Equal(t, "12:00 AM", FormatMinutesToClock(0))
	assert.Equal(t, "12:00 PM", FormatMinutesToClock(720))
	assert.Equal(t, "11:45 PM", FormatMinutesToClock(23*60+45))
}

func TestSlotEndTime(t *testing.T) {
	end, err := SlotEndTime("09:00 AM", 60)
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", end)

	end, err = SlotEndTime("11:30 AM", 45)
	require.NoError(t, err)
	assert.Equal(t, "12:15 PM", end)

	_, err = SlotEndTime("bogus", 30)
	assert.Error(t, err)
}

func TestWeekdayName(t *testing.T) {
	day, err := WeekdayName("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "friday", day)

	_, err = WeekdayName("05/01/2024")
	assert.Error(t, err)
}
