package bookingRepo

import (
	"testing"

	"tray/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferedInSpec(t *testing.T) {
	spec := &models.AvailabilitySpec{
		ConsultantID: "cons-1",
		WeekdayHours: map[string][]string{
			"tuesday": {"09:00 AM", "10:00 AM"},
		},
		DateOverrides: map[string][]string{
			"2026-09-08": {"02:00 PM"},
		},
	}

	// 2026-09-01 is a Tuesday covered by weekday hours.
	offered, err := offeredInSpec(spec, "2026-09-01", "09:00 AM")
	require.NoError(t, err)
	assert.True(t, offered)

	offered, err = offeredInSpec(spec, "2026-09-01", "11:00 AM")
	require.NoError(t, err)
	assert.False(t, offered, "start time outside weekday hours")

	// 2026-09-08 is also a Tuesday, but the override replaces its hours.
	offered, err = offeredInSpec(spec, "2026-09-08", "09:00 AM")
	require.NoError(t, err)
	assert.False(t, offered, "override hides the weekday hours")

	offered, err = offeredInSpec(spec, "2026-09-08", "02:00 PM")
	require.NoError(t, err)
	assert.True(t, offered)

	// 2026-09-02 is a Wednesday with no hours at all.
	offered, err = offeredInSpec(spec, "2026-09-02", "09:00 AM")
	require.NoError(t, err)
	assert.False(t, offered)

	_, err = offeredInSpec(spec, "not-a-date", "09:00 AM")
	assert.Error(t, err)
}
