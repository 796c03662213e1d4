package shiftexpand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplateModeWeekdays(t *testing.T) {
	services := []ServiceTemplate{
		{
			ServiceID: "LINE-1",
			Shifts: []ShiftSpec{
				{ShiftNumber: 1, StartTime: "06:00", DurationHours: 8, Frequency: &FrequencySpec{RRule: "FREQ=DAILY"}},
			},
		},
	}
	shifts, err := Expand(2026, time.March, services)
	require.NoError(t, err)
	assert.Len(t, shifts, 31)
	assert.Equal(t, 360, shifts[0].StartMinute)
	assert.Equal(t, 480, shifts[0].Duration)
}

func TestExpandDatedModePassesThroughAndFilters(t *testing.T) {
	services := []ServiceTemplate{
		{
			ServiceID: "LINE-1",
			Shifts: []ShiftSpec{
				{ShiftNumber: 1, StartTime: "06:00", DurationHours: 8, Dated: &DatedSpec{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}},
				{ShiftNumber: 1, StartTime: "06:00", DurationHours: 8, Dated: &DatedSpec{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}}, // leaked from next month
			},
		},
	}
	shifts, err := Expand(2026, time.March, services)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, 5, shifts[0].Date.Day)
}

func TestDetectModeAmbiguousMixInputErrors(t *testing.T) {
	services := []ServiceTemplate{
		{
			ServiceID: "LINE-1",
			Shifts: []ShiftSpec{
				{StartTime: "06:00", DurationHours: 8, Frequency: &FrequencySpec{RRule: "FREQ=DAILY"}},
				{StartTime: "06:00", DurationHours: 8, Dated: &DatedSpec{Date: time.Now()}},
			},
		},
	}
	_, err := DetectMode(services)
	assert.Error(t, err)
}

func TestNoDoubleExpansionRegression(t *testing.T) {
	var shifts []ShiftSpec
	for day := 1; day <= 28; day++ {
		for n := 0; n < 34; n++ { // ~944/28 shifts per day across services
			shifts = append(shifts, ShiftSpec{
				ShiftNumber: n, StartTime: "06:00", DurationHours: 1,
				Dated: &DatedSpec{Date: time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC)},
			})
		}
	}
	services := []ServiceTemplate{{ServiceID: "LINE-1", Shifts: shifts}}
	out, err := Expand(2026, time.February, services)
	require.NoError(t, err)
	assert.Len(t, out, len(shifts))

	seen := make(map[int]bool)
	for _, s := range out {
		assert.False(t, seen[int(s.ID)], "shift id reused: double expansion")
		seen[int(s.ID)] = true
	}
}
