package conflictset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

func mkShift(id rosterdomain.ShiftID, day, start, duration int) rosterdomain.Shift {
	return rosterdomain.Shift{ID: id, ServiceID: "S1", Date: rosterdomain.Date{Year: 2026, Month: 3, Day: day}, StartMinute: start, Duration: duration}
}

func TestSymmetricAndNoSelfConflict(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 240, 270),
		mkShift(2, 1, 750, 240),
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := Build(idx, rosterdomain.DefaultRegimeConfig())

	_, selfConflict := conflicts[1][1]
	assert.False(t, selfConflict)
	_, ok := conflicts[1][2]
	assert.True(t, ok)
	_, ok = conflicts[2][1]
	assert.True(t, ok)
}

func TestFourHourGapConflicts(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 240, 270),  // 04:00-08:30
		mkShift(2, 1, 750, 240), // 12:30-16:30, gap = 4h
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := Build(idx, rosterdomain.DefaultRegimeConfig())

	_, ok := conflicts[1][2]
	assert.True(t, ok, "4h gap is under the 5h floor")
}

func TestElevenHourGapDoesNotConflict(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 240, 270),
		mkShift(2, 1, 1170, 75),
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := Build(idx, rosterdomain.DefaultRegimeConfig())

	_, ok := conflicts[1][2]
	assert.False(t, ok)
}

func TestAdjacentDayRestConflict(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 1200, 120), // 20:00-22:00 on day 1
		mkShift(2, 2, 60, 120),   // 01:00-03:00 on day 2, gap = 3h
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := Build(idx, rosterdomain.DefaultRegimeConfig())

	_, ok := conflicts[1][2]
	assert.True(t, ok)
}

func TestTwoDaysApartNeverConflicts(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 0, 60),
		mkShift(2, 3, 0, 60),
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := Build(idx, rosterdomain.DefaultRegimeConfig())

	assert.Empty(t, conflicts[1])
	assert.Empty(t, conflicts[2])
}

func TestDiagnosticsAverageSetSize(t *testing.T) {
	shifts := []rosterdomain.Shift{
		mkShift(1, 1, 0, 60),
		mkShift(2, 1, 61, 60),
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	_, diag := Build(idx, rosterdomain.DefaultRegimeConfig())
	require.Equal(t, 1.0, diag.AverageSetSize)
	assert.Equal(t, 1, diag.MaxSetSize)
}
