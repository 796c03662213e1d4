package rosterdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkShift(id ShiftID, day int, start, duration int) Shift {
	return Shift{
		ID:          id,
		ServiceID:   "S1",
		ShiftNumber: 1,
		Date:        Date{2026, 3, day},
		StartMinute: start,
		Duration:    duration,
	}
}

func TestAddAssignmentUpdatesBitsetAndCoverage(t *testing.T) {
	shifts := []Shift{mkShift(1, 1, 360, 480)} // 06:00-14:00
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())

	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.True(t, sol.CanAssign(d1, 1))
	require.NoError(t, sol.AddAssignment(d1, 1))

	assert.True(t, sol.CoverageComplete())
	assert.Equal(t, 480, sol.TotalMinutes(d1))
	assert.Empty(t, Validate(sol))
}

func TestSameDayRestRuleRejectsFourHourGap(t *testing.T) {
	shifts := []Shift{
		mkShift(1, 1, 240, 270),  // 04:00-08:30
		mkShift(2, 1, 750, 240), // 12:30-16:30
	}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.NoError(t, sol.AddAssignment(d1, 1))

	assert.False(t, sol.CanAssign(d1, 2), "4h gap is under the 5h same-day rest floor")
}

func TestSameDayRestRuleAcceptsElevenHourGap(t *testing.T) {
	shifts := []Shift{
		mkShift(1, 1, 240, 270),   // 04:00-08:30
		mkShift(2, 1, 1170, 75), // 19:30-20:45
	}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.NoError(t, sol.AddAssignment(d1, 1))

	assert.True(t, sol.CanAssign(d1, 2))
}

func TestCycleLegalityRejectsRestDay(t *testing.T) {
	shifts := []Shift{mkShift(1, 10, 360, 120)}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1}) // day 9 (index) is a rest day: (10-1)=9 mod 14 = 9 >=7

	assert.False(t, sol.IsWorkDay(d1, Date{2026, 3, 10}))
	assert.False(t, sol.CanAssign(d1, 1))
}

func TestDropDriverReturnsUnassignedShifts(t *testing.T) {
	shifts := []Shift{mkShift(1, 1, 360, 120)}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.NoError(t, sol.AddAssignment(d1, 1))

	removed := sol.DropDriver(d1)
	assert.Equal(t, []ShiftID{1}, removed)
	assert.Equal(t, 0, sol.DriverCount())
	_, ok := sol.AssignmentOf(1)
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	shifts := []Shift{mkShift(1, 1, 360, 120), mkShift(2, 1, 600, 120)}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.NoError(t, sol.AddAssignment(d1, 1))

	clone := sol.Clone()
	require.NoError(t, clone.AddAssignment(d1, 2))

	assert.False(t, sol.CoverageComplete())
	assert.True(t, clone.CoverageComplete())
}

func TestCostLessPrefersFewerDrivers(t *testing.T) {
	a := Cost{Drivers: 2, TotalMinutes: 100}
	b := Cost{Drivers: 3, TotalMinutes: 1000}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestCostLessTieBreaksOnMinutes(t *testing.T) {
	a := Cost{Drivers: 2, TotalMinutes: 500}
	b := Cost{Drivers: 2, TotalMinutes: 400}
	assert.True(t, a.Less(b))
}
