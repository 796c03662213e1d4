package rosterdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOverlapDetected(t *testing.T) {
	shifts := []Shift{
		mkShift(1, 1, 360, 120),
		mkShift(2, 1, 420, 120), // overlaps shift 1
	}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())
	d1 := sol.NewDriver(7, Date{2026, 3, 1})
	require.NoError(t, sol.AddAssignment(d1, 1))
	// bypass CanAssign to force an invalid state for the independent validator
	require.NoError(t, forceAssign(sol, d1, 2))

	violations := Validate(sol)
	require.NotEmpty(t, violations)
	assert.Equal(t, "no-overlap", violations[0].Kind)
}

func TestValidateUncoveredShift(t *testing.T) {
	shifts := []Shift{mkShift(1, 1, 360, 120)}
	idx := NewShiftIndex(shifts)
	sol := NewSolution(idx, ConflictSets{}, DefaultRegimeConfig())

	violations := Validate(sol)
	require.Len(t, violations, 1)
	assert.Equal(t, "coverage", violations[0].Kind)
}

// forceAssign bypasses bitset bookkeeping to inject an otherwise-infeasible
// state for testing the independent validator.
func forceAssign(sol *Solution, id DriverID, shiftID ShiftID) error {
	rec := sol.drivers[id]
	rec.shiftSet[shiftID] = struct{}{}
	sol.assignments[shiftID] = id
	return nil
}
