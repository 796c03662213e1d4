package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faena-transit/rosterizer/pkg/conflictset"
	"github.com/faena-transit/rosterizer/pkg/greedy"
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

func TestSnapshotFlattensSolution(t *testing.T) {
	cfg := rosterdomain.DefaultRegimeConfig()
	var shifts []rosterdomain.Shift
	for day := 1; day <= 14; day++ {
		shifts = append(shifts, rosterdomain.Shift{
			ID: rosterdomain.ShiftID(day), ServiceID: "L1", ShiftNumber: 1, Vehicle: "BUS-01",
			Date:        rosterdomain.Date{Year: 2026, Month: 3, Day: day},
			StartMinute: 360, Duration: 480,
		})
	}
	idx := rosterdomain.NewShiftIndex(shifts)
	conflicts, _ := conflictset.Build(idx, cfg)
	sol, err := greedy.Build(idx, conflicts, cfg)
	require.NoError(t, err)

	roster, drivers, assignments := Snapshot(sol, 2026, 3, 99)

	assert.Equal(t, 2026, roster.Year)
	assert.Equal(t, 3, roster.Month)
	assert.Equal(t, uint64(99), roster.Seed)
	assert.Equal(t, sol.DriverCount(), roster.DriverCount)
	assert.Equal(t, len(shifts), roster.ShiftCount)
	assert.InDelta(t, float64(14*480)/60.0, roster.TotalHours, 1e-9)

	require.Len(t, drivers, sol.DriverCount())
	require.Len(t, assignments, len(shifts))

	for _, d := range drivers {
		assert.Equal(t, roster.ID, d.RosterID)
		assert.Equal(t, cfg.CycleN, d.CycleN)
	}

	// every assignment row references a numbered driver that exists.
	numbers := make(map[int]bool, len(drivers))
	for _, d := range drivers {
		numbers[d.DriverNumber] = true
	}
	for _, a := range assignments {
		assert.Equal(t, roster.ID, a.RosterID)
		assert.True(t, numbers[a.DriverNumber])
		assert.Equal(t, "BUS-01", a.Vehicle)
	}
}
