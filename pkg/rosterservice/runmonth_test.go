package rosterservice

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/internal/config"
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/store"
)

type fakeStore struct {
	roster      store.RosterRecord
	drivers     []store.DriverRecord
	assignments []store.AssignmentRecord
	calls       int
}

func (f *fakeStore) InsertRoster(_ context.Context, roster store.RosterRecord, drivers []store.DriverRecord, assignments []store.AssignmentRecord) error {
	f.roster = roster
	f.drivers = drivers
	f.assignments = assignments
	f.calls++
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Year:  2026,
		Month: 3,
		Services: []config.Service{
			{
				ServiceID: "LINE-1",
				Shifts: []config.ShiftSpec{
					{ShiftNumber: 1, StartTime: "06:00", DurationHours: 8, RRule: "FREQ=DAILY"},
				},
			},
			{
				ServiceID: "LINE-2",
				Shifts: []config.ShiftSpec{
					{ShiftNumber: 1, StartTime: "15:00", DurationHours: 5, RRule: "FREQ=DAILY"},
				},
			},
		},
	}
	cfg.ApplyDefaults()
	cfg.TimeBudgetSeconds = 1
	cfg.StagnationLimit = 50
	return cfg
}

func TestRunMonthFullPipelinePersists(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, config.Validate(cfg))

	db := &fakeStore{}
	result, err := RunMonth(context.Background(), db, cfg, zap.NewNop(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Solution.CoverageComplete())
	assert.Empty(t, rosterdomain.Validate(result.Solution))
	assert.LessOrEqual(t, result.Solution.DriverCount(), result.GreedyDrivers)
	assert.Equal(t, 62, result.Shifts.Len()) // 2 daily services x 31 days

	require.Equal(t, 1, db.calls)
	assert.Equal(t, result.RosterID, db.roster.ID.String())
	assert.Equal(t, 62, len(db.assignments))
	assert.Len(t, db.drivers, result.Solution.DriverCount())
}

func TestRunMonthDryRunSkipsPersistence(t *testing.T) {
	cfg := testConfig()
	db := &fakeStore{}

	result, err := RunMonth(context.Background(), db, cfg, zap.NewNop(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Zero(t, db.calls)
	assert.Empty(t, result.RosterID)
}

func TestRunMonthNilStoreIsDryRun(t *testing.T) {
	cfg := testConfig()
	result, err := RunMonth(context.Background(), nil, cfg, zap.NewNop(), RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.RosterID)
}

func TestRunMonthRegistersEngineMetrics(t *testing.T) {
	cfg := testConfig()
	reg := prometheus.NewRegistry()

	result, err := RunMonth(context.Background(), nil, cfg, zap.NewNop(), RunOptions{DryRun: true, Metrics: reg})
	require.NoError(t, err)
	require.True(t, result.Solution.CoverageComplete())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["rosterizer_lns_best_drivers"])
	assert.True(t, names["rosterizer_lns_current_drivers"])
}

func TestRunMonthMultiStartPicksASeed(t *testing.T) {
	cfg := testConfig()

	result, err := RunMonth(context.Background(), nil, cfg, zap.NewNop(), RunOptions{DryRun: true, Seeds: []uint64{3, 4, 5}})
	require.NoError(t, err)

	assert.Contains(t, []uint64{3, 4, 5}, result.WinningSeed)
	assert.True(t, result.Solution.CoverageComplete())
	assert.Empty(t, rosterdomain.Validate(result.Solution))
	assert.LessOrEqual(t, result.Solution.DriverCount(), result.GreedyDrivers)
}

func TestReplicateYearCarriesDriverCount(t *testing.T) {
	cfg := testConfig()
	source, err := RunMonth(context.Background(), nil, cfg, zap.NewNop(), RunOptions{DryRun: true})
	require.NoError(t, err)

	months, err := ReplicateYear(context.Background(), source, cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, months, 11)

	for _, m := range months {
		assert.True(t, m.Solution.CoverageComplete(), "month %d not fully covered", m.Month)
		assert.Empty(t, rosterdomain.Validate(m.Solution), "month %d violates invariants", m.Month)
		if !m.Reoptimized {
			assert.Equal(t, source.Solution.DriverCount(), m.Solution.DriverCount(),
				"month %d replicated with a different driver count", m.Month)
		}
	}
}
