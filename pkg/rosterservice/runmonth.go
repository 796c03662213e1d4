// Package rosterservice glues configuration, persistence, and the core
// pipeline together. It is the only layer that talks to both the store and
// the optimization engine; the core packages below it never do I/O.
package rosterservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/internal/config"
	"github.com/faena-transit/rosterizer/pkg/conflictset"
	"github.com/faena-transit/rosterizer/pkg/greedy"
	"github.com/faena-transit/rosterizer/pkg/lns"
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/rosterlog"
	"github.com/faena-transit/rosterizer/pkg/shiftexpand"
	"github.com/faena-transit/rosterizer/pkg/store"
)

// RosterStore is the persistence surface RunMonth needs.
type RosterStore interface {
	InsertRoster(ctx context.Context, roster store.RosterRecord, drivers []store.DriverRecord, assignments []store.AssignmentRecord) error
}

// RunOptions are the per-invocation knobs of RunMonth, as opposed to the
// per-deployment knobs carried by the config.
type RunOptions struct {
	// DryRun skips persistence.
	DryRun bool
	// Metrics, when non-nil, receives the engine's gauges and counters.
	Metrics prometheus.Registerer
	// Seeds switches refinement to independent multi-start when it names
	// more than one seed; empty or single-element means one run with the
	// configured seed.
	Seeds []uint64
}

// RunMonthResult is the outcome of a full monthly pipeline run.
type RunMonthResult struct {
	Solution      *rosterdomain.Solution
	Shifts        *rosterdomain.ShiftIndex
	Conflicts     rosterdomain.ConflictSets
	ConflictDiag  conflictset.Diagnostics
	GreedyDrivers int
	RefineStats   lns.Stats
	WinningSeed   uint64
	RosterID      string
	Cancelled     bool
}

// RunMonth runs the full pipeline for the configured month: expand, build
// conflict sets, greedy construction, LNS/ALNS refinement, and persistence.
// If opts.DryRun is true or database is nil the solved roster is not saved.
//
// Cancellation through ctx is soft: the best-so-far solution is returned
// with Cancelled set, and the roster is still persisted unless opts.DryRun.
func RunMonth(ctx context.Context, database RosterStore, cfg *config.Config, logger *zap.Logger, opts RunOptions) (*RunMonthResult, error) {
	logger.Debug("Starting RunMonth",
		zap.Int("year", cfg.Year),
		zap.Int("month", cfg.Month),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("seeds", len(opts.Seeds)))

	regime := cfg.Regime()

	logger.Debug("Expanding shifts")
	shifts, err := shiftexpand.Expand(cfg.Year, time.Month(cfg.Month), cfg.ServiceTemplates())
	if err != nil {
		return nil, fmt.Errorf("failed to expand shifts: %w", err)
	}
	for _, s := range shifts {
		if err := s.Validate(regime.MaxDailyMinutes); err != nil {
			return nil, err
		}
	}
	logger.Info("Shifts expanded", zap.Int("count", len(shifts)))

	idx := rosterdomain.NewShiftIndex(shifts)

	logger.Debug("Building conflict sets")
	conflicts, diag := conflictset.Build(idx, regime)
	logger.Info("Conflict sets built",
		zap.Float64("avg_set_size", diag.AverageSetSize),
		zap.Int("max_set_size", diag.MaxSetSize))

	logger.Debug("Running greedy constructor", zap.Int("cycle_n", regime.CycleN))
	initial, err := greedy.Build(idx, conflicts, regime)
	if err != nil {
		return nil, fmt.Errorf("greedy construction failed: %w", err)
	}
	logger.Info("Greedy roster built", zap.Int("drivers", initial.DriverCount()))

	params := lns.Params{
		InitialTemperature:  cfg.SAInitialTemperature,
		CoolingRate:         cfg.SACoolingRate,
		ConsolidationPeriod: cfg.ConsolidationPeriod,
		TimeBudget:          time.Duration(cfg.TimeBudgetSeconds) * time.Second,
		StagnationLimit:     cfg.StagnationLimit,
		Seed:                cfg.Seed,
	}
	var engineOpts []lns.Option
	if opts.Metrics != nil {
		m, err := lns.NewMetrics(opts.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to register engine metrics: %w", err)
		}
		engineOpts = append(engineOpts, lns.WithMetrics(m))
	}

	result := &RunMonthResult{
		Shifts:        idx,
		Conflicts:     conflicts,
		ConflictDiag:  diag,
		GreedyDrivers: initial.DriverCount(),
		WinningSeed:   cfg.Seed,
	}

	var refined *rosterdomain.Solution
	if len(opts.Seeds) > 1 {
		best, _, err := lns.MultiStart(ctx, initial, params, opts.Seeds, rosterlog.Wrap(logger), engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("multi-start refinement failed: %w", err)
		}
		refined = best.Solution
		result.RefineStats = best.Stats
		result.WinningSeed = best.Seed
		result.Cancelled = ctx.Err() != nil
	} else {
		engineOpts = append(engineOpts, lns.WithLogger(rosterlog.Wrap(logger)))
		engine := lns.NewEngine(params, engineOpts...)
		var stats lns.Stats
		var err error
		refined, stats, err = engine.Refine(ctx, initial)
		result.RefineStats = stats
		if err != nil {
			var cancelled *rosterdomain.CancelledError
			if !errors.As(err, &cancelled) {
				return nil, fmt.Errorf("refinement failed: %w", err)
			}
			result.Cancelled = true
			logger.Warn("Refinement cancelled, keeping best-so-far", zap.Int("drivers", refined.DriverCount()))
		}
	}
	result.Solution = refined

	if violations := rosterdomain.Validate(refined); len(violations) > 0 {
		return nil, fmt.Errorf("refined solution failed re-validation: %s", violations[0])
	}

	if opts.DryRun || database == nil {
		logger.Info("Dry run, skipping persistence")
		return result, nil
	}

	roster, drivers, assignments := store.Snapshot(refined, cfg.Year, cfg.Month, result.WinningSeed)
	if err := database.InsertRoster(ctx, roster, drivers, assignments); err != nil {
		return nil, fmt.Errorf("failed to save roster: %w", err)
	}
	result.RosterID = roster.ID.String()
	logger.Info("Roster saved",
		zap.String("roster_id", result.RosterID),
		zap.Int("drivers", roster.DriverCount),
		zap.Int("assignments", len(assignments)))

	return result, nil
}
