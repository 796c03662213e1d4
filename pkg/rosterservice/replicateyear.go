package rosterservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/internal/config"
	"github.com/faena-transit/rosterizer/pkg/conflictset"
	"github.com/faena-transit/rosterizer/pkg/greedy"
	"github.com/faena-transit/rosterizer/pkg/lns"
	"github.com/faena-transit/rosterizer/pkg/replicate"
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/rosterlog"
	"github.com/faena-transit/rosterizer/pkg/shiftexpand"
)

// MonthRoster is one month's replicated (or re-optimized) roster within a
// year plan.
type MonthRoster struct {
	Month       int
	Solution    *rosterdomain.Solution
	Gaps        []rosterdomain.ShiftID
	Reoptimized bool
}

// ReplicateYear expands the configured source month's solution across the
// remaining months of the year by day-in-cycle equivalence. Months whose
// shift structure doesn't line up with the source (non-empty gaps) are
// re-optimized from scratch with a reduced time budget, the way the caller
// of the replicator is expected to handle anomalous months.
func ReplicateYear(ctx context.Context, source *RunMonthResult, cfg *config.Config, logger *zap.Logger) ([]MonthRoster, error) {
	regime := cfg.Regime()
	anchor := rosterdomain.Date{Year: cfg.Year, Month: time.Month(cfg.Month), Day: 1}
	templates := cfg.ServiceTemplates()

	var months []MonthRoster
	for m := 1; m <= 12; m++ {
		if m == cfg.Month {
			continue
		}
		if ctx.Err() != nil {
			return months, &rosterdomain.CancelledError{Reason: ctx.Err().Error()}
		}

		shifts, err := shiftexpand.Expand(cfg.Year, time.Month(m), templates)
		if err != nil {
			return months, fmt.Errorf("failed to expand month %d: %w", m, err)
		}
		if len(shifts) == 0 {
			logger.Debug("No shifts for month, skipping", zap.Int("month", m))
			continue
		}
		idx := rosterdomain.NewShiftIndex(shifts)
		conflicts, _ := conflictset.Build(idx, regime)

		target, gaps := replicate.Replicate(source.Solution, anchor, idx, conflicts)
		if len(gaps) == 0 {
			logger.Info("Month replicated",
				zap.Int("month", m),
				zap.Int("drivers", target.DriverCount()))
			months = append(months, MonthRoster{Month: m, Solution: target})
			continue
		}

		gapErr := &rosterdomain.ReplicationGapError{Gaps: gaps, PartialSolution: target}
		logger.Warn("Replication gaps, re-optimizing month",
			zap.Int("month", m),
			zap.Error(gapErr))

		rebuilt, err := greedy.Build(idx, conflicts, regime)
		if err != nil {
			return months, fmt.Errorf("failed to rebuild month %d: %w", m, err)
		}
		engine := lns.NewEngine(lns.Params{
			InitialTemperature:  cfg.SAInitialTemperature,
			CoolingRate:         cfg.SACoolingRate,
			ConsolidationPeriod: cfg.ConsolidationPeriod,
			TimeBudget:          time.Duration(cfg.TimeBudgetSeconds) * time.Second / 4,
			StagnationLimit:     cfg.StagnationLimit,
			Seed:                cfg.Seed + uint64(m),
		}, lns.WithLogger(rosterlog.Wrap(logger)))
		refined, _, err := engine.Refine(ctx, rebuilt)
		if err != nil {
			var cancelled *rosterdomain.CancelledError
			if !errors.As(err, &cancelled) {
				return months, fmt.Errorf("failed to refine month %d: %w", m, err)
			}
		}
		months = append(months, MonthRoster{Month: m, Solution: refined, Gaps: gaps, Reoptimized: true})
	}
	return months, nil
}
