package lns

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/rosterlog"
)

// RunResult is one seed's outcome in a multi-start batch.
type RunResult struct {
	Seed     uint64
	Solution *rosterdomain.Solution
	Stats    Stats
}

// MultiStart runs one independent refinement per seed, each over its own
// clone of initial, and returns the best result. Runs share only the
// read-only shift index and conflict sets carried inside initial; no mutable
// state crosses run boundaries. Ties on driver count break by total assigned
// minutes (denser first), then by seed for determinism.
//
// Extra engine options apply to every run; a shared Metrics aggregates move
// counters across all seeds.
func MultiStart(ctx context.Context, initial *rosterdomain.Solution, params Params, seeds []uint64, logger rosterlog.Logger, opts ...Option) (RunResult, []RunResult, error) {
	if len(seeds) == 0 {
		return RunResult{}, nil, errors.New("lns: multi-start needs at least one seed")
	}
	if logger == nil {
		logger = rosterlog.Nop()
	}

	results := make(chan RunResult, len(seeds))
	var wg sync.WaitGroup
	for _, seed := range seeds {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			p := params
			p.Seed = seed
			runOpts := make([]Option, 0, len(opts)+1)
			runOpts = append(runOpts, opts...)
			runOpts = append(runOpts, WithLogger(logger.With(zap.Uint64("seed", seed))))
			engine := NewEngine(p, runOpts...)
			sol, stats, err := engine.Refine(ctx, initial)
			if err != nil {
				// cancellation still yields a feasible best-so-far; keep it
				// in the running.
				var cancelled *rosterdomain.CancelledError
				if !errors.As(err, &cancelled) {
					return
				}
			}
			results <- RunResult{Seed: seed, Solution: sol, Stats: stats}
		}(seed)
	}
	wg.Wait()
	close(results)

	finished := make([]RunResult, 0, len(seeds))
	for r := range results {
		finished = append(finished, r)
	}
	if len(finished) == 0 {
		return RunResult{}, nil, errors.New("lns: no multi-start run finished")
	}

	slices.SortFunc(finished, func(a, b RunResult) int {
		ca, cb := a.Solution.CostOf(), b.Solution.CostOf()
		if ca.Drivers != cb.Drivers {
			return ca.Drivers - cb.Drivers
		}
		if ca.TotalMinutes != cb.TotalMinutes {
			return cb.TotalMinutes - ca.TotalMinutes
		}
		switch {
		case a.Seed < b.Seed:
			return -1
		case a.Seed > b.Seed:
			return 1
		}
		return 0
	})

	best := finished[0]
	logger.Info("multi-start finished",
		zap.Int("runs", len(finished)),
		zap.Uint64("best_seed", best.Seed),
		zap.Int("best_drivers", best.Solution.DriverCount()))
	return best, finished, nil
}
