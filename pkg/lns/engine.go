// Package lns implements the LNS/ALNS refinement engine: iterative
// destroy-and-repair over a feasible roster, simulated-annealing acceptance,
// and adaptive operator weights updated by observed success.
package lns

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/rosterlog"
)

// Params are the search knobs. Zero values are replaced by DefaultParams
// equivalents when passed to NewEngine.
type Params struct {
	InitialTemperature  float64
	CoolingRate         float64
	ConsolidationPeriod int
	TimeBudget          time.Duration
	StagnationLimit     int
	Seed                uint64
}

// DefaultParams returns the mining-faena search defaults.
func DefaultParams() Params {
	return Params{
		InitialTemperature:  100.0,
		CoolingRate:         0.95,
		ConsolidationPeriod: 50,
		TimeBudget:          600 * time.Second,
		StagnationLimit:     1000,
		Seed:                0,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.InitialTemperature <= 0 {
		p.InitialTemperature = d.InitialTemperature
	}
	if p.CoolingRate <= 0 || p.CoolingRate >= 1 {
		p.CoolingRate = d.CoolingRate
	}
	if p.ConsolidationPeriod <= 0 {
		p.ConsolidationPeriod = d.ConsolidationPeriod
	}
	if p.TimeBudget <= 0 {
		p.TimeBudget = d.TimeBudget
	}
	if p.StagnationLimit <= 0 {
		p.StagnationLimit = d.StagnationLimit
	}
	return p
}

// ALNS weight-update constants: a smoothed reward per attempt, largest when
// the best-so-far was beaten, smaller when the move was merely accepted,
// zero when rejected.
const (
	rewardImproved = 10.0
	rewardAccepted = 4.0
	rewardLambda   = 0.1
)

// OperatorStats counts outcomes for one destroy operator.
type OperatorStats struct {
	Attempts     int
	Accepts      int
	Improvements int
}

// Stats summarizes a completed refinement run.
type Stats struct {
	Iterations      int
	Elapsed         time.Duration
	InitialDrivers  int
	FinalDrivers    int
	Consolidations  int
	Operators       map[string]OperatorStats
	MeanDriverCount float64
	StdDriverCount  float64
}

// Engine is one LNS/ALNS run. It owns its solution exclusively for the
// duration of Refine; the shift index and conflict sets it reads through the
// solution are shared read-only. A single PRNG stream seeded by the run seed
// drives operator selection, window/service choice, and SA acceptance, so a
// run is deterministic modulo the seed.
type Engine struct {
	params  Params
	logger  rosterlog.Logger
	metrics *Metrics
	rng     *rand.Rand
	weights [numOperators]float64
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithLogger attaches a structured logger; the default discards everything.
func WithLogger(l rosterlog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches prometheus instrumentation; the default is none.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an engine with the given parameters.
func NewEngine(params Params, opts ...Option) *Engine {
	e := &Engine{
		params: params.withDefaults(),
		logger: rosterlog.Nop(),
	}
	e.rng = rand.New(rand.NewSource(int64(e.params.Seed)))
	for i := range e.weights {
		e.weights[i] = 1.0
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refine runs the search starting from initial and returns the best solution
// found together with run statistics. The initial solution is not mutated.
//
// Time-budget expiry and stagnation are normal termination: the best-so-far
// is returned with a nil error. Caller cancellation through ctx also returns
// the best-so-far, wrapped in a CancelledError so the caller sees the
// advisory flag; the carried solution is fully feasible.
func (e *Engine) Refine(ctx context.Context, initial *rosterdomain.Solution) (*rosterdomain.Solution, Stats, error) {
	start := time.Now()
	current := initial.Clone()
	best := initial.Clone()
	bestCost := best.CostOf()

	temperature := e.params.InitialTemperature
	iteration := 0
	stagnation := 0
	consolidations := 0

	opStats := make(map[string]OperatorStats, numOperators)
	driverTrace := make([]float64, 0, 1024)

	e.logger.Info("starting refinement",
		zap.Int("initial_drivers", current.DriverCount()),
		zap.Float64("temperature", temperature),
		zap.Duration("budget", e.params.TimeBudget))
	e.metrics.observeDrivers(current.DriverCount(), best.DriverCount())

	var cancelled bool
	for {
		if time.Since(start) >= e.params.TimeBudget {
			break
		}
		if stagnation >= e.params.StagnationLimit {
			e.logger.Info("stopping on stagnation", zap.Int("iterations_without_improvement", stagnation))
			break
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		iteration++

		op := e.selectOperator()
		s := opStats[op.name()]
		s.Attempts++

		candidate := current.Clone()
		changed := e.applyOperator(candidate, op)
		if !changed || !candidate.CoverageComplete() {
			// rollback is discarding the clone; current is untouched.
			e.updateWeight(op, 0)
			e.metrics.countMove(op.name(), "rejected")
			opStats[op.name()] = s
			stagnation++
			temperature *= e.params.CoolingRate
			continue
		}

		currentCost := current.CostOf()
		candidateCost := candidate.CostOf()
		accept := false
		if candidateCost.Less(currentCost) {
			accept = true
		} else if !currentCost.Less(candidateCost) {
			// equal cost: a lateral move, accepted to keep the walk moving.
			accept = true
		} else {
			delta := float64(candidateCost.Drivers - currentCost.Drivers)
			if delta == 0 {
				delta = float64(currentCost.TotalMinutes-candidateCost.TotalMinutes) / 60.0
			}
			accept = e.rng.Float64() < math.Exp(-delta/temperature)
		}

		reward := 0.0
		outcome := "rejected"
		if accept {
			current = candidate
			s.Accepts++
			reward = rewardAccepted
			outcome = "accepted"
			if current.CostOf().Less(bestCost) {
				best = current.Clone()
				bestCost = best.CostOf()
				stagnation = 0
				s.Improvements++
				reward = rewardImproved
				outcome = "improved"
				e.logger.Info("new best solution",
					zap.Int("iteration", iteration),
					zap.Int("drivers", bestCost.Drivers),
					zap.String("operator", op.name()),
					zap.Duration("elapsed", time.Since(start)))
			} else {
				stagnation++
			}
		} else {
			stagnation++
		}
		e.updateWeight(op, reward)
		e.metrics.countMove(op.name(), outcome)
		opStats[op.name()] = s

		temperature *= e.params.CoolingRate
		driverTrace = append(driverTrace, float64(current.DriverCount()))
		e.metrics.observeDrivers(current.DriverCount(), best.DriverCount())

		if iteration%e.params.ConsolidationPeriod == 0 {
			if e.consolidate(current) {
				consolidations++
				e.logger.Debug("consolidation succeeded",
					zap.Int("iteration", iteration),
					zap.Int("drivers", current.DriverCount()))
				if current.CostOf().Less(bestCost) {
					best = current.Clone()
					bestCost = best.CostOf()
					stagnation = 0
				}
			}
		}
	}

	stats := Stats{
		Iterations:     iteration,
		Elapsed:        time.Since(start),
		InitialDrivers: initial.DriverCount(),
		FinalDrivers:   best.DriverCount(),
		Consolidations: consolidations,
		Operators:      opStats,
	}
	if len(driverTrace) > 0 {
		stats.MeanDriverCount = stat.Mean(driverTrace, nil)
		stats.StdDriverCount = stat.StdDev(driverTrace, nil)
	}

	e.logger.Info("refinement finished",
		zap.Int("iterations", stats.Iterations),
		zap.Int("initial_drivers", stats.InitialDrivers),
		zap.Int("final_drivers", stats.FinalDrivers),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Bool("cancelled", cancelled))

	if cancelled {
		return best, stats, &rosterdomain.CancelledError{PartialSolution: best, Reason: ctx.Err().Error()}
	}
	return best, stats, nil
}

// selectOperator runs the roulette wheel over the current weights.
func (e *Engine) selectOperator() operator {
	total := 0.0
	for _, w := range e.weights {
		total += w
	}
	r := e.rng.Float64() * total
	cum := 0.0
	for i, w := range e.weights {
		cum += w
		if r <= cum {
			return operator(i)
		}
	}
	return opDropDriver
}

func (e *Engine) updateWeight(op operator, reward float64) {
	e.weights[op] = (1-rewardLambda)*e.weights[op] + rewardLambda*reward
	// keep a floor so a long unlucky streak can't starve an operator out of
	// the roulette entirely.
	if e.weights[op] < 0.05 {
		e.weights[op] = 0.05
	}
}

// consolidate repeatedly removes the least-loaded driver and attempts full
// reinsertion, keeping only strict improvements. It mutates sol in place and
// reports whether at least one driver was eliminated.
func (e *Engine) consolidate(sol *rosterdomain.Solution) bool {
	improved := false
	for {
		before := sol.DriverCount()
		if before <= 1 {
			return improved
		}
		trial := sol.Clone()
		if !dropLeastLoadedDriver(trial) || trial.DriverCount() >= before || !trial.CoverageComplete() {
			return improved
		}
		*sol = *trial
		improved = true
	}
}
