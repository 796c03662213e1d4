// Package greedy implements the deterministic first-fit initial roster
// builder under a single cyclical pattern. Driver selection is a strict
// first-feasible pick, never an affinity-scored best-fit: determinism is
// mandatory here.
package greedy

import "github.com/faena-transit/rosterizer/pkg/rosterdomain"

// FeasibilityCheck is one veto in the chain consulted for every
// (driver, shift) candidate pair. Each check may only say "no", never score
// a preference.
type FeasibilityCheck interface {
	Name() string
	Allows(sol *rosterdomain.Solution, driverID rosterdomain.DriverID, shiftID rosterdomain.ShiftID) bool
}

type workDayCheck struct{}

func (workDayCheck) Name() string { return "work-day" }
func (workDayCheck) Allows(sol *rosterdomain.Solution, driverID rosterdomain.DriverID, shiftID rosterdomain.ShiftID) bool {
	shift, ok := sol.Shifts().Get(shiftID)
	return ok && sol.IsWorkDay(driverID, shift.Date)
}

type conflictSetCheck struct{}

func (conflictSetCheck) Name() string { return "conflict-set" }
func (conflictSetCheck) Allows(sol *rosterdomain.Solution, driverID rosterdomain.DriverID, shiftID rosterdomain.ShiftID) bool {
	return !sol.ConflictsWithDriver(driverID, shiftID)
}

type bitsetCheck struct{}

func (bitsetCheck) Name() string { return "bitset" }
func (bitsetCheck) Allows(sol *rosterdomain.Solution, driverID rosterdomain.DriverID, shiftID rosterdomain.ShiftID) bool {
	return sol.FitsBitsetConstraints(driverID, shiftID)
}

// DefaultChecks is the standard feasibility veto chain: work-day,
// conflict-set, then the bitset primitives.
func DefaultChecks() []FeasibilityCheck {
	return []FeasibilityCheck{workDayCheck{}, conflictSetCheck{}, bitsetCheck{}}
}

func allows(checks []FeasibilityCheck, sol *rosterdomain.Solution, driverID rosterdomain.DriverID, shiftID rosterdomain.ShiftID) bool {
	for _, c := range checks {
		if !c.Allows(sol, driverID, shiftID) {
			return false
		}
	}
	return true
}

// Build walks calendar days of the month in ascending order, and within each
// day its shifts in ascending start-minute order, assigning each shift to
// the first feasible existing driver (by creation order) or spawning a new
// one. It is deterministic: replaying it on the same shifts and conflicts
// produces a byte-identical solution.
func Build(shifts *rosterdomain.ShiftIndex, conflicts rosterdomain.ConflictSets, cfg rosterdomain.RegimeConfig) (*rosterdomain.Solution, error) {
	return BuildWithChecks(shifts, conflicts, cfg, DefaultChecks())
}

// BuildWithChecks is Build with an explicit feasibility chain, so tests and
// alternative regimes can substitute or extend the veto set without
// touching the walk order.
func BuildWithChecks(shifts *rosterdomain.ShiftIndex, conflicts rosterdomain.ConflictSets, cfg rosterdomain.RegimeConfig, checks []FeasibilityCheck) (*rosterdomain.Solution, error) {
	sol := rosterdomain.NewSolution(shifts, conflicts, cfg)

	byDate := shifts.ByDate()
	dates := make([]rosterdomain.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sortDatesAsc(dates)

	for _, date := range dates {
		for _, shiftID := range byDate[date] {
			if err := placeShift(sol, checks, shiftID, cfg.CycleN); err != nil {
				return nil, err
			}
		}
	}
	return sol, nil
}

func placeShift(sol *rosterdomain.Solution, checks []FeasibilityCheck, shiftID rosterdomain.ShiftID, cycleN int) error {
	for _, driverID := range sol.Drivers() {
		if allows(checks, sol, driverID, shiftID) {
			return sol.AddAssignment(driverID, shiftID)
		}
	}

	shift, ok := sol.Shifts().Get(shiftID)
	if !ok {
		return rosterdomain.NewInfeasibleMoveError("unknown shift")
	}
	if err := shift.Validate(sol.Regime().MaxDailyMinutes); err != nil {
		return err
	}

	driverID := sol.NewDriver(cycleN, shift.Date)
	if !allows(checks, sol, driverID, shiftID) {
		sol.DropDriver(driverID)
		return &rosterdomain.UnreachableShiftError{Shift: shift, Reason: "infeasible even on a fresh driver"}
	}
	return sol.AddAssignment(driverID, shiftID)
}

func sortDatesAsc(ds []rosterdomain.Date) {
	for i := 1; i < len(ds); i++ {
		j := i
		for j > 0 && ds[j-1].Time().After(ds[j].Time()) {
			ds[j-1], ds[j] = ds[j], ds[j-1]
			j--
		}
	}
}
