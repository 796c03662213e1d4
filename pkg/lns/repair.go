package lns

import "github.com/faena-transit/rosterizer/pkg/rosterdomain"

// repair reinserts shiftID into sol: scan existing drivers in deterministic
// (increasing-id) order and assign to the first one CanAssign accepts; if
// none accepts, spawn a new driver anchored on the shift's date.
func repair(sol *rosterdomain.Solution, shiftID rosterdomain.ShiftID) error {
	shift, ok := sol.Shifts().Get(shiftID)
	if !ok {
		return rosterdomain.NewInfeasibleMoveError("repair: unknown shift")
	}
	for _, driverID := range sol.Drivers() {
		if sol.CanAssign(driverID, shiftID) {
			return sol.AddAssignment(driverID, shiftID)
		}
	}
	driverID := sol.NewDriver(sol.Regime().CycleN, shift.Date)
	if !sol.CanAssign(driverID, shiftID) {
		sol.DropDriver(driverID)
		return rosterdomain.NewInfeasibleMoveError("repair: shift infeasible even on a fresh driver")
	}
	return sol.AddAssignment(driverID, shiftID)
}

// sortByDifficultyDesc orders ids by descending duration, then by
// descending conflict-set size as a tiebreaker — the order destroy-window
// and destroy-service reinsert removed shifts in, so the hardest shifts to
// place get first pick of driver capacity.
func sortByDifficultyDesc(sol *rosterdomain.Solution, ids []rosterdomain.ShiftID) {
	conflicts := sol.Conflicts()
	key := func(id rosterdomain.ShiftID) (int, int) {
		shift, _ := sol.Shifts().Get(id)
		return shift.Duration, len(conflicts[id])
	}
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 {
			durJ, setJ := key(ids[j])
			durJm1, setJm1 := key(ids[j-1])
			if durJm1 > durJ || (durJm1 == durJ && setJm1 >= setJ) {
				break
			}
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}
