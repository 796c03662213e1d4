package lns

import (
	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

type operator int

const (
	opDropDriver operator = iota
	opDestroyWindow
	opDestroyService
	numOperators
)

func (o operator) name() string {
	switch o {
	case opDropDriver:
		return "drop_driver"
	case opDestroyWindow:
		return "destroy_window"
	case opDestroyService:
		return "destroy_service"
	}
	return "unknown"
}

// applyOperator mutates sol with the chosen destroy+repair move and reports
// whether the move produced a candidate worth evaluating. A false return
// means the caller discards sol (rollback) and counts a rejection.
func (e *Engine) applyOperator(sol *rosterdomain.Solution, op operator) bool {
	switch op {
	case opDropDriver:
		return dropLeastLoadedDriver(sol)
	case opDestroyWindow:
		return e.destroyWindow(sol)
	case opDestroyService:
		return e.destroyService(sol)
	}
	return false
}

// dropLeastLoadedDriver removes the driver with the fewest total minutes and
// reinserts its shifts in descending duration order. The move only stands if
// the net driver count decreased; otherwise the caller rolls back. Ties on
// load resolve to the earliest-created driver for determinism.
func dropLeastLoadedDriver(sol *rosterdomain.Solution) bool {
	drivers := sol.Drivers()
	if len(drivers) <= 1 {
		return false
	}
	victim := drivers[0]
	victimLoad := sol.TotalMinutes(victim)
	for _, id := range drivers[1:] {
		if load := sol.TotalMinutes(id); load < victimLoad {
			victim, victimLoad = id, load
		}
	}

	before := sol.DriverCount()
	removed := sol.DropDriver(victim)
	sortByDifficultyDesc(sol, removed)
	for _, shiftID := range removed {
		if err := repair(sol, shiftID); err != nil {
			return false
		}
	}
	dropEmptyDrivers(sol)
	return sol.DriverCount() < before
}

// windowSizes are the day-window widths destroy-window draws from.
var windowSizes = []int{3, 4}

// destroyWindow removes every assignment in a random 3-to-4-day window and
// reinserts the freed shifts in descending difficulty order.
func (e *Engine) destroyWindow(sol *rosterdomain.Solution) bool {
	dates := assignedDates(sol)
	if len(dates) == 0 {
		return false
	}
	size := windowSizes[e.rng.Intn(len(windowSizes))]
	if size > len(dates) {
		size = len(dates)
	}
	start := 0
	if len(dates) > size {
		start = e.rng.Intn(len(dates) - size + 1)
	}
	window := make(map[rosterdomain.Date]struct{}, size)
	for _, d := range dates[start : start+size] {
		window[d] = struct{}{}
	}

	var freed []rosterdomain.ShiftID
	for _, shiftID := range sol.Shifts().Ordered() {
		shift := sol.Shifts().MustGet(shiftID)
		if _, in := window[shift.Date]; !in {
			continue
		}
		if _, assigned := sol.AssignmentOf(shiftID); assigned {
			sol.RemoveAssignment(shiftID)
			freed = append(freed, shiftID)
		}
	}
	if len(freed) == 0 {
		return false
	}
	return reinsert(sol, freed)
}

// destroyService removes every assignment of a random service's shifts and
// reinserts them.
func (e *Engine) destroyService(sol *rosterdomain.Solution) bool {
	services := assignedServices(sol)
	if len(services) == 0 {
		return false
	}
	target := services[e.rng.Intn(len(services))]

	var freed []rosterdomain.ShiftID
	for _, shiftID := range sol.Shifts().Ordered() {
		shift := sol.Shifts().MustGet(shiftID)
		if shift.ServiceID != target {
			continue
		}
		if _, assigned := sol.AssignmentOf(shiftID); assigned {
			sol.RemoveAssignment(shiftID)
			freed = append(freed, shiftID)
		}
	}
	if len(freed) == 0 {
		return false
	}
	return reinsert(sol, freed)
}

func reinsert(sol *rosterdomain.Solution, freed []rosterdomain.ShiftID) bool {
	sortByDifficultyDesc(sol, freed)
	for _, shiftID := range freed {
		if err := repair(sol, shiftID); err != nil {
			return false
		}
	}
	dropEmptyDrivers(sol)
	return true
}

// dropEmptyDrivers removes drivers left with no assignments after a destroy
// pass, so driver count always reflects drivers actually carrying shifts.
func dropEmptyDrivers(sol *rosterdomain.Solution) {
	for _, id := range sol.Drivers() {
		if len(sol.AssignedShiftIDs(id)) == 0 {
			sol.DropDriver(id)
		}
	}
}

// assignedDates returns the sorted distinct dates carrying at least one
// assignment.
func assignedDates(sol *rosterdomain.Solution) []rosterdomain.Date {
	seen := make(map[rosterdomain.Date]struct{})
	var dates []rosterdomain.Date
	for _, shiftID := range sol.Shifts().Ordered() {
		if _, ok := sol.AssignmentOf(shiftID); !ok {
			continue
		}
		d := sol.Shifts().MustGet(shiftID).Date
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sortDatesAsc(dates)
	return dates
}

// assignedServices returns the sorted distinct service ids carrying at least
// one assignment. Sorting keeps the PRNG draw deterministic.
func assignedServices(sol *rosterdomain.Solution) []string {
	seen := make(map[string]struct{})
	var services []string
	for _, shiftID := range sol.Shifts().Ordered() {
		if _, ok := sol.AssignmentOf(shiftID); !ok {
			continue
		}
		svc := sol.Shifts().MustGet(shiftID).ServiceID
		if _, dup := seen[svc]; dup {
			continue
		}
		seen[svc] = struct{}{}
		services = append(services, svc)
	}
	sortStringsAsc(services)
	return services
}

func sortDatesAsc(ds []rosterdomain.Date) {
	for i := 1; i < len(ds); i++ {
		j := i
		for j > 0 && ds[j-1].After(ds[j]) {
			ds[j-1], ds[j] = ds[j], ds[j-1]
			j--
		}
	}
}

func sortStringsAsc(ss []string) {
	for i := 1; i < len(ss); i++ {
		j := i
		for j > 0 && ss[j-1] > ss[j] {
			ss[j-1], ss[j] = ss[j], ss[j-1]
			j--
		}
	}
}
