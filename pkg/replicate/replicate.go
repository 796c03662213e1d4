// Package replicate implements the Annual Replicator (C6): mapping a solved
// source-month solution onto a target month by day-in-cycle equivalence.
package replicate

import "github.com/faena-transit/rosterizer/pkg/rosterdomain"

type slotKey struct {
	dayInCycle int
	serviceID  string
	shiftNum   int
	vehicle    string
}

// Replicate maps every shift in targetShifts to the driver occupying the
// same (day-in-cycle, service-id, shift-number, vehicle) slot in the source
// solution. anchor is the source month's first day, used to compute
// day-in-cycle for both the source and target shifts so the modulus lines
// up across months. Drivers are preserved across months: the returned
// solution reuses the source solution's driver set unchanged.
//
// Target shifts with no matching slot are recorded as gaps and left
// unassigned in the returned solution; the caller decides whether to accept
// the partial result or re-run the Greedy Constructor and LNS/ALNS Engine
// for that month.
func Replicate(source *rosterdomain.Solution, anchor rosterdomain.Date, targetShifts *rosterdomain.ShiftIndex, conflicts rosterdomain.ConflictSets) (*rosterdomain.Solution, []rosterdomain.ShiftID) {
	cycleN := dominantCycle(source)
	m := 2 * cycleN

	index := make(map[slotKey]rosterdomain.DriverID)
	for _, sid := range source.Shifts().Ordered() {
		driverID, ok := source.AssignmentOf(sid)
		if !ok {
			continue
		}
		shift, _ := source.Shifts().Get(sid)
		index[slotOf(shift, anchor, m)] = driverID
	}

	target := rosterdomain.NewSolution(targetShifts, conflicts, source.Regime())
	preserveDrivers(source, target)

	var gaps []rosterdomain.ShiftID
	for _, sid := range targetShifts.Ordered() {
		shift, _ := targetShifts.Get(sid)
		driverID, ok := index[slotOf(shift, anchor, m)]
		if !ok {
			gaps = append(gaps, sid)
			continue
		}
		_ = target.AddAssignment(driverID, sid)
	}
	return target, gaps
}

func slotOf(shift rosterdomain.Shift, anchor rosterdomain.Date, m int) slotKey {
	delta := shift.Date.DaysSince(anchor) % m
	if delta < 0 {
		delta += m
	}
	return slotKey{dayInCycle: delta, serviceID: shift.ServiceID, shiftNum: shift.ShiftNumber, vehicle: shift.Vehicle}
}

// preserveDrivers carries every source driver into target under the same
// driver-id, cycle, and work-start-date: the annual solution uses exactly
// the source month's driver count and identities.
func preserveDrivers(source, target *rosterdomain.Solution) {
	for _, id := range source.Drivers() {
		target.AdoptDriver(id, source.DriverCycle(id), source.DriverWorkStart(id))
	}
}

// dominantCycle returns the cycle length shared by every driver in source.
// The mining-faena configuration uses a single N across all drivers; if the
// source is empty, the regime's configured N is used.
func dominantCycle(source *rosterdomain.Solution) int {
	for _, id := range source.Drivers() {
		return source.DriverCycle(id)
	}
	return source.Regime().CycleN
}
