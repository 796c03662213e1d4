package rosterdomain

import "fmt"

// Violation describes one failed invariant found by Validate.
type Violation struct {
	Kind   string
	Detail string
}

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Kind, v.Detail) }

// Validate independently re-checks every invariant in the data model
// directly from the raw shift list and solution assignments — it does not
// consult the cached bitsets or conflict sets C3/C4/C5 build, so a bug in
// those caches cannot hide from this check.
func Validate(sol *Solution) []Violation {
	var violations []Violation

	violations = append(violations, checkCoverage(sol)...)
	for _, id := range sol.Drivers() {
		violations = append(violations, checkDriver(sol, id)...)
	}
	return violations
}

func checkCoverage(sol *Solution) []Violation {
	var v []Violation
	seen := make(map[ShiftID]int)
	for _, id := range sol.shifts.Ordered() {
		if _, ok := sol.AssignmentOf(id); ok {
			seen[id]++
		}
	}
	for _, id := range sol.shifts.Ordered() {
		switch seen[id] {
		case 0:
			v = append(v, Violation{"coverage", fmt.Sprintf("shift %d has no assignment", id)})
		case 1:
			// fine
		default:
			v = append(v, Violation{"coverage", fmt.Sprintf("shift %d assigned %d times", id, seen[id])})
		}
	}
	return v
}

func checkDriver(sol *Solution, id DriverID) []Violation {
	var v []Violation
	cycle := sol.DriverCycle(id)
	workStart := sol.DriverWorkStart(id)
	byDate := make(map[Date][]Shift)

	for _, sid := range sol.AssignedShiftIDs(id) {
		shift, ok := sol.shifts.Get(sid)
		if !ok {
			continue
		}
		m := 2 * cycle
		delta := shift.Date.DaysSince(workStart) % m
		if delta < 0 {
			delta += m
		}
		if delta >= cycle {
			v = append(v, Violation{"cycle-legality", fmt.Sprintf("driver %d shift %d on %s falls on a rest day (day-in-cycle %d)", id, sid, shift.Date, delta)})
		}
		byDate[shift.Date] = append(byDate[shift.Date], shift)
	}

	dates := make([]Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sortDates(dates)

	for _, d := range dates {
		shifts := byDate[d]
		sortShiftsByStart(shifts)

		total := 0
		for _, s := range shifts {
			total += s.Duration
		}
		if total > 14*60 {
			v = append(v, Violation{"daily-cap", fmt.Sprintf("driver %d on %s: %d minutes > 840", id, d, total)})
		}

		for i := 1; i < len(shifts); i++ {
			prev, cur := shifts[i-1], shifts[i]
			if cur.StartMinute < prev.EndMinute() {
				v = append(v, Violation{"no-overlap", fmt.Sprintf("driver %d shifts %d and %d overlap on %s", id, prev.ID, cur.ID, d)})
				continue
			}
			gap := cur.StartMinute - prev.EndMinute()
			if gap < 300 {
				v = append(v, Violation{"intra-day-rest", fmt.Sprintf("driver %d shifts %d->%d gap %dm < 300 on %s", id, prev.ID, cur.ID, gap, d)})
			}
		}

		if next, ok := byDate[d.AddDays(1)]; ok && len(shifts) > 0 && len(next) > 0 {
			lastToday := shifts[len(shifts)-1]
			sortShiftsByStart(next)
			firstTomorrow := next[0]
			gap := (1440 - lastToday.EndMinute()) + firstTomorrow.StartMinute
			if gap < 600 {
				v = append(v, Violation{"inter-day-rest", fmt.Sprintf("driver %d shifts %d->%d gap %dm < 600 across %s/%s", id, lastToday.ID, firstTomorrow.ID, gap, d, d.AddDays(1))})
			}
		}
	}
	return v
}

func sortDates(ds []Date) {
	for i := 1; i < len(ds); i++ {
		j := i
		for j > 0 && ds[j-1].Time().After(ds[j].Time()) {
			ds[j-1], ds[j] = ds[j], ds[j-1]
			j--
		}
	}
}

func sortShiftsByStart(ss []Shift) {
	for i := 1; i < len(ss); i++ {
		j := i
		for j > 0 && ss[j-1].StartMinute > ss[j].StartMinute {
			ss[j-1], ss[j] = ss[j], ss[j-1]
			j--
		}
	}
}
