package rosterdomain

import "github.com/faena-transit/rosterizer/pkg/bitset"

// DriverID is an opaque handle assigned by the Greedy Constructor or, later,
// by LNS/ALNS repair when no existing driver can host a shift.
type DriverID int

// RegimeConfig carries the mining-faena regime constants (cycle length and
// the three hour limits) through the call graph as a single immutable
// value, replacing the scattered regime constants of the source.
type RegimeConfig struct {
	CycleN                 int
	MaxDailyMinutes        int
	MinSameDayRestMinutes  int
	MinInterDayRestMinutes int
}

// DefaultRegimeConfig returns the mining-faena defaults from the
// Configuration Surface.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		CycleN:                 7,
		MaxDailyMinutes:        840,
		MinSameDayRestMinutes:  300,
		MinInterDayRestMinutes: 600,
	}
}

type driverRecord struct {
	id        DriverID
	cycle     int
	workStart Date
	shiftSet  map[ShiftID]struct{}
}

// Solution is the in-memory representation of drivers, assignments, and
// derived per-driver-per-day bitsets. Assignments are the source of truth;
// drivers hold only ids, shifts hold no back-reference. It is not
// goroutine-safe: independent multi-start runs each own their own Solution,
// sharing only the read-only ShiftIndex and ConflictSets.
type Solution struct {
	shifts    *ShiftIndex
	conflicts ConflictSets
	cfg       RegimeConfig

	drivers      map[DriverID]*driverRecord
	driverOrder  []DriverID
	nextDriverID DriverID
	assignments  map[ShiftID]DriverID
	bitsets      map[DriverID]map[Date]*bitset.Day
}

// ConflictSets maps a shift-id to the set of shift-ids it cannot share a
// driver with. Built once by the Conflict-Set Builder and treated as
// read-only and immutable thereafter.
type ConflictSets map[ShiftID]map[ShiftID]struct{}

// Conflicts returns the conflict set for s, which may be nil.
func (c ConflictSets) Conflicts(s ShiftID) map[ShiftID]struct{} { return c[s] }

// NewSolution creates an empty solution over the given shared shift index,
// conflict sets, and regime config.
func NewSolution(shifts *ShiftIndex, conflicts ConflictSets, cfg RegimeConfig) *Solution {
	return &Solution{
		shifts:      shifts,
		conflicts:   conflicts,
		cfg:         cfg,
		drivers:     make(map[DriverID]*driverRecord),
		assignments: make(map[ShiftID]DriverID),
		bitsets:     make(map[DriverID]map[Date]*bitset.Day),
	}
}

func (s *Solution) Shifts() *ShiftIndex   { return s.shifts }
func (s *Solution) Conflicts() ConflictSets { return s.conflicts }
func (s *Solution) Regime() RegimeConfig  { return s.cfg }

// NewDriver creates a driver with the given cycle length and work-start-date
// and returns its id. Callers set workStart to the first day the driver
// works, so the new driver begins its cycle that day.
func (s *Solution) NewDriver(cycle int, workStart Date) DriverID {
	id := s.nextDriverID
	s.nextDriverID++
	s.drivers[id] = &driverRecord{id: id, cycle: cycle, workStart: workStart, shiftSet: make(map[ShiftID]struct{})}
	s.bitsets[id] = make(map[Date]*bitset.Day)
	s.driverOrder = append(s.driverOrder, id)
	return id
}

// AdoptDriver inserts a driver under an explicit id rather than allocating a
// fresh one, so a driver can keep the same identity across solutions (e.g.
// when the Annual Replicator carries a driver from the source month's
// solution into the target month's).
func (s *Solution) AdoptDriver(id DriverID, cycle int, workStart Date) {
	s.drivers[id] = &driverRecord{id: id, cycle: cycle, workStart: workStart, shiftSet: make(map[ShiftID]struct{})}
	s.bitsets[id] = make(map[Date]*bitset.Day)
	s.driverOrder = append(s.driverOrder, id)
	if id >= s.nextDriverID {
		s.nextDriverID = id + 1
	}
}

// DropDriver removes a driver and every one of its assignments, returning
// the shift ids that are now unassigned (in ascending id order as recorded).
func (s *Solution) DropDriver(id DriverID) []ShiftID {
	rec, ok := s.drivers[id]
	if !ok {
		return nil
	}
	removed := make([]ShiftID, 0, len(rec.shiftSet))
	for shiftID := range rec.shiftSet {
		removed = append(removed, shiftID)
	}
	sortShiftIDs(removed)
	for _, shiftID := range removed {
		delete(s.assignments, shiftID)
	}
	delete(s.drivers, id)
	delete(s.bitsets, id)
	for i, dID := range s.driverOrder {
		if dID == id {
			s.driverOrder = append(s.driverOrder[:i], s.driverOrder[i+1:]...)
			break
		}
	}
	return removed
}

func sortShiftIDs(ids []ShiftID) {
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && ids[j-1] > ids[j] {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}

// IsWorkDay reports whether date D falls in driver d's work half of its
// cycle: ((D - workStart) mod 2N) < N.
func (s *Solution) IsWorkDay(id DriverID, d Date) bool {
	rec, ok := s.drivers[id]
	if !ok {
		return false
	}
	m := 2 * rec.cycle
	delta := d.DaysSince(rec.workStart) % m
	if delta < 0 {
		delta += m
	}
	return delta < rec.cycle
}

// ConflictsWithDriver reports whether shiftID's conflict set intersects any
// shift already assigned to driver id, iterating whichever of the two sets
// is smaller.
func (s *Solution) ConflictsWithDriver(id DriverID, shiftID ShiftID) bool {
	rec, ok := s.drivers[id]
	if !ok {
		return false
	}
	c := s.conflicts[shiftID]
	if len(c) == 0 || len(rec.shiftSet) == 0 {
		return false
	}
	if len(c) < len(rec.shiftSet) {
		for other := range c {
			if _, assigned := rec.shiftSet[other]; assigned {
				return true
			}
		}
		return false
	}
	for other := range rec.shiftSet {
		if _, conflict := c[other]; conflict {
			return true
		}
	}
	return false
}

// FitsBitsetConstraints checks the C3 primitives (overlap, daily cap,
// intra-day rest, inter-day rest) for assigning shiftID to driver id,
// without mutating any state.
func (s *Solution) FitsBitsetConstraints(id DriverID, shiftID ShiftID) bool {
	shift, ok := s.shifts.Get(shiftID)
	if !ok {
		return false
	}
	lo, hi := shift.StartMinute, shift.EndMinute()
	today := s.dayBitset(id, shift.Date, false)
	if today != nil {
		if today.Overlaps(lo, hi) {
			return false
		}
		if !today.FitsDaily(lo, hi, s.cfg.MaxDailyMinutes) {
			return false
		}
		if before := today.NearestSetBefore(lo); before != -1 && lo-before-1 < s.cfg.MinSameDayRestMinutes {
			return false
		}
		if after := today.NearestSetAfter(hi); after != -1 && after-hi < s.cfg.MinSameDayRestMinutes {
			return false
		}
	}
	if hi > 1440 {
		spillHi := hi - 1440
		next := s.dayBitset(id, shift.Date.AddDays(1), false)
		if next != nil {
			if next.Overlaps(0, spillHi) {
				return false
			}
			if !next.FitsDaily(0, spillHi, s.cfg.MaxDailyMinutes) {
				return false
			}
		}
	}
	if prev := s.dayBitset(id, shift.Date.AddDays(-1), false); prev != nil {
		if last := prev.LastSet(); last != -1 {
			gap := lo + 1439 - last
			if gap < s.cfg.MinInterDayRestMinutes {
				return false
			}
		}
	}
	if next := s.dayBitset(id, shift.Date.AddDays(1), false); next != nil && hi <= 1440 {
		if first := next.FirstSet(); first != -1 {
			gap := (1440 - hi) + first
			if gap < s.cfg.MinInterDayRestMinutes {
				return false
			}
		}
	}
	return true
}

// CanAssign runs the full feasibility chain used by repair: work-day check,
// conflict-set veto, then the C3 bitset primitives.
func (s *Solution) CanAssign(id DriverID, shiftID ShiftID) bool {
	shift, ok := s.shifts.Get(shiftID)
	if !ok {
		return false
	}
	if !s.IsWorkDay(id, shift.Date) {
		return false
	}
	if s.ConflictsWithDriver(id, shiftID) {
		return false
	}
	return s.FitsBitsetConstraints(id, shiftID)
}

func (s *Solution) dayBitset(id DriverID, d Date, create bool) *bitset.Day {
	m, ok := s.bitsets[id]
	if !ok {
		if !create {
			return nil
		}
		m = make(map[Date]*bitset.Day)
		s.bitsets[id] = m
	}
	b, ok := m[d]
	if !ok {
		if !create {
			return nil
		}
		b = &bitset.Day{}
		m[d] = b
	}
	return b
}

// AddAssignment assigns shiftID to driver id, updating the driver's shift
// set and per-date bitsets. It does not itself check feasibility; callers
// that need a feasibility-checked assignment should call CanAssign first.
func (s *Solution) AddAssignment(id DriverID, shiftID ShiftID) error {
	rec, ok := s.drivers[id]
	if !ok {
		return NewInfeasibleMoveError("unknown driver")
	}
	shift, ok := s.shifts.Get(shiftID)
	if !ok {
		return NewInfeasibleMoveError("unknown shift")
	}
	rec.shiftSet[shiftID] = struct{}{}
	s.assignments[shiftID] = id

	lo, hi := shift.StartMinute, shift.EndMinute()
	todayHi := hi
	if todayHi > 1440 {
		todayHi = 1440
	}
	s.dayBitset(id, shift.Date, true).Set(lo, todayHi)
	if hi > 1440 {
		s.dayBitset(id, shift.Date.AddDays(1), true).Set(0, hi-1440)
	}
	return nil
}

// RemoveAssignment removes whatever assignment exists for shiftID, if any,
// reversing the bitset effects of AddAssignment.
func (s *Solution) RemoveAssignment(shiftID ShiftID) (DriverID, bool) {
	id, ok := s.assignments[shiftID]
	if !ok {
		return 0, false
	}
	shift, ok := s.shifts.Get(shiftID)
	if !ok {
		return 0, false
	}
	rec := s.drivers[id]
	delete(rec.shiftSet, shiftID)
	delete(s.assignments, shiftID)

	lo, hi := shift.StartMinute, shift.EndMinute()
	todayHi := hi
	if todayHi > 1440 {
		todayHi = 1440
	}
	if b := s.dayBitset(id, shift.Date, false); b != nil {
		b.Clear(lo, todayHi)
	}
	if hi > 1440 {
		if b := s.dayBitset(id, shift.Date.AddDays(1), false); b != nil {
			b.Clear(0, hi-1440)
		}
	}
	return id, true
}

// AssignmentOf returns the driver assigned to shiftID, if any.
func (s *Solution) AssignmentOf(shiftID ShiftID) (DriverID, bool) {
	id, ok := s.assignments[shiftID]
	return id, ok
}

// Drivers returns driver ids in creation order, excluding any dropped.
func (s *Solution) Drivers() []DriverID {
	out := make([]DriverID, len(s.driverOrder))
	copy(out, s.driverOrder)
	return out
}

func (s *Solution) DriverCount() int { return len(s.driverOrder) }

func (s *Solution) DriverCycle(id DriverID) int {
	if rec, ok := s.drivers[id]; ok {
		return rec.cycle
	}
	return 0
}

func (s *Solution) DriverWorkStart(id DriverID) Date {
	if rec, ok := s.drivers[id]; ok {
		return rec.workStart
	}
	return Date{}
}

// AssignedShiftIDs returns the shift ids currently assigned to driver id, in
// ascending order.
func (s *Solution) AssignedShiftIDs(id DriverID) []ShiftID {
	rec, ok := s.drivers[id]
	if !ok {
		return nil
	}
	out := make([]ShiftID, 0, len(rec.shiftSet))
	for sid := range rec.shiftSet {
		out = append(out, sid)
	}
	sortShiftIDs(out)
	return out
}

// TotalMinutes returns the sum of assigned shift durations for driver id.
func (s *Solution) TotalMinutes(id DriverID) int {
	total := 0
	for _, sid := range s.AssignedShiftIDs(id) {
		if shift, ok := s.shifts.Get(sid); ok {
			total += shift.Duration
		}
	}
	return total
}

// DaysWorked returns the number of distinct calendar dates driver id has an
// assignment on.
func (s *Solution) DaysWorked(id DriverID) int {
	rec, ok := s.drivers[id]
	if !ok {
		return 0
	}
	dates := make(map[Date]struct{})
	for sid := range rec.shiftSet {
		if shift, ok := s.shifts.Get(sid); ok {
			dates[shift.Date] = struct{}{}
		}
	}
	return len(dates)
}

// Unassigned returns the shift ids from the shared shift index that
// currently have no assignment, in shift-index order.
func (s *Solution) Unassigned() []ShiftID {
	var out []ShiftID
	for _, id := range s.shifts.Ordered() {
		if _, ok := s.assignments[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// CoverageComplete reports whether every shift in the shared index has an
// assignment.
func (s *Solution) CoverageComplete() bool {
	return len(s.assignments) == s.shifts.Len()
}

// TotalAssignedMinutes sums the duration of every currently-assigned shift.
// When coverage is complete this equals the sum of all input shift
// durations, a solution-independent constant used only as the secondary,
// effectively-inert tie-break in the LNS/ALNS acceptance rule (see
// DESIGN.md).
func (s *Solution) TotalAssignedMinutes() int {
	total := 0
	for sid := range s.assignments {
		if shift, ok := s.shifts.Get(sid); ok {
			total += shift.Duration
		}
	}
	return total
}

// Cost is the (primary, secondary) comparison key for SA acceptance and
// best-so-far tracking: fewer drivers is strictly better; among equal driver
// counts, more total assigned minutes is preferred (denser packing).
type Cost struct {
	Drivers      int
	TotalMinutes int
}

func (s *Solution) CostOf() Cost {
	return Cost{Drivers: s.DriverCount(), TotalMinutes: s.TotalAssignedMinutes()}
}

// Less reports whether a is strictly better than b.
func (a Cost) Less(b Cost) bool {
	if a.Drivers != b.Drivers {
		return a.Drivers < b.Drivers
	}
	return a.TotalMinutes > b.TotalMinutes
}

// Clone deep-copies drivers, assignments, and bitsets in O(|assignments|);
// the shared shift index, conflict sets, and regime config are reused by
// pointer/value since they are immutable for the lifetime of a search.
func (s *Solution) Clone() *Solution {
	cp := &Solution{
		shifts:       s.shifts,
		conflicts:    s.conflicts,
		cfg:          s.cfg,
		drivers:      make(map[DriverID]*driverRecord, len(s.drivers)),
		assignments:  make(map[ShiftID]DriverID, len(s.assignments)),
		bitsets:      make(map[DriverID]map[Date]*bitset.Day, len(s.bitsets)),
		driverOrder:  append([]DriverID(nil), s.driverOrder...),
		nextDriverID: s.nextDriverID,
	}
	for id, rec := range s.drivers {
		shiftSet := make(map[ShiftID]struct{}, len(rec.shiftSet))
		for sid := range rec.shiftSet {
			shiftSet[sid] = struct{}{}
		}
		cp.drivers[id] = &driverRecord{id: rec.id, cycle: rec.cycle, workStart: rec.workStart, shiftSet: shiftSet}
	}
	for sid, did := range s.assignments {
		cp.assignments[sid] = did
	}
	for id, byDate := range s.bitsets {
		m := make(map[Date]*bitset.Day, len(byDate))
		for d, b := range byDate {
			m[d] = b.Clone()
		}
		cp.bitsets[id] = m
	}
	return cp
}
