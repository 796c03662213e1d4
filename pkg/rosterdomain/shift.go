package rosterdomain

import "fmt"

// ShiftID is an opaque handle assigned by the Shift Expander. Shifts never
// reference their assigned driver; Assignments are the sole source of truth
// for that relationship.
type ShiftID int

// Shift is a single dated service instance: a service-identity, a start
// minute-of-day, a duration, and the date it falls on. StartMinute is always
// in [0, 1440); EndMinute may exceed 1440 when the shift crosses midnight, in
// which case the remainder belongs to the following calendar date for
// bitset/rest purposes.
type Shift struct {
	ID          ShiftID
	ServiceID   string
	ShiftNumber int
	Date        Date
	StartMinute int
	Duration    int
	ServiceType string
	Vehicle     string
}

// EndMinute is StartMinute+Duration, which may exceed 1440.
func (s Shift) EndMinute() int { return s.StartMinute + s.Duration }

// Validate checks the hard invariants from the data model: duration > 0,
// start in [0, 1440), and a derived end strictly after start.
func (s Shift) Validate(maxDailyMinutes int) error {
	if s.Duration <= 0 {
		return &InvalidShiftError{Shift: s, Reason: "duration must be positive"}
	}
	if s.StartMinute < 0 || s.StartMinute >= 1440 {
		return &InvalidShiftError{Shift: s, Reason: fmt.Sprintf("start minute %d out of range [0,1440)", s.StartMinute)}
	}
	if s.EndMinute() <= s.StartMinute {
		return &InvalidShiftError{Shift: s, Reason: "end must be after start"}
	}
	if s.Duration > maxDailyMinutes {
		return &InvalidShiftError{Shift: s, Reason: fmt.Sprintf("duration %dm exceeds daily cap %dm", s.Duration, maxDailyMinutes)}
	}
	return nil
}

// ShiftIndex is the immutable, read-only set of shifts produced by C1. It is
// shared by pointer across every clone of a Solution and across every
// goroutine in an independent multi-start run.
type ShiftIndex struct {
	byID  map[ShiftID]Shift
	order []ShiftID
}

// NewShiftIndex builds a lookup index over shifts, in the order given.
func NewShiftIndex(shifts []Shift) *ShiftIndex {
	idx := &ShiftIndex{
		byID:  make(map[ShiftID]Shift, len(shifts)),
		order: make([]ShiftID, 0, len(shifts)),
	}
	for _, s := range shifts {
		idx.byID[s.ID] = s
		idx.order = append(idx.order, s.ID)
	}
	return idx
}

func (idx *ShiftIndex) Get(id ShiftID) (Shift, bool) {
	s, ok := idx.byID[id]
	return s, ok
}

func (idx *ShiftIndex) MustGet(id ShiftID) Shift {
	s, ok := idx.byID[id]
	if !ok {
		panic(fmt.Sprintf("rosterdomain: unknown shift id %d", id))
	}
	return s
}

func (idx *ShiftIndex) Len() int { return len(idx.order) }

// Ordered returns shift ids in the order the index was built (deterministic
// traversal order for anything that must not depend on map iteration).
func (idx *ShiftIndex) Ordered() []ShiftID {
	out := make([]ShiftID, len(idx.order))
	copy(out, idx.order)
	return out
}

// ByDate buckets shift ids by civil date, each bucket sorted by start minute.
func (idx *ShiftIndex) ByDate() map[Date][]ShiftID {
	buckets := make(map[Date][]ShiftID)
	for _, id := range idx.order {
		s := idx.byID[id]
		buckets[s.Date] = append(buckets[s.Date], id)
	}
	for d, ids := range buckets {
		sortByStartMinute(ids, idx.byID)
		buckets[d] = ids
	}
	return buckets
}

func sortByStartMinute(ids []ShiftID, byID map[ShiftID]Shift) {
	// insertion sort: per-day shift counts are small, and this keeps the
	// ordering stable without pulling in sort.Slice's reflection overhead.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && byID[ids[j-1]].StartMinute > byID[ids[j]].StartMinute {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}
