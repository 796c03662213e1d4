// Package conflictset precomputes, for every shift, the set of other shifts
// that cannot share a driver with it — same-day overlap or rest-gap
// violations, or cross-midnight adjacent-day rest-gap violations.
package conflictset

import (
	"gonum.org/v1/gonum/stat"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
)

// Diagnostics reports summary statistics about the built conflict sets.
type Diagnostics struct {
	AverageSetSize float64
	MaxSetSize     int
}

// Build computes the conflict sets and diagnostics for shifts, bucketing by
// date first so the cost is O(K*S) with K the average same/adjacent-day
// neighborhood size rather than O(S^2).
func Build(shifts *rosterdomain.ShiftIndex, cfg rosterdomain.RegimeConfig) (rosterdomain.ConflictSets, Diagnostics) {
	byDate := shifts.ByDate()
	conflicts := make(rosterdomain.ConflictSets, shifts.Len())

	for _, id := range shifts.Ordered() {
		conflicts[id] = make(map[rosterdomain.ShiftID]struct{})
	}

	for date, ids := range byDate {
		addSameDayConflicts(shifts, ids, cfg, conflicts)
		if next, ok := byDate[date.AddDays(1)]; ok {
			addAdjacentDayConflicts(shifts, ids, next, cfg, conflicts)
		}
	}

	sizes := make([]float64, 0, len(conflicts))
	maxSize := 0
	for _, set := range conflicts {
		n := len(set)
		sizes = append(sizes, float64(n))
		if n > maxSize {
			maxSize = n
		}
	}

	diag := Diagnostics{MaxSetSize: maxSize}
	if len(sizes) > 0 {
		diag.AverageSetSize = stat.Mean(sizes, nil)
	}
	return conflicts, diag
}

func link(conflicts rosterdomain.ConflictSets, a, b rosterdomain.ShiftID) {
	conflicts[a][b] = struct{}{}
	conflicts[b][a] = struct{}{}
}

func addSameDayConflicts(shifts *rosterdomain.ShiftIndex, ids []rosterdomain.ShiftID, cfg rosterdomain.RegimeConfig, conflicts rosterdomain.ConflictSets) {
	for i := 0; i < len(ids); i++ {
		a := shifts.MustGet(ids[i])
		for j := i + 1; j < len(ids); j++ {
			b := shifts.MustGet(ids[j])
			if sameDayConflict(a, b, cfg) {
				link(conflicts, a.ID, b.ID)
			}
		}
	}
}

func sameDayConflict(a, b rosterdomain.Shift, cfg rosterdomain.RegimeConfig) bool {
	if overlaps(a.StartMinute, a.EndMinute(), b.StartMinute, b.EndMinute()) {
		return true
	}
	gap := gapBetween(a.StartMinute, a.EndMinute(), b.StartMinute, b.EndMinute())
	return gap < cfg.MinSameDayRestMinutes
}

func overlaps(aLo, aHi, bLo, bHi int) bool {
	return aLo < bHi && bLo < aHi
}

// gapBetween returns the gap between two non-overlapping same-day
// intervals, whichever way round they fall.
func gapBetween(aLo, aHi, bLo, bHi int) int {
	if bLo >= aHi {
		return bLo - aHi
	}
	return aLo - bHi
}

func addAdjacentDayConflicts(shifts *rosterdomain.ShiftIndex, today, tomorrow []rosterdomain.ShiftID, cfg rosterdomain.RegimeConfig, conflicts rosterdomain.ConflictSets) {
	for _, aID := range today {
		a := shifts.MustGet(aID)
		for _, bID := range tomorrow {
			b := shifts.MustGet(bID)
			gap := (1440 - a.EndMinute()) + b.StartMinute
			if a.EndMinute() > 1440 {
				// a spills into tomorrow already; the gap runs from its
				// spilled end to b's start (negative when they overlap).
				gap = b.StartMinute - (a.EndMinute() - 1440)
			}
			if gap < cfg.MinInterDayRestMinutes {
				link(conflicts, a.ID, b.ID)
			}
		}
	}
}
