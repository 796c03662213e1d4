// Package bitset implements the per-(driver,date) minute-occupancy map: a
// fixed 1440-bit array (23 64-bit words) supporting O(1) word-level overlap,
// daily-cap, and rest-gap primitives.
package bitset

import "math/bits"

const (
	minutesPerDay = 1440
	words         = 23 // ceil(1440/64)
)

// Day is a 1440-bit occupancy map for a single (driver, date) pair, plus a
// cached popcount. It is a cache rebuilt from assignments, never the source
// of truth.
type Day struct {
	w        [words]uint64
	popcount int
}

func bitRange(lo, hi int) (wLo, bLo, wHi, bHi int) {
	return lo / 64, lo % 64, hi / 64, hi % 64
}

// Set marks minutes [lo, hi) as occupied. lo and hi must satisfy
// 0 <= lo < hi <= 1440.
func (d *Day) Set(lo, hi int) {
	d.popcount -= d.popCountRange(lo, hi)
	d.forEachWord(lo, hi, func(idx int, mask uint64) {
		d.w[idx] |= mask
	})
	d.popcount += hi - lo
}

// Clear unmarks minutes [lo, hi).
func (d *Day) Clear(lo, hi int) {
	d.popcount -= d.popCountRange(lo, hi)
	d.forEachWord(lo, hi, func(idx int, mask uint64) {
		d.w[idx] &^= mask
	})
}

func (d *Day) forEachWord(lo, hi int, f func(idx int, mask uint64)) {
	if lo >= hi {
		return
	}
	if hi > minutesPerDay {
		hi = minutesPerDay
	}
	wLo, bLo, wHi, bHi := bitRange(lo, hi)
	if wLo == wHi {
		mask := onesMask(bLo, bHi)
		f(wLo, mask)
		return
	}
	f(wLo, onesMask(bLo, 64))
	for i := wLo + 1; i < wHi; i++ {
		f(i, ^uint64(0))
	}
	if bHi > 0 {
		f(wHi, onesMask(0, bHi))
	}
}

func onesMask(lo, hi int) uint64 {
	if lo >= hi {
		return 0
	}
	if hi-lo >= 64 {
		return ^uint64(0)
	}
	return ((uint64(1) << uint(hi-lo)) - 1) << uint(lo)
}

// PopCount returns the number of occupied minutes.
func (d *Day) PopCount() int { return d.popcount }

func (d *Day) popCountRange(lo, hi int) int {
	n := 0
	d.forEachWord(lo, hi, func(idx int, mask uint64) {
		n += bits.OnesCount64(d.w[idx] & mask)
	})
	return n
}

// Overlaps reports whether any minute in [lo, hi) is already occupied.
func (d *Day) Overlaps(lo, hi int) bool {
	return d.popCountRange(lo, hi) > 0
}

// FitsDaily reports whether adding [lo, hi) keeps the day's total occupied
// minutes at or under maxDailyMinutes. Per the daily-cap definition this is
// a sum of occupied minutes, not a first-to-last span.
func (d *Day) FitsDaily(lo, hi int, maxDailyMinutes int) bool {
	added := hi - lo
	if hi > minutesPerDay {
		added = minutesPerDay - lo
	}
	return d.popcount+added <= maxDailyMinutes
}

// FirstSet returns the lowest occupied minute, or -1 if the day is empty.
func (d *Day) FirstSet() int {
	for i := 0; i < words; i++ {
		if d.w[i] != 0 {
			return i*64 + bits.TrailingZeros64(d.w[i])
		}
	}
	return -1
}

// LastSet returns the highest occupied minute, or -1 if the day is empty.
func (d *Day) LastSet() int {
	for i := words - 1; i >= 0; i-- {
		if d.w[i] != 0 {
			return i*64 + 63 - bits.LeadingZeros64(d.w[i])
		}
	}
	return -1
}

// NearestSetBefore returns the highest occupied minute strictly below pos,
// or -1 if none.
func (d *Day) NearestSetBefore(pos int) int {
	if pos <= 0 {
		return -1
	}
	wIdx := pos / 64
	// scan the partial word containing pos-1 first, then full words below it.
	hiBit := pos % 64
	w := d.w[wIdx] & onesMask(0, hiBit)
	if w != 0 {
		return wIdx*64 + 63 - bits.LeadingZeros64(w)
	}
	for i := wIdx - 1; i >= 0; i-- {
		if d.w[i] != 0 {
			return i*64 + 63 - bits.LeadingZeros64(d.w[i])
		}
	}
	return -1
}

// NearestSetAfter returns the lowest occupied minute at or above pos, or -1
// if none.
func (d *Day) NearestSetAfter(pos int) int {
	if pos >= minutesPerDay {
		return -1
	}
	wIdx := pos / 64
	loBit := pos % 64
	w := d.w[wIdx] &^ onesMask(0, loBit)
	if w != 0 {
		return wIdx*64 + bits.TrailingZeros64(w)
	}
	for i := wIdx + 1; i < words; i++ {
		if d.w[i] != 0 {
			return i*64 + bits.TrailingZeros64(d.w[i])
		}
	}
	return -1
}

// Clone returns an independent copy.
func (d *Day) Clone() *Day {
	cp := *d
	return &cp
}
