package rosterdomain

import "time"

// Date is a calendar date with no time-of-day or location component, used as
// a map key throughout the core (shifts, bitsets, driver cycles all index by
// civil date, not by time.Time instant).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its civil date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns the UTC midnight instant for d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysSince returns the number of days between other and d (d - other).
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool  { return d.Time().After(other.Time()) }
func (d Date) String() string         { return d.Time().Format("2006-01-02") }
