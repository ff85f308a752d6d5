// Package engine implements cost and growth accounting for a feedlot.
//
// Every function is a pure computation over a models.Snapshot. Dates are
// compared at day granularity: callers may pass timestamps in any location
// and they are truncated to the calendar day they fall on.
package engine

import "time"

const hoursPerDay = 24

// Day truncates t to midnight of its calendar day, expressed in UTC so that
// day arithmetic is unaffected by daylight saving transitions.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours() / hoursPerDay)
}

// DaysBetweenInclusive counts the calendar days in [start, end]; it is zero
// when end precedes start.
func DaysBetweenInclusive(start, end time.Time) int {
	days := DaysBetween(start, end) + 1
	if days < 0 {
		return 0
	}
	return days
}

// Interval is a closed range of calendar days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval normalised to day granularity.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: Day(start), End: Day(end)}
}

// Empty reports whether the interval contains no day.
func (i Interval) Empty() bool {
	return Day(i.Start).After(Day(i.End))
}

// Days returns the inclusive day count of the interval.
func (i Interval) Days() int {
	return DaysBetweenInclusive(i.Start, i.End)
}

// Contains reports whether day falls inside the interval.
func (i Interval) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(i.Start)) && !d.After(Day(i.End))
}

// Intersect returns the overlap of a and b. ok is false when they do not overlap.
func Intersect(a, b Interval) (Interval, bool) {
	start := laterOf(Day(a.Start), Day(b.Start))
	end := earlierOf(Day(a.End), Day(b.End))
	if start.After(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// EachDay calls fn for every day of the interval in ascending order.
func (i Interval) EachDay(fn func(day time.Time)) {
	for d := Day(i.Start); !d.After(Day(i.End)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
