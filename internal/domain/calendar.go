package domain

import (
	"time"
)

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayCount returns the inclusive number of calendar days, in loc, between
// start and end. Both instants are truncated to local midnight first, so
// the result never drifts across daylight-saving transitions as long as
// the same location is used everywhere. A same-day rental counts as one
// day; an inverted range is floored to one day as well.
func DayCount(start, end time.Time, loc *time.Location) int {
	s := Midnight(start, loc)
	e := Midnight(end, loc)
	if e.Before(s) {
		return 1
	}
	// The span between two local midnights is a whole number of days give
	// or take a DST hour; rounding the hour count absorbs the shift.
	days := int(e.Sub(s).Hours()/24+0.5) + 1
	if days < 1 {
		return 1
	}
	return days
}

// MonthWindow is the closed interval covering one calendar month in a
// specific location, from the first instant of the month through its last.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// MonthWindowFor resolves a "YYYY-MM" token to the month's window in loc.
// An empty or malformed token falls back to the month containing now
// rather than failing, so reporting endpoints degrade to "this month".
func MonthWindowFor(token string, now time.Time, loc *time.Location) MonthWindow {
	var y int
	var m time.Month
	if t, err := time.ParseInLocation("2006-01", token, loc); err == nil {
		y, m = t.Year(), t.Month()
	} else {
		local := now.In(loc)
		y, m = local.Year(), local.Month()
	}
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return MonthWindow{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Nanosecond),
	}
}

// Contains reports whether t falls inside the window, inclusive at both
// bounds. Zero instants are never contained, so records with a missing
// "when" are excluded from aggregation instead of counting as epoch zero.
func (w MonthWindow) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// OverlapsRange reports whether the closed interval [start, end] shares any
// instant with the window. Used for revenue reporting, where a reservation
// spanning a month boundary counts toward both months.
func (w MonthWindow) OverlapsRange(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return Overlaps(start, end, w.Start, w.End)
}
