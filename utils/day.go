package utils

import (
	"time"
)

// "Today" is always evaluated in a fixed reference time zone (US Eastern) so
// the day boundary doesn't drift with the caller's location.
var refLoc = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// DayStart truncates t to midnight of its calendar day in the reference zone.
func DayStart(t time.Time) time.Time {
	tt := t.In(refLoc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, refLoc)
}

// DayWindow returns the half-open [start, end) window for the day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.Add(24 * time.Hour)
}

// ParseDay parses a YYYY-MM-DD string as midnight in the reference zone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, refLoc)
}
