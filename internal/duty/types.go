// Package duty evaluates on-duty coverage and resolves the smallest search
// radius with complete coverage over a date window.
package duty

import "time"

// Shift types as reported by the duty-roster feed.
const (
	ShiftDay   = "DAY"
	ShiftNight = "NIGHT"
)

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Duty is one on-call shift record from the external feed. Records are
// consumed only, never persisted.
type Duty struct {
	// Day is the calendar date of the shift, formatted 2006-01-02.
	Day string
	// Shift is ShiftDay or ShiftNight.
	Shift string
	// Location is the coordinates of the subject on duty.
	Location Point
	// Located reports whether the feed supplied coordinates for this record.
	Located bool
}

// Window is an inclusive date range.
type Window struct {
	From time.Time
	To   time.Time
}

// dayKey renders a timestamp as the feed's calendar-date key.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
