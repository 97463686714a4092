package sequence

import "time"

// DayRange is an immutable calendar-day window in the given location.
type DayRange struct {
	Start time.Time
	End   time.Time
}

// Key returns the YYYYMMDD key for the day.
func (d DayRange) Key() string {
	return d.Start.Format("20060102")
}

// Contains reports whether t falls inside the day window.
func (d DayRange) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// DayOf returns the calendar-day window containing t. The end bound is the
// start of the following day, so the window is half-open [Start, End).
func DayOf(t time.Time) DayRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DayRange{
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}
