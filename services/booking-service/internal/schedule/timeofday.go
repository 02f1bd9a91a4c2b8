package schedule

import (
	"fmt"
	"time"
)

// ParseTimeOfDay parses a wall-clock "HH:MM" value into minutes from
// midnight. Anything the layout cannot account for fails with
// ErrMalformedTime.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// At anchors a minutes-from-midnight value to the calendar day of date in
// loc, producing an absolute instant. All scheduling comparisons happen on
// instants produced this way; naive wall-clock values never cross package
// boundaries.
func At(date time.Time, minuteOfDay int, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, minuteOfDay, 0, 0, loc)
}
