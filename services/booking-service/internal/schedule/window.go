package schedule

import (
	"context"
	"fmt"
	"time"
)

// Window is a staff member's working interval for one calendar day,
// expressed as absolute instants in the reference zone.
type Window struct {
	Start time.Time
	End   time.Time
}

// TimeOfDayWindow is the stored weekly configuration: wall-clock bounds
// ("HH:MM") that still need anchoring to a concrete day.
type TimeOfDayWindow struct {
	Start string
	End   string
}

// WindowSource looks up the active availability window for a staff member at
// a location on a weekday. At most one active window exists per
// (staff, location, weekday); the store enforces that with a partial unique
// index.
type WindowSource interface {
	FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (TimeOfDayWindow, bool, error)
}

type Resolver struct {
	windows WindowSource
	loc     *time.Location
}

func NewResolver(windows WindowSource, loc *time.Location) *Resolver {
	return &Resolver{windows: windows, loc: loc}
}

// Resolve returns the working window for (location, staff) on the calendar
// day of date, derived in the reference zone. ErrNotAvailable means the
// staff member does not work that day. Overnight windows (end before start)
// are a configuration error, not a wraparound case.
func (r *Resolver) Resolve(ctx context.Context, locationID, staffID string, date time.Time) (Window, error) {
	day := date.In(r.loc)
	tw, ok, err := r.windows.FindActiveWindow(ctx, locationID, staffID, day.Weekday())
	if err != nil {
		return Window{}, err
	}
	if !ok {
		return Window{}, ErrNotAvailable
	}

	startMin, err := ParseTimeOfDay(tw.Start)
	if err != nil {
		return Window{}, err
	}
	endMin, err := ParseTimeOfDay(tw.End)
	if err != nil {
		return Window{}, err
	}
	if endMin <= startMin {
		return Window{}, fmt.Errorf("availability window %s-%s ends before it starts", tw.Start, tw.End)
	}

	return Window{
		Start: At(day, startMin, r.loc),
		End:   At(day, endMin, r.loc),
	}, nil
}
