package schedule

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Slots returns the bookable slots of length duration inside window, in
// chronological order. The cursor advances by duration (slot granularity
// equals the service duration; slots do not slide by a finer step). A
// trailing candidate whose end would pass the window end is dropped, never
// truncated. Candidates overlapping any busy interval are excluded.
//
// Pure function of its inputs; safe to call concurrently.
func Slots(window Window, duration time.Duration, busy []Interval) []Interval {
	if duration <= 0 || !window.End.After(window.Start) {
		return nil
	}

	var slots []Interval
	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(duration) {
		end := t.Add(duration)
		if !overlapsAny(t, end, busy) {
			slots = append(slots, Interval{Start: t, End: end})
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
