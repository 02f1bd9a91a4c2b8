package schedule

import (
	"testing"
	"time"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	return loc
}

func TestSlots_FullWindow(t *testing.T) {
	loc := mustLoc(t)
	// Monday 09:00-12:00, 30 minute service, nothing booked.
	window := Window{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 12, 0, 0, 0, loc),
	}

	slots := Slots(window, 30*time.Minute, nil)
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	for i, s := range slots {
		want := window.Start.Add(time.Duration(i) * 30 * time.Minute)
		if !s.Start.Equal(want) {
			t.Fatalf("slot %d: expected start %s, got %s", i, want.Format(time.RFC3339), s.Start.Format(time.RFC3339))
		}
		if s.End.Sub(s.Start) != 30*time.Minute {
			t.Fatalf("slot %d: expected 30m length, got %s", i, s.End.Sub(s.Start))
		}
		if s.Start.Before(window.Start) || s.End.After(window.End) {
			t.Fatalf("slot %d: %s-%s escapes window", i, s.Start, s.End)
		}
	}
}

func TestSlots_ExcludesBookedInterval(t *testing.T) {
	loc := mustLoc(t)
	window := Window{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 12, 0, 0, 0, loc),
	}
	busy := []Interval{{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 10, 30, 0, 0, loc),
	}}

	slots := Slots(window, 30*time.Minute, busy)
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Start.Before(busy[0].End) && busy[0].Start.Before(s.End) {
			t.Fatalf("slot %s-%s overlaps booked interval", s.Start, s.End)
		}
	}
}

func TestSlots_DropsTrailingPartialSlot(t *testing.T) {
	loc := mustLoc(t)
	// 09:00-10:45 with a 30m duration: 09:00, 09:30, 10:00 fit; 10:30 would
	// end at 11:00 and must be dropped, not truncated.
	window := Window{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 10, 45, 0, 0, loc),
	}

	slots := Slots(window, 30*time.Minute, nil)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	last := slots[len(slots)-1]
	if last.End.After(window.End) {
		t.Fatalf("trailing slot %s-%s crosses window end", last.Start, last.End)
	}
}

func TestSlots_AdjacentBookingDoesNotBlock(t *testing.T) {
	loc := mustLoc(t)
	window := Window{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 10, 0, 0, 0, loc),
	}
	// Half-open intervals: a booking ending exactly at 09:30 leaves 09:30 free.
	busy := []Interval{{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 9, 30, 0, 0, loc),
	}}

	slots := Slots(window, 30*time.Minute, busy)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(busy[0].End) {
		t.Fatalf("expected slot starting at 09:30, got %s", slots[0].Start)
	}
}

func TestSlots_DegenerateInputs(t *testing.T) {
	loc := mustLoc(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	if got := Slots(Window{Start: start, End: start}, 30*time.Minute, nil); got != nil {
		t.Fatalf("empty window should yield no slots, got %d", len(got))
	}
	if got := Slots(Window{Start: start, End: start.Add(time.Hour)}, 0, nil); got != nil {
		t.Fatalf("zero duration should yield no slots, got %d", len(got))
	}
}
