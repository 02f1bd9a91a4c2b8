package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"17:30", 1050},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) failed: %v", c.in, err)
		}
		if got != c.minutes {
			t.Fatalf("ParseTimeOfDay(%q) = %d, want %d", c.in, got, c.minutes)
		}
	}
}

func TestParseTimeOfDay_Malformed(t *testing.T) {
	for _, in := range []string{"", "9am", "25:00", "09:60", "09-30", "0900"} {
		_, err := ParseTimeOfDay(in)
		if !errors.Is(err, ErrMalformedTime) {
			t.Fatalf("ParseTimeOfDay(%q): expected ErrMalformedTime, got %v", in, err)
		}
	}
}

func TestAt_AnchorsToReferenceZone(t *testing.T) {
	loc := mustLoc(t)
	// A UTC instant late on March 2 is still March 2 in Bogota (UTC-5).
	date := time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)

	got := At(date, 9*60, loc)
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("At = %s, want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
	}
}
