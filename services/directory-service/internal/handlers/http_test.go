package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		min  int
		want bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"17:30", 1050, true},
		{"23:59", 1439, true},
		{" 09:00 ", 540, true},
		{"24:00", 0, false},
		{"9:00:00", 0, false},
		{"0900", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		min, ok := parseClock(tc.in)
		if ok != tc.want {
			t.Fatalf("parseClock(%q) ok = %v, want %v", tc.in, ok, tc.want)
		}
		if ok && min != tc.min {
			t.Fatalf("parseClock(%q) = %d, want %d", tc.in, min, tc.min)
		}
	}
}

func TestRequireManager(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"superadmin", true},
		{"staff", false},
		{"customer", false},
		{"owner", false},
		{"", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/directory/services", nil)
		if tc.role != "" {
			req.Header.Set("X-Role", tc.role)
		}
		rec := httptest.NewRecorder()
		got := requireManager(rec, req)
		if got != tc.want {
			t.Fatalf("requireManager role %q = %v, want %v", tc.role, got, tc.want)
		}
		if !tc.want && rec.Code != http.StatusForbidden {
			t.Fatalf("role %q: status = %d, want %d", tc.role, rec.Code, http.StatusForbidden)
		}
	}
}
