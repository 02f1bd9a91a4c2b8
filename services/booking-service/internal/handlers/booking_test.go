package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jp-osorio/citabook/libs/auth"
	"github.com/jp-osorio/citabook/services/booking-service/internal/outbox"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// recordingTx satisfies pgx.Tx for the single Exec path the outbox insert
// uses; every other method panics through the embedded nil interface.
type recordingTx struct {
	pgx.Tx
	execErr error
	args    [][]any
}

func (t *recordingTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	t.args = append(t.args, args)
	return pgconn.CommandTag{}, nil
}

func testHandler(offsets []time.Duration) *BookingHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBookingHandler(nil, nil, outbox.NewRepository(nil), logger, schedule.Config{}, offsets)
}

func TestEnqueueReminders_SkipsPastOffsets(t *testing.T) {
	h := testHandler([]time.Duration{24 * time.Hour, 72 * time.Hour})
	tx := &recordingTx{}
	appt := schedule.Appointment{
		ID:        "appt-1",
		CompanyID: "co-1",
		Start:     time.Now().UTC().Add(48 * time.Hour),
	}

	if err := h.enqueueReminders(context.Background(), tx, appt); err != nil {
		t.Fatalf("enqueueReminders: %v", err)
	}
	if len(tx.args) != 1 {
		t.Fatalf("inserted %d events, want 1 (72h offset lies in the past)", len(tx.args))
	}
	if got := tx.args[0][2]; got != "booking.reminder.requested.v1" {
		t.Fatalf("event type = %v, want booking.reminder.requested.v1", got)
	}
}

func TestEnqueueReminders_PropagatesInsertError(t *testing.T) {
	h := testHandler([]time.Duration{time.Hour})
	wantErr := errors.New("tx aborted")
	tx := &recordingTx{execErr: wantErr}
	appt := schedule.Appointment{ID: "appt-1", Start: time.Now().UTC().Add(4 * time.Hour)}

	if err := h.enqueueReminders(context.Background(), tx, appt); !errors.Is(err, wantErr) {
		t.Fatalf("enqueueReminders err = %v, want %v", err, wantErr)
	}
}

func TestCanCreate(t *testing.T) {
	cases := []struct {
		role auth.Role
		want bool
	}{
		{auth.RoleCustomer, true},
		{auth.RoleAdmin, true},
		{auth.RoleSuperAdmin, true},
		{auth.RoleStaff, false},
	}
	for _, tc := range cases {
		if got := canCreate(identity{Role: tc.role}); got != tc.want {
			t.Fatalf("canCreate(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCanView(t *testing.T) {
	appt := schedule.Appointment{
		ID:         "appt-1",
		CompanyID:  "co-1",
		StaffID:    "staff-1",
		CustomerID: "cust-1",
	}
	cases := []struct {
		name   string
		caller identity
		want   bool
	}{
		{"superadmin sees all", identity{Role: auth.RoleSuperAdmin}, true},
		{"admin same company", identity{Role: auth.RoleAdmin, CompanyID: "co-1"}, true},
		{"admin other company", identity{Role: auth.RoleAdmin, CompanyID: "co-2"}, false},
		{"staff own agenda", identity{Role: auth.RoleStaff, UserID: "staff-1"}, true},
		{"staff other agenda", identity{Role: auth.RoleStaff, UserID: "staff-2"}, false},
		{"customer own booking", identity{Role: auth.RoleCustomer, UserID: "cust-1"}, true},
		{"customer other booking", identity{Role: auth.RoleCustomer, UserID: "cust-2"}, false},
	}
	for _, tc := range cases {
		if got := canView(tc.caller, appt); got != tc.want {
			t.Fatalf("%s: canView = %v, want %v", tc.name, got, tc.want)
		}
	}
}
