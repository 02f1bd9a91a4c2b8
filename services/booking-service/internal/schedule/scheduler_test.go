package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type windowKey struct {
	locationID string
	staffID    string
	weekday    time.Weekday
}

type fakeWindows struct {
	windows map[windowKey]TimeOfDayWindow
	lookups int
}

func (f *fakeWindows) FindActiveWindow(_ context.Context, locationID, staffID string, weekday time.Weekday) (TimeOfDayWindow, bool, error) {
	f.lookups++
	w, ok := f.windows[windowKey{locationID, staffID, weekday}]
	return w, ok, nil
}

type fakeServices map[string]Service

func (f fakeServices) GetService(_ context.Context, id string) (Service, bool, error) {
	svc, ok := f[id]
	return svc, ok, nil
}

type fakeStore struct {
	appts     map[string]Appointment
	nextID    int
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{appts: map[string]Appointment{}}
}

func (f *fakeStore) FindByStaffInRange(_ context.Context, staffID string, start, end time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appts {
		if a.StaffID == staffID && a.Start.Before(end) && start.Before(a.End) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Appointment, bool, error) {
	a, ok := f.appts[id]
	return a, ok, nil
}

func (f *fakeStore) Create(_ context.Context, appt Appointment) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("appt-%d", f.nextID)
	appt.ID = id
	f.appts[id] = appt
	return id, nil
}

func (f *fakeStore) Update(_ context.Context, appt Appointment) error {
	if _, ok := f.appts[appt.ID]; !ok {
		return errors.New("missing appointment")
	}
	f.appts[appt.ID] = appt
	return nil
}

type fixture struct {
	scheduler *Scheduler
	store     *fakeStore
	windows   *fakeWindows
	loc       *time.Location
}

// newFixture wires a scheduler with one staff member working Mondays
// 09:00-12:00 at loc-1 and a 30 minute service svc-30.
func newFixture(t *testing.T, policy ConflictPolicy) *fixture {
	t.Helper()
	loc := mustLoc(t)
	windows := &fakeWindows{windows: map[windowKey]TimeOfDayWindow{
		{"loc-1", "staff-1", time.Monday}: {Start: "09:00", End: "12:00"},
	}}
	services := fakeServices{
		"svc-30":  {ID: "svc-30", Name: "Corte", DurationMinutes: 30, Price: "25000.00"},
		"svc-180": {ID: "svc-180", Name: "Jornada", DurationMinutes: 180, Price: "90000.00"},
	}
	store := newFakeStore()
	scheduler := NewScheduler(Config{Location: loc, Conflict: policy}, services, windows, store)
	return &fixture{scheduler: scheduler, store: store, windows: windows, loc: loc}
}

func (fx *fixture) monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, fx.loc)
}

func (fx *fixture) createAt(t *testing.T, serviceID string, start time.Time) Appointment {
	t.Helper()
	appt, err := fx.scheduler.Create(context.Background(), CreateRequest{
		CustomerID: "cust-1",
		StaffID:    "staff-1",
		ServiceID:  serviceID,
		LocationID: "loc-1",
		CompanyID:  "co-1",
		Start:      start,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return appt
}

func TestCreate_PendingWithComputedEnd(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	if appt.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", appt.Status)
	}
	if !appt.End.Equal(fx.monday(9, 30)) {
		t.Fatalf("expected end 09:30, got %s", appt.End)
	}
}

func TestCreate_ExactWindowBoundaryAccepted(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	// 09:00 + 180m fills the window exactly; closed containment accepts it.
	appt := fx.createAt(t, "svc-180", fx.monday(9, 0))
	if !appt.End.Equal(fx.monday(12, 0)) {
		t.Fatalf("expected end 12:00, got %s", appt.End)
	}
}

func TestCreate_PastWindowEndRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	// 11:45 + 30m ends at 12:15, past the 12:00 close.
	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(11, 45),
	})
	if !errors.Is(err, ErrOutsideAvailability) {
		t.Fatalf("expected ErrOutsideAvailability, got %v", err)
	}
}

func TestCreate_BeforeWindowStartRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(8, 30),
	})
	if !errors.Is(err, ErrOutsideAvailability) {
		t.Fatalf("expected ErrOutsideAvailability, got %v", err)
	}
}

func TestCreate_DayOffRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	sunday := time.Date(2026, 3, 1, 9, 0, 0, 0, fx.loc)
	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: sunday,
	})
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestCreate_UnknownServiceRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "missing", LocationID: "loc-1", Start: fx.monday(9, 0),
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestCreate_OverlapRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	fx.createAt(t, "svc-30", fx.monday(9, 0))
	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(9, 15),
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreate_StoreConstraintSurfacesAsSlotTaken(t *testing.T) {
	// Two concurrent creates can both pass the read-side conflict check; the
	// store's exclusion constraint is the last line of defense and its
	// violation must surface as ErrSlotTaken.
	fx := newFixture(t, ConflictPolicy{})
	fx.store.createErr = ErrSlotTaken

	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(9, 0),
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreate_NoOverlapAmongPersisted(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	for _, m := range []int{0, 30, 60} {
		fx.createAt(t, "svc-30", fx.monday(9, m))
	}
	var all []Appointment
	for _, a := range fx.store.appts {
		all = append(all, a)
	}
	for i := range all {
		for j := range all {
			if i == j {
				continue
			}
			a, b := all[i], all[j]
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				t.Fatalf("persisted appointments overlap: %v and %v", a, b)
			}
		}
	}
}

func TestUpdate_SelfOverlapAccepted(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	newStart := fx.monday(9, 15)
	updated, err := fx.scheduler.Update(context.Background(), UpdateRequest{
		ID:    appt.ID,
		Start: &newStart,
	})
	if err != nil {
		t.Fatalf("Update overlapping only itself should succeed: %v", err)
	}
	if !updated.Start.Equal(newStart) || !updated.End.Equal(fx.monday(9, 45)) {
		t.Fatalf("unexpected interval after update: %s-%s", updated.Start, updated.End)
	}
}

func TestUpdate_ConflictWithOtherRejected(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	fx.createAt(t, "svc-30", fx.monday(9, 0))
	second := fx.createAt(t, "svc-30", fx.monday(10, 0))

	newStart := fx.monday(9, 15)
	_, err := fx.scheduler.Update(context.Background(), UpdateRequest{ID: second.ID, Start: &newStart})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestUpdate_StatusOnlyStillRevalidates(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))

	// Availability got reconfigured after booking; even a bare status change
	// re-validates with the effective values.
	delete(fx.windows.windows, windowKey{"loc-1", "staff-1", time.Monday})

	status := StatusConfirmed
	_, err := fx.scheduler.Update(context.Background(), UpdateRequest{ID: appt.ID, Status: &status})
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestUpdate_RetainsUnsuppliedFields(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	status := StatusConfirmed
	updated, err := fx.scheduler.Update(context.Background(), UpdateRequest{ID: appt.ID, Status: &status})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ServiceID != appt.ServiceID || updated.StaffID != appt.StaffID || !updated.Start.Equal(appt.Start) {
		t.Fatalf("unsupplied fields changed: %+v vs %+v", updated, appt)
	}
	if updated.Status != StatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", updated.Status)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	_, err := fx.scheduler.Update(context.Background(), UpdateRequest{ID: "missing"})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestCancel_SkipsTimeRevalidation(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	delete(fx.windows.windows, windowKey{"loc-1", "staff-1", time.Monday})

	cancelled, err := fx.scheduler.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Cancel must not re-validate the window: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected status cancelled, got %s", cancelled.Status)
	}
}

func TestCancel_TerminalState(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	if _, err := fx.scheduler.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}
	if _, err := fx.scheduler.Cancel(context.Background(), appt.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second cancel, got %v", err)
	}

	// No transition out of cancelled via update either.
	status := StatusConfirmed
	if _, err := fx.scheduler.Update(context.Background(), UpdateRequest{ID: appt.ID, Status: &status}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelledAppointmentFreesSlot(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	if _, err := fx.scheduler.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(9, 0),
	}); err != nil {
		t.Fatalf("cancelled appointment should free the slot: %v", err)
	}
}

func TestBlockCancelledPolicy(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{BlockCancelled: true})

	appt := fx.createAt(t, "svc-30", fx.monday(9, 0))
	if _, err := fx.scheduler.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_, err := fx.scheduler.Create(context.Background(), CreateRequest{
		StaffID: "staff-1", ServiceID: "svc-30", LocationID: "loc-1", Start: fx.monday(9, 0),
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("BlockCancelled policy should keep the slot blocked, got %v", err)
	}
}

func TestFreeSlots_DayOffYieldsEmpty(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, fx.loc)
	slots, err := fx.scheduler.FreeSlots(context.Background(), "loc-1", "staff-1", "svc-30", sunday)
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a day off, got %d", len(slots))
	}
}

func TestFreeSlots_ExcludesBookings(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})

	fx.createAt(t, "svc-30", fx.monday(10, 0))
	slots, err := fx.scheduler.FreeSlots(context.Background(), "loc-1", "staff-1", "svc-30", fx.monday(0, 0))
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
}

func TestResolver_Idempotent(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})
	resolver := NewResolver(fx.windows, fx.loc)

	first, err := resolver.Resolve(context.Background(), "loc-1", "staff-1", fx.monday(0, 0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), "loc-1", "staff-1", fx.monday(0, 0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
		t.Fatalf("Resolve is not idempotent: %v vs %v", first, second)
	}
}

func TestResolver_RejectsOvernightWindow(t *testing.T) {
	fx := newFixture(t, ConflictPolicy{})
	fx.windows.windows[windowKey{"loc-1", "staff-1", time.Tuesday}] = TimeOfDayWindow{Start: "22:00", End: "02:00"}
	resolver := NewResolver(fx.windows, fx.loc)

	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, fx.loc)
	if _, err := resolver.Resolve(context.Background(), "loc-1", "staff-1", tuesday); err == nil {
		t.Fatal("overnight window must be rejected as a configuration error")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Fatalf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}
