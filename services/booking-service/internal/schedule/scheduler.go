package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the appointment lifecycle state. Allowed transitions:
// pending -> confirmed, pending -> cancelled, confirmed -> cancelled.
// Cancelled is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	case StatusCancelled:
		return false
	}
	return false
}

type Appointment struct {
	ID         string
	CustomerID string
	StaffID    string
	ServiceID  string
	LocationID string
	CompanyID  string
	Start      time.Time
	End        time.Time
	Status     Status
}

type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           string
}

// ServiceSource resolves a bookable service, most importantly its duration,
// which sizes every slot for that service.
type ServiceSource interface {
	GetService(ctx context.Context, id string) (Service, bool, error)
}

// Store is the durable appointment store. Create and Update must map a
// storage-level overlap violation (the exclusion-constraint backstop against
// the check-then-act race) to ErrSlotTaken.
type Store interface {
	AppointmentSource
	FindByID(ctx context.Context, id string) (Appointment, bool, error)
	Create(ctx context.Context, appt Appointment) (string, error)
	Update(ctx context.Context, appt Appointment) error
}

// Config is the explicit scheduling configuration assembled at startup.
type Config struct {
	// Location is the reference time zone every wall-clock input is
	// normalized into.
	Location *time.Location
	Conflict ConflictPolicy
}

// Scheduler orchestrates the appointment lifecycle: time normalization,
// availability resolution, conflict validation, persistence. It holds no
// mutable state; every call is an independent computation over the store.
type Scheduler struct {
	services  ServiceSource
	resolver  *Resolver
	validator *Validator
	store     Store
	loc       *time.Location
}

func NewScheduler(cfg Config, services ServiceSource, windows WindowSource, store Store) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		services:  services,
		resolver:  NewResolver(windows, loc),
		validator: NewValidator(store, cfg.Conflict),
		store:     store,
		loc:       loc,
	}
}

type CreateRequest struct {
	CustomerID string
	StaffID    string
	ServiceID  string
	LocationID string
	CompanyID  string
	Start      time.Time
}

// Create validates and persists a new appointment with status pending.
// The slot must sit inside the staff member's availability window for the
// day (closed containment: start == window start and end == window end are
// both accepted) and must not overlap any blocking appointment.
func (s *Scheduler) Create(ctx context.Context, req CreateRequest) (Appointment, error) {
	svc, ok, err := s.services.GetService(ctx, req.ServiceID)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrServiceNotFound
	}

	start := req.Start.In(s.loc)
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	if err := s.validateSlot(ctx, req.LocationID, req.StaffID, start, end, ""); err != nil {
		return Appointment{}, err
	}

	appt := Appointment{
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		CompanyID:  req.CompanyID,
		Start:      start,
		End:        end,
		Status:     StatusPending,
	}
	id, err := s.store.Create(ctx, appt)
	if err != nil {
		return Appointment{}, err
	}
	appt.ID = id
	return appt, nil
}

// UpdateRequest carries a partial update; nil fields retain prior values.
type UpdateRequest struct {
	ID         string
	ServiceID  *string
	LocationID *string
	StaffID    *string
	Start      *time.Time
	Status     *Status
}

// Update applies a partial update and re-validates availability and overlap
// against the effective (possibly changed) staff/location/start, even when
// only the status changed. The conflict check excludes the appointment's own
// id, so moving an appointment within its own previous span is allowed.
func (s *Scheduler) Update(ctx context.Context, req UpdateRequest) (Appointment, error) {
	appt, ok, err := s.store.FindByID(ctx, req.ID)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}

	effective := appt
	if req.ServiceID != nil {
		effective.ServiceID = *req.ServiceID
	}
	if req.LocationID != nil {
		effective.LocationID = *req.LocationID
	}
	if req.StaffID != nil {
		effective.StaffID = *req.StaffID
	}
	if req.Start != nil {
		effective.Start = req.Start.In(s.loc)
	}
	if req.Status != nil && *req.Status != appt.Status {
		if !appt.Status.CanTransitionTo(*req.Status) {
			return Appointment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, *req.Status)
		}
		effective.Status = *req.Status
	}

	svc, ok, err := s.services.GetService(ctx, effective.ServiceID)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrServiceNotFound
	}
	effective.End = effective.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	if err := s.validateSlot(ctx, effective.LocationID, effective.StaffID, effective.Start, effective.End, appt.ID); err != nil {
		return Appointment{}, err
	}

	if err := s.store.Update(ctx, effective); err != nil {
		return Appointment{}, err
	}
	return effective, nil
}

// Cancel is a status transition only; the time window is not re-validated.
func (s *Scheduler) Cancel(ctx context.Context, id string) (Appointment, error) {
	appt, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	if !appt.Status.CanTransitionTo(StatusCancelled) {
		return Appointment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, StatusCancelled)
	}

	appt.Status = StatusCancelled
	if err := s.store.Update(ctx, appt); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// FreeSlots returns the open slots for the staff member at the location on
// the calendar day of date, sized by the service duration. A day the staff
// member does not work yields an empty list, not an error.
func (s *Scheduler) FreeSlots(ctx context.Context, locationID, staffID, serviceID string, date time.Time) ([]Interval, error) {
	svc, ok, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrServiceNotFound
	}

	window, err := s.resolver.Resolve(ctx, locationID, staffID, date)
	if err != nil {
		if errors.Is(err, ErrNotAvailable) {
			return nil, nil
		}
		return nil, err
	}

	busy, err := s.validator.Busy(ctx, staffID, window.Start, window.End, "")
	if err != nil {
		return nil, err
	}
	return Slots(window, time.Duration(svc.DurationMinutes)*time.Minute, busy), nil
}

func (s *Scheduler) validateSlot(ctx context.Context, locationID, staffID string, start, end time.Time, excludeID string) error {
	window, err := s.resolver.Resolve(ctx, locationID, staffID, start)
	if err != nil {
		return err
	}
	if start.Before(window.Start) || end.After(window.End) {
		return ErrOutsideAvailability
	}

	conflict, err := s.validator.HasConflict(ctx, staffID, start, end, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrSlotTaken
	}
	return nil
}
