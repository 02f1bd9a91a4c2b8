package schedule

import (
	"context"
	"time"
)

// AppointmentSource reads the appointments that could conflict with a
// proposed interval. Implementations return every status; filtering is the
// Validator's job.
type AppointmentSource interface {
	FindByStaffInRange(ctx context.Context, staffID string, start, end time.Time) ([]Appointment, error)
}

// ConflictPolicy controls which appointments block a slot. Cancellation
// normally frees the slot; BlockCancelled keeps cancelled appointments
// blocking for deployments that want a cooling-off period before rebooking.
type ConflictPolicy struct {
	BlockCancelled bool
}

type Validator struct {
	appts  AppointmentSource
	policy ConflictPolicy
}

func NewValidator(appts AppointmentSource, policy ConflictPolicy) *Validator {
	return &Validator{appts: appts, policy: policy}
}

// HasConflict reports whether [start,end) overlaps any blocking appointment
// for staffID. excludeID skips the appointment being updated so it never
// conflicts with itself.
func (v *Validator) HasConflict(ctx context.Context, staffID string, start, end time.Time, excludeID string) (bool, error) {
	busy, err := v.Busy(ctx, staffID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(busy) > 0, nil
}

// Busy returns the blocking intervals for staffID overlapping [start,end),
// after policy filtering. Slot generation uses the same view of "taken" as
// conflict validation.
func (v *Validator) Busy(ctx context.Context, staffID string, start, end time.Time, excludeID string) ([]Interval, error) {
	appts, err := v.appts.FindByStaffInRange(ctx, staffID, start, end)
	if err != nil {
		return nil, err
	}

	var busy []Interval
	for _, a := range appts {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.Status == StatusCancelled && !v.policy.BlockCancelled {
			continue
		}
		if a.Start.Before(end) && start.Before(a.End) {
			busy = append(busy, Interval{Start: a.Start, End: a.End})
		}
	}
	return busy, nil
}
