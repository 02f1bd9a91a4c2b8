package schedule

import "errors"

// Business-rule failures. Every one of these is a rejected request with a
// specific reason, surfaced to the caller; none is fatal to the process.
var (
	ErrMalformedTime       = errors.New("malformed time of day")
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotAvailable        = errors.New("staff member does not work that day")
	ErrOutsideAvailability = errors.New("requested time is outside the availability window")
	ErrSlotTaken           = errors.New("time slot conflicts with an existing appointment")
	ErrInvalidTransition   = errors.New("invalid appointment status transition")
)
