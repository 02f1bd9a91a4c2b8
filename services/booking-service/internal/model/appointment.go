package model

import (
	"time"

	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// Appointment is the persisted row. It carries audit fields the scheduling
// core does not care about (cancellation metadata, timestamps).
type Appointment struct {
	ID           string
	CompanyID    string
	LocationID   string
	ServiceID    string
	StaffID      string
	CustomerID   string
	Start        time.Time
	End          time.Time
	Status       schedule.Status
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}

func (a Appointment) Scheduled() schedule.Appointment {
	return schedule.Appointment{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		StaffID:    a.StaffID,
		ServiceID:  a.ServiceID,
		LocationID: a.LocationID,
		CompanyID:  a.CompanyID,
		Start:      a.Start,
		End:        a.End,
		Status:     a.Status,
	}
}
