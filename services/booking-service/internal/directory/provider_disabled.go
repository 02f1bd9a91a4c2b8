//go:build !protogen

package directory

import (
	"context"
	"time"

	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// Provider is the directory-service read API. The gRPC implementation only
// compiles under the protogen build tag; in the default build the provider
// is absent and booking relies on the event-fed cache alone.
type Provider interface {
	GetService(ctx context.Context, id string) (schedule.Service, bool, error)
	FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (schedule.TimeOfDayWindow, bool, error)
}

func NewProvider(_ string) (Provider, error) {
	return nil, nil
}
