//go:build protogen

package directory

import (
	"context"
	"time"

	"github.com/jp-osorio/citabook/libs/grpcx"
	directoryv1 "github.com/jp-osorio/citabook/protos/gen/directory/v1"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// Provider is the directory-service read API.
type Provider interface {
	GetService(ctx context.Context, id string) (schedule.Service, bool, error)
	FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (schedule.TimeOfDayWindow, bool, error)
}

type grpcProvider struct {
	client directoryv1.DirectoryServiceClient
}

func NewProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: directoryv1.NewDirectoryServiceClient(conn)}, nil
}

func (p *grpcProvider) GetService(ctx context.Context, id string) (schedule.Service, bool, error) {
	resp, err := p.client.GetService(ctx, &directoryv1.GetServiceRequest{ServiceId: id})
	if err != nil {
		return schedule.Service{}, false, err
	}
	if !resp.GetFound() || !resp.GetAvailable() {
		return schedule.Service{}, false, nil
	}
	return schedule.Service{
		ID:              resp.GetServiceId(),
		Name:            resp.GetName(),
		DurationMinutes: int(resp.GetDurationMinutes()),
		Price:           resp.GetPrice(),
	}, true, nil
}

func (p *grpcProvider) FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (schedule.TimeOfDayWindow, bool, error) {
	resp, err := p.client.GetAvailabilityWindow(ctx, &directoryv1.GetAvailabilityWindowRequest{
		LocationId: locationID,
		StaffId:    staffID,
		Weekday:    int32(weekday),
	})
	if err != nil {
		return schedule.TimeOfDayWindow{}, false, err
	}
	if !resp.GetFound() {
		return schedule.TimeOfDayWindow{}, false, nil
	}
	return schedule.TimeOfDayWindow{
		Start: resp.GetStartTime(),
		End:   resp.GetEndTime(),
	}, true, nil
}
