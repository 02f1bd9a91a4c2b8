//go:build protogen

package grpcserver

import (
	"context"

	"github.com/jp-osorio/citabook/libs/db"
	directoryv1 "github.com/jp-osorio/citabook/protos/gen/directory/v1"
	"github.com/jp-osorio/citabook/services/directory-service/internal/storage"
	"google.golang.org/grpc"
)

type server struct {
	directoryv1.UnimplementedDirectoryServiceServer
	pool *db.Pool
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository) {
	directoryv1.RegisterDirectoryServiceServer(grpcServer, &server{pool: pool, repo: repo})
}

func (s *server) GetService(ctx context.Context, req *directoryv1.GetServiceRequest) (*directoryv1.GetServiceResponse, error) {
	if req.GetServiceId() == "" {
		return &directoryv1.GetServiceResponse{Found: false}, nil
	}
	svc, found, err := s.repo.GetServiceByID(ctx, req.GetServiceId())
	if err != nil {
		return nil, err
	}
	if !found {
		return &directoryv1.GetServiceResponse{Found: false}, nil
	}
	return &directoryv1.GetServiceResponse{
		Found:           true,
		ServiceId:       svc.ID,
		CompanyId:       svc.CompanyID,
		Name:            svc.Name,
		DurationMinutes: int32(svc.DurationMins),
		Price:           svc.Price,
		Available:       svc.Available,
	}, nil
}

func (s *server) GetAvailabilityWindow(ctx context.Context, req *directoryv1.GetAvailabilityWindowRequest) (*directoryv1.GetAvailabilityWindowResponse, error) {
	if req.GetLocationId() == "" || req.GetStaffId() == "" {
		return &directoryv1.GetAvailabilityWindowResponse{Found: false}, nil
	}
	weekday := int(req.GetWeekday())
	if weekday < 0 || weekday > 6 {
		return &directoryv1.GetAvailabilityWindowResponse{Found: false}, nil
	}
	win, found, err := s.repo.FindActiveWindow(ctx, req.GetLocationId(), req.GetStaffId(), weekday)
	if err != nil {
		return nil, err
	}
	if !found {
		return &directoryv1.GetAvailabilityWindowResponse{Found: false}, nil
	}
	return &directoryv1.GetAvailabilityWindowResponse{
		Found:     true,
		StartTime: win.StartTime,
		EndTime:   win.EndTime,
	}, nil
}
