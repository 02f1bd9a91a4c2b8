package directory

import (
	"context"
	"time"

	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
	"github.com/jp-osorio/citabook/services/booking-service/internal/storage"
)

// Source reads directory data for the scheduling core: the event-fed local
// cache first, then the directory-service read API when the cache has no row
// (fresh deploys, replays still in flight). It implements both
// schedule.ServiceSource and schedule.WindowSource.
type Source struct {
	cache  *storage.DirectoryCache
	remote Provider
}

func NewSource(cache *storage.DirectoryCache, remote Provider) *Source {
	return &Source{cache: cache, remote: remote}
}

func (s *Source) GetService(ctx context.Context, id string) (schedule.Service, bool, error) {
	svc, ok, err := s.cache.GetService(ctx, id)
	if err != nil || ok {
		return svc, ok, err
	}
	if s.remote == nil {
		return schedule.Service{}, false, nil
	}
	return s.remote.GetService(ctx, id)
}

func (s *Source) FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (schedule.TimeOfDayWindow, bool, error) {
	w, ok, err := s.cache.FindActiveWindow(ctx, locationID, staffID, weekday)
	if err != nil || ok {
		return w, ok, err
	}
	if s.remote == nil {
		return schedule.TimeOfDayWindow{}, false, nil
	}
	return s.remote.FindActiveWindow(ctx, locationID, staffID, weekday)
}
