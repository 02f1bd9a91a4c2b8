package storage

import (
	"context"
	"time"

	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// DirectoryCache is the local read model of directory-service data, kept
// fresh by the Kafka consumer. It backs the scheduling core's service and
// availability lookups so booking never blocks on a cross-service call.
type DirectoryCache struct {
	pool *db.Pool
}

type CachedService struct {
	ID              string
	CompanyID       string
	Name            string
	DurationMinutes int
	Price           string
	Available       bool
	UpdatedAt       time.Time
}

type CachedWindow struct {
	ID         string
	CompanyID  string
	LocationID string
	StaffID    string
	Weekday    int
	StartTime  string
	EndTime    string
	Active     bool
}

func NewDirectoryCache(pool *db.Pool) *DirectoryCache {
	return &DirectoryCache{pool: pool}
}

func (c *DirectoryCache) UpsertService(ctx context.Context, svc CachedService) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO cached_services (id, company_id, name, duration_minutes, price, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET company_id = EXCLUDED.company_id,
		              name = EXCLUDED.name,
		              duration_minutes = EXCLUDED.duration_minutes,
		              price = EXCLUDED.price,
		              available = EXCLUDED.available,
		              updated_at = now()
	`, svc.ID, svc.CompanyID, svc.Name, svc.DurationMinutes, svc.Price, svc.Available)
	return err
}

func (c *DirectoryCache) UpsertWindow(ctx context.Context, win CachedWindow) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO cached_windows (id, company_id, location_id, staff_id, weekday, start_time, end_time, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET company_id = EXCLUDED.company_id,
		              location_id = EXCLUDED.location_id,
		              staff_id = EXCLUDED.staff_id,
		              weekday = EXCLUDED.weekday,
		              start_time = EXCLUDED.start_time,
		              end_time = EXCLUDED.end_time,
		              active = EXCLUDED.active,
		              updated_at = now()
	`, win.ID, win.CompanyID, win.LocationID, win.StaffID, win.Weekday, win.StartTime, win.EndTime, win.Active)
	return err
}

// GetService implements schedule.ServiceSource. Unavailable services are
// invisible to booking.
func (c *DirectoryCache) GetService(ctx context.Context, id string) (schedule.Service, bool, error) {
	var svc schedule.Service
	err := c.pool.QueryRow(ctx, `
		SELECT id::text, name, duration_minutes, price
		FROM cached_services
		WHERE id = $1 AND available
	`, id).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price)
	if err != nil {
		if IsNotFound(err) {
			return schedule.Service{}, false, nil
		}
		return schedule.Service{}, false, err
	}
	return svc, true, nil
}

// FindActiveWindow implements schedule.WindowSource. The directory enforces
// at most one active row per (staff, location, weekday); on stale cache rows
// the most recently updated one wins.
func (c *DirectoryCache) FindActiveWindow(ctx context.Context, locationID, staffID string, weekday time.Weekday) (schedule.TimeOfDayWindow, bool, error) {
	var w schedule.TimeOfDayWindow
	err := c.pool.QueryRow(ctx, `
		SELECT start_time, end_time
		FROM cached_windows
		WHERE location_id = $1 AND staff_id = $2 AND weekday = $3 AND active
		ORDER BY updated_at DESC
		LIMIT 1
	`, locationID, staffID, int(weekday)).Scan(&w.Start, &w.End)
	if err != nil {
		if IsNotFound(err) {
			return schedule.TimeOfDayWindow{}, false, nil
		}
		return schedule.TimeOfDayWindow{}, false, err
	}
	return w, true, nil
}
