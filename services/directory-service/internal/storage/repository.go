package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

type Company struct {
	ID          string
	Name        string
	Slug        string
	TaxID       string
	AdminUserID string
	CreatedAt   time.Time
}

func (r *Repository) CreateCompany(ctx context.Context, c Company) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (id, name, slug, tax_id, admin_user_id)
		VALUES ($1, $2, $3, $4, $5)
	`, id, c.Name, c.Slug, c.TaxID, nullable(c.AdminUserID))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetCompany(ctx context.Context, id string) (Company, bool, error) {
	var c Company
	var adminUserID *string
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, slug, COALESCE(tax_id, ''), admin_user_id::text, created_at
		FROM companies
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.TaxID, &adminUserID, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Company{}, false, nil
		}
		return Company{}, false, err
	}
	if adminUserID != nil {
		c.AdminUserID = *adminUserID
	}
	return c, true, nil
}

type Location struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
}

func (r *Repository) CreateLocation(ctx context.Context, companyID, name, address string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO locations (id, company_id, name, address)
		VALUES ($1, $2, $3, $4)
	`, id, companyID, name, address)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListLocations(ctx context.Context, companyID string, limit int) ([]Location, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, name, address, created_at
		FROM locations
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Service struct {
	ID           string
	CompanyID    string
	Name         string
	Description  string
	DurationMins int
	Price        string
	Available    bool
	CreatedAt    time.Time
}

// CreateService runs inside the caller's transaction so the outbox event
// commits with the row.
func (r *Repository) CreateService(ctx context.Context, tx pgx.Tx, svc Service) (Service, error) {
	svc.ID = uuid.NewString()
	svc.Available = true
	err := tx.QueryRow(ctx, `
		INSERT INTO services (id, company_id, name, description, duration_minutes, price, available)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING created_at
	`, svc.ID, svc.CompanyID, svc.Name, svc.Description, svc.DurationMins, svc.Price).Scan(&svc.CreatedAt)
	if err != nil {
		return Service{}, err
	}
	return svc, nil
}

func (r *Repository) SetServiceAvailability(ctx context.Context, tx pgx.Tx, companyID, serviceID string, available bool) (Service, bool, error) {
	var svc Service
	err := tx.QueryRow(ctx, `
		UPDATE services
		SET available = $3, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING id::text, company_id::text, name, description, duration_minutes, price::text, available, created_at
	`, serviceID, companyID, available).Scan(&svc.ID, &svc.CompanyID, &svc.Name, &svc.Description, &svc.DurationMins, &svc.Price, &svc.Available, &svc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Service{}, false, nil
		}
		return Service{}, false, err
	}
	return svc, true, nil
}

func (r *Repository) GetService(ctx context.Context, companyID, serviceID string) (Service, bool, error) {
	var svc Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, company_id::text, name, description, duration_minutes, price::text, available, created_at
		FROM services
		WHERE id = $1 AND company_id = $2
	`, serviceID, companyID).Scan(&svc.ID, &svc.CompanyID, &svc.Name, &svc.Description, &svc.DurationMins, &svc.Price, &svc.Available, &svc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Service{}, false, nil
		}
		return Service{}, false, err
	}
	return svc, true, nil
}

func (r *Repository) GetServiceByID(ctx context.Context, serviceID string) (Service, bool, error) {
	var svc Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, company_id::text, name, description, duration_minutes, price::text, available, created_at
		FROM services
		WHERE id = $1
	`, serviceID).Scan(&svc.ID, &svc.CompanyID, &svc.Name, &svc.Description, &svc.DurationMins, &svc.Price, &svc.Available, &svc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Service{}, false, nil
		}
		return Service{}, false, err
	}
	return svc, true, nil
}

func (r *Repository) ListServices(ctx context.Context, companyID string, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, name, description, duration_minutes, price::text, available, created_at
		FROM services
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.DurationMins, &s.Price, &s.Available, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Staff rows use the auth user id as primary key, so booking can match
// appointments to staff identities without a cross-service join.
type Staff struct {
	ID         string
	CompanyID  string
	LocationID string
	Name       string
	Active     bool
	CreatedAt  time.Time
}

func (r *Repository) CreateStaff(ctx context.Context, s Staff) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, company_id, location_id, name, active)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.CompanyID, s.LocationID, s.Name, s.Active)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *Repository) ListStaff(ctx context.Context, companyID string, limit int) ([]Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, location_id::text, name, active, created_at
		FROM staff
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.LocationID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Window struct {
	ID         string
	CompanyID  string
	LocationID string
	StaffID    string
	Weekday    int
	StartTime  string
	EndTime    string
	Active     bool
	CreatedAt  time.Time
}

// UpsertWindow replaces the active window for (staff, location, weekday):
// any prior active row is deactivated in the same transaction, which keeps
// the partial unique index satisfied and the full history queryable.
func (r *Repository) UpsertWindow(ctx context.Context, tx pgx.Tx, w Window) (Window, []Window, error) {
	deactivated, err := r.deactivateActiveWindows(ctx, tx, w.StaffID, w.LocationID, w.Weekday)
	if err != nil {
		return Window{}, nil, err
	}

	w.ID = uuid.NewString()
	w.Active = true
	err = tx.QueryRow(ctx, `
		INSERT INTO availability_windows (id, company_id, location_id, staff_id, weekday, start_time, end_time, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING created_at
	`, w.ID, w.CompanyID, w.LocationID, w.StaffID, w.Weekday, w.StartTime, w.EndTime).Scan(&w.CreatedAt)
	if err != nil {
		return Window{}, nil, err
	}
	return w, deactivated, nil
}

func (r *Repository) deactivateActiveWindows(ctx context.Context, tx pgx.Tx, staffID, locationID string, weekday int) ([]Window, error) {
	rows, err := tx.Query(ctx, `
		UPDATE availability_windows
		SET active = false, updated_at = now()
		WHERE staff_id = $1 AND location_id = $2 AND weekday = $3 AND active
		RETURNING id::text, company_id::text, location_id::text, staff_id::text, weekday, start_time, end_time, active, created_at
	`, staffID, locationID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

// DeactivateWindow is the soft delete: the row survives with active=false.
func (r *Repository) DeactivateWindow(ctx context.Context, tx pgx.Tx, companyID, windowID string) (Window, bool, error) {
	var w Window
	err := tx.QueryRow(ctx, `
		UPDATE availability_windows
		SET active = false, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND active
		RETURNING id::text, company_id::text, location_id::text, staff_id::text, weekday, start_time, end_time, active, created_at
	`, windowID, companyID).Scan(&w.ID, &w.CompanyID, &w.LocationID, &w.StaffID, &w.Weekday, &w.StartTime, &w.EndTime, &w.Active, &w.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Window{}, false, nil
		}
		return Window{}, false, err
	}
	return w, true, nil
}

func (r *Repository) ListWindows(ctx context.Context, companyID, staffID string) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_id::text, location_id::text, staff_id::text, weekday, start_time, end_time, active, created_at
		FROM availability_windows
		WHERE company_id = $1 AND staff_id = $2 AND active
		ORDER BY weekday ASC, start_time ASC
	`, companyID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *Repository) FindActiveWindow(ctx context.Context, locationID, staffID string, weekday int) (Window, bool, error) {
	var w Window
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, company_id::text, location_id::text, staff_id::text, weekday, start_time, end_time, active, created_at
		FROM availability_windows
		WHERE location_id = $1 AND staff_id = $2 AND weekday = $3 AND active
	`, locationID, staffID, weekday).Scan(&w.ID, &w.CompanyID, &w.LocationID, &w.StaffID, &w.Weekday, &w.StartTime, &w.EndTime, &w.Active, &w.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Window{}, false, nil
		}
		return Window{}, false, err
	}
	return w, true, nil
}

func scanWindows(rows pgx.Rows) ([]Window, error) {
	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.LocationID, &w.StaffID, &w.Weekday, &w.StartTime, &w.EndTime, &w.Active, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
