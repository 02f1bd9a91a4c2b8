package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jp-osorio/citabook/libs/db"
	"github.com/jp-osorio/citabook/services/booking-service/internal/model"
	"github.com/jp-osorio/citabook/services/booking-service/internal/schedule"
)

// querier is satisfied by both *db.Pool and pgx.Tx, so the same SQL serves
// plain reads and transactional writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Store pins the repository to one querier and adapts it to the scheduling
// core. Inside a transaction FindByID takes a row lock so the conflict check
// and the write see a consistent appointment.
type Store struct {
	q    querier
	lock bool
}

func (r *AppointmentRepository) Store() *Store            { return &Store{q: r.pool} }
func (r *AppointmentRepository) TxStore(tx pgx.Tx) *Store { return &Store{q: tx, lock: true} }

func (s *Store) FindByStaffInRange(ctx context.Context, staffID string, start, end time.Time) ([]schedule.Appointment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id::text, company_id::text, location_id::text, service_id::text, staff_id::text, customer_id::text,
			start_time, end_time, status
		FROM appointments
		WHERE staff_id = $1
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []schedule.Appointment
	for rows.Next() {
		var a schedule.Appointment
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.LocationID, &a.ServiceID, &a.StaffID, &a.CustomerID,
			&a.Start, &a.End, &a.Status); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (schedule.Appointment, bool, error) {
	q := `
		SELECT id::text, company_id::text, location_id::text, service_id::text, staff_id::text, customer_id::text,
			start_time, end_time, status
		FROM appointments
		WHERE id = $1
	`
	if s.lock {
		q += " FOR UPDATE"
	}
	var a schedule.Appointment
	err := s.q.QueryRow(ctx, q, id).Scan(&a.ID, &a.CompanyID, &a.LocationID, &a.ServiceID, &a.StaffID, &a.CustomerID,
		&a.Start, &a.End, &a.Status)
	if err != nil {
		if IsNotFound(err) {
			return schedule.Appointment{}, false, nil
		}
		return schedule.Appointment{}, false, err
	}
	return a, true, nil
}

func (s *Store) Create(ctx context.Context, appt schedule.Appointment) (string, error) {
	var id string
	err := s.q.QueryRow(ctx, `
		INSERT INTO appointments
			(company_id, location_id, service_id, staff_id, customer_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text
	`, appt.CompanyID, appt.LocationID, appt.ServiceID, appt.StaffID, appt.CustomerID,
		appt.Start, appt.End, string(appt.Status)).Scan(&id)
	if err != nil {
		if IsConflict(err) {
			return "", fmt.Errorf("%w: %v", schedule.ErrSlotTaken, err)
		}
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, appt schedule.Appointment) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE appointments
		SET location_id = $2,
			service_id = $3,
			staff_id = $4,
			start_time = $5,
			end_time = $6,
			status = $7,
			cancelled_at = CASE WHEN $7 = 'cancelled' AND cancelled_at IS NULL THEN now() ELSE cancelled_at END,
			updated_at = now()
		WHERE id = $1
	`, appt.ID, appt.LocationID, appt.ServiceID, appt.StaffID, appt.Start, appt.End, string(appt.Status))
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: %v", schedule.ErrSlotTaken, err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) SetCancelReason(ctx context.Context, tx pgx.Tx, appointmentID, reason string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET cancellation_reason = $2
		WHERE id = $1
	`, appointmentID, reason)
	return err
}

// ListFilter narrows the listing to the caller's visibility. Exactly the
// fields the edge derived from the verified identity are set.
type ListFilter struct {
	CompanyID  string
	StaffID    string
	CustomerID string
	Limit      int
}

func (r *AppointmentRepository) List(ctx context.Context, f ListFilter) ([]model.Appointment, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	where := "1=1"
	args := []any{}
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		where += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if f.StaffID != "" {
		args = append(args, f.StaffID)
		where += fmt.Sprintf(" AND staff_id = $%d", len(args))
	}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	args = append(args, f.Limit)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id::text, company_id::text, location_id::text, service_id::text, staff_id::text, customer_id::text,
			start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE %s
		ORDER BY start_time DESC
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.LocationID, &a.ServiceID, &a.StaffID, &a.CustomerID,
			&a.Start, &a.End, &a.Status, &a.CancelledAt, &a.CancelReason, &a.CreatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (model.Appointment, bool, error) {
	var a model.Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, company_id::text, location_id::text, service_id::text, staff_id::text, customer_id::text,
			start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE id = $1
	`, id).Scan(&a.ID, &a.CompanyID, &a.LocationID, &a.ServiceID, &a.StaffID, &a.CustomerID,
		&a.Start, &a.End, &a.Status, &a.CancelledAt, &a.CancelReason, &a.CreatedAt)
	if IsNotFound(err) {
		return model.Appointment{}, false, nil
	}
	if err != nil {
		return model.Appointment{}, false, err
	}
	return a, true, nil
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
