package reminders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/db"
	otelx "github.com/jp-osorio/citabook/libs/otel"
)

type Reminder struct {
	ID            int64
	AppointmentID string
	CompanyID     string
	CustomerID    string
	ServiceID     string
	StartTime     time.Time
	RemindAt      time.Time
	Traceparent   string
	Tracestate    string
	Attempts      int
	MaxAttempts   int
	NextRunAt     time.Time
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert records a pending reminder. Replays of the same request event hit
// the (appointment_id, remind_at) unique constraint and are dropped.
func (r *Repository) Insert(ctx context.Context, rem Reminder) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reminders (appointment_id, company_id, customer_id, service_id, start_time, remind_at, next_run_at, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8)
		ON CONFLICT (appointment_id, remind_at) DO NOTHING
	`, rem.AppointmentID, rem.CompanyID, rem.CustomerID, rem.ServiceID, rem.StartTime, rem.RemindAt, traceparent, tracestate)
	return err
}

// CancelPending drops reminders for an appointment that was cancelled before
// they fired.
func (r *Repository) CancelPending(ctx context.Context, appointmentID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reminders
		SET status = 'cancelled', updated_at = now()
		WHERE appointment_id = $1 AND status = 'pending'
	`, appointmentID)
	return err
}

func (r *Repository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]Reminder, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, appointment_id, company_id, customer_id, service_id, start_time, remind_at, traceparent, tracestate, attempts, max_attempts, next_run_at
		FROM reminders
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.AppointmentID, &rem.CompanyID, &rem.CustomerID, &rem.ServiceID, &rem.StartTime, &rem.RemindAt, &rem.Traceparent, &rem.Tracestate, &rem.Attempts, &rem.MaxAttempts, &rem.NextRunAt); err != nil {
			return nil, err
		}
		due = append(due, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return due, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminders
		SET status = 'processed', updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id int64, attempts, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := "pending"
	if attempts >= maxAttempts {
		status = "failed"
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminders
		SET attempts = $2,
		    status = $3,
		    next_run_at = $4,
		    last_error = $5,
		    updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}
