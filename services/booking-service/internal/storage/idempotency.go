package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRecord captures the first outcome for an Idempotency-Key so
// retried creates replay the stored response instead of booking twice.
type IdempotencyRecord struct {
	CompanyID       string
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func (r *AppointmentRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, companyID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, companyID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (company_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (company_id, idempotency_key) DO NOTHING
	`, companyID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, companyID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *AppointmentRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, companyID, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $3,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE company_id = $1 AND idempotency_key = $2
	`, companyID, key, nullableID(appointmentID), statusCode, response)
	return err
}

func (r *AppointmentRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, companyID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT company_id::text,
			idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE company_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, companyID, key).Scan(
		&rec.CompanyID,
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
