package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/db"
)

// Recipient is contact data replicated from auth.user.created.v1 events.
// Appointment events carry only a customer id; delivery resolves the address
// here without a synchronous call to auth-service.
type Recipient struct {
	UserID    string
	CompanyID string
	Name      string
	Email     string
	Phone     string
}

type RecipientRepository struct {
	pool *db.Pool
}

func NewRecipientRepository(pool *db.Pool) *RecipientRepository {
	return &RecipientRepository{pool: pool}
}

func (r *RecipientRepository) Upsert(ctx context.Context, rec Recipient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recipients (user_id, company_id, name, email, phone, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			updated_at = now()
	`, rec.UserID, rec.CompanyID, rec.Name, rec.Email, rec.Phone)
	return err
}

func (r *RecipientRepository) Get(ctx context.Context, userID string) (Recipient, bool, error) {
	var rec Recipient
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, company_id, name, email, phone
		FROM recipients
		WHERE user_id = $1
	`, userID).Scan(&rec.UserID, &rec.CompanyID, &rec.Name, &rec.Email, &rec.Phone)
	if err == pgx.ErrNoRows {
		return Recipient{}, false, nil
	}
	if err != nil {
		return Recipient{}, false, err
	}
	return rec, true, nil
}
