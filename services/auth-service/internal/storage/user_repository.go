package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jp-osorio/citabook/libs/auth"
	"github.com/jp-osorio/citabook/libs/db"
)

type User struct {
	ID           string
	CompanyID    string
	Email        string
	Phone        string
	Name         string
	PasswordHash string
	Role         auth.Role
}

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, company_id, email, phone, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.CompanyID, user.Email, user.Phone, user.Name, user.PasswordHash, string(user.Role))
	return err
}

func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, company_id, email, phone, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.CompanyID, user.Email, user.Phone, user.Name, user.PasswordHash, string(user.Role))
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, email, phone, name, password_hash, role
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.CompanyID, &user.Email, &user.Phone, &user.Name, &user.PasswordHash, &role)
	if err != nil {
		return User{}, err
	}
	user.Role = auth.Role(role)
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, email, phone, name, password_hash, role
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.CompanyID, &user.Email, &user.Phone, &user.Name, &user.PasswordHash, &role)
	if err != nil {
		return User{}, err
	}
	user.Role = auth.Role(role)
	return user, nil
}

func IsNotFound(err error) bool {
	return err == pgx.ErrNoRows
}
