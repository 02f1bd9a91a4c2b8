// Command create-superadmin provisions a superadmin account directly in the
// auth database. Self-registration only produces customers, so the first
// operator account is seeded with this tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		dbURL    = flag.String("database-url", getenv("DATABASE_URL", ""), "auth database url")
		email    = flag.String("email", getenv("SUPERADMIN_EMAIL", ""), "account email")
		password = flag.String("password", getenv("SUPERADMIN_PASSWORD", ""), "account password")
		name     = flag.String("name", getenv("SUPERADMIN_NAME", "Platform Operator"), "display name")
	)
	flag.Parse()

	if strings.TrimSpace(*dbURL) == "" {
		fatal("DATABASE_URL is required")
	}
	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*password) == "" {
		fatal("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fatal(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, *dbURL)
	if err != nil {
		fatal(err.Error())
	}
	defer conn.Close(ctx)

	id := uuid.NewString()
	// Superadmin accounts are not tied to a tenant; the company id column is
	// filled with the zero uuid.
	_, err = conn.Exec(ctx, `
		INSERT INTO users (id, company_id, email, phone, name, password_hash, role)
		VALUES ($1, $2, $3, '', $4, $5, 'superadmin')
		ON CONFLICT (email) DO NOTHING
	`, id, uuid.Nil.String(), strings.TrimSpace(*email), strings.TrimSpace(*name), string(hash))
	if err != nil {
		fatal(err.Error())
	}

	fmt.Printf("user_id=%s\n", id)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
