package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Account is an admin row as the login path sees it. CRUD on admin
// accounts lives in internal/admins; this repo only resolves credentials.
type Account struct {
	ID           int
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, created_at
		FROM admins
		WHERE username = ?
	`, username)

	var a Account
	if err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return &a, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*Account, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, created_at
		FROM admins
		WHERE id = ?
	`, id)

	var a Account
	if err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &a, nil
}
