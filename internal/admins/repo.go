package admins

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adminhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context) ([]models.Admin, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, full_name, email, phone_number
		FROM admins
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.FullName, &a.Email, &a.PhoneNumber); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*models.Admin, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, phone_number
		FROM admins
		WHERE id = ?
	`, id)

	var a models.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.FullName, &a.Email, &a.PhoneNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

func (r *Repo) UsernameExists(ctx context.Context, username string) (bool, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE username = ?`, strings.TrimSpace(username))
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("username exists: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) EmailExists(ctx context.Context, email string) (bool, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE LOWER(email) = ?`, strings.ToLower(strings.TrimSpace(email)))
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Create(ctx context.Context, a models.Admin, passwordHash string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (username, full_name, email, phone_number, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`, a.Username, a.FullName, a.Email, a.PhoneNumber, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert admin: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return int(id), nil
}

// Update changes profile fields; passwordHash is applied only when non-empty.
func (r *Repo) Update(ctx context.Context, a models.Admin, passwordHash string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if passwordHash != "" {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE admins
			SET full_name = ?, email = ?, phone_number = ?, password_hash = ?
			WHERE id = ?
		`, a.FullName, a.Email, a.PhoneNumber, passwordHash, a.ID)
	} else {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE admins
			SET full_name = ?, email = ?, phone_number = ?
			WHERE id = ?
		`, a.FullName, a.Email, a.PhoneNumber, a.ID)
	}
	if err != nil {
		return false, fmt.Errorf("update admin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete admin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Count reports how many admin accounts exist; used for first-run bootstrap.
func (r *Repo) Count(ctx context.Context) (int, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
