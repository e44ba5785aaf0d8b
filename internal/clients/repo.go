package clients

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adminhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context) ([]models.Client, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT client_id, first_name, last_name, email, phone_number, gender,
		       date_of_birth, address, city, join_date, is_deleted
		FROM clients
		WHERE is_deleted = 0
		ORDER BY join_date DESC, client_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		cl, err := scanClient(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*models.Client, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT client_id, first_name, last_name, email, phone_number, gender,
		       date_of_birth, address, city, join_date, is_deleted
		FROM clients
		WHERE client_id = ?
	`, id)

	cl, err := scanClient(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &cl, nil
}

func (r *Repo) Create(ctx context.Context, cl models.Client) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO clients (first_name, last_name, email, phone_number, gender,
		                     date_of_birth, address, city, join_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cl.FirstName, cl.LastName, cl.Email, cl.PhoneNumber, cl.Gender,
		cl.DateOfBirth, cl.Address, cl.City, cl.JoinDate)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return int(id), nil
}

func (r *Repo) Update(ctx context.Context, cl models.Client) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clients
		SET first_name = ?, last_name = ?, email = ?, phone_number = ?, gender = ?,
		    date_of_birth = ?, address = ?, city = ?
		WHERE client_id = ? AND is_deleted = 0
	`, cl.FirstName, cl.LastName, cl.Email, cl.PhoneNumber, cl.Gender,
		cl.DateOfBirth, cl.Address, cl.City, cl.ClientID)
	if err != nil {
		return false, fmt.Errorf("update client: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete soft-deletes; the row survives for audit but drops out of lists.
func (r *Repo) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clients SET is_deleted = 1 WHERE client_id = ? AND is_deleted = 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanClient(scan func(dest ...any) error) (models.Client, error) {
	var (
		cl        models.Client
		dob       sql.NullTime
		joinDate  time.Time
		isDeleted int
	)
	if err := scan(&cl.ClientID, &cl.FirstName, &cl.LastName, &cl.Email, &cl.PhoneNumber,
		&cl.Gender, &dob, &cl.Address, &cl.City, &joinDate, &isDeleted); err != nil {
		return models.Client{}, err
	}

	if dob.Valid {
		t := dob.Time.UTC()
		cl.DateOfBirth = &t
	}
	cl.JoinDate = joinDate.UTC()
	cl.IsDeleted = isDeleted != 0
	return cl, nil
}
