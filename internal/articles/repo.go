package articles

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"adminhub/pkg/models"
)

// Row is an article as stored. LegacyDesc marks rows imported from the
// old backend whose list payloads spelled the description key
// "discription"; the list endpoint reproduces that spelling for them.
type Row struct {
	models.Article
	LegacyDesc bool
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context) ([]Row, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, description, link, images, legacy_desc, created_at
		FROM articles
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (*Row, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, description, link, images, legacy_desc, created_at
		FROM articles
		WHERE id = ?
	`, id)

	a, err := scanArticle(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, a models.Article) (int, error) {
	imagesJSON, err := json.Marshal(a.Images)
	if err != nil {
		return 0, fmt.Errorf("marshal images: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO articles (title, description, link, images, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.Title, a.Description, a.Link, string(imagesJSON), a.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return int(id), nil
}

func (r *Repo) Update(ctx context.Context, a models.Article) (bool, error) {
	imagesJSON, err := json.Marshal(a.Images)
	if err != nil {
		return false, fmt.Errorf("marshal images: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, description = ?, link = ?, images = ?, legacy_desc = 0
		WHERE id = ?
	`, a.Title, a.Description, a.Link, string(imagesJSON), a.ID)
	if err != nil {
		return false, fmt.Errorf("update article: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanArticle(scan func(dest ...any) error) (Row, error) {
	var (
		row        Row
		link       sql.NullString
		imagesJSON string
		legacy     int
		createdAt  time.Time
	)
	if err := scan(&row.ID, &row.Title, &row.Description, &link, &imagesJSON, &legacy, &createdAt); err != nil {
		return Row{}, err
	}

	if link.Valid {
		row.Link = &link.String
	}
	row.Images = []string{}
	_ = json.Unmarshal([]byte(imagesJSON), &row.Images)
	if row.Images == nil {
		row.Images = []string{}
	}
	row.LegacyDesc = legacy != 0
	row.CreatedAt = createdAt.UTC()
	return row, nil
}
