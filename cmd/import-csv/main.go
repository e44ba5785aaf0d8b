package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"adminhub/pkg/database"
)

func main() {
	var (
		articlesIn = flag.String("articles", "data/articles.csv", "input CSV path for articles")
		clientsIn  = flag.String("clients", "data/clients.csv", "input CSV path for clients")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importArticles(ctx, db, *articlesIn); err != nil {
		log.Fatalf("import articles failed: %v", err)
	}
	if err := importClients(ctx, db, *clientsIn); err != nil {
		log.Fatalf("import clients failed: %v", err)
	}

	log.Printf("✅ imported articles from %s and clients from %s", *articlesIn, *clientsIn)
}

func importArticles(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO articles (id, title, description, link, images, legacy_desc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  description = excluded.description,
		  link = excluded.link,
		  images = excluded.images,
		  legacy_desc = excluded.legacy_desc,
		  created_at = excluded.created_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id, err := parseNullInt(valueAt(header, row, "id"))
		if err != nil {
			return fmt.Errorf("parse id: %w", err)
		}
		title := valueAt(header, row, "title")
		if title == "" {
			continue
		}

		// Older exports spell the column "discription". Rows imported
		// under that header keep serving the misspelled field until the
		// article is next updated through the API.
		description := valueAt(header, row, "description")
		legacy := 0
		if description == "" {
			if misspelled := valueAt(header, row, "discription"); misspelled != "" {
				description = misspelled
				legacy = 1
			}
		}

		images, err := imagesJSON(valueAt(header, row, "images"))
		if err != nil {
			return fmt.Errorf("encode images for %q: %w", title, err)
		}

		createdAt, err := parseTime(valueAt(header, row, "created_at"))
		if err != nil {
			return fmt.Errorf("parse created_at for %q: %w", title, err)
		}
		if !createdAt.Valid {
			createdAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			title,
			description,
			nullString(valueAt(header, row, "link")),
			images,
			legacy,
			createdAt,
		); err != nil {
			return err
		}
	}

	return nil
}

func importClients(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO clients (client_id, first_name, last_name, email, phone_number, gender, date_of_birth, address, city, join_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
		  first_name = excluded.first_name,
		  last_name = excluded.last_name,
		  email = excluded.email,
		  phone_number = excluded.phone_number,
		  gender = excluded.gender,
		  date_of_birth = excluded.date_of_birth,
		  address = excluded.address,
		  city = excluded.city,
		  join_date = excluded.join_date
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id, err := parseNullInt(valueAt(header, row, "client_id"))
		if err != nil {
			return fmt.Errorf("parse client_id: %w", err)
		}
		first := valueAt(header, row, "first_name")
		last := valueAt(header, row, "last_name")
		if first == "" && last == "" {
			continue
		}

		dob, err := parseTime(valueAt(header, row, "date_of_birth"))
		if err != nil {
			return fmt.Errorf("parse date_of_birth for %s %s: %w", first, last, err)
		}

		joinDate, err := parseTime(valueAt(header, row, "join_date"))
		if err != nil {
			return fmt.Errorf("parse join_date for %s %s: %w", first, last, err)
		}
		if !joinDate.Valid {
			joinDate = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			first,
			last,
			valueAt(header, row, "email"),
			valueAt(header, row, "phone_number"),
			valueAt(header, row, "gender"),
			dob,
			valueAt(header, row, "address"),
			valueAt(header, row, "city"),
			joinDate,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// imagesJSON converts a semicolon-separated image list into the JSON
// array the articles table stores.
func imagesJSON(raw string) (string, error) {
	refs := []string{}
	for _, ref := range strings.Split(raw, ";") {
		ref = strings.TrimSpace(ref)
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseTime(raw string) (sql.NullTime, error) {
	if raw == "" {
		return sql.NullTime{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: t, Valid: true}, nil
		}
	}
	return sql.NullTime{}, fmt.Errorf("unrecognized time %q", raw)
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
