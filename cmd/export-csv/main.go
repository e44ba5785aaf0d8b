package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"adminhub/pkg/database"
)

func main() {
	var (
		articlesOut = flag.String("articles", "data/articles.csv", "output CSV path for articles")
		clientsOut  = flag.String("clients", "data/clients.csv", "output CSV path for clients")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportArticles(ctx, db, *articlesOut); err != nil {
		log.Fatalf("export articles failed: %v", err)
	}
	if err := exportClients(ctx, db, *clientsOut); err != nil {
		log.Fatalf("export clients failed: %v", err)
	}

	log.Printf("✅ exported articles to %s and clients to %s", *articlesOut, *clientsOut)
}

func exportArticles(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "description", "link", "images", "legacy_desc", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, title, description, link, images, legacy_desc, created_at
        FROM articles
        ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          int64
			title       string
			description string
			link        sql.NullString
			images      string
			legacyDesc  int
			createdAt   sql.NullTime
		)

		if err := rows.Scan(&id, &title, &description, &link, &images, &legacyDesc, &createdAt); err != nil {
			return err
		}

		var refs []string
		if err := json.Unmarshal([]byte(images), &refs); err != nil {
			return err
		}

		created := ""
		if createdAt.Valid {
			created = createdAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			title,
			description,
			link.String,
			strings.Join(refs, ";"),
			strconv.Itoa(legacyDesc),
			created,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportClients(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"client_id", "first_name", "last_name", "email", "phone_number", "gender", "date_of_birth", "address", "city", "join_date"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT client_id, first_name, last_name, email, phone_number, gender, date_of_birth, address, city, join_date
        FROM clients
        WHERE is_deleted = 0
        ORDER BY client_id
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			clientID    int64
			firstName   string
			lastName    string
			email       string
			phoneNumber string
			gender      string
			dateOfBirth sql.NullTime
			address     string
			city        string
			joinDate    sql.NullTime
		)

		if err := rows.Scan(&clientID, &firstName, &lastName, &email, &phoneNumber, &gender, &dateOfBirth, &address, &city, &joinDate); err != nil {
			return err
		}

		dob := ""
		if dateOfBirth.Valid {
			dob = dateOfBirth.Time.Format("2006-01-02")
		}

		joined := ""
		if joinDate.Valid {
			joined = joinDate.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			strconv.FormatInt(clientID, 10),
			firstName,
			lastName,
			email,
			phoneNumber,
			gender,
			dob,
			address,
			city,
			joined,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
