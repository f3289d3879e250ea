package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// NewDBConnection opens a pooled connection and proves it with a ping.
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the guests table when it does not exist yet, so
// a fresh database is usable without a separate migration step.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS guests (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			phone            TEXT NOT NULL UNIQUE,
			status           TEXT NOT NULL,
			attendees_count  INTEGER,
			response_message TEXT,
			last_update      TIMESTAMPTZ NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL
		)`

	_, err := db.ExecContext(ctx, schema)
	return err
}
