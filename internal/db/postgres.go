// Package db opens the Postgres pool used by the postgres token store and embeds its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrEmptyDSN is returned when no DSN is configured.
var ErrEmptyDSN = errors.New("db: DATABASE_URL is empty")

// Open opens a Postgres pool via the pgx stdlib driver and pings it within ctx.
// The console holds at most a handful of rows, so the pool is kept small. Caller must Close.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
