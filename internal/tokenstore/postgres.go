package tokenstore

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBackend stores entries in the console_storage table, one row per (namespace, key).
type PostgresBackend struct {
	db        *sql.DB
	namespace string
}

// NewPostgresBackend returns a backend over db scoped to namespace.
func NewPostgresBackend(db *sql.DB, namespace string) *PostgresBackend {
	return &PostgresBackend{db: db, namespace: namespace}
}

// Get returns the value for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM console_storage WHERE namespace = $1 AND key = $2`,
		b.namespace, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set upserts value under key.
func (b *PostgresBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO console_storage (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		b.namespace, key, value,
	)
	return err
}

// Delete removes keys.
func (b *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM console_storage WHERE namespace = $1 AND key = $2`,
			b.namespace, k,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Keys lists keys in the namespace ordered by name.
func (b *PostgresBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM console_storage WHERE namespace = $1 ORDER BY key`,
		b.namespace,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
