// Package migrate applies the embedded token-store schema using golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"strings"

	"event-admin-console/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Directions accepted by Run.
const (
	Up   = "up"
	Down = "down"
)

// ErrNoChange is returned by golang-migrate when already at the target version. Run swallows it.
var ErrNoChange = migrate.ErrNoChange

// Run applies (up) or rolls back (down) every embedded migration against dsn.
func Run(dsn, direction string) error {
	m, err := open(dsn, direction)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if direction == Up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version reports the applied schema version and whether the last migration left it dirty.
// A database with no migrations applied reports version 0.
func Version(dsn string) (uint, bool, error) {
	m, err := open(dsn, Up)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func open(dsn, direction string) (*migrate.Migrate, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, db.ErrEmptyDSN
	}
	if direction != Up && direction != Down {
		return nil, fmt.Errorf("direction must be up or down, got %q", direction)
	}
	source, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return m, nil
}
