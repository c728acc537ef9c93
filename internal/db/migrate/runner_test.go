package migrate

import (
	"errors"
	"testing"

	"event-admin-console/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		if err := Run(dsn, Up); !errors.Is(err, db.ErrEmptyDSN) {
			t.Errorf("Run(%q) = %v, want ErrEmptyDSN", dsn, err)
		}
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "sideways", "UP", "Down"} {
		t.Run(dir, func(t *testing.T) {
			if err := Run("postgres://localhost/test", dir); err == nil {
				t.Errorf("Run with direction %q should return error", dir)
			}
		})
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	testCases := []struct {
		name string
		dsn  string
	}{
		{"invalid format", "invalid-dsn"},
		{"missing scheme", "://localhost/test"},
		{"spaces", "postgres://localhost with spaces/test"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Run(tc.dsn, Up)
			if err == nil {
				t.Errorf("Run with invalid DSN %q should return error", tc.dsn)
			}
			if errors.Is(err, ErrNoChange) {
				t.Error("Run should never surface ErrNoChange")
			}
		})
	}
}

func TestVersion_EmptyDSN(t *testing.T) {
	if _, _, err := Version(""); !errors.Is(err, db.ErrEmptyDSN) {
		t.Errorf("Version(\"\") = %v, want ErrEmptyDSN", err)
	}
}
