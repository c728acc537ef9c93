package tokenstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgresBackend_Get(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	b := NewPostgresBackend(db, "console")

	mock.ExpectQuery(`SELECT value FROM console_storage`).
		WithArgs("console", KeyAccessToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("tok"))
	mock.ExpectQuery(`SELECT value FROM console_storage`).
		WithArgs("console", KeyRefreshToken).
		WillReturnError(sql.ErrNoRows)

	if v, err := b.Get(ctx, KeyAccessToken); err != nil || v != "tok" {
		t.Errorf("Get = %q, %v", v, err)
	}
	if _, err := b.Get(ctx, KeyRefreshToken); err != ErrNotFound {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresBackend_SetUpserts(t *testing.T) {
	db, mock := newMock(t)
	b := NewPostgresBackend(db, "console")

	mock.ExpectExec(`INSERT INTO console_storage .* ON CONFLICT \(namespace, key\) DO UPDATE`).
		WithArgs("console", KeyAccessToken, "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := b.Set(context.Background(), KeyAccessToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresBackend_ClearThroughStore(t *testing.T) {
	db, mock := newMock(t)
	s := New(NewPostgresBackend(db, "console"), nil)

	mock.ExpectQuery(`SELECT key FROM console_storage`).
		WithArgs("console").
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("authToken").AddRow("theme").AddRow("userPrefs"))
	mock.ExpectBegin()
	for _, k := range []string{KeyAccessToken, KeyRefreshToken, KeyUserProfile, "userPrefs"} {
		mock.ExpectExec(`DELETE FROM console_storage`).
			WithArgs("console", k).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	s.Clear(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresBackend_DeleteRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	b := NewPostgresBackend(db, "console")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM console_storage`).
		WithArgs("console", "a").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if err := b.Delete(context.Background(), "a", "b"); err == nil {
		t.Error("Delete should return error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
