package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	got := NewService(nil).Status(context.Background())
	if !got.OK || got.Storage != "memory" {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	database, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectPing()
	got := NewService(database).Status(context.Background())
	if !got.OK || got.Database != "ok" {
		t.Fatalf("unexpected status %+v", got)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	got = NewService(database).Status(context.Background())
	if got.OK || got.Database != "unreachable" {
		t.Fatalf("expected unreachable, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
