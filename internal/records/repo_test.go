package records

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func rec(id, table, user string, at time.Time) Record {
	return Record{ID: id, Table: table, UserID: user, Payload: json.RawMessage(`{"n":1}`), CreatedAt: at}
}

func TestMemoryRepoListNewestFirstScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = repo.Insert(ctx, rec("a", TableResumes, "u1", base))
	_ = repo.Insert(ctx, rec("b", TableResumes, "u1", base.Add(time.Minute)))
	_ = repo.Insert(ctx, rec("c", TableFlowcharts, "u1", base.Add(2*time.Minute)))
	_ = repo.Insert(ctx, rec("d", TableResumes, "u2", base.Add(3*time.Minute)))

	got, err := repo.List(ctx, TableResumes, "u1", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected rows %+v", got)
	}

	page, _ := repo.List(ctx, TableResumes, "u1", 1, 1)
	if len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestMemoryRepoGetIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_ = repo.Insert(ctx, rec("a", TableResumes, "u1", time.Now()))

	if _, err := repo.Get(ctx, TableResumes, "u2", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if _, err := repo.Get(ctx, TableFlowcharts, "u1", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other table, got %v", err)
	}
}

func TestMemoryRepoDeleteFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	now := time.Now()
	_ = repo.Insert(ctx, rec("a", TableChatHistory, "u1", now))
	_ = repo.Insert(ctx, rec("b", TableChatHistory, "u1", now))
	_ = repo.Insert(ctx, rec("c", TableChatHistory, "u2", now))

	n, err := repo.Delete(ctx, TableChatHistory, "u1", Filter{ID: "a"})
	if err != nil || n != 1 {
		t.Fatalf("Delete by id = %d, %v", n, err)
	}
	n, err = repo.Delete(ctx, TableChatHistory, "u1", Filter{})
	if err != nil || n != 1 {
		t.Fatalf("Delete all = %d, %v", n, err)
	}
	if left, _ := repo.List(ctx, TableChatHistory, "u2", 0, 0); len(left) != 1 {
		t.Fatalf("other user's rows were deleted")
	}
}

func TestMemoryRepoClaimGuest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_ = repo.Insert(ctx, rec("a", TableFlowcharts, "guest:g", time.Now()))

	n, err := repo.ClaimGuest(ctx, "guest:g", "u1")
	if err != nil || n != 1 {
		t.Fatalf("ClaimGuest = %d, %v", n, err)
	}
	if _, err := repo.Get(ctx, TableFlowcharts, "u1", "a"); err != nil {
		t.Fatalf("expected claimed row, got %v", err)
	}
}

func TestPGRepoInsert(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO records").
		WithArgs("id-1", TableResumes, "u1", []byte(`{"n":1}`), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: database}
	if err := repo.Insert(context.Background(), rec("id-1", TableResumes, "u1", at)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoListScansRows(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "table_name", "user_id", "payload", "created_at"}).
		AddRow("b", TableResumes, "u1", []byte(`{"v":2}`), at.Add(time.Minute)).
		AddRow("a", TableResumes, "u1", []byte(`{"v":1}`), at)
	mock.ExpectQuery("SELECT id, table_name, user_id, payload, created_at FROM records").
		WithArgs(TableResumes, "u1", 10, 0).
		WillReturnRows(rows)

	repo := &PGRepo{DB: database}
	got, err := repo.List(context.Background(), TableResumes, "u1", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || string(got[1].Payload) != `{"v":1}` {
		t.Fatalf("unexpected rows %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectQuery("SELECT id, table_name, user_id, payload, created_at FROM records").
		WithArgs(TableResumes, "u1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "table_name", "user_id", "payload", "created_at"}))

	repo := &PGRepo{DB: database}
	if _, err := repo.Get(context.Background(), TableResumes, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteAll(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE table_name = $1 AND user_id = $2`)).
		WithArgs(TableChatHistory, "u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := &PGRepo{DB: database}
	n, err := repo.Delete(context.Background(), TableChatHistory, "u1", Filter{})
	if err != nil || n != 4 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
}
