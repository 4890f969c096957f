package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/todo-tracker/internal/model"
)

func newTodoMock(t *testing.T) (*TodoRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTodoRepo(db), mock
}

func todoRows(todos ...model.Todo) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "description", "owner_id", "status", "created_at", "updated_at"})
	for _, t := range todos {
		rows.AddRow(t.ID, t.Title, t.Description, t.OwnerID, t.Status, t.CreatedAt, t.UpdatedAt)
	}
	return rows
}

func TestTodoRepoCreateForcesOpenStatus(t *testing.T) {
	repo, mock := newTodoMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO todos")).
		WithArgs(sqlmock.AnyArg(), "A", "B", "u1", model.StatusOpen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(todoRows(model.Todo{
			ID: "generated", Title: "A", Description: "B", OwnerID: "u1",
			Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now,
		}))

	got, err := repo.Create(context.Background(), "u1", "A", "B")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Status != model.StatusOpen {
		t.Fatalf("expected open, got %q", got.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTodoRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newTodoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestTodoRepoUpdateStatus(t *testing.T) {
	repo, mock := newTodoMock(t)
	now := time.Now().UTC()
	existing := model.Todo{ID: "t1", Title: "A", Description: "B", OwnerID: "u1",
		Status: model.StatusOpen, CreatedAt: now, UpdatedAt: now}
	updated := existing
	updated.Status = model.StatusCompleted

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("t1").WillReturnRows(todoRows(existing))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE todos SET status=?")).
		WithArgs(model.StatusCompleted, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("t1").WillReturnRows(todoRows(updated))

	got, err := repo.UpdateStatus(context.Background(), "t1", model.StatusCompleted)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

// A repeated update to the same status must keep succeeding: the
// existence check, not the UPDATE's affected-row count, decides
// whether the todo exists.
func TestTodoRepoUpdateStatusIdempotent(t *testing.T) {
	repo, mock := newTodoMock(t)
	now := time.Now().UTC()
	done := model.Todo{ID: "t1", Title: "A", Description: "B", OwnerID: "u1",
		Status: model.StatusCompleted, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("t1").WillReturnRows(todoRows(done))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE todos SET status=?")).
		WithArgs(model.StatusCompleted, "t1").
		WillReturnResult(sqlmock.NewResult(0, 0)) // no row changed
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("t1").WillReturnRows(todoRows(done))

	got, err := repo.UpdateStatus(context.Background(), "t1", model.StatusCompleted)
	if err != nil {
		t.Fatalf("second update errored: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}
}

func TestTodoRepoUpdateStatusMissing(t *testing.T) {
	repo, mock := newTodoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id=?")).
		WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), "missing", model.StatusAssigned)
	if !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	// No UPDATE may run for a missing id.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTodoRepoListAllWithOwnersFilter(t *testing.T) {
	repo, mock := newTodoMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "owner_id", "status",
		"created_at", "updated_at", "name", "email"}).
		AddRow("t1", "Groceries", "milk", "u1", model.StatusOpen, now, now, "Alice", "alice@example.com")

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = t.owner_id WHERE LOWER(t.title) LIKE ?")).
		WithArgs("%groc%").
		WillReturnRows(rows)

	items, err := repo.ListAllWithOwners(context.Background(), "Groc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].OwnerName != "Alice" || items[0].OwnerEmail != "alice@example.com" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestTodoRepoListByOwnerEmpty(t *testing.T) {
	repo, mock := newTodoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE owner_id=?")).
		WithArgs("u9").
		WillReturnRows(todoRows())

	items, err := repo.ListByOwner(context.Background(), "u9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}
