package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/todo-tracker/internal/model"
)

// TodoStore is the contract the todo handlers depend on. The todos
// table is the single source of truth; cache entries layered on top of
// these reads are never authoritative.
type TodoStore interface {
	Create(ctx context.Context, ownerID, title, description string) (*model.Todo, error)
	GetByID(ctx context.Context, id string) (*model.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	ListAllWithOwners(ctx context.Context, titleFilter string) ([]model.AdminTodo, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Todo, error)
}

// TodoRepo implements TodoStore on top of MySQL.
type TodoRepo struct{ DB *sql.DB }

func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{DB: db} }

const todoColumns = "id,title,description,owner_id,status,created_at,updated_at"

// Create inserts a new todo with a generated uuid. The status column
// is forced to "open" here rather than trusted from the caller, and a
// follow-up SELECT populates the DB-assigned timestamps.
func (r *TodoRepo) Create(ctx context.Context, ownerID, title, description string) (*model.Todo, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO todos (id, title, description, owner_id, status) VALUES (?,?,?,?,?)",
		id, title, description, ownerID, model.StatusOpen)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a todo by id, returning ErrTodoNotFound when absent.
func (r *TodoRepo) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	var t model.Todo
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns every todo owned by ownerID in insertion order.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE owner_id=? ORDER BY created_at ASC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListAllWithOwners returns every todo across all owners, joined with
// the owner's name and email for the admin view. A non-empty
// titleFilter narrows the result to titles containing it, matched
// case-insensitively.
func (r *TodoRepo) ListAllWithOwners(ctx context.Context, titleFilter string) ([]model.AdminTodo, error) {
	q := `SELECT t.id,t.title,t.description,t.owner_id,t.status,t.created_at,t.updated_at,u.name,u.email
	FROM todos t JOIN users u ON u.id = t.owner_id`
	args := []any{}
	if titleFilter != "" {
		q += " WHERE LOWER(t.title) LIKE ?"
		args = append(args, "%"+strings.ToLower(titleFilter)+"%")
	}
	q += " ORDER BY t.created_at ASC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AdminTodo, 0)
	for rows.Next() {
		var t model.AdminTodo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.Status,
			&t.CreatedAt, &t.UpdatedAt, &t.OwnerName, &t.OwnerEmail); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// UpdateStatus persists a new status for the todo and returns the
// updated record. The existence check runs first so a repeated update
// to the same status still succeeds (the UPDATE alone would report
// zero affected rows and be indistinguishable from a missing id).
func (r *TodoRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Todo, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE todos SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=?", status, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
