package model

import "time"

// Todo status lifecycle: open -> assigned -> completed. New items are
// always created as open regardless of what the caller sends.
const (
	StatusOpen      = "open"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a member of the closed status
// enumeration. Status values arriving from clients must pass this
// check before any persistence or cache mutation happens.
func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusAssigned || s == StatusCompleted
}

// Todo represents a single task owned by exactly one user. Only the
// owner's id is stored; owner details are resolved by reference when
// a view needs them (admin listing).
type Todo struct {
	ID          string    `json:"id"`          // todos.id (uuid)
	Title       string    `json:"title"`       // todos.title, non-empty
	Description string    `json:"description"` // todos.description, non-empty
	OwnerID     string    `json:"ownerId"`     // todos.owner_id -> users.id
	Status      string    `json:"status"`      // todos.status
	CreatedAt   time.Time `json:"createdAt"`   // todos.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // todos.updated_at
}

// AdminTodo is a todo annotated with its resolved owner, used only by
// the admin listing.
type AdminTodo struct {
	Todo
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`
}
