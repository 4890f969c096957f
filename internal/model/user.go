package model

import "time"

// Role values stored on a user record and embedded in access tokens.
// The set is closed: there are exactly two roles in the system.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether r is one of the known role names.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an application user record as stored in the
// `users` table. The password hash never leaves the repository and
// handler layers; public API responses use a separate DTO.
//
// Fields:
//
//	ID           – uuid primary key of the user.
//	Name         – display name shown in admin listings.
//	Email        – unique email address, stored lowercase.
//	PasswordHash – bcrypt hashed password.
//	Role         – ADMIN or USER.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Identity is the minimal resolved principal attached to the request
// context after credential verification. Handlers never receive the
// full user record this way; anything beyond id and role must be
// re-fetched from the store.
type Identity struct {
	ID   string
	Role string
}
