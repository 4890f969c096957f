// Package repository contains data access logic separated from HTTP
// handlers. This file defines sentinel error values reused across the
// repositories so that higher layers can map failure scenarios onto
// HTTP responses with errors.Is instead of string matching.
package repository

import "errors"

// ErrUserNotFound is returned when no user row matches the lookup.
// The credential verifier translates it into HTTP 401, because a
// token whose subject no longer exists is a stale credential.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration collides with an
// existing email. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrTodoNotFound is returned when no todo row matches the lookup.
// Handlers translate it into HTTP 404.
var ErrTodoNotFound = errors.New("todo not found")
