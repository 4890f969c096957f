package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-tracker/internal/response"
)

// RequireRole returns a middleware that enforces that the resolved
// identity has one of the specified roles. It must run after
// Authenticate; a request with no identity in context is a caller
// error and is rejected the same way. Note the source system replies
// 401 rather than 403 on a role mismatch, and that status is kept
// as-is here: changing it would be a contract change, not a fix.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || !allowed[ident.Role] {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}
			return next(c)
		}
	}
}
