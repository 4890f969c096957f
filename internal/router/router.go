package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/todo-tracker/internal/handler"    // handlers implementing the endpoint logic
	"github.com/iliyamo/todo-tracker/internal/middleware" // credential verifier and role gate
	"github.com/iliyamo/todo-tracker/internal/model"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/response"
)

// Register wires every route of the API onto the provided Echo
// instance. Protected routes run the credential verifier first; the
// admin listing additionally runs the role gate. The read-through
// cache is not a route-level middleware — the listing handlers apply
// it explicitly, so the composition per route stays visible here:
// verifier -> (role gate) -> handler (-> cache / invalidation inside).
func Register(e *echo.Echo, a *handler.AuthHandler, t *handler.TodoHandler, users repository.UserStore, jwtSecret string) {
	// Errors that never reached a handler (unknown routes, method
	// mismatches) still reply with the uniform failure envelope. No
	// internal error text leaks; anything unexpected becomes a bare 500.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Internal Server Error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		_ = response.Error(c, code, msg)
	}

	// Health check outside the API prefix, for load balancers.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	// Unauthenticated auth operations.
	api.POST("/auth/register", a.Register)
	api.POST("/auth/login", a.Login)

	// Everything below requires a verified credential.
	auth := api.Group("")
	auth.Use(middleware.Authenticate(jwtSecret, users))

	auth.GET("/auth/me", a.Me)

	auth.POST("/todo", t.Create)
	auth.GET("/todo/admin", t.AdminList, middleware.RequireRole(model.RoleAdmin))
	auth.GET("/todo/me", t.MyTodos)
	auth.GET("/todo/:id", t.GetByID)
	auth.PATCH("/todo/:id/status", t.UpdateStatus)
}
