package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-tracker/internal/cache"
	"github.com/iliyamo/todo-tracker/internal/middleware"
	"github.com/iliyamo/todo-tracker/internal/model"
	"github.com/iliyamo/todo-tracker/internal/queue"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/response"
)

// EventPublisher emits a domain event after a successful status
// transition. Publishing is best-effort: the handler logs failures and
// never lets them affect the response.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev queue.TodoStatusChangedEvent) error
}

// TodoHandler bundles dependencies for the todo endpoints. Cache and
// Events are injected so tests can substitute fakes; a disabled cache
// and a nil publisher are both valid.
type TodoHandler struct {
	Todos     repository.TodoStore
	Cache     *cache.Cache
	Events    EventPublisher
	StrictGet bool
}

func NewTodoHandler(todos repository.TodoStore, c *cache.Cache, events EventPublisher, strictGet bool) *TodoHandler {
	return &TodoHandler{Todos: todos, Cache: c, Events: events, StrictGet: strictGet}
}

type createTodoReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
type updateStatusReq struct {
	Status string `json:"status"`
}

// Create handles POST /todo. The status is forced to "open" by the
// repository regardless of anything the caller sends.
func (h *TodoHandler) Create(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req createTodoReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return response.Error(c, http.StatusBadRequest, "validation failed", "Title is required")
	}
	if req.Description == "" {
		return response.Error(c, http.StatusBadRequest, "validation failed", "Description is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Todos.Create(ctx, ident.ID, req.Title, req.Description)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not create todo")
	}
	return response.JSON(c, http.StatusCreated, t, "Todo created")
}

// AdminList handles GET /todo/admin. The unfiltered listing is served
// read-through from the cache under the constant admin key; a title
// filter bypasses the cache entirely, because cache keys must derive
// only from authenticated context, never from raw query input.
func (h *TodoHandler) AdminList(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if title != "" {
		items, err := h.Todos.ListAllWithOwners(ctx, title)
		if err != nil {
			return response.Error(c, http.StatusInternalServerError, "could not list todos")
		}
		return response.JSON(c, http.StatusOK, items, "All Todos retrieved (Admin)")
	}

	return h.cached(c, cache.AdminTodosKey, "All Todos retrieved (Admin)", func() (any, error) {
		return h.Todos.ListAllWithOwners(ctx, "")
	})
}

// MyTodos handles GET /todo/me, served read-through from the per-user
// cache key.
func (h *TodoHandler) MyTodos(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	return h.cached(c, cache.UserTodosKey(ident.ID), "My Todos retrieved", func() (any, error) {
		return h.Todos.ListByOwner(ctx, ident.ID)
	})
}

// GetByID handles GET /todo/:id. By default any authenticated user may
// fetch any todo by id, matching the source system; strict mode hides
// other users' items from non-admins behind the same 404 used for
// missing ids.
func (h *TodoHandler) GetByID(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "Unauthorized")
	}
	id := c.Param("id")
	if id == "" {
		return response.Error(c, http.StatusBadRequest, "todo id is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return response.Error(c, http.StatusNotFound, "Todo not found")
		}
		return response.Error(c, http.StatusInternalServerError, "could not load todo")
	}
	if h.StrictGet && ident.Role != model.RoleAdmin && t.OwnerID != ident.ID {
		return response.Error(c, http.StatusNotFound, "Todo not found")
	}
	return response.JSON(c, http.StatusOK, t, "Todo retrieved")
}

// UpdateStatus handles PATCH /todo/:id/status. The status value is
// validated before anything is persisted or evicted. After the write
// has succeeded, both cache entries whose content could now be stale
// are deleted and a status-changed event is published; neither step
// can fail the request.
func (h *TodoHandler) UpdateStatus(c echo.Context) error {
	if _, ok := middleware.CurrentIdentity(c); !ok {
		return response.Error(c, http.StatusUnauthorized, "Unauthorized")
	}
	id := c.Param("id")
	if id == "" {
		return response.Error(c, http.StatusBadRequest, "todo id is required")
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if !model.ValidStatus(req.Status) {
		return response.Error(c, http.StatusBadRequest, "validation failed", "Invalid todo status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	before, err := h.Todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return response.Error(c, http.StatusNotFound, "Todo not found")
		}
		return response.Error(c, http.StatusInternalServerError, "could not load todo")
	}

	t, err := h.Todos.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return response.Error(c, http.StatusNotFound, "Todo not found")
		}
		return response.Error(c, http.StatusInternalServerError, "could not update todo")
	}

	// The write is durable at this point. Evict the admin aggregate and
	// the owner's listing so cached readers stop seeing the old status
	// before the TTL would have expired them.
	h.Cache.Invalidate(ctx, cache.AdminTodosKey, cache.UserTodosKey(t.OwnerID))

	if h.Events != nil {
		ev := queue.TodoStatusChangedEvent{
			TodoID:    t.ID,
			OwnerID:   t.OwnerID,
			OldStatus: before.Status,
			NewStatus: t.Status,
			ChangedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.PublishStatusChanged(ctx, ev); err != nil {
			log.Printf("todo: publish status change for %s failed: %v", t.ID, err)
		}
	}

	return response.JSON(c, http.StatusOK, t, "Todo status updated")
}

// cached implements the read-through pattern for the listing
// endpoints: serve the stored envelope on a hit, otherwise compute the
// result, capture the serialized envelope asynchronously and reply
// with it. Serialization failures skip the capture rather than the
// response.
func (h *TodoHandler) cached(c echo.Context, key, message string, compute func() (any, error)) error {
	if body, ok := h.Cache.Fetch(c.Request().Context(), key); ok {
		return c.JSONBlob(http.StatusOK, body)
	}
	data, err := compute()
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not list todos")
	}
	env := response.New(http.StatusOK, data, message)
	if payload, err := json.Marshal(env); err == nil {
		h.Cache.StoreAsync(key, payload)
	} else {
		log.Printf("cache: marshal for %s failed: %v", key, err)
	}
	return c.JSON(http.StatusOK, env)
}
