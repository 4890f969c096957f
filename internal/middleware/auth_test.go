package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-tracker/internal/model"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/utils"
)

const testSecret = "test-secret"

// fakeUserStore implements repository.UserStore for testing.
type fakeUserStore struct {
	users map[string]*model.User // keyed by id
}

func (f *fakeUserStore) Create(ctx context.Context, name, email, password, role string, cost int) (*model.User, error) {
	panic("not used")
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func storeWith(users ...*model.User) *fakeUserStore {
	m := make(map[string]*model.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserStore{users: m}
}

func issueToken(t *testing.T, u *model.User, ttlMin int) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, u.ID, u.Email, u.Role, ttlMin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Token
}

// runAuth sends a request through Authenticate and returns the
// recorder plus the identity the inner handler observed (nil when the
// handler never ran).
func runAuth(t *testing.T, store repository.UserStore, decorate func(*http.Request)) (*httptest.ResponseRecorder, *model.Identity) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/todo/me", nil)
	decorate(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.Identity
	h := Authenticate(testSecret, store)(func(c echo.Context) error {
		if id, ok := CurrentIdentity(c); ok {
			seen = &id
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, seen
}

func TestAuthenticate_ValidBearer(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	tok := issueToken(t, u, 15)

	rec, seen := runAuth(t, storeWith(u), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if seen == nil || seen.ID != "u1" || seen.Role != model.RoleUser {
		t.Fatalf("unexpected identity: %+v", seen)
	}
}

func TestAuthenticate_ValidCookie(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	tok := issueToken(t, u, 15)

	rec, seen := runAuth(t, storeWith(u), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != "u1" {
		t.Fatalf("unexpected identity: %+v", seen)
	}
}

func TestAuthenticate_CookieTakesPrecedence(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	good := issueToken(t, u, 15)

	// A garbage cookie must not be rescued by a valid bearer header.
	rec, _ := runAuth(t, storeWith(u), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
		r.Header.Set("Authorization", "Bearer "+good)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	rec, seen := runAuth(t, storeWith(), func(r *http.Request) {})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler should not have run")
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	tok := issueToken(t, u, -1) // already expired

	rec, _ := runAuth(t, storeWith(u), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	forged, err := utils.NewAccessToken("other-secret", u.ID, u.Email, u.Role, 15)
	if err != nil {
		t.Fatal(err)
	}

	rec, _ := runAuth(t, storeWith(u), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+forged.Token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	tok := issueToken(t, u, 15)

	// The signature is still valid but the account is gone.
	rec, _ := runAuth(t, storeWith(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_RoleChangedAfterIssue(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleAdmin}
	tok := issueToken(t, u, 15)

	// Demote the account; the old admin token must die immediately.
	demoted := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	rec, _ := runAuth(t, storeWith(demoted), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_EmailChangedAfterIssue(t *testing.T) {
	u := &model.User{ID: "u1", Email: "alice@example.com", Role: model.RoleUser}
	tok := issueToken(t, u, 15)

	renamed := &model.User{ID: "u1", Email: "alice@new.example.com", Role: model.RoleUser}
	rec, _ := runAuth(t, storeWith(renamed), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
