package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/todo-tracker/internal/model"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/response"
)

// CookieName is the cookie carrying the access token. The cookie takes
// precedence over the Authorization header when both are present.
const CookieName = "authToken"

// identityKey is the context key under which the resolved identity is
// stored for downstream middleware and handlers.
const identityKey = "identity"

// Authenticate returns the credential verifier middleware. It extracts
// a bearer token from the auth cookie or the Authorization header,
// verifies the HS256 signature and expiry, then re-resolves the claimed
// identity against the user store: the request is rejected when the
// user no longer exists or when the stored email or role differs from
// the claims. A token issued before an account edit or deletion is
// therefore stale immediately, without any server-side revocation list.
//
// Invalid signature, expired token and stale claims all collapse into
// the same 401 reply; the caller learns nothing about which check
// failed. On success a minimal model.Identity (id and role only) is
// attached to the request context.
func Authenticate(secret string, users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}

			// Parse the token, restricting the signing method to HMAC so a
			// token signed with "none" or an asymmetric scheme is rejected.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}
			sub, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)
			if sub == "" {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}

			// Re-fetch the authoritative record and compare it against the
			// claim bundle. This is the one lookup the verifier performs.
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, sub)
			if err != nil || u.Email != email || u.Role != role {
				return response.Error(c, http.StatusUnauthorized, "Unauthorized")
			}

			c.Set(identityKey, model.Identity{ID: u.ID, Role: u.Role})
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw token, cookie first, bearer header
// second.
func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// CurrentIdentity returns the identity attached by Authenticate, or
// false when the request never passed through it.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}

// SetIdentity attaches an identity to the context the same way
// Authenticate does. Exists so tests can exercise handlers without
// minting tokens.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}
