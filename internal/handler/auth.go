package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-tracker/internal/config"
	"github.com/iliyamo/todo-tracker/internal/middleware"
	"github.com/iliyamo/todo-tracker/internal/model"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/response"
	"github.com/iliyamo/todo-tracker/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewAuthHandler(cfg config.Config, users repository.UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// publicUser is the projection of a user record that may leave the
// server. The password hash never appears here.
type publicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type authData struct {
	User  publicUser `json:"user"`
	Token string     `json:"token"`
}

func toPublic(u *model.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Register creates a user with the USER role and signs them in
// immediately: the access token is set as an HttpOnly cookie and
// echoed in the body for header-based clients. There is no server-side
// session to create; the token itself is the whole credential.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return response.Error(c, http.StatusBadRequest, "name, email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return response.Error(c, http.StatusConflict, "email already exists")
		}
		return response.Error(c, http.StatusInternalServerError, "could not create user")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not issue token")
	}
	setAuthCookie(c, tok)
	return response.JSON(c, http.StatusCreated, authData{User: toPublic(u), Token: tok.Token}, "User registered")
}

// Login verifies the password and issues a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return response.Error(c, http.StatusBadRequest, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return response.Error(c, http.StatusInternalServerError, "could not load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return response.Error(c, http.StatusUnauthorized, "invalid credentials")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "could not issue token")
	}
	setAuthCookie(c, tok)
	return response.JSON(c, http.StatusOK, authData{User: toPublic(u), Token: tok.Token}, "Login successful")
}

// Me returns the current user resolved from the verified identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.Error(c, http.StatusUnauthorized, "Unauthorized")
		}
		return response.Error(c, http.StatusInternalServerError, "could not load user")
	}
	return response.JSON(c, http.StatusOK, toPublic(u), "Current user")
}

// setAuthCookie stores the access token in an HttpOnly cookie that
// expires together with the token. There is no logout endpoint that
// clears it; the credential is invalidated only by expiry.
func setAuthCookie(c echo.Context, tok utils.AccessToken) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
