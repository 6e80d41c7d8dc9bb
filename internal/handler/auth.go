package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel errors from the store
	"errors"       // errors.Is comparisons
	"net/http"     // HTTP status codes and primitives
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/middleware"
	"github.com/tracewell/venuetrace/internal/repository"
	"github.com/tracewell/venuetrace/internal/session"
	"github.com/tracewell/venuetrace/internal/utils"
)

// AuthHandler bundles dependencies for the signup/login/logout surface and
// the small session-introspection endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// Signup creates a user account.  The body has already passed the signup
// schema, so fields are well-formed; only uniqueness can still fail.
func (h *AuthHandler) Signup(c echo.Context) error {
	username := middleware.FormString(c, "user")
	pass := middleware.FormString(c, "pass")
	email := middleware.FormString(c, "email")
	given := middleware.FormString(c, "given_name")
	family := middleware.FormString(c, "family_name")
	role := middleware.FormString(c, "type")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, username, pass, email, given, family, role, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Username already exists"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
		}
		return storeError(c, h.Cfg, err, "create user failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "signup successful"})
}

// Login verifies credentials and opens a session.  Unknown username and
// wrong password produce the same generic 401 so the response does not
// reveal which half was wrong.  A match against a legacy-scheme hash is
// transparently rewritten to the current scheme; the rewrite is best-effort
// and never blocks the login response.
func (h *AuthHandler) Login(c echo.Context) error {
	username := middleware.FormString(c, "user")
	pass := middleware.FormString(c, "pass")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return storeError(c, h.Cfg, err, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, pass) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if utils.NeedsRehash(u.PasswordHash) {
		if newHash, hashErr := utils.HashPassword(pass, h.Cfg.BcryptCost); hashErr != nil {
			c.Logger().Errorf("hash migration: rehash failed for user %d: %v", u.ID, hashErr)
		} else if updErr := h.Users.UpdatePasswordHash(ctx, u.ID, newHash); updErr != nil {
			c.Logger().Errorf("hash migration: rewrite failed for user %d: %v", u.ID, updErr)
		}
	}

	snap := session.Snapshot{
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		Role:       u.Role,
	}
	sid, err := h.Sessions.Create(ctx, snap)
	if err != nil {
		return storeError(c, h.Cfg, err, "create session failed")
	}
	session.SetCookie(c.Response(), sid, h.Sessions.TTL(), h.Sessions.CookieOptions())

	return c.JSON(http.StatusOK, echo.Map{
		"username":  u.Username,
		"user_type": u.Role,
	})
}

// Logout destroys the session if one is attached and clears the cookie.
// It succeeds whether or not the client was logged in.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := h.Sessions.Destroy(c.Request().Context(), cookie.Value); err != nil {
			c.Logger().Warnf("logout: destroy session failed: %v", err)
		}
	}
	session.ClearCookie(c.Response(), h.Sessions.CookieOptions())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Header tells the client-side chrome whether a session is active.  The
// route is public, so the cookie is resolved here rather than by the guard.
func (h *AuthHandler) Header(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if snap, err := h.Sessions.Get(c.Request().Context(), cookie.Value); err == nil && snap != nil {
			return c.String(http.StatusOK, "in")
		}
	}
	return c.String(http.StatusOK, "out")
}

// Username returns the authenticated user's username as plain text.
func (h *AuthHandler) Username(c echo.Context) error {
	snap := middleware.CurrentSession(c)
	if snap == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.String(http.StatusOK, snap.Username)
}

// Email returns the authenticated user's email as plain text.
func (h *AuthHandler) Email(c echo.Context) error {
	snap := middleware.CurrentSession(c)
	if snap == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.String(http.StatusOK, snap.Email)
}
