package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracewell/venuetrace/internal/session"
)

// Context keys under which the session guard stores the authenticated
// identity for downstream middleware and handlers.
const (
	sessionKey  = "session"
	usernameKey = "username"
	roleKey     = "role"
)

// RequireSession returns a middleware that resolves the session cookie to a
// server-side snapshot and injects it into the request context.  Requests
// without a valid, unexpired session are rejected with 401; the guard never
// consults the user table, it trusts the snapshot taken at login.
func RequireSession(mgr *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			snap, err := mgr.Get(c.Request().Context(), cookie.Value)
			if err != nil || snap == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}

			c.Set(sessionKey, snap)
			c.Set(usernameKey, snap.Username)
			c.Set(roleKey, snap.Role)
			return next(c)
		}
	}
}

// CurrentSession returns the snapshot stored by RequireSession, or nil when
// the request is anonymous.
func CurrentSession(c echo.Context) *session.Snapshot {
	if v := c.Get(sessionKey); v != nil {
		if snap, ok := v.(*session.Snapshot); ok {
			return snap
		}
	}
	return nil
}
