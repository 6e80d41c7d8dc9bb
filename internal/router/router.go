package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/handler"
	"github.com/tracewell/venuetrace/internal/middleware"
	"github.com/tracewell/venuetrace/internal/model"
	"github.com/tracewell/venuetrace/internal/session"
	"github.com/tracewell/venuetrace/internal/validate"
)

// Register wires every route with its pipeline.  Each sensitive route
// composes the same fixed stage order: rate limiting, then the validation
// gate (unexpected-field rejection before schema rules), then the session
// and role guards where required, then the handler.  For write-class routes
// the session guard runs before the limiter so the per-user counter key can
// include the authenticated username.
func Register(
	e *echo.Echo,
	rl config.RateLimitConfig,
	counters middleware.CounterStore,
	sessions *session.Manager,
	auth *handler.AuthHandler,
	checkIns *handler.CheckInHandler,
	markers *handler.MarkerHandler,
) {
	authLimit := middleware.RateLimit(rl.Auth, counters, rl.Enabled)
	sensitiveLimit := middleware.RateLimit(rl.Sensitive, counters, rl.Enabled)
	writeLimit := middleware.RateLimit(rl.Write, counters, rl.Enabled)
	generalLimit := middleware.RateLimit(rl.General, counters, rl.Enabled)
	requireSession := middleware.RequireSession(sessions)

	e.GET("/healthz", handler.Health)

	u := e.Group("/users")
	u.POST("/signup", auth.Signup, authLimit, middleware.ValidateBody(validate.Signup))
	u.POST("/login", auth.Login, authLimit, middleware.ValidateBody(validate.Login))
	u.POST("/logout", auth.Logout)
	u.POST("/check_in", checkIns.CheckIn, requireSession, writeLimit, middleware.ValidateBody(validate.CheckIn))
	u.POST("/history", checkIns.History, requireSession, generalLimit, middleware.ValidateBody(validate.History))

	e.GET("/header", auth.Header)
	e.GET("/username", auth.Username, sensitiveLimit, requireSession)
	e.GET("/email", auth.Email, sensitiveLimit, requireSession)

	e.GET("/mapmarkers", markers.List, requireSession)
	e.POST("/addmarkers", markers.Add,
		requireSession,
		middleware.RequireRole(model.RoleManager, model.RoleAdmin),
		writeLimit,
		middleware.ValidateBody(validate.Marker),
	)
}
