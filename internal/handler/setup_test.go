package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/handler"
	"github.com/tracewell/venuetrace/internal/repository"
	"github.com/tracewell/venuetrace/internal/router"
	"github.com/tracewell/venuetrace/internal/session"
)

// testEnv wires the real router pipeline over a mocked database and an
// in-memory session store, so handler tests exercise the same middleware
// chains production uses.
type testEnv struct {
	e        *echo.Echo
	mock     sqlmock.Sqlmock
	sessions *session.Manager
	checkIns *handler.CheckInHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		Env:             "test",
		BcryptCost:      bcrypt.MinCost,
		SessionTTLHours: 24,
	}

	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, false)

	authHandler := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), sessions)
	checkInHandler := handler.NewCheckInHandler(cfg, repository.NewCheckInRepo(db))
	checkInHandler.Publish = nil // no broker in tests
	markerHandler := handler.NewMarkerHandler(cfg, repository.NewMarkerRepo(db))

	e := echo.New()
	router.Register(e, config.RateLimitConfig{Enabled: false}, nil, sessions,
		authHandler, checkInHandler, markerHandler)

	return &testEnv{e: e, mock: mock, sessions: sessions, checkIns: checkInHandler}
}

// sessionCookie creates a live session for the snapshot and returns the
// cookie a logged-in client would hold.
func (env *testEnv) sessionCookie(t *testing.T, snap session.Snapshot) *http.Cookie {
	t.Helper()
	id, err := env.sessions.Create(context.Background(), snap)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: id}
}

func (env *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func aliceSnapshot() session.Snapshot {
	return session.Snapshot{
		UserID:     1,
		Username:   "alice_01",
		Email:      "a@b.com",
		GivenName:  "Alice",
		FamilyName: "Lee",
		Role:       "user",
	}
}
