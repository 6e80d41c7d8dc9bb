package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewell/venuetrace/internal/config"
)

func limitedHandler(class config.LimitClass, store CounterStore) (*echo.Echo, echo.HandlerFunc) {
	e := echo.New()
	mw := RateLimit(class, store, true)
	return e, mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
}

func doRequest(e *echo.Echo, h echo.HandlerFunc, username string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if username != "" {
		c.Set(usernameKey, username)
	}
	_ = h(c)
	return rec
}

func TestRateLimitDeniesAboveMaxAndResets(t *testing.T) {
	class := config.LimitClass{Name: "auth", Max: 3, Window: 100 * time.Millisecond}
	e, h := limitedHandler(class, NewMemoryCounterStore())

	for i := 0; i < 3; i++ {
		rec := doRequest(e, h, "")
		require.Equal(t, http.StatusOK, rec.Code, "request %d within the window", i+1)
	}

	rec := doRequest(e, h, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too_many_requests", body.Error)
	assert.GreaterOrEqual(t, body.RetryAfter, 1)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A fresh window admits requests again.
	time.Sleep(120 * time.Millisecond)
	rec = doRequest(e, h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitClassesAreIndependent(t *testing.T) {
	store := NewMemoryCounterStore()
	authClass := config.LimitClass{Name: "auth", Max: 1, Window: time.Minute}
	generalClass := config.LimitClass{Name: "general", Max: 10, Window: time.Minute}

	e, authH := limitedHandler(authClass, store)
	_, generalH := limitedHandler(generalClass, store)

	require.Equal(t, http.StatusOK, doRequest(e, authH, "").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(e, authH, "").Code)

	// Exhausting the auth class must not block the general class.
	assert.Equal(t, http.StatusOK, doRequest(e, generalH, "").Code)
}

func TestRateLimitPerUserKeying(t *testing.T) {
	class := config.LimitClass{Name: "write", Max: 1, Window: time.Minute, PerUser: true}
	e, h := limitedHandler(class, NewMemoryCounterStore())

	require.Equal(t, http.StatusOK, doRequest(e, h, "alice_01").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(e, h, "alice_01").Code)

	// Same IP, different authenticated identity: separate counter.
	assert.Equal(t, http.StatusOK, doRequest(e, h, "bob_02").Code)
}

type failingCounterStore struct{}

func (failingCounterStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("counter backend down")
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	class := config.LimitClass{Name: "auth", Max: 1, Window: time.Minute}
	e, h := limitedHandler(class, failingCounterStore{})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(e, h, "").Code)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	mw := RateLimit(config.LimitClass{Name: "auth", Max: 1, Window: time.Minute}, NewMemoryCounterStore(), false)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(e, h, "").Code)
	}
}

func TestMemoryCounterStoreWindow(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	count, remaining, err := store.Incr(ctx, "k", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Greater(t, remaining, time.Duration(0))

	count, _, err = store.Incr(ctx, "k", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	time.Sleep(60 * time.Millisecond)
	count, _, err = store.Incr(ctx, "k", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "window rollover resets the count")
}
