package middleware

import (
    "context"
    "math"
    "net/http"
    "strconv"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/tracewell/venuetrace/internal/config"
)

// CounterStore is the injectable backing for fixed-window rate limiting.
// Incr atomically increments the counter for key, starting a new window of
// the given length when the key is first seen, and returns the count inside
// the current window together with the time remaining until the window
// rolls over.
type CounterStore interface {
    Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// RedisCounterStore runs the increment-and-expire as a single Lua script so
// concurrent requests cannot race the window start.
type RedisCounterStore struct {
    client *redis.Client
    script *redis.Script
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
    return &RedisCounterStore{
        client: client,
        script: redis.NewScript(`
            local count = redis.call('INCR', KEYS[1])
            if count == 1 then
                redis.call('PEXPIRE', KEYS[1], ARGV[1])
            end
            local ttl = redis.call('PTTL', KEYS[1])
            if ttl < 0 then
                redis.call('PEXPIRE', KEYS[1], ARGV[1])
                ttl = tonumber(ARGV[1])
            end
            return { count, ttl }
        `),
    }
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
    vals, err := s.script.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
    if err != nil {
        return 0, 0, err
    }
    if len(vals) != 2 {
        return 0, 0, nil
    }
    return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}

type counterEntry struct {
    count     int64
    expiresAt time.Time
}

// MemoryCounterStore is the in-process CounterStore used in tests and as
// the fallback when Redis is unreachable.  Expired windows are reset lazily
// on the next increment.
type MemoryCounterStore struct {
    mu      sync.Mutex
    entries map[string]*counterEntry
}

func NewMemoryCounterStore() *MemoryCounterStore {
    return &MemoryCounterStore{entries: make(map[string]*counterEntry)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
    now := time.Now()
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.entries[key]
    if !ok || now.After(e.expiresAt) {
        e = &counterEntry{expiresAt: now.Add(window)}
        s.entries[key] = e
    }
    e.count++
    return e.count, e.expiresAt.Sub(now), nil
}

// RateLimit returns a fixed-window limiter middleware for one limit class.
// Keys combine the class name with the client IP, plus the authenticated
// username for per-user classes when a session guard ran earlier in the
// chain.  Counter store failures fail open: the limiter must never turn
// into a 5xx of its own.
func RateLimit(class config.LimitClass, store CounterStore, enabled bool) echo.MiddlewareFunc {
    if !enabled || store == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(class, c)

            count, remaining, err := store.Incr(c.Request().Context(), key, class.Window)
            if err != nil {
                c.Logger().Warnf("[ratelimit] counter error for key=%s: %v", key, err)
                return next(c)
            }

            left := class.Max - count
            if left < 0 {
                left = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(class.Max, 10))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))

            if count > class.Max {
                secs := int(math.Ceil(remaining.Seconds()))
                if secs < 1 {
                    secs = 1
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":      "too_many_requests",
                    "message":    "rate limit exceeded",
                    "retryAfter": secs,
                })
            }
            return next(c)
        }
    }
}

func buildRateKey(class config.LimitClass, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    key := "rl:" + class.Name + ":ip:" + ip
    if class.PerUser {
        key += ":user:" + currentUsername(c)
    }
    return key
}

func currentUsername(c echo.Context) string {
    if v := c.Get(usernameKey); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}
