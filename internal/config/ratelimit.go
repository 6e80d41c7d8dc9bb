package config

import (
    "os"
    "strconv"
    "time"
)

// LimitClass describes one rate-limit class: a fixed window of Window length
// in which at most Max requests per key are allowed.  PerUser controls key
// derivation: classes protecting anonymous surfaces (auth, sensitive) key on
// the client IP alone so brute force is bounded regardless of account, while
// classes protecting authenticated surfaces (write, general) fold the
// authenticated username into the key so an abuser cannot hide behind shared
// infrastructure.
type LimitClass struct {
    Name    string
    Max     int64
    Window  time.Duration
    PerUser bool
}

// RateLimitConfig carries the four limit classes used by the API.  Each
// class is evaluated independently; exhausting one never blocks another.
type RateLimitConfig struct {
    Enabled   bool
    Auth      LimitClass
    Sensitive LimitClass
    Write     LimitClass
    General   LimitClass
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults are used when variables are not set.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Auth: LimitClass{
            Name:   "auth",
            Max:    int64(envInt("RATE_LIMIT_AUTH_MAX", 5)),
            Window: envDur("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
        },
        Sensitive: LimitClass{
            Name:   "sensitive",
            Max:    int64(envInt("RATE_LIMIT_SENSITIVE_MAX", 10)),
            Window: envDur("RATE_LIMIT_SENSITIVE_WINDOW", time.Hour),
        },
        Write: LimitClass{
            Name:    "write",
            Max:     int64(envInt("RATE_LIMIT_WRITE_MAX", 30)),
            Window:  envDur("RATE_LIMIT_WRITE_WINDOW", time.Minute),
            PerUser: true,
        },
        General: LimitClass{
            Name:    "general",
            Max:     int64(envInt("RATE_LIMIT_GENERAL_MAX", 120)),
            Window:  envDur("RATE_LIMIT_GENERAL_WINDOW", time.Minute),
            PerUser: true,
        },
    }
    for _, c := range []*LimitClass{&cfg.Auth, &cfg.Sensitive, &cfg.Write, &cfg.General} {
        if c.Max < 1 {
            c.Max = 1
        }
        if c.Window <= 0 {
            c.Window = time.Minute
        }
    }
    return cfg
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON": return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF": return false
    }
    return d
}

func envStr(k, d string) string {
    v := os.Getenv(k); if v == "" { return d }
    return v
}

func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
