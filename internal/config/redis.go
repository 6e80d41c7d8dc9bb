package config

// Redis backs the rate-limit counters and the session store.  Both backends
// treat Redis as optional: when the server cannot be reached at startup the
// client constructor returns nil and the caller wires the in-process stores
// instead, so the service still runs single-node without it.

import (
    "context"
    "log"
    "net"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig carries the connection parameters for the Redis client.
type RedisConfig struct {
    URL         string        // full connection string; wins over Host/Port when set
    Host        string
    Port        string
    Password    string
    DB          int
    PoolSize    int
    DialTimeout time.Duration // also bounds the startup ping
}

// LoadRedisConfig reads the Redis settings from environment variables,
// with defaults suitable for local development.
func LoadRedisConfig() RedisConfig {
    return RedisConfig{
        URL:         os.Getenv("REDIS_URL"),
        Host:        envStr("REDIS_HOST", "localhost"),
        Port:        envStr("REDIS_PORT", "6379"),
        Password:    os.Getenv("REDIS_PASSWORD"),
        DB:          envInt("REDIS_DB", 0),
        PoolSize:    envInt("REDIS_POOL_SIZE", 10),
        DialTimeout: envDur("REDIS_DIAL_TIMEOUT", 2*time.Second),
    }
}

// Options resolves the client options.  REDIS_URL takes precedence so
// managed deployments can hand over a single connection string (including
// rediss:// for TLS); otherwise the discrete host/port/password/db values
// apply.  Pool size and dial timeout are applied on top in either case.
func (rc RedisConfig) Options() (*redis.Options, error) {
    opts := &redis.Options{
        Addr:     net.JoinHostPort(rc.Host, rc.Port),
        Password: rc.Password,
        DB:       rc.DB,
    }
    if rc.URL != "" {
        parsed, err := redis.ParseURL(rc.URL)
        if err != nil {
            return nil, err
        }
        opts = parsed
    }
    opts.PoolSize = rc.PoolSize
    opts.DialTimeout = rc.DialTimeout
    return opts, nil
}

// NewRedisClient connects using LoadRedisConfig and verifies the connection
// with a ping.  It returns nil when REDIS_URL is malformed or the server is
// unreachable; callers fall back to the in-process stores.
func NewRedisClient() *redis.Client {
    rc := LoadRedisConfig()
    opts, err := rc.Options()
    if err != nil {
        log.Printf("redis: invalid REDIS_URL: %v", err)
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), rc.DialTimeout)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
