package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    DBMaxOpen       int    // connection pool: max open connections
    DBMaxIdle       int    // connection pool: max idle connections
    DBConnLifeMin   int    // connection pool: max connection lifetime in minutes
    BcryptCost      int    // bcrypt cost for password hashing
    SessionTTLHours int    // session lifetime in hours
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        DBMaxOpen:       envInt("DB_MAX_OPEN_CONNS", 25),
        DBMaxIdle:       envInt("DB_MAX_IDLE_CONNS", 25),
        DBConnLifeMin:   envInt("DB_CONN_LIFETIME_MIN", 30),
        BcryptCost:      mustInt("BCRYPT_COST"),
        SessionTTLHours: envInt("SESSION_TTL_HOURS", 24),
    }
}

// Prod reports whether the application runs in production mode.  Production
// mode restricts cookies to HTTPS and hides internal error detail from
// responses.
func (c Config) Prod() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
