package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time expresses the hold and sweep durations
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Durations are expressed in
// the unit the variable name carries and converted here once.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    HoldTTL       time.Duration // lifetime of an actor's hold window
    SweepInterval time.Duration // how often the sweeper polls for due holds
    SweepBatch    int           // maximum reservations expired per sweep cycle
    JWTSecret     string        // secret for verifying actor bearer tokens (optional)
    AdminKeyHash  string        // bcrypt hash guarding the admin reset (optional)
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The optional values degrade features instead of failing: an empty
// JWT secret falls back to header identity, an empty admin hash
// disables the reset endpoint.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),  // environment (dev/test/prod)
        Port:          must("APP_PORT"), // port to bind the HTTP server
        DBUser:        must("DB_USER"),  // database user
        DBPass:        os.Getenv("DB_PASS"),
        DBHost:        must("DB_HOST"),
        DBPort:        must("DB_PORT"),
        DBName:        must("DB_NAME"),
        HoldTTL:       time.Duration(intOr("HOLD_TTL_SECONDS", 300)) * time.Second,
        SweepInterval: time.Duration(intOr("SWEEP_INTERVAL_SECONDS", 15)) * time.Second,
        SweepBatch:    intOr("SWEEP_BATCH", 100),
        JWTSecret:     os.Getenv("JWT_SECRET"),
        AdminKeyHash:  os.Getenv("ADMIN_KEY_HASH"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intOr returns the integer value of an environment variable, or the
// default when the variable is unset.  A set-but-invalid value is a
// configuration mistake and exits, mirroring must().
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
