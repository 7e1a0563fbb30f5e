package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The upstream reservations
// API owns all durable floor state; the database settings here point
// at the local command audit store only.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	UpstreamBaseURL string // base URL of the upstream reservations API
	UpstreamToken   string // bearer token for the upstream API (optional)
	JWTSecret       string // secret used to verify staff access tokens
	DBUser          string // audit database username
	DBPass          string // audit database password (optional)
	DBHost          string // audit database host address
	DBPort          string // audit database port number
	DBName          string // audit database name
	DefaultSizeMode string // floor canvas sizing mode when none is requested
	SessionTTLMin   int    // wizard session time-to-live in minutes
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),             // environment (dev/test/prod)
		Port:            must("APP_PORT"),            // port to bind the HTTP server
		UpstreamBaseURL: must("UPSTREAM_BASE_URL"),   // reservations API location
		UpstreamToken:   os.Getenv("UPSTREAM_TOKEN"), // service token (empty allowed)
		JWTSecret:       must("JWT_SECRET"),          // secret for verifying staff JWTs
		DBUser:          must("DB_USER"),             // audit database user
		DBPass:          os.Getenv("DB_PASS"),        // audit database password (empty allowed)
		DBHost:          must("DB_HOST"),             // audit database host
		DBPort:          must("DB_PORT"),             // audit database port
		DBName:          must("DB_NAME"),             // audit database name
		DefaultSizeMode: getenv("FLOOR_SIZE_MODE", "auto"),      // small/medium/large/auto
		SessionTTLMin:   atoi(getenv("SESSION_TTL_MIN", "240")), // one service shift by default
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
