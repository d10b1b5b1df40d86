package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses sweep interval durations
)

// Config holds all runtime configuration values.  Each field maps to an
// environment variable; required variables are enforced by must() and a
// missing value stops the process at startup rather than at first use.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// PaymentSimulate activates sponsorships immediately after
	// admission instead of waiting for the payment processor webhook.
	// Development/testing only; the flag must be set explicitly and is
	// never on by default.
	PaymentSimulate bool
	// PaymentWebhookToken authenticates the payment processor's
	// confirmation callbacks.  Empty disables the check (local runs).
	PaymentWebhookToken string
	// SweepInterval controls how often finished ACTIVE sponsorships
	// are swept to EXPIRED.
	SweepInterval time.Duration
}

// Load reads configuration from the environment and returns a Config.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"), // empty allowed
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		AccessTTLMin:        mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:      mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:          mustInt("BCRYPT_COST"),
		PaymentSimulate:     os.Getenv("PAYMENT_SIMULATE") == "true",
		PaymentWebhookToken: os.Getenv("PAYMENT_WEBHOOK_TOKEN"),
		SweepInterval:       durOrDefault("SPONSORSHIP_SWEEP_INTERVAL", time.Minute),
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

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// durOrDefault parses an optional duration variable, falling back to
// def when unset or malformed.
func durOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
