package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the playback tuning durations
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Strings for identifiers and
// secrets, ints for costs and TTLs, durations for the playback loops.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign staff JWTs
	AccessTTLMin int    // staff access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for staff password hashing

	// Playback synchronization tuning.  Defaults match the clients.
	ResyncInterval time.Duration // drift check period
	DriftThreshold time.Duration // drift beyond this forces a seek
	HealthInterval time.Duration // stalled-playback repair period

	// ClaimRetries bounds how many free seats a claim walks through
	// when losing conditional writes to concurrent claimers.
	ClaimRetries int

	// PublishPresence controls whether presence write-throughs are
	// broadcast on the broker for other gateway instances.
	PublishPresence bool
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message;
// tuning values fall back to defaults.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),      // environment (dev/test/prod)
		Port:         must("APP_PORT"),     // port to bind the HTTP server
		DBUser:       must("DB_USER"),      // database user
		DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:       must("DB_HOST"),      // database host
		DBPort:       must("DB_PORT"),      // database port
		DBName:       must("DB_NAME"),      // database name
		JWTSecret:    must("JWT_SECRET"),   // secret used for signing staff JWTs
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		ResyncInterval: envDur("PLAYBACK_RESYNC_INTERVAL", 10*time.Second),
		DriftThreshold: envDur("PLAYBACK_DRIFT_THRESHOLD", 5*time.Second),
		HealthInterval: envDur("PLAYBACK_HEALTH_INTERVAL", 5*time.Second),

		ClaimRetries:    envInt("SEAT_CLAIM_RETRIES", 3),
		PublishPresence: envBool("PRESENCE_PUBLISH", true),
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
