// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// Store selects the trip store backend: "postgres" (default) or "memory".
	Store string

	// DatabaseURL is the Postgres connection string. Required when Store is postgres.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Destinations is the allow-list offered to operators. Defaults to AWC, OSTOMY.
	Destinations []string

	// Transit is how long a trip stays in transit after its departure time.
	Transit time.Duration

	// BoardingLead is how long before departure a trip starts boarding.
	BoardingLead time.Duration

	// Location is the single local clock all departures are read in.
	// TZ selects it; unset means the process local zone.
	Location *time.Location

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory, if present, is loaded first; variables
// already set in the environment win.
// Returns an error listing every required variable that is not set and every
// variable that could not be parsed.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: reading .env: %w", err)
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		Store:        strings.ToLower(getEnv("STORE", StorePostgres)),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Destinations: splitCSV(getEnv("DESTINATIONS", "AWC,OSTOMY")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}

	var missing, invalid []string

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreMemory:
	default:
		invalid = append(invalid, "STORE")
	}

	if len(cfg.Destinations) == 0 {
		invalid = append(invalid, "DESTINATIONS")
	}

	var ok bool
	if cfg.Transit, ok = getMinutes("TRANSIT_MINUTES", 5); !ok {
		invalid = append(invalid, "TRANSIT_MINUTES")
	}
	if cfg.BoardingLead, ok = getMinutes("BOARDING_LEAD_MINUTES", 10); !ok {
		invalid = append(invalid, "BOARDING_LEAD_MINUTES")
	}

	cfg.Location = time.Local
	if tz := os.Getenv("TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "TZ")
		} else {
			cfg.Location = loc
		}
	}

	n, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	cfg.MaxBodyBytes = n

	cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true"))
	if err != nil {
		invalid = append(invalid, "MIGRATE_ON_START")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getMinutes reads a positive whole number of minutes.
func getMinutes(key string, fallback int) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Minute, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Minute, true
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
