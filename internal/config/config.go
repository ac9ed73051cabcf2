// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"modoojob/search-service/internal/region"
)

// Config holds all runtime configuration for the search service.
type Config struct {
	Port        string
	DatabaseURL string

	// RedisURL is optional. When empty the service falls back to an
	// in-process snapshot store swept by the janitor.
	RedisURL string

	// JobAPIBase and TalentAPIBase point at the upstream streaming search
	// backends; "/stream" is appended per request.
	JobAPIBase    string
	TalentAPIBase string

	DefaultRegion string

	IdleTimeout   time.Duration
	SnapshotTTL   time.Duration
	SweepInterval time.Duration
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	jobAPI := os.Getenv("AIJOB_API_BASE")
	if jobAPI == "" {
		return nil, fmt.Errorf("AIJOB_API_BASE is required")
	}

	talentAPI := os.Getenv("TALENT_SEARCH_API_URL")
	if talentAPI == "" {
		return nil, fmt.Errorf("TALENT_SEARCH_API_URL is required")
	}

	port := os.Getenv("SEARCH_PORT")
	if port == "" {
		port = "8083"
	}

	defaultRegion, err := loadDefaultRegion()
	if err != nil {
		return nil, err
	}

	idle, err := durationEnv("STREAM_IDLE_TIMEOUT_SEC", 90, time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := durationEnv("SNAPSHOT_TTL_MIN", 30, time.Minute)
	if err != nil {
		return nil, err
	}
	sweep, err := durationEnv("SNAPSHOT_SWEEP_MIN", 10, time.Minute)
	if err != nil {
		return nil, err
	}
	if sweep == 0 {
		return nil, fmt.Errorf("SNAPSHOT_SWEEP_MIN must be at least 1")
	}

	return &Config{
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      os.Getenv("REDIS_URL"),
		JobAPIBase:    jobAPI,
		TalentAPIBase: talentAPI,
		DefaultRegion: defaultRegion,
		IdleTimeout:   idle,
		SnapshotTTL:   ttl,
		SweepInterval: sweep,
	}, nil
}

// loadDefaultRegion reads DEFAULT_REGION, which may be either a canonical
// region name or a Work24 region code, and yields the canonical name the
// upstream expects. Unknown values fail startup.
func loadDefaultRegion() (string, error) {
	raw := os.Getenv("DEFAULT_REGION")
	if raw == "" {
		return "", nil
	}
	name := region.Name(raw)
	if _, ok := region.Code(name); !ok {
		return "", fmt.Errorf("DEFAULT_REGION %q is not a known region name or code", raw)
	}
	return name, nil
}

// durationEnv parses an integer env var scaled by unit.
func durationEnv(key string, def int, unit time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * unit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return time.Duration(n) * unit, nil
}
