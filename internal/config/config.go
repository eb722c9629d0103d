// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the core service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // optional — empty means the in-memory geocode cache is used

	SourcesFile string // path to the source registry JSON

	GeocodeBaseURL       string // reverse-geocoding provider, Nominatim-compatible
	GeocodePrecision     int    // decimal places for cache-key rounding
	GeocodeCacheSize     int    // capacity of the in-memory cache
	GeocodeCacheTTLHours int

	IngestIntervalHours int // 0 disables the in-server cron schedule
	IngestWorkers       int
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := os.Getenv("CORE_PORT")
	if port == "" {
		port = "8082"
	}

	sourcesFile := os.Getenv("SOURCES_FILE")
	if sourcesFile == "" {
		sourcesFile = "sources.json"
	}

	geocodeURL := os.Getenv("GEOCODE_BASE_URL")
	if geocodeURL == "" {
		geocodeURL = "https://nominatim.openstreetmap.org"
	}

	precision, err := intEnv("GEOCODE_PRECISION", 2, 0, 6)
	if err != nil {
		return nil, err
	}
	cacheSize, err := intEnv("GEOCODE_CACHE_SIZE", 500, 1, 1_000_000)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := intEnv("GEOCODE_CACHE_TTL_HOURS", 24, 1, 24*30)
	if err != nil {
		return nil, err
	}
	interval, err := intEnv("INGEST_INTERVAL_HOURS", 0, 0, 24*7)
	if err != nil {
		return nil, err
	}
	workers, err := intEnv("INGEST_WORKERS", 4, 1, 32)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             os.Getenv("REDIS_URL"),
		SourcesFile:          sourcesFile,
		GeocodeBaseURL:       geocodeURL,
		GeocodePrecision:     precision,
		GeocodeCacheSize:     cacheSize,
		GeocodeCacheTTLHours: cacheTTL,
		IngestIntervalHours:  interval,
		IngestWorkers:        workers,
	}, nil
}

func intEnv(name string, def, min, max int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%s must be an integer in [%d,%d], got %q", name, min, max, s)
	}
	return v, nil
}
