package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

type AppConfig struct {
	// Earthdata basic-auth credentials for granule downloads.
	Earthdata aod.Credentials

	// CacheDir is the explicit cache root for downloaded granule files.
	CacheDir string

	// OutCSV, when set, receives the latest reading as a single-row CSV.
	OutCSV string

	// GeocoderBackend selects "nominatim" (default) or "google".
	GeocoderBackend string
	GoogleAPIKey    string

	// Cities fetched periodically by the scheduler.
	Cities []string

	// FetchInterval controls how often the scheduler fetches each city.
	FetchInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of readings per city (0 = unlimited)
	StoreMaxAge     time.Duration // max age of readings (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Earthdata = aod.Credentials{
		Username: os.Getenv("EARTHDATA_USERNAME"),
		Password: os.Getenv("EARTHDATA_PASSWORD"),
	}

	cfg.CacheDir = getenvDefault("AOD_CACHE_DIR", "data/modis_cache")
	cfg.OutCSV = os.Getenv("AOD_OUT_CSV")

	cfg.GeocoderBackend = getenvDefault("GEOCODER", "nominatim")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	if cfg.GeocoderBackend == "google" && cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GEOCODER=google requires GOOGLE_API_KEY")
	}

	// Scheduler interval: default 6 hours; MODIS aerosol granules are not
	// produced more often than a few times per day for one spot.
	intervalStr := getenvDefault("FETCH_INTERVAL", "6h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 30)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "720h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.Cities = splitCities(os.Getenv("AOD_CITIES"))

	return cfg, nil
}

func splitCities(raw string) []string {
	var cities []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
