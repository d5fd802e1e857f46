// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jansunwai/grievance-server/internal/validation"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database
	DatabaseURL string

	// Security
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int

	// Redis (geocode response cache)
	RedisURL        string
	GeocodeCacheTTL time.Duration

	// Geocoding oracle
	NominatimBaseURL string
	GeocodeUserAgent string
	GeocodeRPS       float64

	// Validation policy thresholds
	MaxGeoDistanceMeters float64
	NearbyRadiusMeters   float64
	NearbyWindowDays     int
	DuplicateWindowDays  int
	GeocodeTimeout       time.Duration
	StoreTimeout         time.Duration

	// Background re-validation of complaints missing an assessment
	BackfillInterval  time.Duration
	BackfillBatchSize int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		GeocodeCacheTTL: time.Duration(getEnvInt("GEOCODE_CACHE_TTL_HOURS", 24)) * time.Hour,

		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent: getEnv("GEOCODE_USER_AGENT", "Digital-Grievance-Redressal/1.0"),
		GeocodeRPS:       getEnvFloat("GEOCODE_RPS", 1),

		MaxGeoDistanceMeters: getEnvFloat("MAX_GEO_DISTANCE_M", 1000),
		NearbyRadiusMeters:   getEnvFloat("NEARBY_RADIUS_M", 500),
		NearbyWindowDays:     getEnvInt("NEARBY_WINDOW_DAYS", 30),
		DuplicateWindowDays:  getEnvInt("DUPLICATE_WINDOW_DAYS", 90),
		GeocodeTimeout:       time.Duration(getEnvInt("GEOCODE_TIMEOUT_SEC", 10)) * time.Second,
		StoreTimeout:         time.Duration(getEnvInt("STORE_TIMEOUT_SEC", 5)) * time.Second,

		BackfillInterval:  time.Duration(getEnvInt("BACKFILL_INTERVAL_MIN", 5)) * time.Minute,
		BackfillBatchSize: getEnvInt("BACKFILL_BATCH_SIZE", 25),
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// ValidationConfig maps the policy thresholds into the engine's
// configuration.
func (c *Config) ValidationConfig() validation.Config {
	return validation.Config{
		MaxGeoDistanceMeters: c.MaxGeoDistanceMeters,
		NearbyRadiusMeters:   c.NearbyRadiusMeters,
		NearbyWindowDays:     c.NearbyWindowDays,
		DuplicateWindowDays:  c.DuplicateWindowDays,
		GeocodeTimeout:       c.GeocodeTimeout,
		StoreTimeout:         c.StoreTimeout,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
