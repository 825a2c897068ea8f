package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// FallbackPolicy selects how the valuation engine prices a calendar date for
// which no historical close exists (weekends, holidays, gaps in the source).
type FallbackPolicy string

const (
	// FallbackCurrent substitutes the latest known price for missing dates.
	FallbackCurrent FallbackPolicy = "current"

	// FallbackCarryForward carries the most recent available close forward.
	FallbackCarryForward FallbackPolicy = "carry-forward"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Valuation ValuationConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ValuationConfig holds settings for the valuation engine and price resolver.
type ValuationConfig struct {
	// FallbackPolicy controls pricing of dates with no historical close.
	FallbackPolicy FallbackPolicy

	// PriceCacheTTL bounds how long current-price quotes are served from the
	// in-memory cache before the source is queried again.
	PriceCacheTTL time.Duration

	// ResolverTimeout bounds each call to the external price source.
	ResolverTimeout time.Duration
}

// SchedulerConfig holds settings for the periodic price refresh job.
type SchedulerConfig struct {
	// PriceRefreshSpec is a cron expression; empty disables the job.
	PriceRefreshSpec string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	fallback := FallbackPolicy(getEnv("PRICE_FALLBACK_POLICY", string(FallbackCurrent)))
	if fallback != FallbackCurrent && fallback != FallbackCarryForward {
		return nil, fmt.Errorf("invalid PRICE_FALLBACK_POLICY: %s", fallback)
	}

	cacheTTL, err := time.ParseDuration(getEnv("PRICE_CACHE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_CACHE_TTL: %w", err)
	}

	resolverTimeout, err := time.ParseDuration(getEnv("PRICE_RESOLVER_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_RESOLVER_TIMEOUT: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Valuation: ValuationConfig{
			FallbackPolicy:  fallback,
			PriceCacheTTL:   cacheTTL,
			ResolverTimeout: resolverTimeout,
		},
		Scheduler: SchedulerConfig{
			PriceRefreshSpec: getEnv("PRICE_REFRESH_CRON", "0 18 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
