package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/marketdata"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
)

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewAssetRepository(db),
		repository.NewLedgerRepository(db),
	)
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		db,
		repository.NewHoldingRepository(db),
		repository.NewAssetRepository(db),
		repository.NewLedgerRepository(db),
	)
}

// NewTestPriceService creates a PriceService backed by the given market data
// client, usually a FakeMarketData so no real requests are made.
func NewTestPriceService(t *testing.T, db *sql.DB, client marketdata.Client) *service.PriceService {
	t.Helper()

	return service.NewPriceService(
		repository.NewPriceRepository(db),
		client,
		config.ValuationConfig{
			FallbackPolicy:  config.FallbackCurrent,
			PriceCacheTTL:   time.Minute,
			ResolverTimeout: time.Second,
		},
	)
}

// NewTestValuationService creates a ValuationService with the given price
// resolver and fallback policy.
func NewTestValuationService(t *testing.T, db *sql.DB, resolver service.PriceResolver, policy config.FallbackPolicy) *service.ValuationService {
	t.Helper()

	return service.NewValuationService(
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewAssetRepository(db),
		resolver,
		policy,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Day returns midnight UTC for a YYYY-MM-DD date string.
func Day(t *testing.T, date string) time.Time {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", date, err)
	}
	return parsed.UTC()
}
