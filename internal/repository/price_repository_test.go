package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
	"github.com/rvanowen/portfolio-valuation-backend/internal/testutil"
)

// TestPriceRepository tests the local close price store.
func TestPriceRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert replaces the price for the same date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		asset := testutil.NewAsset().Build(t, db)
		date := testutil.Day(t, "2024-03-01")

		if err := repo.UpsertPrice(ctx, asset.ID, date, decimal.RequireFromString("100")); err != nil {
			t.Fatalf("UpsertPrice failed: %v", err)
		}
		if err := repo.UpsertPrice(ctx, asset.ID, date, decimal.RequireFromString("101.5")); err != nil {
			t.Fatalf("Second UpsertPrice failed: %v", err)
		}

		testutil.AssertRowCount(t, db, "asset_price", 1)

		prices, err := repo.GetPricesOnAssetID(ctx, asset.ID, date, date)
		if err != nil {
			t.Fatalf("GetPricesOnAssetID failed: %v", err)
		}
		if !prices["2024-03-01"].Equal(decimal.RequireFromString("101.5")) {
			t.Errorf("Expected replaced price 101.5, got %s", prices["2024-03-01"])
		}
	})

	t.Run("range query is inclusive on both bounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		asset := testutil.NewAsset().Build(t, db)
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-02-29", "98")
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-01", "100")
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-03", "103")
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-04", "104")

		prices, err := repo.GetPricesOnAssetID(ctx, asset.ID,
			testutil.Day(t, "2024-03-01"),
			testutil.Day(t, "2024-03-03"),
		)
		if err != nil {
			t.Fatalf("GetPricesOnAssetID failed: %v", err)
		}

		if len(prices) != 2 {
			t.Fatalf("Expected 2 prices in range, got %d", len(prices))
		}
		if _, ok := prices["2024-02-29"]; ok {
			t.Error("Price before the range should be excluded")
		}
		if _, ok := prices["2024-03-04"]; ok {
			t.Error("Price after the range should be excluded")
		}
	})

	t.Run("latest price picks the most recent date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		asset := testutil.NewAsset().Build(t, db)
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-01", "100")
		testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-04", "104")

		price, date, err := repo.GetLatestPrice(ctx, asset.ID)
		if err != nil {
			t.Fatalf("GetLatestPrice failed: %v", err)
		}
		if !price.Equal(decimal.RequireFromString("104")) {
			t.Errorf("Expected 104, got %s", price)
		}
		if got := date.Format("2006-01-02"); got != "2024-03-04" {
			t.Errorf("Expected date 2024-03-04, got %s", got)
		}
	})

	t.Run("latest price for unpriced asset reports unavailable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		asset := testutil.NewAsset().Build(t, db)

		_, _, err := repo.GetLatestPrice(ctx, asset.ID)
		if !errors.Is(err, apperrors.ErrPriceUnavailable) {
			t.Errorf("Expected ErrPriceUnavailable, got %v", err)
		}
	})
}
