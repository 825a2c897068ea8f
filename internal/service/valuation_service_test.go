package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
	"github.com/rvanowen/portfolio-valuation-backend/internal/testutil"
)

// fakeResolver serves canned price data keyed by symbol so valuation tests
// control exactly which dates have closes.
type fakeResolver struct {
	bySymbol map[string]service.SymbolPrices
	failing  map[string]bool
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		bySymbol: make(map[string]service.SymbolPrices),
		failing:  make(map[string]bool),
	}
}

func (f *fakeResolver) addClose(symbol, date, price string) {
	sp, ok := f.bySymbol[symbol]
	if !ok {
		sp = service.SymbolPrices{ByDate: make(map[string]decimal.Decimal)}
	}
	sp.ByDate[date] = decimal.RequireFromString(price)
	f.bySymbol[symbol] = sp
}

func (f *fakeResolver) setCurrent(symbol, price string) {
	sp, ok := f.bySymbol[symbol]
	if !ok {
		sp = service.SymbolPrices{ByDate: make(map[string]decimal.Decimal)}
	}
	sp.Current = decimal.RequireFromString(price)
	sp.HasCurrent = true
	f.bySymbol[symbol] = sp
}

func (f *fakeResolver) ResolveRange(_ context.Context, asset model.Asset, _, _ time.Time) (service.SymbolPrices, error) {
	if f.failing[asset.Symbol] {
		return service.SymbolPrices{}, fmt.Errorf("source unavailable")
	}
	if asset.IsCash() {
		return service.SymbolPrices{
			ByDate:     map[string]decimal.Decimal{},
			Current:    decimal.NewFromInt(1),
			HasCurrent: true,
		}, nil
	}
	if sp, ok := f.bySymbol[asset.Symbol]; ok {
		return sp, nil
	}
	return service.SymbolPrices{ByDate: map[string]decimal.Decimal{}}, nil
}

func (f *fakeResolver) CurrentPrice(_ context.Context, asset model.Asset) (decimal.Decimal, error) {
	sp, ok := f.bySymbol[asset.Symbol]
	if !ok || !sp.HasCurrent {
		return decimal.Decimal{}, apperrors.ErrPriceUnavailable
	}
	return sp.Current, nil
}

func timePtr(t time.Time) *time.Time { return &t }

// TestValuationService_ComputeValuationSeries tests the daily series.
//
// WHY: The series is the product the whole system exists for. These tests
// pin down the calendar-day shape (inclusive bounds, one point per day, date
// order) and the replay-times-price arithmetic.
func TestValuationService_ComputeValuationSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("produces one point per calendar day, inclusive and ordered", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)

		resolver.setCurrent("VWRL", "100")

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-05")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		// 5 calendar days, both bounds included
		if len(series.Points) != 5 {
			t.Fatalf("Expected 5 points, got %d", len(series.Points))
		}

		for i, p := range series.Points {
			expected := testutil.Day(t, "2024-03-01").AddDate(0, 0, i)
			if !p.Date.Equal(expected) {
				t.Errorf("Point %d: expected date %s, got %s", i, expected, p.Date)
			}
		}
	})

	t.Run("values each day as replayed quantity times that day's close", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)

		// Buy 10 on day 1, sell 4 on day 2
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			Sell().
			WithQuantity("4").
			OnDate("2024-03-02").
			Build(t, db)

		resolver.addClose("VWRL", "2024-03-01", "100")
		resolver.addClose("VWRL", "2024-03-02", "110")
		resolver.addClose("VWRL", "2024-03-03", "120")

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-03")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		expected := []string{"1000", "660", "720"} // 10*100, 6*110, 6*120
		for i, want := range expected {
			if !series.Points[i].Value.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Point %d: expected value %s, got %s", i, want, series.Points[i].Value)
			}
		}
	})

	t.Run("dates without a close fall back to the current price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)

		// Close for Friday only; weekend falls back to the quote
		resolver.addClose("VWRL", "2024-03-01", "100")
		resolver.setCurrent("VWRL", "105")

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-03")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		expected := []string{"1000", "1050", "1050"}
		for i, want := range expected {
			if !series.Points[i].Value.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Point %d: expected value %s, got %s", i, want, series.Points[i].Value)
			}
		}
	})

	t.Run("carry-forward policy reuses the preceding close", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCarryForward)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)

		resolver.addClose("VWRL", "2024-03-01", "100")
		resolver.addClose("VWRL", "2024-03-04", "120")
		resolver.setCurrent("VWRL", "999") // must not be used for the gap

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-04")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		expected := []string{"1000", "1000", "1000", "1200"}
		for i, want := range expected {
			if !series.Points[i].Value.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Point %d: expected value %s, got %s", i, want, series.Points[i].Value)
			}
		}
	})

	t.Run("fully liquidated positions still replay from the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)

		// The holding was liquidated and deleted; only its ledger trail and
		// the resulting cash holding remain.
		goneHoldingID := testutil.MakeID()
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, goneHoldingID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, goneHoldingID).
			Sell().
			WithQuantity("10").
			OnDate("2024-03-03").
			Build(t, db)

		cash := testutil.NewAsset().Cash("USD").Build(t, db)
		testutil.NewHolding(portfolio.ID, cash.ID).
			WithQuantity("1100").
			WithAvgCost("1").
			Build(t, db)

		resolver.setCurrent("VWRL", "100")

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-04")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		expected := []string{"1000", "1000", "0", "0"}
		for i, want := range expected {
			if !series.Points[i].Value.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Point %d: expected value %s, got %s", i, want, series.Points[i].Value)
			}
		}
	})

	t.Run("unresolvable symbol contributes zero and a warning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		priced := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		unpriced := testutil.NewAsset().WithSymbol("GHOST").Build(t, db)

		h1 := testutil.NewHolding(portfolio.ID, priced.ID).Build(t, db)
		h2 := testutil.NewHolding(portfolio.ID, unpriced.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, priced.ID, h1.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, unpriced.ID, h2.ID).
			WithQuantity("5").
			OnDate("2024-03-01").
			Build(t, db)

		resolver.setCurrent("VWRL", "100")
		resolver.failing["GHOST"] = true

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-02")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		// Only the priced asset contributes
		for i, p := range series.Points {
			if !p.Value.Equal(decimal.RequireFromString("1000")) {
				t.Errorf("Point %d: expected value 1000, got %s", i, p.Value)
			}
		}

		if len(series.Warnings) == 0 {
			t.Error("Expected a warning for the unresolvable symbol")
		}
	})

	t.Run("start date defaults to the earliest trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-02").
			Build(t, db)

		resolver.setCurrent("VWRL", "100")

		series, err := svc.ComputeValuationSeries(ctx, portfolio.ID,
			nil,
			timePtr(testutil.Day(t, "2024-03-04")),
		)
		if err != nil {
			t.Fatalf("ComputeValuationSeries failed: %v", err)
		}

		if len(series.Points) != 3 {
			t.Fatalf("Expected 3 points from first trade date, got %d", len(series.Points))
		}
		if !series.Points[0].Date.Equal(testutil.Day(t, "2024-03-02")) {
			t.Errorf("Expected series to start on 2024-03-02, got %s", series.Points[0].Date)
		}
	})

	t.Run("error cases", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		// Unknown portfolio
		_, err := svc.ComputeValuationSeries(ctx, testutil.MakeID(), nil, nil)
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}

		// Portfolio without holdings
		empty := testutil.NewPortfolio().Build(t, db)
		_, err = svc.ComputeValuationSeries(ctx, empty.ID, nil, nil)
		if !errors.Is(err, apperrors.ErrEmptyPortfolio) {
			t.Errorf("Expected ErrEmptyPortfolio, got %v", err)
		}

		// Holdings but no ledger history
		withHolding := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		testutil.NewHolding(withHolding.ID, asset.ID).Build(t, db)
		_, err = svc.ComputeValuationSeries(ctx, withHolding.ID, nil, nil)
		if !errors.Is(err, apperrors.ErrNoTransactionHistory) {
			t.Errorf("Expected ErrNoTransactionHistory, got %v", err)
		}

		// Inverted range
		traded := testutil.NewPortfolio().Build(t, db)
		tradedAsset := testutil.NewAsset().Build(t, db)
		h := testutil.NewHolding(traded.ID, tradedAsset.ID).Build(t, db)
		testutil.NewLedgerEntry(traded.ID, tradedAsset.ID, h.ID).OnDate("2024-03-01").Build(t, db)
		_, err = svc.ComputeValuationSeries(ctx, traded.ID,
			timePtr(testutil.Day(t, "2024-03-05")),
			timePtr(testutil.Day(t, "2024-03-01")),
		)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for inverted range, got %v", err)
		}
	})
}

// TestValuationService_ComputeTrend tests the combined series + performance.
func TestValuationService_ComputeTrend(t *testing.T) {
	ctx := context.Background()

	t.Run("performance is derived from the computed series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := newFakeResolver()
		svc := testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			OnDate("2024-03-01").
			Build(t, db)

		resolver.addClose("VWRL", "2024-03-01", "100")
		resolver.addClose("VWRL", "2024-03-02", "105")
		resolver.addClose("VWRL", "2024-03-03", "102.9")

		series, performance, err := svc.ComputeTrend(ctx, portfolio.ID,
			timePtr(testutil.Day(t, "2024-03-01")),
			timePtr(testutil.Day(t, "2024-03-03")),
		)
		if err != nil {
			t.Fatalf("ComputeTrend failed: %v", err)
		}

		if len(series.Points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(series.Points))
		}
		assertDecimalEqual(t, "totalReturn", "29", performance.TotalReturn)
		assertDecimalEqual(t, "totalReturnPercent", "2.9", performance.TotalReturnPercent)
		assertDecimalEqual(t, "maxValue", "1050", performance.MaxValue)
	})
}
