package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/handlers"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/testutil"
)

// TestTrendHandler_Trend tests the GET /api/portfolio/{id}/trend endpoint.
//
// WHY: The trend endpoint stitches together the ledger replay, the price
// store and the performance statistics; this exercises the full path from
// HTTP request to valuation series.
func TestTrendHandler_Trend(t *testing.T) {
	t.Run("returns the daily series with performance stats", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		fake := testutil.NewFakeMarketData()
		resolver := testutil.NewTestPriceService(t, db, fake)
		handler := handlers.NewTrendHandler(
			testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent),
		)

		portfolio := testutil.NewPortfolio().Build(t, db)
		asset := testutil.NewAsset().WithSymbol("VWRL").Build(t, db)
		holding := testutil.NewHolding(portfolio.ID, asset.ID).
			WithQuantity("10").
			WithAvgCost("100").
			Build(t, db)
		testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
			WithQuantity("10").
			WithPrice("100").
			OnDate("2024-03-01").
			Build(t, db)

		fake.AddClose("VWRL", "2024-03-01", "100")
		fake.AddClose("VWRL", "2024-03-02", "110")
		fake.AddClose("VWRL", "2024-03-03", "120")
		fake.SetQuote("VWRL", "120")

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID+"/trend?start_date=2024-03-01&end_date=2024-03-03",
			map[string]string{"portfolioId": portfolio.ID},
		)
		w := httptest.NewRecorder()

		// Execute
		handler.Trend(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.TrendResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if response.PortfolioID != portfolio.ID {
			t.Errorf("Expected portfolio %s, got %s", portfolio.ID, response.PortfolioID)
		}
		if len(response.Points) != 3 {
			t.Fatalf("Expected 3 points, got %d", len(response.Points))
		}

		expected := []string{"1000", "1100", "1200"}
		for i, want := range expected {
			if !response.Points[i].Value.Equal(decimal.RequireFromString(want)) {
				t.Errorf("Point %d: expected %s, got %s", i, want, response.Points[i].Value)
			}
		}

		if !response.Performance.TotalReturn.Equal(decimal.RequireFromString("200")) {
			t.Errorf("Expected total return 200, got %s", response.Performance.TotalReturn)
		}
		if len(response.Warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", response.Warnings)
		}
	})

	t.Run("unknown portfolio returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := testutil.NewTestPriceService(t, db, testutil.NewFakeMarketData())
		handler := handlers.NewTrendHandler(
			testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent),
		)

		missing := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+missing+"/trend",
			map[string]string{"portfolioId": missing},
		)
		w := httptest.NewRecorder()

		handler.Trend(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("portfolio without holdings returns 422", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := testutil.NewTestPriceService(t, db, testutil.NewFakeMarketData())
		handler := handlers.NewTrendHandler(
			testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent),
		)

		portfolio := testutil.NewPortfolio().Build(t, db)
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID+"/trend",
			map[string]string{"portfolioId": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Trend(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
	})

	t.Run("malformed date returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := testutil.NewTestPriceService(t, db, testutil.NewFakeMarketData())
		handler := handlers.NewTrendHandler(
			testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent),
		)

		portfolio := testutil.NewPortfolio().Build(t, db)
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID+"/trend?start_date=not-a-date",
			map[string]string{"portfolioId": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Trend(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("inverted date range returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		resolver := testutil.NewTestPriceService(t, db, testutil.NewFakeMarketData())
		handler := handlers.NewTrendHandler(
			testutil.NewTestValuationService(t, db, resolver, config.FallbackCurrent),
		)

		portfolio := testutil.NewPortfolio().Build(t, db)
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID+"/trend?start_date=2024-03-05&end_date=2024-03-01",
			map[string]string{"portfolioId": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Trend(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}
