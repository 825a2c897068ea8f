package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/marketdata"
)

// FakeMarketData implements marketdata.Client with canned data for tests.
// Prices are registered per symbol; unknown symbols error like a source that
// does not carry the instrument.
//
// Example usage:
//
//	fake := testutil.NewFakeMarketData()
//	fake.AddClose("AAPL", "2024-03-05", "101.50")
//	fake.SetQuote("AAPL", "103")
type FakeMarketData struct {
	closes map[string][]marketdata.Close
	quotes map[string]decimal.Decimal

	// DailyClosesCalls counts historical fetches, letting tests assert the
	// read-through cache avoided a second trip to the source.
	DailyClosesCalls int
}

// NewFakeMarketData creates an empty fake client.
func NewFakeMarketData() *FakeMarketData {
	return &FakeMarketData{
		closes: make(map[string][]marketdata.Close),
		quotes: make(map[string]decimal.Decimal),
	}
}

// AddClose registers a daily close for a symbol.
func (f *FakeMarketData) AddClose(symbol, date, price string) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}

	f.closes[symbol] = append(f.closes[symbol], marketdata.Close{
		Date:  parsed.UTC(),
		Price: decimal.RequireFromString(price),
	})
}

// SetQuote registers the current quote for a symbol.
func (f *FakeMarketData) SetQuote(symbol, price string) {
	f.quotes[symbol] = decimal.RequireFromString(price)
}

// DailyCloses returns the registered closes within the range.
func (f *FakeMarketData) DailyCloses(_ context.Context, symbol string, startDate, endDate time.Time) ([]marketdata.Close, error) {
	f.DailyClosesCalls++

	registered, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no close prices returned for symbol %s", symbol)
	}

	closes := []marketdata.Close{}
	for _, c := range registered {
		if c.Date.Before(startDate) || c.Date.After(endDate) {
			continue
		}
		closes = append(closes, c)
	}

	return closes, nil
}

// LatestClose returns the registered quote, falling back to the last close.
func (f *FakeMarketData) LatestClose(_ context.Context, symbol string) (marketdata.Close, error) {
	if quote, ok := f.quotes[symbol]; ok {
		return marketdata.Close{
			Date:  time.Now().UTC().Truncate(24 * time.Hour),
			Price: quote,
		}, nil
	}

	registered, ok := f.closes[symbol]
	if !ok || len(registered) == 0 {
		return marketdata.Close{}, fmt.Errorf("no close prices returned for symbol %s", symbol)
	}

	return registered[len(registered)-1], nil
}
