package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/marketdata"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
)

// SymbolPrices holds everything the valuation engine needs to price one
// asset across a date range: the historical closes that exist, keyed by
// YYYY-MM-DD, plus the current quote for dates without a close.
type SymbolPrices struct {
	ByDate     map[string]decimal.Decimal
	Current    decimal.Decimal
	HasCurrent bool
}

// PriceResolver answers price questions for the valuation engine. The
// concrete PriceService reads through the local asset_price store to the
// market data source; tests substitute a canned implementation.
type PriceResolver interface {
	// ResolveRange returns all price data for an asset across a date range.
	ResolveRange(ctx context.Context, asset model.Asset, startDate, endDate time.Time) (SymbolPrices, error)

	// CurrentPrice returns the latest known price for an asset.
	CurrentPrice(ctx context.Context, asset model.Asset) (decimal.Decimal, error)
}

// PriceService resolves asset prices using the asset_price table as a
// read-through cache over the market data client. Historical closes are
// fetched once per (asset, range) gap and stored; current quotes are held in
// an in-memory TTL cache to keep request bursts from hammering the source.
//
// The synthetic cash asset is priced at a constant 1.0 per unit and never
// touches the store or the source.
type PriceService struct {
	priceRepo *repository.PriceRepository
	client    marketdata.Client
	quotes    *QuoteCache
	timeout   time.Duration
}

// NewPriceService creates a new PriceService.
func NewPriceService(priceRepo *repository.PriceRepository, client marketdata.Client, cfg config.ValuationConfig) *PriceService {
	return &PriceService{
		priceRepo: priceRepo,
		client:    client,
		quotes:    NewQuoteCache(cfg.PriceCacheTTL),
		timeout:   cfg.ResolverTimeout,
	}
}

// ResolveRange returns the asset's stored closes within the range, fetching
// and persisting from the source when the store has no rows for the range.
// The current quote is attached on a best-effort basis: a failed quote lookup
// degrades HasCurrent rather than failing the call.
func (s *PriceService) ResolveRange(ctx context.Context, asset model.Asset, startDate, endDate time.Time) (SymbolPrices, error) {
	if asset.IsCash() {
		return cashPrices(), nil
	}

	stored, err := s.priceRepo.GetPricesOnAssetID(ctx, asset.ID, startDate, endDate)
	if err != nil {
		return SymbolPrices{}, err
	}

	if len(stored) == 0 {
		fetched, err := s.fetchAndStore(ctx, asset, startDate, endDate)
		if err != nil {
			return SymbolPrices{}, err
		}
		stored = fetched
	}

	prices := SymbolPrices{ByDate: stored}

	current, err := s.CurrentPrice(ctx, asset)
	if err != nil {
		log.Printf("WARN: no current price for %s: %v", asset.Symbol, err)
		return prices, nil
	}
	prices.Current = current
	prices.HasCurrent = true

	return prices, nil
}

// CurrentPrice returns the latest quote for the asset, served from the TTL
// cache when fresh. On source failure the most recent stored close is used
// as a stale fallback; apperrors.ErrPriceUnavailable is returned only when
// neither the source nor the store has anything.
func (s *PriceService) CurrentPrice(ctx context.Context, asset model.Asset) (decimal.Decimal, error) {
	if asset.IsCash() {
		return decimal.NewFromInt(1), nil
	}

	if price, ok := s.quotes.Get(asset.Symbol); ok {
		return price, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quote, err := s.client.LatestClose(fetchCtx, asset.Symbol)
	if err != nil {
		stored, _, storeErr := s.priceRepo.GetLatestPrice(ctx, asset.ID)
		if storeErr != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, asset.Symbol)
		}
		log.Printf("WARN: quote fetch failed for %s, using last stored close: %v", asset.Symbol, err)
		return stored, nil
	}

	s.quotes.Set(asset.Symbol, quote.Price)
	if err := s.priceRepo.UpsertPrice(ctx, asset.ID, quote.Date, quote.Price); err != nil {
		log.Printf("WARN: failed to store quote for %s: %v", asset.Symbol, err)
	}

	return quote.Price, nil
}

// RefreshAsset fetches and stores the latest close for an asset. Used by the
// scheduled refresh job rather than request handling.
func (s *PriceService) RefreshAsset(ctx context.Context, asset model.Asset) error {
	if asset.IsCash() {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quote, err := s.client.LatestClose(fetchCtx, asset.Symbol)
	if err != nil {
		return fmt.Errorf("failed to refresh price for %s: %w", asset.Symbol, err)
	}

	return s.priceRepo.UpsertPrice(ctx, asset.ID, quote.Date, quote.Price)
}

func (s *PriceService) fetchAndStore(ctx context.Context, asset model.Asset, startDate, endDate time.Time) (map[string]decimal.Decimal, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	closes, err := s.client.DailyCloses(fetchCtx, asset.Symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, asset.Symbol)
	}

	prices := make(map[string]decimal.Decimal, len(closes))
	for _, c := range closes {
		prices[c.Date.Format("2006-01-02")] = c.Price
		if err := s.priceRepo.UpsertPrice(ctx, asset.ID, c.Date, c.Price); err != nil {
			return nil, err
		}
	}

	return prices, nil
}

func cashPrices() SymbolPrices {
	return SymbolPrices{
		ByDate:     map[string]decimal.Decimal{},
		Current:    decimal.NewFromInt(1),
		HasCurrent: true,
	}
}

// QuoteCache is a small concurrency-safe TTL cache for current quotes.
type QuoteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]quoteEntry
}

type quoteEntry struct {
	price   decimal.Decimal
	fetched time.Time
}

// NewQuoteCache creates a cache whose entries expire after ttl.
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		ttl:     ttl,
		entries: make(map[string]quoteEntry),
	}
}

// Get returns the cached price for a symbol if it has not expired.
func (c *QuoteCache) Get(symbol string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	if !ok || time.Since(entry.fetched) > c.ttl {
		delete(c.entries, symbol)
		return decimal.Decimal{}, false
	}
	return entry.price, true
}

// Set stores a price for a symbol, resetting its TTL.
func (c *QuoteCache) Set(symbol string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbol] = quoteEntry{price: price, fetched: time.Now()}
}
