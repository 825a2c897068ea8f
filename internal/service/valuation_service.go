package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
)

// ValuationService computes daily portfolio value series by replaying the
// ledger against resolved prices. Nothing it produces is persisted; every
// series is recomputed from the ledger and the price store on request, so
// corrections to either are picked up automatically.
type ValuationService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	ledgerRepo    *repository.LedgerRepository
	assetRepo     *repository.AssetRepository
	resolver      PriceResolver
	policy        config.FallbackPolicy
}

// NewValuationService creates a new ValuationService.
func NewValuationService(
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	ledgerRepo *repository.LedgerRepository,
	assetRepo *repository.AssetRepository,
	resolver PriceResolver,
	policy config.FallbackPolicy,
) *ValuationService {
	return &ValuationService{
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		ledgerRepo:    ledgerRepo,
		assetRepo:     assetRepo,
		resolver:      resolver,
		policy:        policy,
	}
}

// ComputeValuationSeries produces one value point per calendar day from
// startDate through endDate inclusive. A nil startDate defaults to the
// portfolio's earliest trade date; a nil endDate defaults to today. Dates
// are truncated to UTC days.
//
// For every day each traded asset's quantity is reconstructed from the
// ledger and multiplied by that day's price. Days without a close for an
// asset fall back per the configured policy: the latest quote, or the most
// recent preceding close carried forward. An asset whose prices cannot be
// resolved at all contributes zero and adds a warning instead of failing
// the series.
//
// Cash proceeds sit in the portfolio's cash holding, which has no ledger
// entries of its own and therefore does not appear in the series; the
// series tracks traded positions only.
//
// Returns apperrors.ErrPortfolioNotFound for an unknown portfolio,
// apperrors.ErrEmptyPortfolio when the portfolio has no holdings, and
// apperrors.ErrNoTransactionHistory when nothing has ever been ledgered.
func (s *ValuationService) ComputeValuationSeries(ctx context.Context, portfolioID string, startDate, endDate *time.Time) (model.ValuationSeries, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return model.ValuationSeries{}, err
	}

	holdings, err := s.holdingRepo.GetHoldingsOnPortfolioID(ctx, portfolioID)
	if err != nil {
		return model.ValuationSeries{}, err
	}
	if len(holdings) == 0 {
		return model.ValuationSeries{}, apperrors.ErrEmptyPortfolio
	}

	entries, err := s.ledgerRepo.GetEntriesOnPortfolioID(ctx, portfolioID)
	if err != nil {
		return model.ValuationSeries{}, err
	}
	if len(entries) == 0 {
		return model.ValuationSeries{}, apperrors.ErrNoTransactionHistory
	}

	start, end, err := s.resolveRange(ctx, portfolioID, startDate, endDate)
	if err != nil {
		return model.ValuationSeries{}, err
	}

	entriesByAsset := groupByAsset(entries)

	assetIDs := make([]string, 0, len(entriesByAsset))
	for assetID := range entriesByAsset {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Strings(assetIDs)

	assets, err := s.assetRepo.GetAssetsOnIDs(ctx, assetIDs)
	if err != nil {
		return model.ValuationSeries{}, err
	}

	prices, warnings, err := s.prefetchPrices(ctx, assets, assetIDs, start, end)
	if err != nil {
		return model.ValuationSeries{}, err
	}

	series := model.ValuationSeries{
		PortfolioID: portfolioID,
		Points:      make([]model.ValuationPoint, 0, int(end.Sub(start).Hours()/24)+1),
	}

	// lastClose carries each asset's most recent seen close across the loop
	// for the carry-forward policy.
	lastClose := make(map[string]decimal.Decimal)
	warned := make(map[string]bool)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		total := decimal.Zero

		for _, assetID := range assetIDs {
			quantity := QuantityAt(entriesByAsset[assetID], date)
			if quantity.IsZero() {
				continue
			}

			symbol := assets[assetID].Symbol
			price, ok := s.priceFor(prices[assetID], date, assetID, lastClose)
			if !ok {
				if !warned[symbol] {
					warned[symbol] = true
					warnings = append(warnings, fmt.Sprintf("no price available for %s; valued at zero", symbol))
				}
				continue
			}

			total = total.Add(quantity.Mul(price))
		}

		series.Points = append(series.Points, model.ValuationPoint{Date: date, Value: total})
	}

	series.Warnings = warnings
	return series, nil
}

// ComputeTrend is the full trend payload: the valuation series plus the
// performance summary derived from it.
func (s *ValuationService) ComputeTrend(ctx context.Context, portfolioID string, startDate, endDate *time.Time) (model.ValuationSeries, model.PerformanceSummary, error) {
	series, err := s.ComputeValuationSeries(ctx, portfolioID, startDate, endDate)
	if err != nil {
		return model.ValuationSeries{}, model.PerformanceSummary{}, err
	}

	return series, ComputePerformance(series.Points), nil
}

// resolveRange applies defaults and truncates both bounds to UTC days. The
// default start is the portfolio's oldest trade time; the caller has already
// established that the ledger is not empty.
func (s *ValuationService) resolveRange(ctx context.Context, portfolioID string, startDate, endDate *time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if startDate != nil {
		start = startDate.UTC().Truncate(24 * time.Hour)
	} else {
		oldest := s.ledgerRepo.GetOldestTradeTime(ctx, portfolioID)
		if oldest.IsZero() {
			return time.Time{}, time.Time{}, apperrors.ErrNoTransactionHistory
		}
		start = oldest.Truncate(24 * time.Hour)
	}

	var end time.Time
	if endDate != nil {
		end = endDate.UTC().Truncate(24 * time.Hour)
	} else {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date precedes start date", apperrors.ErrInvalidInput)
	}

	return start, end, nil
}

// prefetchPrices resolves all assets' price data concurrently before the
// daily loop starts. A resolution failure for one asset is absorbed as a
// warning; that asset simply has no price data and is valued at zero later.
func (s *ValuationService) prefetchPrices(ctx context.Context, assets map[string]model.Asset, assetIDs []string, start, end time.Time) (map[string]SymbolPrices, []string, error) {
	var mu sync.Mutex
	prices := make(map[string]SymbolPrices, len(assetIDs))
	warnings := []string{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, assetID := range assetIDs {
		asset, ok := assets[assetID]
		if !ok {
			// Ledger references an asset row that no longer exists; skip it.
			continue
		}

		g.Go(func() error {
			resolved, err := s.resolver.ResolveRange(gctx, asset, start, end)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("price resolution failed for %s: %v", asset.Symbol, err))
				return nil
			}
			prices[asset.ID] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Strings(warnings)
	return prices, warnings, nil
}

// priceFor picks the price for one asset on one date: the day's close when
// present, otherwise the configured fallback.
func (s *ValuationService) priceFor(sp SymbolPrices, date time.Time, assetID string, lastClose map[string]decimal.Decimal) (decimal.Decimal, bool) {
	if price, ok := sp.ByDate[date.Format("2006-01-02")]; ok {
		lastClose[assetID] = price
		return price, true
	}

	if s.policy == config.FallbackCarryForward {
		if price, ok := lastClose[assetID]; ok {
			return price, true
		}
	}

	if sp.HasCurrent {
		return sp.Current, true
	}

	return decimal.Decimal{}, false
}

func groupByAsset(entries []model.LedgerEntry) map[string][]model.LedgerEntry {
	grouped := make(map[string][]model.LedgerEntry)
	for _, e := range entries {
		grouped[e.AssetID] = append(grouped[e.AssetID], e)
	}
	return grouped
}
