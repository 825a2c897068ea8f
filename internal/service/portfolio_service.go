package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
)

// PortfolioService handles portfolio and asset reads plus portfolio
// creation. All holding mutation goes through LedgerService.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	assetRepo     *repository.AssetRepository
	ledgerRepo    *repository.LedgerRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	assetRepo *repository.AssetRepository,
	ledgerRepo *repository.LedgerRepository,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		assetRepo:     assetRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// CreatePortfolio creates an empty portfolio.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name, description string) (model.Portfolio, error) {
	portfolio := model.Portfolio{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, &portfolio); err != nil {
		return model.Portfolio{}, err
	}

	return portfolio, nil
}

// GetPortfolios retrieves all portfolios.
func (s *PortfolioService) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx)
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
}

// GetHoldingDetails retrieves a portfolio's holdings enriched with asset
// metadata, latest prices and unrealized gain/loss.
func (s *PortfolioService) GetHoldingDetails(ctx context.Context, portfolioID string) ([]model.HoldingDetail, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}

	return s.holdingRepo.GetHoldingDetails(ctx, portfolioID)
}

// GetTransactions retrieves a portfolio's ledger entries for display,
// newest first.
func (s *PortfolioService) GetTransactions(ctx context.Context, portfolioID string) ([]model.LedgerEntryResponse, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}

	return s.ledgerRepo.GetEntryResponses(ctx, portfolioID)
}

// EnsureAsset returns the asset for a symbol, registering it on first use.
// The reserved cash symbol cannot be registered this way; cash assets are
// created internally when sell proceeds are first credited.
func (s *PortfolioService) EnsureAsset(ctx context.Context, symbol, name, currency string) (model.Asset, error) {
	if symbol == model.CashSymbol {
		return model.Asset{}, apperrors.ErrCashAssetImmutable
	}

	asset, err := s.assetRepo.GetAssetOnSymbol(ctx, symbol)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, apperrors.ErrAssetNotFound) {
		return model.Asset{}, err
	}

	if currency == "" {
		currency = "USD"
	}
	if name == "" {
		name = symbol
	}

	asset = model.Asset{
		ID:       uuid.New().String(),
		Symbol:   symbol,
		Name:     name,
		Kind:     model.KindEquity,
		Currency: currency,
	}
	if err := s.assetRepo.InsertAsset(ctx, nil, &asset); err != nil {
		// Lost a race with a concurrent registration of the same symbol.
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return s.assetRepo.GetAssetOnSymbol(ctx, symbol)
		}
		return model.Asset{}, err
	}

	return asset, nil
}
