package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
)

// LedgerService owns all mutation of holding state: buys, sells and
// administrative corrections. No other component changes quantity or average
// cost. Every trade is applied in a single SQL transaction together with its
// ledger entry, so a failed operation leaves the holding exactly as it was.
type LedgerService struct {
	db          *sql.DB
	holdingRepo *repository.HoldingRepository
	assetRepo   *repository.AssetRepository
	ledgerRepo  *repository.LedgerRepository
}

// NewLedgerService creates a new LedgerService with the provided repository dependencies.
func NewLedgerService(
	db *sql.DB,
	holdingRepo *repository.HoldingRepository,
	assetRepo *repository.AssetRepository,
	ledgerRepo *repository.LedgerRepository,
) *LedgerService {
	return &LedgerService{
		db:          db,
		holdingRepo: holdingRepo,
		assetRepo:   assetRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// SellResult describes the outcome of a sell: the remaining holding (nil when
// the position was fully liquidated), the cash holding after crediting the
// proceeds, and the credited amount.
type SellResult struct {
	Removed      bool            `json:"removed"`
	Holding      *model.Holding  `json:"holding,omitempty"`
	CashHolding  model.Holding   `json:"cashHolding"`
	CashCredited decimal.Decimal `json:"cashCredited"`
}

// ApplyBuy records a purchase of quantity units at the given unit price
// against the (portfolio, asset) pair. The first buy creates the holding with
// the purchase price as its cost basis; subsequent buys blend the cost basis:
//
//	newAvgCost = (oldQty*oldAvgCost + qty*price) / (oldQty + qty)
//
// Returns apperrors.ErrInvalidInput for non-positive quantity or price, and
// apperrors.ErrCashAssetImmutable for the synthetic cash asset, which can
// only be credited through sells.
func (s *LedgerService) ApplyBuy(ctx context.Context, portfolioID, assetID string, quantity, price decimal.Decimal) (model.Holding, error) {
	if !quantity.IsPositive() || !price.IsPositive() {
		return model.Holding{}, apperrors.ErrInvalidInput
	}

	asset, err := s.assetRepo.GetAssetOnID(ctx, assetID)
	if err != nil {
		return model.Holding{}, err
	}
	if asset.IsCash() {
		return model.Holding{}, apperrors.ErrCashAssetImmutable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	holding, err := s.creditPosition(ctx, tx, portfolioID, assetID, quantity, price)
	if err != nil {
		return model.Holding{}, err
	}

	entry := &model.LedgerEntry{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		HoldingID:   holding.ID,
		Type:        model.EntryBuy,
		Quantity:    quantity,
		Price:       price,
		TradeTime:   time.Now().UTC(),
	}
	if err := s.ledgerRepo.InsertEntry(ctx, tx, entry); err != nil {
		return model.Holding{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Holding{}, fmt.Errorf("failed to commit buy: %w", err)
	}

	return holding, nil
}

// BuyMore records an additional purchase against an existing holding,
// addressed by holding ID rather than (portfolio, asset).
func (s *LedgerService) BuyMore(ctx context.Context, holdingID string, quantity, price decimal.Decimal) (model.Holding, error) {
	holding, err := s.holdingRepo.GetHoldingOnID(ctx, nil, holdingID)
	if err != nil {
		return model.Holding{}, err
	}

	return s.ApplyBuy(ctx, holding.PortfolioID, holding.AssetID, quantity, price)
}

// ApplySell records a disposal of quantity units at the given unit price.
// The average cost of the remaining position is left unchanged; a sell that
// disposes of the entire position deletes the holding. Proceeds are credited
// to the portfolio's cash holding through the same blending path as a buy at
// price 1.0, inside the same transaction as the quantity reduction, so a
// crash can never leave the quantity reduced but the cash uncredited.
//
// Only the sell itself is ledgered, against the sold holding. The cash credit
// is not recorded as a second ledger entry.
//
// Returns apperrors.ErrInvalidInput for non-positive quantity or price, and
// apperrors.ErrInsufficientQuantity when the sell exceeds the held quantity.
func (s *LedgerService) ApplySell(ctx context.Context, holdingID string, quantity, price decimal.Decimal) (SellResult, error) {
	if !quantity.IsPositive() || !price.IsPositive() {
		return SellResult{}, apperrors.ErrInvalidInput
	}

	holding, err := s.holdingRepo.GetHoldingOnID(ctx, nil, holdingID)
	if err != nil {
		return SellResult{}, err
	}

	asset, err := s.assetRepo.GetAssetOnID(ctx, holding.AssetID)
	if err != nil {
		return SellResult{}, err
	}
	if asset.IsCash() {
		return SellResult{}, apperrors.ErrCashAssetImmutable
	}

	if quantity.GreaterThan(holding.Quantity) {
		return SellResult{}, apperrors.ErrInsufficientQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SellResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	remaining := holding.Quantity.Sub(quantity)

	result := SellResult{}
	if remaining.IsZero() {
		if err := s.holdingRepo.DeleteHolding(ctx, tx, holding.ID); err != nil {
			return SellResult{}, err
		}
		result.Removed = true
	} else {
		if err := s.holdingRepo.UpdateHoldingPosition(ctx, tx, holding.ID, remaining, holding.AvgCost); err != nil {
			return SellResult{}, err
		}
		updated := holding
		updated.Quantity = remaining
		result.Holding = &updated
	}

	// Convert N units of asset into N*price units of cash, reusing the
	// weighted-average path for cash accumulation.
	proceeds := quantity.Mul(price)
	cashAsset, err := s.ensureCashAsset(ctx, tx, asset.Currency)
	if err != nil {
		return SellResult{}, err
	}

	cashHolding, err := s.creditPosition(ctx, tx, holding.PortfolioID, cashAsset.ID, proceeds, decimal.NewFromInt(1))
	if err != nil {
		return SellResult{}, err
	}
	result.CashHolding = cashHolding
	result.CashCredited = proceeds

	entry := &model.LedgerEntry{
		ID:          uuid.New().String(),
		PortfolioID: holding.PortfolioID,
		AssetID:     holding.AssetID,
		HoldingID:   holding.ID,
		Type:        model.EntrySell,
		Quantity:    quantity,
		Price:       price,
		TradeTime:   time.Now().UTC(),
	}
	if err := s.ledgerRepo.InsertEntry(ctx, tx, entry); err != nil {
		return SellResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return SellResult{}, fmt.Errorf("failed to commit sell: %w", err)
	}

	return result, nil
}

// UpdateHolding administratively overwrites quantity and/or average cost,
// bypassing the blending math. Intended for data correction, not trading:
// no ledger entry is recorded. Negative values are rejected; setting the
// quantity to exactly zero deletes the holding, since zero-quantity holdings
// are not represented.
func (s *LedgerService) UpdateHolding(ctx context.Context, holdingID string, quantity, avgCost *decimal.Decimal) (model.Holding, error) {
	holding, err := s.holdingRepo.GetHoldingOnID(ctx, nil, holdingID)
	if err != nil {
		return model.Holding{}, err
	}

	if quantity != nil {
		if quantity.IsNegative() {
			return model.Holding{}, apperrors.ErrInvalidInput
		}
		holding.Quantity = *quantity
	}
	if avgCost != nil {
		if avgCost.IsNegative() {
			return model.Holding{}, apperrors.ErrInvalidInput
		}
		holding.AvgCost = *avgCost
	}

	if holding.Quantity.IsZero() {
		if err := s.holdingRepo.DeleteHolding(ctx, nil, holding.ID); err != nil {
			return model.Holding{}, err
		}
		return holding, nil
	}

	if err := s.holdingRepo.UpdateHoldingPosition(ctx, nil, holding.ID, holding.Quantity, holding.AvgCost); err != nil {
		return model.Holding{}, err
	}

	return holding, nil
}

// creditPosition adds quantity units at the given unit price to the
// (portfolio, asset) holding, creating it if absent and blending the average
// cost if present. Runs inside the caller's transaction.
// GetTransactions returns the trade history recorded against a holding,
// oldest first. Fully liquidated holdings keep their history, so this works
// for holding IDs that no longer have a holding row.
func (s *LedgerService) GetTransactions(ctx context.Context, holdingID string) ([]model.LedgerEntry, error) {
	return s.ledgerRepo.GetEntriesOnHoldingID(ctx, holdingID)
}

func (s *LedgerService) creditPosition(ctx context.Context, tx *sql.Tx, portfolioID, assetID string, quantity, price decimal.Decimal) (model.Holding, error) {
	holding, err := s.holdingRepo.GetHoldingOnPortfolioAsset(ctx, tx, portfolioID, assetID)
	if errors.Is(err, apperrors.ErrHoldingNotFound) {
		holding = model.Holding{
			ID:          uuid.New().String(),
			PortfolioID: portfolioID,
			AssetID:     assetID,
			Quantity:    quantity,
			AvgCost:     price,
		}
		if err := s.holdingRepo.InsertHolding(ctx, tx, &holding); err != nil {
			return model.Holding{}, err
		}
		return holding, nil
	}
	if err != nil {
		return model.Holding{}, err
	}

	newQuantity := holding.Quantity.Add(quantity)
	newAvgCost := holding.Quantity.Mul(holding.AvgCost).
		Add(quantity.Mul(price)).
		Div(newQuantity)

	if err := s.holdingRepo.UpdateHoldingPosition(ctx, tx, holding.ID, newQuantity, newAvgCost); err != nil {
		return model.Holding{}, err
	}

	holding.Quantity = newQuantity
	holding.AvgCost = newAvgCost
	return holding, nil
}

// ensureCashAsset returns the synthetic cash asset for the currency,
// creating it on first use. Runs inside the caller's transaction.
func (s *LedgerService) ensureCashAsset(ctx context.Context, tx *sql.Tx, currency string) (model.Asset, error) {
	if currency == "" {
		currency = "USD"
	}

	cashAsset, err := s.assetRepo.GetCashAsset(ctx, tx, currency)
	if errors.Is(err, apperrors.ErrAssetNotFound) {
		cashAsset = model.Asset{
			ID:       uuid.New().String(),
			Symbol:   model.CashSymbol,
			Name:     "Cash (" + currency + ")",
			Kind:     model.KindCash,
			Currency: currency,
		}
		if err := s.assetRepo.InsertAsset(ctx, tx, &cashAsset); err != nil {
			return model.Asset{}, err
		}
		return cashAsset, nil
	}
	if err != nil {
		return model.Asset{}, err
	}

	return cashAsset, nil
}
