package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryBuy  EntryType = "buy"
	EntrySell EntryType = "sell"
)

// LedgerEntry is an immutable, timestamped record of a single quantity change
// against a holding. Entries are append-only: they are never updated or
// deleted, and they survive the deletion of the holding row itself so that
// fully liquidated positions still contribute to historical valuations.
// PortfolioID and AssetID are denormalized onto the entry for that reason.
type LedgerEntry struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	AssetID     string          `json:"assetId"`
	HoldingID   string          `json:"holdingId"`
	Type        EntryType       `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TradeTime   time.Time       `json:"tradeTime"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// Signed returns the entry quantity with its direction applied: positive for
// buys, negative for sells.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Type == EntrySell {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// LedgerEntryResponse is a ledger entry enriched with asset metadata for API
// responses.
type LedgerEntryResponse struct {
	ID        string          `json:"id"`
	HoldingID string          `json:"holdingId"`
	Symbol    string          `json:"symbol"`
	AssetName string          `json:"assetName"`
	Type      EntryType       `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TradeTime time.Time       `json:"tradeTime"`
}
