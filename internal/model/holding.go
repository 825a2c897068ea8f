package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents the current position for one asset within one portfolio:
// the quantity held and the weighted-average cost per unit.
//
// Quantity is always positive while the row exists; a holding whose quantity
// reaches exactly zero on a full sell is deleted, not stored at zero.
// AvgCost is recomputed on every buy and never changed by a sell.
type Holding struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	AssetID     string          `json:"assetId"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgCost     decimal.Decimal `json:"avgCost"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}

// CostBasis returns the total cost of the position (quantity * avgCost).
func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AvgCost)
}

// HoldingDetail is a holding enriched with asset metadata and the latest
// stored price, used by API responses.
type HoldingDetail struct {
	Holding
	Symbol       string          `json:"symbol"`
	AssetName    string          `json:"assetName"`
	Kind         AssetKind       `json:"kind"`
	LatestPrice  decimal.Decimal `json:"latestPrice"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	GainLoss     decimal.Decimal `json:"gainLoss"`
}
