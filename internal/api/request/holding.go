package request

import "github.com/shopspring/decimal"

// TradeRequest is the body of POST /api/holding/{holdingId}/buy and
// POST /api/holding/{holdingId}/sell.
type TradeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UpdateHoldingRequest is the body of PUT /api/holding/{holdingId}.
// Omitted fields are left unchanged.
type UpdateHoldingRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	AvgCost  *decimal.Decimal `json:"avgCost,omitempty"`
}
