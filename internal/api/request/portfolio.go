package request

import "github.com/shopspring/decimal"

// CreatePortfolioRequest is the body of POST /api/portfolio.
type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BuyRequest is the body of POST /api/portfolio/{portfolioId}/buy. The asset
// is registered on first use; Name and Currency are only consulted then.
type BuyRequest struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
