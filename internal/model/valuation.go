package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationPoint is the total portfolio value on one calendar date.
// Points are derived per request from holdings, ledger entries and resolved
// prices; they are never persisted.
type ValuationPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// ValuationSeries is a strictly date-ordered daily series of portfolio
// values, one point per calendar day from the earliest ledger entry through
// the end of the computed range.
//
// Warnings carries per-symbol degradations (missing prices, failed lookups)
// that were absorbed rather than failing the request.
type ValuationSeries struct {
	PortfolioID string           `json:"portfolioId"`
	Points      []ValuationPoint `json:"points"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// PerformanceSummary holds return statistics derived from a valuation series.
type PerformanceSummary struct {
	TotalReturn        decimal.Decimal   `json:"totalReturn"`
	TotalReturnPercent decimal.Decimal   `json:"totalReturnPercent"`
	DailyReturns       []decimal.Decimal `json:"dailyReturns"`
	MinValue           decimal.Decimal   `json:"minValue"`
	MaxValue           decimal.Decimal   `json:"maxValue"`
}
