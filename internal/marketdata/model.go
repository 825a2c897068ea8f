package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// chartResponse represents the raw JSON response structure from the Yahoo
// Finance chart API. Only the fields the resolver needs are mapped: daily
// close prices, their timestamps, and the error envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Close is one daily closing price for a symbol. Date is truncated to
// midnight UTC.
type Close struct {
	Date  time.Time
	Price decimal.Decimal
}
