package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client is the contract the price resolver depends on. Implemented by
// FinanceClient for production and by a fake in tests.
type Client interface {
	// DailyCloses fetches daily closing prices for a symbol within the date
	// range (inclusive). Non-trading days are simply absent from the result.
	DailyCloses(ctx context.Context, symbol string, startDate, endDate time.Time) ([]Close, error)

	// LatestClose fetches the most recent known price for a symbol.
	LatestClose(ctx context.Context, symbol string) (Close, error)
}

// FinanceClient fetches price data from the Yahoo Finance chart API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{},
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// DailyCloses fetches daily close prices for the symbol between startDate and
// endDate (inclusive). The chart API is queried with Unix-timestamp bounds;
// days without trading activity produce no data point.
func (c *FinanceClient) DailyCloses(ctx context.Context, symbol string, startDate, endDate time.Time) ([]Close, error) {
	// period2 is exclusive at day granularity, so push it past endDate
	url := fmt.Sprintf(
		"%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		startDate.Unix(),
		endDate.AddDate(0, 0, 1).Unix(),
	)

	response, err := c.query(ctx, url)
	if err != nil {
		return nil, err
	}

	result := response.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no close prices returned for symbol %s", symbol)
	}

	quotes := result.Indicators.Quote[0].Close
	if len(quotes) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths for symbol %s", symbol)
	}

	closes := make([]Close, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quotes[i] == 0 {
			continue
		}
		closes = append(closes, Close{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Price: decimal.NewFromFloat(quotes[i]),
		})
	}

	return closes, nil
}

// LatestClose fetches the most recent price for the symbol. The market quote
// from the chart metadata is preferred; the last daily close of the past five
// days is used when the quote is absent.
func (c *FinanceClient) LatestClose(ctx context.Context, symbol string) (Close, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=5d", c.baseURL, symbol)

	response, err := c.query(ctx, url)
	if err != nil {
		return Close{}, err
	}

	result := response.Chart.Result[0]
	if result.Meta.RegularMarketPrice > 0 {
		return Close{
			Date:  time.Now().UTC().Truncate(24 * time.Hour),
			Price: decimal.NewFromFloat(result.Meta.RegularMarketPrice),
		}, nil
	}

	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return Close{}, fmt.Errorf("no close prices returned for symbol %s", symbol)
	}

	last := len(result.Timestamp) - 1
	return Close{
		Date:  time.Unix(result.Timestamp[last], 0).UTC().Truncate(24 * time.Hour),
		Price: decimal.NewFromFloat(result.Indicators.Quote[0].Close[last]),
	}, nil
}

// query executes an HTTP request against the chart API and decodes the
// response envelope. The caller's context bounds the request.
func (c *FinanceClient) query(ctx context.Context, url string) (chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("market data error: %s", *response.Chart.Error)
	}
	if len(response.Chart.Result) == 0 {
		return response, fmt.Errorf("no results returned")
	}

	return response, nil
}
