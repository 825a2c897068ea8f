package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(server *httptest.Server) *FinanceClient {
	return &FinanceClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}
}

// TestFinanceClient_DailyCloses tests decoding of the chart API envelope.
//
// WHY: The chart API pads non-trading days with null closes and reports
// errors inside a 200 response; both must be handled in the decoder, not
// surface as corrupt prices.
func TestFinanceClient_DailyCloses(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes timestamps and closes, skipping null days", func(t *testing.T) {
		// 2024-03-01 and 2024-03-04 midnight UTC; 2024-03-02 is a null close
		body := `{
			"chart": {
				"result": [{
					"meta": {"currency": "USD", "symbol": "VWRL", "regularMarketPrice": 106.5},
					"timestamp": [1709251200, 1709337600, 1709510400],
					"indicators": {"quote": [{"close": [100.5, null, 105.25]}]}
				}],
				"error": null
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "VWRL") {
				t.Errorf("Expected symbol in path, got %s", r.URL.Path)
			}
			fmt.Fprint(w, body)
		}))
		defer server.Close()

		client := newTestClient(server)
		closes, err := client.DailyCloses(ctx, "VWRL",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("DailyCloses failed: %v", err)
		}

		if len(closes) != 2 {
			t.Fatalf("Expected 2 closes after dropping the null day, got %d", len(closes))
		}
		if !closes[0].Price.Equal(decimal.NewFromFloat(100.5)) {
			t.Errorf("Expected first close 100.5, got %s", closes[0].Price)
		}
		if got := closes[0].Date.Format("2006-01-02"); got != "2024-03-01" {
			t.Errorf("Expected first close on 2024-03-01, got %s", got)
		}
		if !closes[1].Price.Equal(decimal.NewFromFloat(105.25)) {
			t.Errorf("Expected second close 105.25, got %s", closes[1].Price)
		}
	})

	t.Run("surfaces the API error envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": [], "error": "No data found, symbol may be delisted"}}`)
		}))
		defer server.Close()

		client := newTestClient(server)
		_, err := client.DailyCloses(ctx, "GHOST",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		)
		if err == nil {
			t.Fatal("Expected an error for the error envelope")
		}
		if !strings.Contains(err.Error(), "delisted") {
			t.Errorf("Expected the API message in the error, got %v", err)
		}
	})

	t.Run("rejects mismatched timestamp and close lengths", func(t *testing.T) {
		body := `{
			"chart": {
				"result": [{
					"meta": {"symbol": "VWRL"},
					"timestamp": [1709251200, 1709337600],
					"indicators": {"quote": [{"close": [100.5]}]}
				}],
				"error": null
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		defer server.Close()

		client := newTestClient(server)
		_, err := client.DailyCloses(ctx, "VWRL",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		)
		if err == nil {
			t.Fatal("Expected an error for mismatched lengths")
		}
	})

	t.Run("queries with an exclusive upper bound past the end date", func(t *testing.T) {
		var gotPeriod2 string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPeriod2 = r.URL.Query().Get("period2")
			fmt.Fprint(w, `{
				"chart": {
					"result": [{
						"meta": {"symbol": "VWRL"},
						"timestamp": [1709251200],
						"indicators": {"quote": [{"close": [100.5]}]}
					}],
					"error": null
				}
			}`)
		}))
		defer server.Close()

		client := newTestClient(server)
		endDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
		if _, err := client.DailyCloses(ctx, "VWRL", endDate.AddDate(0, 0, -3), endDate); err != nil {
			t.Fatalf("DailyCloses failed: %v", err)
		}

		want := fmt.Sprintf("%d", endDate.AddDate(0, 0, 1).Unix())
		if gotPeriod2 != want {
			t.Errorf("Expected period2 %s, got %s", want, gotPeriod2)
		}
	})
}

// TestFinanceClient_LatestClose tests quote extraction and its fallback.
func TestFinanceClient_LatestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the market quote from the metadata", func(t *testing.T) {
		body := `{
			"chart": {
				"result": [{
					"meta": {"symbol": "VWRL", "regularMarketPrice": 106.5},
					"timestamp": [1709251200],
					"indicators": {"quote": [{"close": [100.5]}]}
				}],
				"error": null
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		defer server.Close()

		client := newTestClient(server)
		quote, err := client.LatestClose(ctx, "VWRL")
		if err != nil {
			t.Fatalf("LatestClose failed: %v", err)
		}
		if !quote.Price.Equal(decimal.NewFromFloat(106.5)) {
			t.Errorf("Expected quote 106.5, got %s", quote.Price)
		}
	})

	t.Run("falls back to the last daily close without a quote", func(t *testing.T) {
		body := `{
			"chart": {
				"result": [{
					"meta": {"symbol": "VWRL"},
					"timestamp": [1709251200, 1709510400],
					"indicators": {"quote": [{"close": [100.5, 105.25]}]}
				}],
				"error": null
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		defer server.Close()

		client := newTestClient(server)
		quote, err := client.LatestClose(ctx, "VWRL")
		if err != nil {
			t.Fatalf("LatestClose failed: %v", err)
		}
		if !quote.Price.Equal(decimal.NewFromFloat(105.25)) {
			t.Errorf("Expected last close 105.25, got %s", quote.Price)
		}
		if got := quote.Date.Format("2006-01-02"); got != "2024-03-04" {
			t.Errorf("Expected date 2024-03-04, got %s", got)
		}
	})
}
