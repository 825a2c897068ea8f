package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
)

func entryOn(t *testing.T, entryType model.EntryType, quantity, date string) model.LedgerEntry {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", date, err)
	}

	return model.LedgerEntry{
		Type:      entryType,
		Quantity:  decimal.RequireFromString(quantity),
		TradeTime: parsed.Add(12 * time.Hour),
	}
}

func day(t *testing.T, date string) time.Time {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", date, err)
	}
	return parsed.UTC()
}

// TestQuantityAt tests ledger replay for point-in-time quantities.
//
// WHY: Historical valuation never reads current holding state; it must
// reconstruct what was held on each date purely from the ledger. Getting the
// day boundary wrong by one shifts every chart the system draws.
func TestQuantityAt(t *testing.T) {
	t.Run("folds buys and sells up to the target day", func(t *testing.T) {
		entries := []model.LedgerEntry{
			entryOn(t, model.EntryBuy, "10", "2024-03-03"),
			entryOn(t, model.EntrySell, "4", "2024-03-05"),
			entryOn(t, model.EntryBuy, "2", "2024-03-09"),
		}

		cases := []struct {
			date     string
			expected string
		}{
			{"2024-03-02", "0"},  // before any trade
			{"2024-03-03", "10"}, // day 3: after first buy
			{"2024-03-04", "10"},
			{"2024-03-05", "6"}, // sell applied
			{"2024-03-07", "6"}, // day 7: unchanged between trades
			{"2024-03-09", "8"},
			{"2024-03-20", "8"}, // after all trades
		}

		for _, tc := range cases {
			quantity := service.QuantityAt(entries, day(t, tc.date))
			if !quantity.Equal(decimal.RequireFromString(tc.expected)) {
				t.Errorf("QuantityAt(%s): expected %s, got %s", tc.date, tc.expected, quantity)
			}
		}
	})

	t.Run("entry on the target day counts regardless of time of day", func(t *testing.T) {
		entries := []model.LedgerEntry{
			{
				Type:      model.EntryBuy,
				Quantity:  decimal.RequireFromString("5"),
				TradeTime: day(t, "2024-03-03").Add(23*time.Hour + 59*time.Minute),
			},
		}

		quantity := service.QuantityAt(entries, day(t, "2024-03-03"))
		if !quantity.Equal(decimal.RequireFromString("5")) {
			t.Errorf("Expected 5, got %s", quantity)
		}
	})

	t.Run("empty ledger yields zero", func(t *testing.T) {
		quantity := service.QuantityAt(nil, day(t, "2024-03-03"))
		if !quantity.IsZero() {
			t.Errorf("Expected 0, got %s", quantity)
		}
	})

	t.Run("malformed ledger clamps at zero instead of going negative", func(t *testing.T) {
		entries := []model.LedgerEntry{
			entryOn(t, model.EntryBuy, "3", "2024-03-03"),
			entryOn(t, model.EntrySell, "5", "2024-03-04"),
			entryOn(t, model.EntryBuy, "2", "2024-03-05"),
		}

		// Clamped to 0 after the over-sell, then the later buy counts fully
		quantity := service.QuantityAt(entries, day(t, "2024-03-06"))
		if !quantity.Equal(decimal.RequireFromString("2")) {
			t.Errorf("Expected 2, got %s", quantity)
		}
	})

	t.Run("fractional quantities replay exactly", func(t *testing.T) {
		entries := []model.LedgerEntry{
			entryOn(t, model.EntryBuy, "0.1", "2024-03-03"),
			entryOn(t, model.EntryBuy, "0.2", "2024-03-04"),
		}

		// 0.1 + 0.2 is exactly 0.3 in decimal arithmetic
		quantity := service.QuantityAt(entries, day(t, "2024-03-05"))
		if !quantity.Equal(decimal.RequireFromString("0.3")) {
			t.Errorf("Expected 0.3, got %s", quantity)
		}
	})
}
