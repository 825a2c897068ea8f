package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// QuantityAt reconstructs the quantity of a holding as of the end of the
// given calendar date, purely from its ledger entries. Current holding state
// is never consulted: the ledger may contain entries after the target date.
//
// Entries must be ordered by trade time ascending (insertion order breaking
// ties), which is how the ledger repository returns them. The fold is
// deterministic and stateless, so it can be called for any number of dates
// in any order.
//
// The running total is clamped at zero after every entry. A well-formed
// ledger never goes negative; the clamp keeps a malformed one from reporting
// a negative position.
func QuantityAt(entries []model.LedgerEntry, asOf time.Time) decimal.Decimal {
	day := asOf.UTC().Truncate(24 * time.Hour)

	quantity := decimal.Zero
	for _, e := range entries {
		if e.TradeTime.UTC().Truncate(24 * time.Hour).After(day) {
			break
		}
		quantity = quantity.Add(e.Signed())
		if quantity.IsNegative() {
			quantity = decimal.Zero
		}
	}

	return quantity
}
