package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Mutation methods accept it so the ledger service can span a holding update,
// a cash credit and a ledger insert with one transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TradeTimeLayout is RFC3339 with fixed-width nanoseconds. The fixed width
// keeps lexicographic order on the TEXT column identical to chronological
// order, which the ledger's ORDER BY and MIN() queries rely on; a variable
// fraction width ("05.5" vs "05.45") would break that.
const TradeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timeLayouts covers the formats found in our columns: date-only values,
// RFC3339 trade times (time.Parse accepts fractional seconds whether or not
// the layout carries them), and sqlite's CURRENT_TIMESTAMP default.
var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseTime parses a date or timestamp column stored as TEXT.
// Note: overlaps validation.ParseDate — both are intentionally kept local to avoid cross-layer imports.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if returnTime, err := time.Parse(layout, str); err == nil {
			return returnTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// ParseDecimal parses a decimal column stored as TEXT.
func ParseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal: %w", err)
	}
	return d, nil
}
