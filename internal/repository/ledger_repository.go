package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// LedgerRepository provides data access methods for the append-only
// ledger_entry table. Entries are only ever inserted and read; there are no
// update or delete methods by design. Because rows are never deleted, the
// sqlite rowid reflects insertion order and serves as the tie-breaker when
// two entries share a trade time.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository with the provided database connection.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InsertEntry appends a ledger entry.
func (r *LedgerRepository) InsertEntry(ctx context.Context, q Querier, e *model.LedgerEntry) error {
	if q == nil {
		q = r.db
	}

	query := `
		INSERT INTO ledger_entry (id, portfolio_id, asset_id, holding_id, type, quantity, price, trade_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		e.ID,
		e.PortfolioID,
		e.AssetID,
		e.HoldingID,
		string(e.Type),
		e.Quantity.String(),
		e.Price.String(),
		e.TradeTime.UTC().Format(TradeTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// GetEntriesOnPortfolioID retrieves all ledger entries for a portfolio,
// ordered by trade time ascending with insertion order breaking ties.
func (r *LedgerRepository) GetEntriesOnPortfolioID(ctx context.Context, portfolioID string) ([]model.LedgerEntry, error) {
	query := `
		SELECT id, portfolio_id, asset_id, holding_id, type, quantity, price, trade_time, created_at
		FROM ledger_entry
		WHERE portfolio_id = ?
		ORDER BY trade_time ASC, rowid ASC
	`

	return r.queryEntries(ctx, query, portfolioID)
}

// GetEntriesOnHoldingID retrieves all ledger entries recorded against a
// holding, ordered by trade time ascending with insertion order breaking ties.
func (r *LedgerRepository) GetEntriesOnHoldingID(ctx context.Context, holdingID string) ([]model.LedgerEntry, error) {
	query := `
		SELECT id, portfolio_id, asset_id, holding_id, type, quantity, price, trade_time, created_at
		FROM ledger_entry
		WHERE holding_id = ?
		ORDER BY trade_time ASC, rowid ASC
	`

	return r.queryEntries(ctx, query, holdingID)
}

// GetOldestTradeTime finds the earliest trade time across a portfolio's
// ledger. Returns time.Time{} (zero value) if the ledger is empty.
func (r *LedgerRepository) GetOldestTradeTime(ctx context.Context, portfolioID string) time.Time {
	var oldestStr sql.NullString

	query := `
		SELECT MIN(trade_time)
		FROM ledger_entry
		WHERE portfolio_id = ?
	`

	err := r.db.QueryRowContext(ctx, query, portfolioID).Scan(&oldestStr)
	if err != nil || !oldestStr.Valid {
		return time.Time{}
	}

	oldest, err := ParseTime(oldestStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldest
}

// GetEntryResponses retrieves a portfolio's ledger entries enriched with
// asset metadata for API responses, newest first.
func (r *LedgerRepository) GetEntryResponses(ctx context.Context, portfolioID string) ([]model.LedgerEntryResponse, error) {
	query := `
		SELECT le.id, le.holding_id, a.symbol, a.name, le.type, le.quantity, le.price, le.trade_time
		FROM ledger_entry le
		JOIN asset a ON le.asset_id = a.id
		WHERE le.portfolio_id = ?
		ORDER BY le.trade_time DESC, le.rowid DESC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_entry table: %w", err)
	}
	defer rows.Close()

	responses := []model.LedgerEntryResponse{}
	for rows.Next() {
		var resp model.LedgerEntryResponse
		var entryType, quantityStr, priceStr, tradeTimeStr string

		err := rows.Scan(
			&resp.ID,
			&resp.HoldingID,
			&resp.Symbol,
			&resp.AssetName,
			&entryType,
			&quantityStr,
			&priceStr,
			&tradeTimeStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger_entry table results: %w", err)
		}
		resp.Type = model.EntryType(entryType)

		if resp.Quantity, err = ParseDecimal(quantityStr); err != nil {
			return nil, err
		}
		if resp.Price, err = ParseDecimal(priceStr); err != nil {
			return nil, err
		}
		if resp.TradeTime, err = ParseTime(tradeTimeStr); err != nil {
			return nil, err
		}

		responses = append(responses, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_entry table: %w", err)
	}

	return responses, nil
}

func (r *LedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]model.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		var e model.LedgerEntry
		var entryType, quantityStr, priceStr, tradeTimeStr, createdAtStr string

		err := rows.Scan(
			&e.ID,
			&e.PortfolioID,
			&e.AssetID,
			&e.HoldingID,
			&entryType,
			&quantityStr,
			&priceStr,
			&tradeTimeStr,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger_entry table results: %w", err)
		}
		e.Type = model.EntryType(entryType)

		if e.Quantity, err = ParseDecimal(quantityStr); err != nil {
			return nil, err
		}
		if e.Price, err = ParseDecimal(priceStr); err != nil {
			return nil, err
		}
		if e.TradeTime, err = ParseTime(tradeTimeStr); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_entry table: %w", err)
	}

	return entries, nil
}
