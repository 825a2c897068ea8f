package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
)

// PriceRepository provides data access methods for the asset_price table,
// the local store of daily closes fetched from the market data source.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertPrice stores or replaces the close price for an (asset, date) pair.
func (r *PriceRepository) UpsertPrice(ctx context.Context, assetID string, date time.Time, price decimal.Decimal) error {
	query := `
		INSERT INTO asset_price (id, asset_id, date, price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset_id, date) DO UPDATE SET price = excluded.price
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		assetID,
		date.UTC().Format("2006-01-02"),
		price.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert asset price: %w", err)
	}
	return nil
}

// GetPricesOnAssetID retrieves stored prices for an asset within the date
// range (inclusive), keyed by date in YYYY-MM-DD form.
func (r *PriceRepository) GetPricesOnAssetID(ctx context.Context, assetID string, startDate, endDate time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT date, price
		FROM asset_price
		WHERE asset_id = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query,
		assetID,
		startDate.UTC().Format("2006-01-02"),
		endDate.UTC().Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_price table: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal)
	for rows.Next() {
		var dateStr, priceStr string

		if err := rows.Scan(&dateStr, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan asset_price table results: %w", err)
		}

		price, err := ParseDecimal(priceStr)
		if err != nil {
			return nil, err
		}

		date, err := ParseTime(dateStr)
		if err != nil {
			return nil, err
		}

		prices[date.Format("2006-01-02")] = price
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_price table: %w", err)
	}

	return prices, nil
}

// GetLatestPrice retrieves the most recent stored price for an asset.
// Returns apperrors.ErrPriceUnavailable if no price has been stored.
func (r *PriceRepository) GetLatestPrice(ctx context.Context, assetID string) (decimal.Decimal, time.Time, error) {
	query := `
		SELECT date, price
		FROM asset_price
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT 1
	`

	var dateStr, priceStr string
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(&dateStr, &priceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, time.Time{}, apperrors.ErrPriceUnavailable
	}
	if err != nil {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("failed to scan asset_price table results: %w", err)
	}

	price, err := ParseDecimal(priceStr)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, err
	}

	date, err := ParseTime(dateStr)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, err
	}

	return price, date, nil
}
