package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// All mutation methods accept a Querier so the ledger service can apply a
// read-modify-write on quantity/cost atomically with the ledger insert.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// GetHoldingOnID retrieves a single holding by its ID.
// Returns apperrors.ErrHoldingNotFound if no row exists.
func (r *HoldingRepository) GetHoldingOnID(ctx context.Context, q Querier, holdingID string) (model.Holding, error) {
	if q == nil {
		q = r.db
	}

	query := `
		SELECT id, portfolio_id, asset_id, quantity, avg_cost, created_at, updated_at
		FROM holding
		WHERE id = ?
	`

	return scanHolding(q.QueryRowContext(ctx, query, holdingID))
}

// GetHoldingOnPortfolioAsset retrieves the holding for a (portfolio, asset)
// pair. Returns apperrors.ErrHoldingNotFound if no row exists.
func (r *HoldingRepository) GetHoldingOnPortfolioAsset(ctx context.Context, q Querier, portfolioID, assetID string) (model.Holding, error) {
	if q == nil {
		q = r.db
	}

	query := `
		SELECT id, portfolio_id, asset_id, quantity, avg_cost, created_at, updated_at
		FROM holding
		WHERE portfolio_id = ? AND asset_id = ?
	`

	return scanHolding(q.QueryRowContext(ctx, query, portfolioID, assetID))
}

// GetHoldingsOnPortfolioID retrieves all holdings for a portfolio.
func (r *HoldingRepository) GetHoldingsOnPortfolioID(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT id, portfolio_id, asset_id, quantity, avg_cost, created_at, updated_at
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		var quantityStr, avgCostStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&h.ID,
			&h.PortfolioID,
			&h.AssetID,
			&quantityStr,
			&avgCostStr,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		if h.Quantity, err = ParseDecimal(quantityStr); err != nil {
			return nil, err
		}
		if h.AvgCost, err = ParseDecimal(avgCostStr); err != nil {
			return nil, err
		}
		if h.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		if h.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
			return nil, err
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// InsertHolding stores a new holding row.
func (r *HoldingRepository) InsertHolding(ctx context.Context, q Querier, h *model.Holding) error {
	if q == nil {
		q = r.db
	}

	query := `
		INSERT INTO holding (id, portfolio_id, asset_id, quantity, avg_cost)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		h.ID,
		h.PortfolioID,
		h.AssetID,
		h.Quantity.String(),
		h.AvgCost.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// UpdateHoldingPosition overwrites quantity and average cost for a holding.
func (r *HoldingRepository) UpdateHoldingPosition(ctx context.Context, q Querier, holdingID string, quantity, avgCost decimal.Decimal) error {
	if q == nil {
		q = r.db
	}

	query := `
		UPDATE holding
		SET quantity = ?, avg_cost = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := q.ExecContext(ctx, query,
		quantity.String(),
		avgCost.String(),
		time.Now().UTC().Format(time.RFC3339),
		holdingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}

	return nil
}

// DeleteHolding removes a holding row. Ledger entries referencing it are
// intentionally left in place.
func (r *HoldingRepository) DeleteHolding(ctx context.Context, q Querier, holdingID string) error {
	if q == nil {
		q = r.db
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM holding WHERE id = ?", holdingID); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// GetHoldingDetails retrieves all holdings for a portfolio enriched with
// asset metadata and the most recent stored price.
func (r *HoldingRepository) GetHoldingDetails(ctx context.Context, portfolioID string) ([]model.HoldingDetail, error) {
	query := `
		SELECT
			h.id,
			h.portfolio_id,
			h.asset_id,
			h.quantity,
			h.avg_cost,
			a.symbol,
			a.name,
			a.kind,
			(
				SELECT ap.price FROM asset_price ap
				WHERE ap.asset_id = h.asset_id
				ORDER BY ap.date DESC
				LIMIT 1
			) AS latest_price
		FROM holding h
		JOIN asset a ON h.asset_id = a.id
		WHERE h.portfolio_id = ?
		ORDER BY a.symbol ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	details := []model.HoldingDetail{}
	for rows.Next() {
		var d model.HoldingDetail
		var quantityStr, avgCostStr, kind string
		var latestPriceStr sql.NullString

		err := rows.Scan(
			&d.ID,
			&d.PortfolioID,
			&d.AssetID,
			&quantityStr,
			&avgCostStr,
			&d.Symbol,
			&d.AssetName,
			&kind,
			&latestPriceStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		d.Kind = model.AssetKind(kind)

		if d.Quantity, err = ParseDecimal(quantityStr); err != nil {
			return nil, err
		}
		if d.AvgCost, err = ParseDecimal(avgCostStr); err != nil {
			return nil, err
		}

		// Cash is always worth exactly its quantity
		switch {
		case d.Kind == model.KindCash:
			d.LatestPrice = decimal.NewFromInt(1)
		case latestPriceStr.Valid:
			if d.LatestPrice, err = ParseDecimal(latestPriceStr.String); err != nil {
				return nil, err
			}
		}

		d.CurrentValue = d.Quantity.Mul(d.LatestPrice)
		d.GainLoss = d.CurrentValue.Sub(d.CostBasis())

		details = append(details, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return details, nil
}

func scanHolding(row *sql.Row) (model.Holding, error) {
	var h model.Holding
	var quantityStr, avgCostStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&h.ID,
		&h.PortfolioID,
		&h.AssetID,
		&quantityStr,
		&avgCostStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	if h.Quantity, err = ParseDecimal(quantityStr); err != nil {
		return model.Holding{}, err
	}
	if h.AvgCost, err = ParseDecimal(avgCostStr); err != nil {
		return model.Holding{}, err
	}
	if h.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Holding{}, err
	}
	if h.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.Holding{}, err
	}

	return h, nil
}
