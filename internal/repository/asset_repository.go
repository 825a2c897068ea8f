package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// InsertAsset stores a new asset row. The q parameter allows the insert to
// run inside a caller-owned transaction (cash asset creation during a sell).
func (r *AssetRepository) InsertAsset(ctx context.Context, q Querier, a *model.Asset) error {
	if q == nil {
		q = r.db
	}

	query := `
		INSERT INTO asset (id, symbol, name, kind, currency)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := q.ExecContext(ctx, query, a.ID, a.Symbol, a.Name, string(a.Kind), a.Currency); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

// GetAssetOnID retrieves a single asset by its ID.
// Returns apperrors.ErrAssetNotFound if no row exists.
func (r *AssetRepository) GetAssetOnID(ctx context.Context, assetID string) (model.Asset, error) {
	return r.getAsset(ctx, r.db, "id", assetID)
}

// GetAssetOnSymbol retrieves a single asset by its unique symbol.
// Returns apperrors.ErrAssetNotFound if no row exists.
func (r *AssetRepository) GetAssetOnSymbol(ctx context.Context, symbol string) (model.Asset, error) {
	return r.getAsset(ctx, r.db, "symbol", symbol)
}

// GetCashAsset retrieves the synthetic cash asset for the given currency
// from inside a caller-owned transaction.
// Returns apperrors.ErrAssetNotFound if it has not been created yet.
func (r *AssetRepository) GetCashAsset(ctx context.Context, q Querier, currency string) (model.Asset, error) {
	if q == nil {
		q = r.db
	}

	query := `
		SELECT id, symbol, name, kind, currency, created_at
		FROM asset
		WHERE kind = ? AND currency = ?
	`

	return scanAsset(q.QueryRowContext(ctx, query, string(model.KindCash), currency))
}

// GetAssetsOnIDs retrieves the given assets keyed by ID.
// Missing IDs are silently absent from the result map.
func (r *AssetRepository) GetAssetsOnIDs(ctx context.Context, assetIDs []string) (map[string]model.Asset, error) {
	if len(assetIDs) == 0 {
		return make(map[string]model.Asset), nil
	}

	placeholders := make([]string, len(assetIDs))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	query := `
		SELECT id, symbol, name, kind, currency, created_at
		FROM asset
		WHERE id IN (` + strings.Join(placeholders, ",") + `)
	`

	args := make([]any, len(assetIDs))
	for i, id := range assetIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := make(map[string]model.Asset)
	for rows.Next() {
		a, err := scanAssetRows(rows)
		if err != nil {
			return nil, err
		}
		assets[a.ID] = a
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// GetEquityAssets retrieves all market-traded assets. Used by the scheduled
// price refresh; cash is excluded since it is never priced externally.
func (r *AssetRepository) GetEquityAssets(ctx context.Context) ([]model.Asset, error) {
	query := `
		SELECT id, symbol, name, kind, currency, created_at
		FROM asset
		WHERE kind = ?
		ORDER BY symbol ASC
	`

	rows, err := r.db.QueryContext(ctx, query, string(model.KindEquity))
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAssetRows(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

func (r *AssetRepository) getAsset(ctx context.Context, q Querier, column, value string) (model.Asset, error) {
	//nolint:gosec // column is a hardcoded identifier, never user input
	query := `
		SELECT id, symbol, name, kind, currency, created_at
		FROM asset
		WHERE ` + column + ` = ?
	`

	return scanAsset(q.QueryRowContext(ctx, query, value))
}

func scanAsset(row *sql.Row) (model.Asset, error) {
	var a model.Asset
	var kind, createdAtStr string

	err := row.Scan(&a.ID, &a.Symbol, &a.Name, &kind, &a.Currency, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset table results: %w", err)
	}
	a.Kind = model.AssetKind(kind)

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Asset{}, err
	}

	return a, nil
}

func scanAssetRows(rows *sql.Rows) (model.Asset, error) {
	var a model.Asset
	var kind, createdAtStr string

	if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &kind, &a.Currency, &createdAtStr); err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset table results: %w", err)
	}
	a.Kind = model.AssetKind(kind)

	createdAt, err := ParseTime(createdAtStr)
	if err != nil {
		return model.Asset{}, err
	}
	a.CreatedAt = createdAt

	return a, nil
}
