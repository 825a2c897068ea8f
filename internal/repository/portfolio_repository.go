package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// InsertPortfolio stores a new portfolio row.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, name, description)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description); err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// GetPortfolios retrieves all portfolios ordered by creation time, newest first.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, description, created_at
		FROM portfolio
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var p model.Portfolio
		var description sql.NullString
		var createdAtStr string

		if err := rows.Scan(&p.ID, &p.Name, &description, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		p.Description = description.String

		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio by its ID.
// Returns apperrors.ErrPortfolioNotFound if no row exists.
func (r *PortfolioRepository) GetPortfolioOnID(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT id, name, description, created_at
		FROM portfolio
		WHERE id = ?
	`

	var p model.Portfolio
	var description sql.NullString
	var createdAtStr string

	err := r.db.QueryRowContext(ctx, query, portfolioID).Scan(&p.ID, &p.Name, &description, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}
	p.Description = description.String

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}
