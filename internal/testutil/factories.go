package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithDescription("My description").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
	}
}

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	asset := testutil.NewAsset().WithSymbol("AAPL").Build(t, db)
//	cash := testutil.NewAsset().Cash("USD").Build(t, db)
type AssetBuilder struct {
	ID       string
	Symbol   string
	Name     string
	Kind     model.AssetKind
	Currency string
}

// NewAsset creates an AssetBuilder for a traded asset with a unique symbol.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		ID:       MakeID(),
		Symbol:   MakeSymbol("TST"),
		Name:     "Test Asset",
		Kind:     model.KindEquity,
		Currency: "USD",
	}
}

// WithSymbol sets a custom symbol.
func (b *AssetBuilder) WithSymbol(symbol string) *AssetBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithCurrency sets a custom currency.
func (b *AssetBuilder) WithCurrency(currency string) *AssetBuilder {
	b.Currency = currency
	return b
}

// Cash turns the builder into the synthetic cash asset for a currency.
func (b *AssetBuilder) Cash(currency string) *AssetBuilder {
	b.Symbol = model.CashSymbol
	b.Name = "Cash (" + currency + ")"
	b.Kind = model.KindCash
	b.Currency = currency
	return b
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	query := `
		INSERT INTO asset (id, symbol, name, kind, currency)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, b.Name, string(b.Kind), b.Currency)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		ID:       b.ID,
		Symbol:   b.Symbol,
		Name:     b.Name,
		Kind:     b.Kind,
		Currency: b.Currency,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding(portfolio.ID, asset.ID).
//	    WithQuantity("10").
//	    WithAvgCost("100").
//	    Build(t, db)
type HoldingBuilder struct {
	ID          string
	PortfolioID string
	AssetID     string
	Quantity    decimal.Decimal
	AvgCost     decimal.Decimal
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding(portfolioID, assetID string) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Quantity:    decimal.NewFromInt(10),
		AvgCost:     decimal.NewFromInt(100),
	}
}

// WithQuantity sets the quantity from a decimal string.
func (b *HoldingBuilder) WithQuantity(quantity string) *HoldingBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithAvgCost sets the average cost from a decimal string.
func (b *HoldingBuilder) WithAvgCost(avgCost string) *HoldingBuilder {
	b.AvgCost = decimal.RequireFromString(avgCost)
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	query := `
		INSERT INTO holding (id, portfolio_id, asset_id, quantity, avg_cost)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.AssetID, b.Quantity.String(), b.AvgCost.String())
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		AssetID:     b.AssetID,
		Quantity:    b.Quantity,
		AvgCost:     b.AvgCost,
	}
}

// LedgerEntryBuilder provides a fluent interface for creating test ledger
// entries.
//
// Example usage:
//
//	entry := testutil.NewLedgerEntry(portfolio.ID, asset.ID, holding.ID).
//	    Sell().
//	    WithQuantity("4").
//	    WithPrice("120").
//	    OnDate("2024-03-05").
//	    Build(t, db)
type LedgerEntryBuilder struct {
	ID          string
	PortfolioID string
	AssetID     string
	HoldingID   string
	Type        model.EntryType
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TradeTime   time.Time
}

// NewLedgerEntry creates a LedgerEntryBuilder for a buy with sensible defaults.
func NewLedgerEntry(portfolioID, assetID, holdingID string) *LedgerEntryBuilder {
	return &LedgerEntryBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		HoldingID:   holdingID,
		Type:        model.EntryBuy,
		Quantity:    decimal.NewFromInt(10),
		Price:       decimal.NewFromInt(100),
		TradeTime:   time.Now().UTC(),
	}
}

// Sell marks the entry as a sell.
func (b *LedgerEntryBuilder) Sell() *LedgerEntryBuilder {
	b.Type = model.EntrySell
	return b
}

// WithQuantity sets the quantity from a decimal string.
func (b *LedgerEntryBuilder) WithQuantity(quantity string) *LedgerEntryBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithPrice sets the price from a decimal string.
func (b *LedgerEntryBuilder) WithPrice(price string) *LedgerEntryBuilder {
	b.Price = decimal.RequireFromString(price)
	return b
}

// At sets the trade time exactly.
func (b *LedgerEntryBuilder) At(tradeTime time.Time) *LedgerEntryBuilder {
	b.TradeTime = tradeTime
	return b
}

// OnDate sets the trade time to noon UTC on a YYYY-MM-DD date.
func (b *LedgerEntryBuilder) OnDate(date string) *LedgerEntryBuilder {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	b.TradeTime = parsed.Add(12 * time.Hour)
	return b
}

// Build creates the ledger entry in the database and returns it.
func (b *LedgerEntryBuilder) Build(t *testing.T, db *sql.DB) model.LedgerEntry {
	t.Helper()

	query := `
		INSERT INTO ledger_entry (id, portfolio_id, asset_id, holding_id, type, quantity, price, trade_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.PortfolioID,
		b.AssetID,
		b.HoldingID,
		string(b.Type),
		b.Quantity.String(),
		b.Price.String(),
		b.TradeTime.UTC().Format(repository.TradeTimeLayout),
	)
	if err != nil {
		t.Fatalf("Failed to create test ledger entry: %v", err)
	}

	return model.LedgerEntry{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		AssetID:     b.AssetID,
		HoldingID:   b.HoldingID,
		Type:        b.Type,
		Quantity:    b.Quantity,
		Price:       b.Price,
		TradeTime:   b.TradeTime.UTC(),
	}
}

// CreateAssetPrice stores a close price for an (asset, date) pair.
//
// Example usage:
//
//	testutil.CreateAssetPrice(t, db, asset.ID, "2024-03-05", "101.50")
func CreateAssetPrice(t *testing.T, db *sql.DB, assetID, date, price string) {
	t.Helper()

	query := `
		INSERT INTO asset_price (id, asset_id, date, price)
		VALUES (?, ?, ?, ?)
	`

	if _, err := db.Exec(query, MakeID(), assetID, date, price); err != nil {
		t.Fatalf("Failed to create test asset price: %v", err)
	}
}
