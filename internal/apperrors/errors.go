package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrAssetNotFound indicates that an asset with the given ID or symbol does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrLedgerEntryNotFound indicates that a ledger entry with the given ID does not exist.
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidInput indicates a non-positive quantity or price supplied to a
	// buy or sell. Rejected before any state mutation.
	ErrInvalidInput = errors.New("quantity and price must be positive")

	// ErrInsufficientQuantity indicates that a sell requested more units than
	// the holding currently has. Rejected before any state mutation.
	ErrInsufficientQuantity = errors.New("insufficient quantity for sale")

	// ErrCashAssetImmutable indicates an attempt to trade directly against the
	// synthetic cash asset. Cash is only ever credited by sells.
	ErrCashAssetImmutable = errors.New("cash holding cannot be traded directly")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Valuation errors distinguish "not computable" results from system failures.
var (
	// ErrEmptyPortfolio indicates a valuation request for a portfolio that has
	// no holdings and no ledger activity.
	ErrEmptyPortfolio = errors.New("portfolio has no holdings")

	// ErrNoTransactionHistory indicates a valuation request for a portfolio
	// whose holdings have no ledger entries to replay.
	ErrNoTransactionHistory = errors.New("portfolio has no transaction history")

	// ErrPriceUnavailable indicates that no price could be resolved for a
	// symbol after the fallback chain. Per-symbol and non-fatal: the valuation
	// absorbs it as a warning and values the asset at zero.
	ErrPriceUnavailable = errors.New("price unavailable")
)
