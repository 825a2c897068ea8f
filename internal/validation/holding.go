package validation

import (
	"github.com/rvanowen/portfolio-valuation-backend/internal/api/request"
)

// ValidateTrade validates a buy or sell against an existing holding.
//
// Required fields:
//   - quantity: Must be positive
//   - price: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if !req.Quantity.IsPositive() {
		errors["quantity"] = "quantity must be positive"
	}

	if !req.Price.IsPositive() {
		errors["price"] = "price must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateHolding validates an administrative holding update.
// All fields are optional, but at least one must be provided.
//
// Optional fields (validated if provided):
//   - quantity: Must be non-negative
//   - avgCost: Must be non-negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	errors := make(map[string]string)

	if req.Quantity == nil && req.AvgCost == nil {
		errors["body"] = "at least one of quantity or avgCost is required"
	}

	if req.Quantity != nil && req.Quantity.IsNegative() {
		errors["quantity"] = "quantity must not be negative"
	}

	if req.AvgCost != nil && req.AvgCost.IsNegative() {
		errors["avgCost"] = "avgCost must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
