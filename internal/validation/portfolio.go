package validation

import (
	"strings"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/request"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// ValidateCreatePortfolio validates a portfolio creation request.
//
// Required fields:
//   - name: Must be non-blank and at most 100 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be at most 100 characters"
	}

	if len(req.Description) > 1000 {
		errors["description"] = "description must be at most 1000 characters"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateBuy validates a portfolio-level buy request.
//
// Required fields:
//   - symbol: Must be non-blank and not the reserved cash symbol
//   - quantity: Must be positive
//   - price: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateBuy(req request.BuyRequest) error {
	errors := make(map[string]string)

	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		errors["symbol"] = "symbol is required"
	} else if symbol == model.CashSymbol {
		errors["symbol"] = "symbol is reserved"
	}

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
