package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rvanowen/portfolio-valuation-backend/internal/apperrors"
	"github.com/rvanowen/portfolio-valuation-backend/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// decodeJSON decodes the request body into dst, answering 400 on malformed
// input. Returns false if the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return false
	}
	return true
}

// respondServiceError maps service-layer errors onto HTTP status codes.
// Unrecognized errors become 500 with the message logged but not leaked.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrAssetNotFound),
		errors.Is(err, apperrors.ErrLedgerEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrCashAssetImmutable):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientQuantity),
		errors.Is(err, apperrors.ErrEmptyPortfolio),
		errors.Is(err, apperrors.ErrNoTransactionHistory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrPriceUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		respondJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}
