package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvanowen/portfolio-valuation-backend/internal/validation"
)

// ValidateUUIDParam returns middleware that rejects requests whose named URL
// parameter is missing or not a valid UUID. Applying it to a route group
// keeps malformed identifiers out of the handlers and the database.
//
// Example usage in router:
//
//	r.Route("/{portfolioId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDParam("portfolioId"))
//	    r.Get("/", handler.Portfolio)
//	})
func ValidateUUIDParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validation.ValidateUUID(chi.URLParam(r, param)); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				if err := json.NewEncoder(w).Encode(map[string]string{"error": "invalid " + param + " format"}); err != nil {
					log.Printf("Failed to encode JSON: %v", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
