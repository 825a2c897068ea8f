package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
	"github.com/rvanowen/portfolio-valuation-backend/internal/validation"
)

// TrendHandler handles valuation trend HTTP requests.
type TrendHandler struct {
	valuationService *service.ValuationService
}

// NewTrendHandler creates a new TrendHandler
func NewTrendHandler(valuationService *service.ValuationService) *TrendHandler {
	return &TrendHandler{valuationService: valuationService}
}

// TrendResponse is the payload of GET /api/portfolio/{portfolioId}/trend:
// the daily value series plus return statistics over it.
type TrendResponse struct {
	PortfolioID string                   `json:"portfolioId"`
	Points      []model.ValuationPoint   `json:"points"`
	Performance model.PerformanceSummary `json:"performance"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// Trend computes the valuation series for a portfolio. Optional start_date
// and end_date query parameters (YYYY-MM-DD or RFC3339) bound the series;
// they default to the first trade date and today.
func (h *TrendHandler) Trend(w http.ResponseWriter, r *http.Request) {
	var startDate, endDate *time.Time

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := validation.ParseDate(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		startDate = &parsed
	}

	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := validation.ParseDate(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		endDate = &parsed
	}

	if startDate != nil && endDate != nil {
		if err := validation.ValidateDateRange(*startDate, *endDate); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	series, performance, err := h.valuationService.ComputeTrend(r.Context(), chi.URLParam(r, "portfolioId"), startDate, endDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TrendResponse{
		PortfolioID: series.PortfolioID,
		Points:      series.Points,
		Performance: performance,
		Warnings:    series.Warnings,
	})
}
