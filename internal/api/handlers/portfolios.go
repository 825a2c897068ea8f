package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/request"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
	"github.com/rvanowen/portfolio-valuation-backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	ledgerService    *service.LedgerService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, ledgerService *service.LedgerService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		ledgerService:    ledgerService,
	}
}

// Create handles POST /api/portfolio.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, err)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, portfolio)
}

// Portfolios handles GET /api/portfolio.
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetPortfolios(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolios)
}

// Portfolio handles GET /api/portfolio/{portfolioId}.
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "portfolioId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// Holdings handles GET /api/portfolio/{portfolioId}/holdings.
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldingDetails(r.Context(), chi.URLParam(r, "portfolioId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, holdings)
}

// Transactions handles GET /api/portfolio/{portfolioId}/transactions.
func (h *PortfolioHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.portfolioService.GetTransactions(r.Context(), chi.URLParam(r, "portfolioId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Buy handles POST /api/portfolio/{portfolioId}/buy: a purchase addressed by
// symbol, registering the asset on first use.
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioId")

	var req request.BuyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateBuy(req); err != nil {
		respondServiceError(w, err)
		return
	}

	if _, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID); err != nil {
		respondServiceError(w, err)
		return
	}

	asset, err := h.portfolioService.EnsureAsset(r.Context(), req.Symbol, req.Name, req.Currency)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	holding, err := h.ledgerService.ApplyBuy(r.Context(), portfolioID, asset.ID, req.Quantity, req.Price)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, holding)
}
