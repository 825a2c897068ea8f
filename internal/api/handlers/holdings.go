package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/request"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
	"github.com/rvanowen/portfolio-valuation-backend/internal/validation"
)

// HoldingHandler handles holding-level trade and correction requests.
type HoldingHandler struct {
	ledgerService *service.LedgerService
}

// NewHoldingHandler creates a new HoldingHandler
func NewHoldingHandler(ledgerService *service.LedgerService) *HoldingHandler {
	return &HoldingHandler{ledgerService: ledgerService}
}

// Buy handles POST /api/holding/{holdingId}/buy: additional purchase of an
// already-held asset, blending the average cost.
func (h *HoldingHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req request.TradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		respondServiceError(w, err)
		return
	}

	holding, err := h.ledgerService.BuyMore(r.Context(), chi.URLParam(r, "holdingId"), req.Quantity, req.Price)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, holding)
}

// Sell handles POST /api/holding/{holdingId}/sell.
func (h *HoldingHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req request.TradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateTrade(req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.ledgerService.ApplySell(r.Context(), chi.URLParam(r, "holdingId"), req.Quantity, req.Price)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Transactions handles GET /api/holding/{holdingId}/transactions. History
// survives full liquidation, so this also answers for holdings whose row has
// been removed.
func (h *HoldingHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledgerService.GetTransactions(r.Context(), chi.URLParam(r, "holdingId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Update handles PUT /api/holding/{holdingId}: administrative correction of
// quantity and/or average cost, without ledgering a trade.
func (h *HoldingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateHoldingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateUpdateHolding(req); err != nil {
		respondServiceError(w, err)
		return
	}

	holding, err := h.ledgerService.UpdateHolding(r.Context(), chi.URLParam(r, "holdingId"), req.Quantity, req.AvgCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, holding)
}
