package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/handlers"
	custommiddleware "github.com/rvanowen/portfolio-valuation-backend/internal/api/middleware"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	ledgerService *service.LedgerService,
	valuationService *service.ValuationService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService, ledgerService)
			trendHandler := handlers.NewTrendHandler(valuationService)

			r.Post("/", portfolioHandler.Create)
			r.Get("/", portfolioHandler.Portfolios)

			r.Route("/{portfolioId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDParam("portfolioId"))
				r.Get("/", portfolioHandler.Portfolio)
				r.Get("/holdings", portfolioHandler.Holdings)
				r.Get("/transactions", portfolioHandler.Transactions)
				r.Post("/buy", portfolioHandler.Buy)
				r.Get("/trend", trendHandler.Trend)
			})
		})

		r.Route("/holding/{holdingId}", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(ledgerService)
			r.Use(custommiddleware.ValidateUUIDParam("holdingId"))
			r.Post("/buy", holdingHandler.Buy)
			r.Post("/sell", holdingHandler.Sell)
			r.Get("/transactions", holdingHandler.Transactions)
			r.Put("/", holdingHandler.Update)
		})
	})

	return r
}
