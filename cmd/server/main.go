package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api"
	"github.com/rvanowen/portfolio-valuation-backend/internal/config"
	"github.com/rvanowen/portfolio-valuation-backend/internal/database"
	"github.com/rvanowen/portfolio-valuation-backend/internal/marketdata"
	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
	"github.com/rvanowen/portfolio-valuation-backend/internal/scheduler"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		holdingRepo,
		assetRepo,
		ledgerRepo,
	)
	ledgerService := service.NewLedgerService(
		db,
		holdingRepo,
		assetRepo,
		ledgerRepo,
	)
	priceService := service.NewPriceService(
		priceRepo,
		marketdata.NewFinanceClient(),
		cfg.Valuation,
	)
	valuationService := service.NewValuationService(
		portfolioRepo,
		holdingRepo,
		ledgerRepo,
		assetRepo,
		priceService,
		cfg.Valuation.FallbackPolicy,
	)

	// Start the daily price refresh
	priceScheduler := scheduler.New(assetRepo, priceService)
	if err := priceScheduler.Start(cfg.Scheduler.PriceRefreshSpec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer priceScheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, portfolioService, ledgerService, valuationService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
