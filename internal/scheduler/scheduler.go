// Package scheduler runs the periodic price refresh so valuation requests
// usually find today's closes already in the local store.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rvanowen/portfolio-valuation-backend/internal/repository"
	"github.com/rvanowen/portfolio-valuation-backend/internal/service"
)

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron         *cron.Cron
	assetRepo    *repository.AssetRepository
	priceService *service.PriceService
}

// New creates a Scheduler. Jobs are registered with Start.
func New(assetRepo *repository.AssetRepository, priceService *service.PriceService) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		assetRepo:    assetRepo,
		priceService: priceService,
	}
}

// Start registers the price refresh job under the given cron spec and starts
// the runner. An empty spec disables scheduling entirely.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		log.Println("Price refresh scheduling disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(spec, s.refreshPrices); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Price refresh scheduled: %s", spec)
	return nil
}

// Stop stops the runner and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// refreshPrices fetches the latest close for every traded asset. Failures
// are logged per asset; one unreachable symbol should not starve the rest.
func (s *Scheduler) refreshPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	assets, err := s.assetRepo.GetEquityAssets(ctx)
	if err != nil {
		log.Printf("ERROR: price refresh could not list assets: %v", err)
		return
	}

	refreshed := 0
	for _, asset := range assets {
		if err := s.priceService.RefreshAsset(ctx, asset); err != nil {
			log.Printf("WARN: %v", err)
			continue
		}
		refreshed++
	}

	log.Printf("Price refresh complete: %d/%d assets updated", refreshed, len(assets))
}
