package service

import (
	"context"
	"database/sql"

	"github.com/rvanowen/portfolio-valuation-backend/internal/database"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// SystemService reports operational health.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService with the provided database connection.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// Health checks database connectivity and reports overall status.
func (s *SystemService) Health(_ context.Context) model.HealthStatus {
	status := model.HealthStatus{Status: "ok", Database: "ok"}

	if err := database.HealthCheck(s.db); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
	}

	return status
}
