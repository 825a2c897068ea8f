package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/handlers"
	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
	"github.com/rvanowen/portfolio-valuation-backend/internal/testutil"
)

// TestSystemHandler_Health tests the GET /api/system/health endpoint.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database reports ok", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var response model.HealthStatus
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Status != "ok" {
			t.Errorf("Expected status ok, got %s", response.Status)
		}
	})

	t.Run("closed database reports 503", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}
