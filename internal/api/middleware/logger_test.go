package middleware_test

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rvanowen/portfolio-valuation-backend/internal/api/middleware"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLogger(t *testing.T) {
	t.Run("logs request id, method, path, status and size", func(t *testing.T) {
		buf := captureLog(t)

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("teapot")) //nolint:errcheck
		})

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-42"))

		middleware.Logger(next).ServeHTTP(httptest.NewRecorder(), req)

		line := buf.String()
		for _, want := range []string{"[req-42]", "GET", "/api/portfolio", "418", "6B"} {
			if !strings.Contains(line, want) {
				t.Errorf("Expected log line to contain %q, got %q", want, line)
			}
		}
	})

	t.Run("strips newlines from the request path", func(t *testing.T) {
		buf := captureLog(t)

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.URL.Path = "/api/portfolio\n200 forged"

		middleware.Logger(next).ServeHTTP(httptest.NewRecorder(), req)

		if got := strings.Count(buf.String(), "\n"); got != 1 {
			t.Errorf("Expected a single log line, got %d newlines: %q", got, buf.String())
		}
	})
}
