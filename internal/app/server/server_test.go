package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ponto/internal/platform/config"
	"ponto/internal/platform/metrics"
)

type pingRoute struct{}

func (pingRoute) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ponto</html>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}
	return config.Config{
		FrontendDir:        dir,
		JWTSecret:          "secret",
		MaxBodyBytes:       1 << 20,
		MetricsEnabled:     true,
		RateLimitPerWindow: 100,
		RateLimitWindow:    time.Minute,
	}
}

func TestRouterHealthAndReadiness(t *testing.T) {
	failing := errors.New("down")
	ready := error(nil)
	router := NewRouter(testConfig(t), Deps{
		Metrics: metrics.New(),
		Ready:   func(ctx context.Context) error { return ready },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ready = failing
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouterMountsHandlersUnderAPI(t *testing.T) {
	router := NewRouter(testConfig(t), Deps{Handlers: []RouteRegistrar{pingRoute{}}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("expected pong, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store on api responses")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMetricsRequiresAuthentication(t *testing.T) {
	router := NewRouter(testConfig(t), Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSPAFallsBackToIndex(t *testing.T) {
	router := NewRouter(testConfig(t), Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/today", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<html>ponto</html>" {
		t.Fatalf("expected index fallback, got %d %q", rec.Code, rec.Body.String())
	}
}
