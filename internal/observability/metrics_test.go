package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/commandes/{id}")

	req := httptest.NewRequest(http.MethodGet, "/commandes/12", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `atelier_http_requests_total{code="418",route="/commandes/{id}"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `atelier_http_request_duration_seconds_bucket{route="/commandes/{id}"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveBackend(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveBackend(http.MethodGet, "paiements", 200, 15*time.Millisecond)
	metrics.ObserveBackend(http.MethodPost, "paiements", 0, time.Millisecond)
	metrics.CountExport("ventes", "xlsx")

	body := scrape(t, metrics)
	for _, want := range []string{
		`atelier_backend_requests_total{code="200",method="GET",resource="paiements"} 1`,
		`atelier_backend_requests_total{code="error",method="POST",resource="paiements"} 1`,
		`atelier_report_exports_total{format="xlsx",report="ventes"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveBackend(http.MethodGet, "clients", 200, time.Millisecond)
	metrics.CountExport("ventes", "csv")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
