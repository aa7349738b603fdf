package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveConflict(t *testing.T) {
	before := testutil.ToFloat64(integrityConflicts.WithLabelValues("duplicate", "person", "email"))
	ObserveConflict("duplicate", "person", "email")
	after := testutil.ToFloat64(integrityConflicts.WithLabelValues("duplicate", "person", "email"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/v1/patients/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	counter := httpRequests.WithLabelValues(http.MethodGet, "/api/v1/patients/:id", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("expected route counter to increase by 1, got %v -> %v", before, got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ObserveConflict("foreign_key", "patient", "insurer")

	e := echo.New()
	e.GET("/metrics", Handler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dialysis_integrity_conflicts_total") {
		t.Error("expected integrity conflict counter in exposition output")
	}
}
