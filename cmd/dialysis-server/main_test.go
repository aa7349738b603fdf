package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		LogLevel:       "warn",
		BcryptCost:     4,
		RequestTimeout: 5 * time.Second,
		BodyLimit:      "1M",
	}
}

func TestNewLogger_Level(t *testing.T) {
	cfg := testConfig()
	if got := newLogger(cfg).GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %s", got)
	}
	cfg.LogLevel = "loud"
	if got := newLogger(cfg).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %s", got)
	}
}

func TestNewServer_Routes(t *testing.T) {
	cfg := testConfig()
	e := newServer(cfg, zerolog.Nop(), nil, newServices(nil, cfg, zerolog.Nop()))

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	want := []string{
		"GET /health",
		"GET /metrics",
		"GET /api/v1/persons/exists",
		"POST /api/v1/physicians",
		"POST /api/v1/accounts",
		"POST /api/v1/insurers",
		"POST /api/v1/patients",
		"POST /api/v1/rooms",
		"GET /api/v1/facility/config",
		"POST /api/v1/schedule",
		"GET /api/v1/schedule/:date/roster",
		"PATCH /api/v1/schedule/:date/:shift/:patient_id",
		"GET /api/v1/patients/:id/treatment-orders/current",
		"POST /api/v1/change-requests/:id/close",
		"POST /api/v1/sessions",
		"POST /api/v1/sessions/:id/vitals",
		"POST /api/v1/dialyzers/:id/actions",
		"PUT /api/v1/dialyzers/:id/recirculation-tests/:test_id",
	}
	for _, r := range want {
		if !registered[r] {
			t.Errorf("route %s not registered", r)
		}
	}
}

func TestNewServer_ErrorMapping(t *testing.T) {
	cfg := testConfig()
	e := newServer(cfg, zerolog.Nop(), nil, newServices(nil, cfg, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on error responses")
	}
}
