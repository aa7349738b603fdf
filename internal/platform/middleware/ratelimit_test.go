package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/platform/clock"
)

func limited(cfg RateLimitConfig, clk clock.Clock) (*echo.Echo, func(ip string) *httptest.ResponseRecorder) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop())
	e.Use(RateLimit(cfg, clk))
	e.GET("/api/v1/schedule/:date", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e, func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/2024-05-01", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC))
	_, send := limited(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, clk)

	for i := 0; i < 2; i++ {
		if rec := send("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	rec := send("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("expected X-RateLimit-Limit 1, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_Refills(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC))
	_, send := limited(RateLimitConfig{RequestsPerSecond: 2, Burst: 1}, clk)

	send("10.0.0.1")
	if rec := send("10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before refill, got %d", rec.Code)
	}
	clk.Advance(500 * time.Millisecond)
	if rec := send("10.0.0.1"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after refill, got %d", rec.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC))
	_, send := limited(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, clk)

	send("10.0.0.1")
	if rec := send("10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("expected a second client to have its own bucket, got %d", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	_, send := limited(RateLimitConfig{}, clock.System())
	for i := 0; i < 20; i++ {
		if rec := send("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}
