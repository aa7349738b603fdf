package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/nephro/dialysis/internal/platform/clock"
	"github.com/nephro/dialysis/internal/platform/metrics"
)

// RateLimitConfig bounds requests per client IP. A non-positive
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type limiters struct {
	mu  sync.Mutex
	cfg RateLimitConfig
	m   map[string]*rate.Limiter
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		burst := l.cfg.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), burst)
		l.m[key] = lim
	}
	return lim
}

// RateLimit rejects a client with 429 once its token bucket is empty.
// Time is read from clk so refill is deterministic under a fixed clock.
func RateLimit(cfg RateLimitConfig, clk clock.Clock) echo.MiddlewareFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := &limiters{cfg: cfg, m: make(map[string]*rate.Limiter)}
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := clk.Now()
			lim := store.get(c.RealIP())
			c.Response().Header().Set("X-RateLimit-Limit", limit)
			if !lim.AllowN(now, 1) {
				wait := math.Ceil((1 - lim.TokensAt(now)) / cfg.RequestsPerSecond)
				if wait < 1 {
					wait = 1
				}
				metrics.ObserveThrottled(c.Path())
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(wait)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
