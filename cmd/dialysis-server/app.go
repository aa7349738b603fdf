package main

import (
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephro/dialysis/internal/config"
	"github.com/nephro/dialysis/internal/domain/facility"
	"github.com/nephro/dialysis/internal/domain/insurer"
	"github.com/nephro/dialysis/internal/domain/orders"
	"github.com/nephro/dialysis/internal/domain/patient"
	"github.com/nephro/dialysis/internal/domain/person"
	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/domain/session"
	"github.com/nephro/dialysis/internal/domain/staff"
	"github.com/nephro/dialysis/internal/platform/clock"
	"github.com/nephro/dialysis/internal/platform/credential"
	"github.com/nephro/dialysis/internal/platform/db"
	"github.com/nephro/dialysis/internal/platform/metrics"
	"github.com/nephro/dialysis/internal/platform/middleware"
)

const version = "1.0.0"

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// services holds one instance of every domain service, wired leaf-first.
type services struct {
	persons  *person.Service
	staff    *staff.Service
	insurers *insurer.Service
	patients *patient.Service
	facility *facility.Service
	schedule *scheduling.Service
	orders   *orders.Service
	sessions *session.Service
}

func newServices(pool *pgxpool.Pool, cfg *config.Config, logger zerolog.Logger) *services {
	clk := clock.System()
	tx := db.NewTxRunner(pool)

	s := &services{}
	s.persons = person.NewService(person.NewRepo(pool), clk, logger)
	s.staff = staff.NewService(staff.NewRepo(pool), s.persons, credential.NewBcryptHasher(cfg.BcryptCost), tx, clk, logger)
	s.insurers = insurer.NewService(insurer.NewRepo(pool), logger)
	s.patients = patient.NewService(patient.NewRepo(pool), s.persons, s.staff, s.insurers, tx, clk, logger)
	s.facility = facility.NewService(facility.NewRepo(pool), clk, logger)
	s.schedule = scheduling.NewService(scheduling.NewRepo(pool), clk, logger)
	s.orders = orders.NewService(orders.NewRepo(pool), clk, logger)
	s.sessions = session.NewService(session.NewRepo(pool), s.schedule, tx, clk, logger)
	return s
}

func facilityDefaults(cfg *config.Config) facility.Config {
	return facility.Config{
		AdminName:       cfg.FacilityAdminName,
		AdminEmail:      cfg.FacilityAdminEmail,
		AdminPhone:      cfg.FacilityAdminPhone,
		ScaleAccessCode: cfg.ScaleAccessCode,
	}
}

func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, svc *services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(metrics.Middleware())

	e.GET("/health", db.HealthHandler(pool, version))
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1",
		middleware.RateLimit(middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}, clock.System()),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)
	person.NewHandler(svc.persons).RegisterRoutes(api)
	staff.NewHandler(svc.staff).RegisterRoutes(api)
	insurer.NewHandler(svc.insurers).RegisterRoutes(api)
	patient.NewHandler(svc.patients).RegisterRoutes(api)
	facility.NewHandler(svc.facility).RegisterRoutes(api)
	scheduling.NewHandler(svc.schedule).RegisterRoutes(api)
	orders.NewHandler(svc.orders).RegisterRoutes(api)
	session.NewHandler(svc.sessions).RegisterRoutes(api)

	return e
}
