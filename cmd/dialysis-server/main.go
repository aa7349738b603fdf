package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nephro/dialysis/internal/bootstrap"
	"github.com/nephro/dialysis/internal/config"
	"github.com/nephro/dialysis/internal/domain/scheduling"
	"github.com/nephro/dialysis/internal/platform/db"
	"github.com/nephro/dialysis/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dialysis-server",
		Short: "Dialysis center records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(layoutCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads and validates config, then opens a pool on its schema.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Printf("Running migrations on schema: %s\n", cfg.DBSchema)
			count, err := db.EnsureSchema(ctx, pool, cfg.DBSchema, db.NewMigrator(pool, migrations.FS))
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx, cfg.DBSchema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", cfg.DBSchema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage facility reference data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Create rooms, stations and insurers listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := bootstrap.Load(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := newLogger(cfg)
			svc := newServices(pool, cfg, logger)
			sum, err := bootstrap.NewImporter(svc.facility, svc.insurers, logger).Import(ctx, layout)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d room(s) and %d station(s); ensured %d insurer(s).\n", sum.Rooms, sum.Stations, sum.Insurers)
			return nil
		},
	})

	return cmd
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Work with the daily schedule",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the day's roster as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			dateFlag, _ := cmd.Flags().GetString("date")
			out, _ := cmd.Flags().GetString("out")

			date := time.Now()
			if dateFlag != "" {
				d, err := scheduling.ParseDate(dateFlag)
				if err != nil {
					return err
				}
				date = d
			}
			if out == "" {
				out = "roster-" + scheduling.DateOf(date).Format(scheduling.DateLayout) + ".xlsx"
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newServices(pool, cfg, newLogger(cfg))
			content, err := svc.schedule.ExportRoster(ctx, date)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("write roster: %w", err)
			}
			fmt.Printf("Roster written to %s\n", out)
			return nil
		},
	}
	exportCmd.Flags().String("date", "", "Schedule day as YYYY-MM-DD (default today)")
	exportCmd.Flags().String("out", "", "Output file (default roster-<date>.xlsx)")
	cmd.AddCommand(exportCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	applied, err := db.EnsureSchema(ctx, pool, cfg.DBSchema, db.NewMigrator(pool, migrations.FS))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate schema")
	}
	logger.Info().Int("applied", applied).Msg("schema ready")

	svc := newServices(pool, cfg, logger)
	if _, err := svc.facility.EnsureConfig(ctx, facilityDefaults(cfg)); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed facility config")
	}

	e := newServer(cfg, logger, pool, svc)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
