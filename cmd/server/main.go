package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sheetcheck/internal/config"
	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
	"github.com/JonMunkholm/sheetcheck/internal/store"
	"github.com/JonMunkholm/sheetcheck/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history", historyBackend(cfg),
		"validate_max_concurrent", cfg.Validation.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	s, err := schema.LoadFile(cfg.Validation.SchemaFile)
	if err != nil {
		slog.Error("failed to load schema", "error", err)
		os.Exit(1)
	}
	slog.Info("schema loaded", "tables", len(s.Names()), "file", cfg.Validation.SchemaFile)

	ctx := context.Background()
	runs, closeRuns, err := openRunStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer closeRuns()

	limiter := core.NewLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime)
	service := core.NewService(core.NewValidator(s, nil), limiter, runs)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight validations record their runs
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for validations to complete", "active", status.Active)
			if err := service.WaitForValidations(shutdownCtx); err != nil {
				slog.Warn("validations did not complete in time", "error", err)
			} else {
				slog.Info("all validations completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func historyBackend(cfg *config.Config) string {
	if cfg.Database.Enabled() {
		return "postgres"
	}
	return "memory"
}

// openRunStore connects to PostgreSQL when a database URL is configured and
// falls back to a bounded in-memory history otherwise.
func openRunStore(ctx context.Context, cfg *config.Config) (core.RunStore, func(), error) {
	if !cfg.Database.Enabled() {
		return store.NewMemory(cfg.Validation.HistorySize), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
