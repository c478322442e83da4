package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	specpkg "github.com/arsw/blueprints/api"
	"github.com/arsw/blueprints/internal/api"
	"github.com/arsw/blueprints/internal/api/handler"
	"github.com/arsw/blueprints/internal/blueprint"
	"github.com/arsw/blueprints/internal/config"
	"github.com/arsw/blueprints/internal/database"
	"github.com/arsw/blueprints/internal/filter"
	"github.com/arsw/blueprints/internal/metrics"
	"github.com/arsw/blueprints/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel, cfg.LogFormat)

	activeFilter, err := filter.DefaultRegistry().Resolve(cfg.Filter)
	if err != nil {
		slog.Error("failed to resolve blueprint filter", "error", err)
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(startupCtx, cfg)
	startupCancel()
	if err != nil {
		slog.Error("failed to open blueprint store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	svc := service.NewBlueprintService(metrics.InstrumentStore(store, m), activeFilter)

	openapiHandler, err := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)
	if err != nil {
		slog.Error("failed to load OpenAPI document", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterDeps{
		Service:        svc,
		Storage:        store,
		StoreDriver:    cfg.StoreDriver,
		Version:        cfg.Version,
		OpenAPI:        openapiHandler,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting blueprints server",
			"port", cfg.Port,
			"version", cfg.Version,
			"driver", cfg.StoreDriver,
			"filter", cfg.Filter,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		closeStore()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		closeStore()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level, format string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var h slog.Handler
	if strings.ToLower(format) == "text" {
		h = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	}
	slog.SetDefault(slog.New(h))
}

// openStore builds the configured Store and a func releasing its resources.
func openStore(ctx context.Context, cfg *config.Config) (blueprint.Store, func(), error) {
	opts := []blueprint.Option{
		blueprint.WithBulkConcurrency(cfg.BulkConcurrency),
		blueprint.WithSchemaBootstrap(cfg.BootstrapSchema),
	}

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		store, err := blueprint.NewSQLiteStore(ctx, cfg.SQLitePath, opts...)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("sqlite storage initialized", "path", cfg.SQLitePath, "bootstrapSchema", cfg.BootstrapSchema)
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close sqlite store", "error", err)
			}
		}, nil

	default:
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.BootstrapSchema {
			if err := db.Exec(ctx, blueprint.PostgresSchema); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("bootstrapping schema: %w", err)
			}
		}
		slog.Info("postgres storage initialized", "maxConns", cfg.DBMaxConns, "bootstrapSchema", cfg.BootstrapSchema)
		return blueprint.NewPostgresStore(db.Pool(), opts...), db.Close, nil
	}
}
