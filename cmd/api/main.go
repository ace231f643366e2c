package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goldstore/storefront/api"
	"github.com/goldstore/storefront/api/routes"
	"github.com/goldstore/storefront/internal/notify"
	"github.com/goldstore/storefront/internal/session"
	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/db"
	"github.com/goldstore/storefront/pkg/instance"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/migrate"
	"github.com/goldstore/storefront/pkg/redis"
	"github.com/goldstore/storefront/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer closeBackend()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := session.NewRegistry(backend, session.Options{
		Storage: cfg.Storage,
		Session: cfg.Session,
		Order:   cfg.Order,
		Auth:    cfg.Auth,
		Notifier: notify.Fanout{
			notify.NewLogNotifier(logg),
			notify.ContextNotifier{},
		},
		Logger:  logg,
		Metrics: metrics.NewStoreMetrics(reg),
	})
	go registry.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"driver":   cfg.Storage.NormalizedDriver(),
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, routes.NewRouter(cfg, logg, registry, backend, reg))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), api.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

// openStorage builds the configured backend and returns its closer.
func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Storage, func(), error) {
	switch driver := cfg.Storage.NormalizedDriver(); driver {
	case config.StorageDriverMemory:
		logg.Warn(ctx, "memory storage selected; client state is lost on restart")
		return storage.NewMemory(), func() {}, nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(client, cfg.Redis.StateTTL), func() {
			if err := client.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}, nil

	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			closer()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return storage.NewSQL(client.DB(), client), closer, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
