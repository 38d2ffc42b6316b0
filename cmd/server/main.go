package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/catalog"
	"github.com/hongminglow/mediavault/internal/config"
	"github.com/hongminglow/mediavault/internal/http/middleware"
	"github.com/hongminglow/mediavault/internal/jobs"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/media"
	"github.com/hongminglow/mediavault/internal/metrics"
	"github.com/hongminglow/mediavault/internal/server"
	"github.com/hongminglow/mediavault/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	files := media.NewRouter(cfg.StorageRoot, media.WithMaxBytes(cfg.MaxUploadBytes))
	cat := catalog.NewService(store.Assets, files, logger, catalog.WithObserver(m))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, auth.SessionTTL)
	authSvc := auth.NewService(auth.NewCredentialStore(store.Users), tokens, store.Sessions, logger)
	gate := middleware.NewGate(tokens, auth.NewResolver(store.Users), logger, m)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddDiskUsageRefresh(cfg.DiskUsageSchedule, files, m); err != nil {
		return err
	}
	// seed the gauge so /metrics is meaningful before the first tick
	if err := jobs.RefreshDiskUsage(ctx, files, m); err != nil {
		logger.Warn(ctx, "initial disk usage measurement failed", "err", err)
	}

	srv := server.New(cfg, server.Deps{
		Auth:    authSvc,
		Catalog: cat,
		Gate:    gate,
		Metrics: m,
		DB:      store,
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "mediavault listening", "addr", cfg.HTTPAddress(), "storage_root", files.Root())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
