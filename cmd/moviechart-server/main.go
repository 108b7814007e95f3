package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moviechart/internal/cli"
	apphttp "moviechart/internal/http"
	applog "moviechart/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger(nil, applog.ComponentApp, os.Stdout).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp, os.Stdout)
	logger.Info("Starting moviechart-server", "source", cfg.DataSource, "port", cfg.Port)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()
	ctx = applog.NewContext(ctx, logger)

	store, err := cli.OpenSnapshotStore(cfg)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	} else {
		logger.Info("Snapshot storage disabled - SQLITE_DB_PATH is empty")
	}

	resultCache, cacheManager := cli.NewResultCache(cfg, logger, cfg.CacheTTL)
	defer cacheManager.Stop()

	svc, err := cli.NewChartService(ctx, cfg, cli.Deps{Store: store, Cache: resultCache})
	if err != nil {
		logger.Error("Failed to create chart service", "error", err)
		os.Exit(1)
	}

	opts := []apphttp.Option{apphttp.WithTrustedProxies(cfg.TrustedProxies...)}
	if store != nil {
		opts = append(opts, apphttp.WithReadinessCheck("storage", store.Ping))
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, opts...)

	// warm the cache; a failure here is reported by the first request
	if _, err := svc.LineChart(ctx); err != nil {
		logger.Warn("Initial chart preparation failed", "error", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited properly")
}
