package main

import (
	"context"
	"os"

	"moviechart/internal/cli"
	applog "moviechart/internal/log"
	"moviechart/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger(nil, applog.ComponentWorker, os.Stdout).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker, os.Stdout)
	logger.Info("Starting moviechart-worker", "source", cfg.DataSource, "queue", cfg.AMQPQueue)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()
	ctx = applog.NewContext(ctx, logger)

	store, err := cli.OpenSnapshotStore(cfg)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	client, err := cli.ConnectAMQP(cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	svc, err := cli.NewChartService(ctx, cfg, cli.Deps{Store: store})
	if err != nil {
		logger.Error("Failed to create chart service", "error", err)
		os.Exit(1)
	}

	var w *worker.RefreshWorker
	if store != nil {
		defer store.Close()
		w = worker.NewRefreshWorker(client, svc, store, cli.WorkerConfig(cfg))
	} else {
		logger.Warn("Snapshot storage disabled - refreshes will not be persisted")
		w = worker.NewRefreshWorker(client, svc, nil, worker.Config{})
	}

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
