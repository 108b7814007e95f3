// Package cli provides the initialization shared by cmd/moviechart,
// cmd/moviechart-server and cmd/moviechart-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moviechart/internal/amqp"
	"moviechart/internal/cache"
	"moviechart/internal/config"
	"moviechart/internal/dataset"
	applog "moviechart/internal/log"
	"moviechart/internal/movies"
	"moviechart/internal/services"
	"moviechart/internal/storage"
	"moviechart/internal/worker"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg, writing to out, and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Component = component
	lc.Output = out
	if cfg != nil {
		if level, err := applog.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = level
		}
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// DatasetConfig maps the environment configuration onto a source config.
func DatasetConfig(cfg *config.Config) dataset.Config {
	return dataset.Config{
		Kind:               dataset.Kind(cfg.DataSource),
		Path:               cfg.DatasetPath,
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		Range:              cfg.GoogleSheetRange,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}
}

// WorkerConfig maps the environment configuration onto the refresh worker.
func WorkerConfig(cfg *config.Config) worker.Config {
	return worker.Config{
		CheckInterval: cfg.RefreshCheckInterval,
		MaxAge:        cfg.SnapshotMaxAge,
	}
}

// OpenSnapshotStore opens the SQLite store, or returns nil when
// SQLITE_DB_PATH is empty.
func OpenSnapshotStore(cfg *config.Config) (*storage.SnapshotRepository, error) {
	if cfg.SQLiteDBPath == "" {
		return nil, nil
	}
	repo, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store %s: %w", cfg.SQLiteDBPath, err)
	}
	return repo, nil
}

// ConnectAMQP connects to the broker, or returns nil when AMQP_URL is empty.
func ConnectAMQP(cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect AMQP: %w", err)
	}
	return client, nil
}

// Deps are the optional collaborators of a chart service. Nil fields are
// left out.
type Deps struct {
	Store *storage.SnapshotRepository
	Cache *cache.LRUCache[services.Result]
}

// NewChartService builds the source named by cfg and wraps it in a
// ChartService.
func NewChartService(ctx context.Context, cfg *config.Config, deps Deps) (*services.ChartService, error) {
	policy, err := movies.ParsePolicyFromString(cfg.ParseErrorPolicy)
	if err != nil {
		return nil, err
	}
	source, err := dataset.NewSource(ctx, DatasetConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create data source: %w", err)
	}

	// typed nils must not reach the interfaces
	var (
		resultCache cache.Cache[services.Result]
		store       services.SnapshotStore
	)
	if deps.Cache != nil {
		resultCache = deps.Cache
	}
	if deps.Store != nil {
		store = deps.Store
	}

	return services.NewChartService(source, policy, resultCache, store), nil
}

// NewResultCache builds the chart cache from cfg and registers it with a
// cleanup manager running every cleanupInterval.
func NewResultCache(cfg *config.Config, logger *applog.Logger, cleanupInterval time.Duration) (*cache.LRUCache[services.Result], *cache.Manager) {
	c := cache.NewLRUCache[services.Result](cfg.CacheSize, cfg.CacheTTL)
	m := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	m.Register(c)
	m.StartCleanup(cleanupInterval)
	return c, m
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
