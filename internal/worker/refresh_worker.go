// Package worker recomputes chart snapshots on request and on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"moviechart/internal/amqp"
	applog "moviechart/internal/log"
	"moviechart/internal/services"
	"moviechart/internal/storage"
)

// Consumer delivers refresh requests until ctx is done.
type Consumer interface {
	ConsumeRefresh(ctx context.Context, handler amqp.Handler) error
}

// Refresher recomputes the chart of one source.
type Refresher interface {
	SourceName() string
	Refresh(ctx context.Context, reason string) (services.Result, error)
	HandleRefresh(ctx context.Context, msg *amqp.RefreshMessage) error
}

// SnapshotReader finds the newest stored snapshot of a source.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, source string) (storage.Snapshot, error)
}

type Config struct {
	// Interval between scheduled staleness checks. Zero disables them.
	CheckInterval time.Duration
	// Snapshots older than MaxAge are recomputed.
	MaxAge time.Duration
}

// RefreshWorker consumes refresh requests and keeps the stored snapshot
// from going stale when messages are lost.
type RefreshWorker struct {
	consumer  Consumer
	refresher Refresher
	snapshots SnapshotReader
	config    Config
	now       func() time.Time
}

// NewRefreshWorker wires a worker. snapshots may be nil, in which case
// every check refreshes.
func NewRefreshWorker(consumer Consumer, refresher Refresher, snapshots SnapshotReader, config Config) *RefreshWorker {
	return &RefreshWorker{
		consumer:  consumer,
		refresher: refresher,
		snapshots: snapshots,
		config:    config,
		now:       time.Now,
	}
}

// Run performs a startup check, then consumes messages and runs the
// scheduled checks until ctx is cancelled or consumption fails.
func (w *RefreshWorker) Run(ctx context.Context) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)

	logger.InfoContext(ctx, "Performing startup refresh check...")
	if _, err := w.RefreshIfStale(ctx, "startup"); err != nil {
		// keep consuming; the next request or check retries
		logger.ErrorContext(ctx, "Startup refresh check failed", "error", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.consumer.ConsumeRefresh(gCtx, w.refresher.HandleRefresh)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("consume refresh requests: %w", err)
		}
		return nil
	})

	if w.config.CheckInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.config.CheckInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					if _, err := w.RefreshIfStale(gCtx, "scheduled"); err != nil {
						logger.ErrorContext(gCtx, "Scheduled refresh failed", "error", err)
					}
				}
			}
		})
	}

	return g.Wait()
}

// RefreshIfStale recomputes the chart when no snapshot exists or the newest
// one is older than MaxAge. It reports whether a refresh ran.
func (w *RefreshWorker) RefreshIfStale(ctx context.Context, reason string) (bool, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)
	source := w.refresher.SourceName()

	if w.snapshots != nil {
		latest, err := w.snapshots.LatestSnapshot(ctx, source)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			logger.InfoContext(ctx, "No snapshot stored yet", applog.FieldSource, source)
		case err != nil:
			return false, fmt.Errorf("latest snapshot: %w", err)
		default:
			age := w.now().Sub(latest.CreatedAt)
			if age <= w.config.MaxAge {
				logger.InfoContext(ctx, "Snapshot is fresh",
					applog.FieldSource, source,
					applog.FieldSnapshotID, latest.ID,
					"age", age.Round(time.Second))
				return false, nil
			}
			logger.InfoContext(ctx, "Snapshot is stale, refreshing",
				applog.FieldSource, source,
				applog.FieldSnapshotID, latest.ID,
				"age", age.Round(time.Second))
		}
	}

	r, err := w.refresher.Refresh(ctx, reason)
	if err != nil {
		return false, fmt.Errorf("refresh %s: %w", source, err)
	}
	logger.InfoContext(ctx, "Refresh completed",
		applog.FieldSource, source,
		"reason", reason,
		applog.FieldKept, r.Stats.Kept,
		applog.FieldYears, r.Stats.Years)
	return true, nil
}
