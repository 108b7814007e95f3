package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"moviechart/internal/amqp"
	"moviechart/internal/cache"
	"moviechart/internal/dataset"
	applog "moviechart/internal/log"
	"moviechart/internal/movies"
	"moviechart/internal/storage"
)

var ErrNoPublisher = errors.New("no refresh publisher configured")

// SnapshotStore persists the result of each refresh.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s storage.Snapshot) error
}

// RefreshPublisher hands refresh requests to a worker.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, msg *amqp.RefreshMessage) error
}

// Result is one prepared chart.
type Result struct {
	Data       movies.ChartData
	Stats      movies.Stats
	PreparedAt time.Time
}

// ChartService prepares chart data from a dataset source, caching the
// result and optionally recording every refresh.
type ChartService struct {
	source dataset.Source
	policy movies.ParsePolicy
	cache  cache.Cache[Result]
	store  SnapshotStore
	now    func() time.Time

	// one pipeline run at a time
	mu sync.Mutex
}

// NewChartService wires the service. cache and store may be nil.
func NewChartService(
	source dataset.Source,
	policy movies.ParsePolicy,
	resultCache cache.Cache[Result],
	store SnapshotStore,
) *ChartService {
	return &ChartService{
		source: source,
		policy: policy,
		cache:  resultCache,
		store:  store,
		now:    time.Now,
	}
}

// SourceName identifies the dataset the service reads.
func (s *ChartService) SourceName() string {
	return s.source.Name()
}

// LineChart returns the cached chart, running the pipeline on a miss.
func (s *ChartService) LineChart(ctx context.Context) (Result, error) {
	if r, ok := s.cached(); ok {
		return r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// filled while waiting for the lock
	if r, ok := s.cached(); ok {
		return r, nil
	}

	r, err := s.run(ctx)
	if err != nil {
		return Result{}, err
	}
	s.remember(r)
	return r, nil
}

// Refresh reruns the pipeline regardless of the cache, stores a snapshot
// when a store is configured and replaces the cached result.
func (s *ChartService) Refresh(ctx context.Context, reason string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.run(ctx)
	if err != nil {
		return Result{}, err
	}

	if s.store != nil {
		snap := storage.NewSnapshot(s.source.Name(), reason, r.Data, r.Stats, r.PreparedAt)
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			return Result{}, fmt.Errorf("save snapshot: %w", err)
		}
	}

	s.remember(r)
	return r, nil
}

// HandleRefresh serves a refresh request received from the queue.
// Requests for another source are acknowledged and ignored.
func (s *ChartService) HandleRefresh(ctx context.Context, msg *amqp.RefreshMessage) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)

	if msg.Source != "" && msg.Source != s.source.Name() {
		logger.WarnContext(ctx, "Ignoring refresh for another source",
			applog.FieldMessageID, msg.ID,
			applog.FieldSource, msg.Source,
			"served_source", s.source.Name())
		return nil
	}

	reason := msg.Reason
	if reason == "" {
		reason = "amqp:" + msg.ID.String()
	}
	if _, err := s.Refresh(ctx, reason); err != nil {
		return fmt.Errorf("refresh %s: %w", msg.ID, err)
	}
	return nil
}

// RequestRefresh publishes a refresh request for source. It needs only the
// source name, so the dataset is never opened.
func RequestRefresh(ctx context.Context, publisher RefreshPublisher, source, reason string) (*amqp.RefreshMessage, error) {
	if publisher == nil {
		return nil, ErrNoPublisher
	}
	msg := amqp.NewRefreshMessage(source, reason)
	if err := publisher.PublishRefresh(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ChartService) run(ctx context.Context) (Result, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentPipeline)
	start := s.now()

	raws, err := s.source.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load dataset",
			applog.NewFields().WithSource(s.source.Name()).WithError(err).ToSlice()...)
		return Result{}, fmt.Errorf("load %s: %w", s.source.Name(), err)
	}

	data, stats, err := movies.Prepare(raws, s.policy)
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline failed",
			applog.NewFields().WithSource(s.source.Name()).WithError(err).ToSlice()...)
		return Result{}, err
	}

	logger.InfoContext(ctx, "Chart prepared",
		applog.NewFields().
			WithSource(s.source.Name()).
			WithPipelineStats(stats.Rows, stats.Parsed, stats.Skipped, stats.Kept, stats.Years).
			ToSlice()...)

	return Result{Data: data, Stats: stats, PreparedAt: start.UTC()}, nil
}

func (s *ChartService) cached() (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	return s.cache.Get(s.source.Name())
}

func (s *ChartService) remember(r Result) {
	if s.cache != nil {
		s.cache.Set(s.source.Name(), r)
	}
}
