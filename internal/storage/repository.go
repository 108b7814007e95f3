// Package storage keeps prepared chart snapshots in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moviechart/internal/movies"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("snapshot not found")

// SnapshotInfo describes one stored pipeline run.
type SnapshotInfo struct {
	ID        uuid.UUID    `json:"id"`
	Source    string       `json:"source"`
	Reason    string       `json:"reason,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	Stats     movies.Stats `json:"stats"`
}

// Snapshot is a stored run together with its chart data.
type Snapshot struct {
	SnapshotInfo
	Data movies.ChartData `json:"data"`
}

// NewSnapshot stamps a fresh ID on the result of a pipeline run.
func NewSnapshot(source, reason string, data movies.ChartData, stats movies.Stats, at time.Time) Snapshot {
	return Snapshot{
		SnapshotInfo: SnapshotInfo{
			ID:        uuid.New(),
			Source:    source,
			Reason:    reason,
			CreatedAt: at.UTC(),
			Stats:     stats,
		},
		Data: data,
	}
}

type SnapshotRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSnapshotRepository opens (creating if needed) the database at dbPath
// and applies pending migrations.
func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time; avoids SQLITE_BUSY between server and refresh
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveSnapshot stores s and all of its points in one transaction.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s Snapshot) error {
	if s.ID == uuid.Nil {
		return errors.New("snapshot has no ID")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	err = q.InsertSnapshot(ctx, snapshotRow{
		ID:        s.ID.String(),
		Source:    s.Source,
		Reason:    s.Reason,
		CreatedAt: s.CreatedAt.UnixNano(),
		Rows:      int64(s.Stats.Rows),
		Parsed:    int64(s.Stats.Parsed),
		Skipped:   int64(s.Stats.Skipped),
		Kept:      int64(s.Stats.Kept),
	})
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for _, series := range s.Data.Series {
		for _, p := range series.Values {
			err := q.InsertPoint(ctx, s.ID.String(), pointRow{
				Series: series.Name,
				Year:   int64(p.Date.Year()),
				Value:  p.Value.String(),
			})
			if err != nil {
				return fmt.Errorf("insert %s point %d: %w", series.Name, p.Date.Year(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"id", s.ID,
		"source", s.Source,
		"kept", s.Stats.Kept,
		"years", len(s.Data.Dates))

	return nil
}

// LatestSnapshot returns the most recent snapshot of source, or
// ErrNotFound.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context, source string) (Snapshot, error) {
	row, err := r.queries.GetLatestSnapshot(ctx, source)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}

	info, err := row.info()
	if err != nil {
		return Snapshot{}, err
	}

	points, err := r.queries.GetSnapshotPoints(ctx, row.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot points: %w", err)
	}
	data, err := chartFromPoints(points)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", row.ID, err)
	}
	info.Stats.Years = len(data.Dates)

	return Snapshot{SnapshotInfo: info, Data: data}, nil
}

// ListSnapshots returns up to limit snapshots, newest first, without their
// points. Years is not filled in.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.queries.ListSnapshots(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]SnapshotInfo, 0, len(rows))
	for _, row := range rows {
		info, err := row.info()
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (s snapshotRow) info() (SnapshotInfo, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot id %q: %w", s.ID, err)
	}
	return SnapshotInfo{
		ID:        id,
		Source:    s.Source,
		Reason:    s.Reason,
		CreatedAt: time.Unix(0, s.CreatedAt).UTC(),
		Stats: movies.Stats{
			Rows:    int(s.Rows),
			Parsed:  int(s.Parsed),
			Skipped: int(s.Skipped),
			Kept:    int(s.Kept),
		},
	}, nil
}

func chartFromPoints(points []pointRow) (movies.ChartData, error) {
	revenue := movies.YearlySum{}
	budget := movies.YearlySum{}
	for _, p := range points {
		v, err := decimal.NewFromString(p.Value)
		if err != nil {
			return movies.ChartData{}, fmt.Errorf("point %s/%d: %w", p.Series, p.Year, err)
		}
		switch p.Series {
		case movies.RevenueSeries:
			revenue[int(p.Year)] = v
		case movies.BudgetSeries:
			budget[int(p.Year)] = v
		default:
			return movies.ChartData{}, fmt.Errorf("unknown series %q", p.Series)
		}
	}
	return movies.NewChartData(revenue, budget), nil
}
