package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type snapshotRow struct {
	ID        string
	Source    string
	Reason    string
	CreatedAt int64
	Rows      int64
	Parsed    int64
	Skipped   int64
	Kept      int64
}

type pointRow struct {
	Series string
	Year   int64
	Value  string
}

const insertSnapshot = `
INSERT INTO snapshots (id, source, reason, created_at, "rows", parsed, skipped, kept)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertSnapshot(ctx context.Context, arg snapshotRow) error {
	_, err := q.db.ExecContext(ctx, insertSnapshot,
		arg.ID, arg.Source, arg.Reason, arg.CreatedAt,
		arg.Rows, arg.Parsed, arg.Skipped, arg.Kept)
	return err
}

const insertPoint = `
INSERT INTO snapshot_points (snapshot_id, series, year, value)
VALUES (?, ?, ?, ?)`

func (q *Queries) InsertPoint(ctx context.Context, snapshotID string, p pointRow) error {
	_, err := q.db.ExecContext(ctx, insertPoint, snapshotID, p.Series, p.Year, p.Value)
	return err
}

const selectSnapshotColumns = `SELECT id, source, reason, created_at, "rows", parsed, skipped, kept FROM snapshots`

const getLatestSnapshot = selectSnapshotColumns + `
WHERE source = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, source string) (snapshotRow, error) {
	row := q.db.QueryRowContext(ctx, getLatestSnapshot, source)
	var s snapshotRow
	err := row.Scan(&s.ID, &s.Source, &s.Reason, &s.CreatedAt, &s.Rows, &s.Parsed, &s.Skipped, &s.Kept)
	return s, err
}

const listSnapshots = selectSnapshotColumns + `
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

func (q *Queries) ListSnapshots(ctx context.Context, limit int64) ([]snapshotRow, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []snapshotRow
	for rows.Next() {
		var s snapshotRow
		if err := rows.Scan(&s.ID, &s.Source, &s.Reason, &s.CreatedAt, &s.Rows, &s.Parsed, &s.Skipped, &s.Kept); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSnapshotPoints = `
SELECT series, year, value FROM snapshot_points
WHERE snapshot_id = ?
ORDER BY series, year`

func (q *Queries) GetSnapshotPoints(ctx context.Context, snapshotID string) ([]pointRow, error) {
	rows, err := q.db.QueryContext(ctx, getSnapshotPoints, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []pointRow
	for rows.Next() {
		var p pointRow
		if err := rows.Scan(&p.Series, &p.Year, &p.Value); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
