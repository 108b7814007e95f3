// Package dataset loads raw movie rows from the configured source.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"moviechart/internal/movies"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no header row")
)

// Source yields every raw record of a dataset.
type Source interface {
	// Name identifies the dataset, e.g. "csv:./data/movies.csv".
	Name() string
	Load(ctx context.Context) ([]movies.RawRecord, error)
}

// Kind selects a Source implementation.
type Kind string

const (
	KindCSV    Kind = "csv"
	KindSheets Kind = "sheets"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindCSV, KindSheets:
		return true
	default:
		return false
	}
}

// Config holds what NewSource needs for either kind.
type Config struct {
	Kind Kind

	// csv
	Path string

	// sheets
	SpreadsheetID      string
	Range              string
	ServiceAccountFile string
	ServiceAccountJSON string
}

// SourceName returns the Name the Source built from cfg would report,
// without opening it.
func (c Config) SourceName() (string, error) {
	switch c.Kind {
	case KindCSV:
		return csvName(c.Path), nil
	case KindSheets:
		return sheetsName(c.SpreadsheetID, c.Range), nil
	default:
		return "", fmt.Errorf("unsupported data source: %q", c.Kind)
	}
}

// NewSource builds the Source selected by cfg.Kind.
func NewSource(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Kind {
	case KindCSV:
		if cfg.Path == "" {
			return nil, errors.New("csv source requires a path")
		}
		return NewCSVSource(cfg.Path), nil
	case KindSheets:
		return NewSheetsSource(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported data source: %q", cfg.Kind)
	}
}

// headerIndex maps column names to positions and checks that every
// column the pipeline reads is present.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range movies.Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumn, missing)
	}
	return index, nil
}

// recordFromRow builds a RawRecord from one row; cells beyond the end of a
// short row read as empty text.
func recordFromRow(index map[string]int, row []string, line int) movies.RawRecord {
	rec := movies.RawRecord{Line: line}
	for _, col := range movies.Columns {
		pos := index[col]
		value := ""
		if pos < len(row) {
			value = row[pos]
		}
		rec.Set(col, value)
	}
	return rec
}
