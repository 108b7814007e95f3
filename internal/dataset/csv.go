package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"moviechart/internal/movies"
)

// CSVSource reads a comma-separated file whose first row is the header.
type CSVSource struct {
	path string
}

var _ Source = (*CSVSource)(nil)

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return csvName(s.path)
}

func csvName(path string) string {
	return "csv:" + path
}

func (s *CSVSource) Load(ctx context.Context) ([]movies.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return records, nil
}

// ReadCSV decodes a header row followed by data rows. Columns are matched
// by name, so their order is free and extra columns are ignored.
func ReadCSV(ctx context.Context, r io.Reader) ([]movies.RawRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var out []movies.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number already
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		out = append(out, recordFromRow(index, row, line))
	}
	return out, nil
}
