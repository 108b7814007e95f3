package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"moviechart/internal/movies"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesGetter is the slice of the Sheets API the source uses.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (v sheetsValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// SheetsSource reads the dataset from a Google Sheets range whose first row
// is the header. Date-formatted release_date cells arrive as serial numbers
// and are converted to ISO dates; text cells must already be ISO dates.
type SheetsSource struct {
	values        valuesGetter
	spreadsheetID string
	readRange     string
}

var _ Source = (*SheetsSource)(nil)

// NewSheetsSource authenticates with a service account and returns a
// source for cfg.SpreadsheetID and cfg.Range.
func NewSheetsSource(ctx context.Context, cfg Config) (*SheetsSource, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(cfg.Range) == "" {
		return nil, errors.New("missing sheet range")
	}

	var credentialsJSON []byte
	switch {
	case cfg.ServiceAccountJSON != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case cfg.ServiceAccountFile != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets source ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"range", cfg.Range)

	return newSheetsSource(sheetsValues{svc: svc}, cfg.SpreadsheetID, cfg.Range), nil
}

func newSheetsSource(values valuesGetter, spreadsheetID, readRange string) *SheetsSource {
	return &SheetsSource{values: values, spreadsheetID: spreadsheetID, readRange: readRange}
}

func (s *SheetsSource) Name() string {
	return sheetsName(s.spreadsheetID, s.readRange)
}

func sheetsName(spreadsheetID, readRange string) string {
	return fmt.Sprintf("sheets:%s/%s", spreadsheetID, readRange)
}

func (s *SheetsSource) Load(ctx context.Context) ([]movies.RawRecord, error) {
	values, err := s.values.Get(ctx, s.spreadsheetID, s.readRange)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.readRange, err)
	}
	return recordsFromValues(values)
}

// recordsFromValues converts a values matrix as returned by the Sheets API.
// Trailing empty cells are omitted by the API, so short rows are padded.
func recordsFromValues(values [][]interface{}) ([]movies.RawRecord, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}
	header := toStrings(values[0])
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	dateCol := index[movies.ColReleaseDate]

	out := make([]movies.RawRecord, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if dateCol < len(values[i]) {
			if serial, ok := values[i][dateCol].(float64); ok {
				row[dateCol] = serialDate(serial)
			}
		}
		if isBlank(row) {
			continue
		}
		out = append(out, recordFromRow(index, row, i+1))
	}
	return out, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellText(v)
	}
	return out
}

// cellText renders an unformatted cell value. Whole numbers print without
// a fractional part so that id and budget columns stay integral.
func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// sheetsEpoch is day zero of the spreadsheet serial date system.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialDate renders a serial day number as YYYY-MM-DD. The fractional
// time of day is dropped.
func serialDate(serial float64) string {
	days := int(math.Floor(serial))
	return sheetsEpoch.AddDate(0, 0, days).Format("2006-01-02")
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
