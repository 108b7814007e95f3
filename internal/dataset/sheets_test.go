package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValues struct {
	values [][]interface{}
	err    error
	gotID  string
	gotRng string
}

func (f *fakeValues) Get(_ context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	f.gotID, f.gotRng = spreadsheetID, readRange
	return f.values, f.err
}

func headerRow() []interface{} {
	cols := strings.Split(header, ",")
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func TestSheetsSource_Load(t *testing.T) {
	fake := &fakeValues{values: [][]interface{}{
		headerRow(),
		{237000000.0, "Action", `[{"id": 28, "name": "Action"}]`, "NA", 19995.0, "tt0499549", "en", "Overview",
			150.437577, "/p.jpg", `[]`, "2009-12-10", 2787965087.0, 162.0, "NA", "Avatar", 7.2, 11800.0},
		{},
		{1000.0, "Drama", `[]`, "NA", 7.0, "tt1", "en", "NA", 1.5, "NA", `[]`, "2004-01-02", 5000.0, 90.0, "NA", "Short row"},
	}}
	src := newSheetsSource(fake, "sheet-id", "movies!A:R")
	assert.Equal(t, "sheets:sheet-id/movies!A:R", src.Name())

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sheet-id", fake.gotID)
	assert.Equal(t, "movies!A:R", fake.gotRng)

	require.Len(t, recs, 2, "blank rows are skipped")
	assert.Equal(t, "237000000", recs[0].Budget)
	assert.Equal(t, "19995", recs[0].ID)
	assert.Equal(t, "150.437577", recs[0].Popularity)
	assert.Equal(t, "2787965087", recs[0].Revenue)
	assert.Equal(t, 2, recs[0].Line)

	assert.Equal(t, "Short row", recs[1].Title)
	assert.Equal(t, "", recs[1].VoteAverage)
	assert.Equal(t, "", recs[1].VoteCount)
	assert.Equal(t, 4, recs[1].Line)
}

func TestSheetsSource_Errors(t *testing.T) {
	_, err := newSheetsSource(&fakeValues{err: errors.New("quota exceeded")}, "id", "r").Load(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = newSheetsSource(&fakeValues{}, "id", "r").Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = newSheetsSource(&fakeValues{values: [][]interface{}{{"title", "budget"}}}, "id", "r").Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSheetsSource_SerialDates(t *testing.T) {
	fake := &fakeValues{values: [][]interface{}{
		headerRow(),
		{1000.0, "Drama", `[]`, "NA", 1.0, "tt1", "en", "NA", 1.5, "NA", `[]`, 36906.0, 5000.0, 90.0, "NA", "Serial", 6.0, 10.0},
		{1000.0, "Drama", `[]`, "NA", 2.0, "tt2", "en", "NA", 1.5, "NA", `[]`, 40157.75, 5000.0, 90.0, "NA", "With time", 6.0, 10.0},
		{1000.0, "Drama", `[]`, "NA", 3.0, "tt3", "en", "NA", 1.5, "NA", `[]`, "2004-01-02", 5000.0, 90.0, "NA", "Text", 6.0, 10.0},
	}}

	recs, err := newSheetsSource(fake, "id", "r").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2001-01-15", recs[0].ReleaseDate)
	assert.Equal(t, "2009-12-10", recs[1].ReleaseDate)
	assert.Equal(t, "2004-01-02", recs[2].ReleaseDate)
}

func TestSerialDate(t *testing.T) {
	assert.Equal(t, "1899-12-30", serialDate(0))
	assert.Equal(t, "1900-03-01", serialDate(61))
	assert.Equal(t, "2009-12-10", serialDate(40157.999))
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "NA", cellText("NA"))
	assert.Equal(t, "7.2", cellText(7.2))
	assert.Equal(t, "300000000", cellText(3e8))
	assert.Equal(t, "true", cellText(true))
	assert.Equal(t, "5", cellText(5))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(context.Background(), Config{Kind: KindCSV, Path: "movies.csv"})
	require.NoError(t, err)
	assert.Equal(t, "csv:movies.csv", src.Name())

	_, err = NewSource(context.Background(), Config{Kind: KindCSV})
	assert.Error(t, err)

	_, err = NewSource(context.Background(), Config{Kind: "postgres"})
	assert.ErrorContains(t, err, "unsupported data source")

	_, err = NewSource(context.Background(), Config{Kind: KindSheets, SpreadsheetID: "id", Range: "movies!A:R"})
	assert.ErrorContains(t, err, "missing service account credentials")

	assert.True(t, KindSheets.IsValid())
	assert.False(t, Kind("xlsx").IsValid())
}

func TestConfig_SourceName(t *testing.T) {
	// no credentials: the name is derived without contacting Sheets
	sheets := Config{Kind: KindSheets, SpreadsheetID: "sheet-id", Range: "movies!A:R"}
	name, err := sheets.SourceName()
	require.NoError(t, err)
	assert.Equal(t, newSheetsSource(&fakeValues{}, "sheet-id", "movies!A:R").Name(), name)

	name, err = Config{Kind: KindCSV, Path: "movies.csv"}.SourceName()
	require.NoError(t, err)
	assert.Equal(t, NewCSVSource("movies.csv").Name(), name)

	_, err = Config{Kind: "postgres"}.SourceName()
	assert.ErrorContains(t, err, "unsupported data source")
}
