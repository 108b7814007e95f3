package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviechart/internal/movies"
)

const header = "budget,genre,genres,homepage,id,imdb_id,original_language,overview,popularity,poster_path,production_countries,release_date,revenue,runtime,tagline,title,vote_average,vote_count"

const sampleCSV = header + `
237000000,Action,"[{""id"": 28, ""name"": ""Action""}]",http://www.avatarmovie.com/,19995,tt0499549,en,"A paraplegic Marine
is dispatched to Pandora.",150.437577,/kmcq.jpg,"[{""iso_3166_1"": ""US"", ""name"": ""United States of America""}]",2009-12-10,2787965087,162,Enter the World of Pandora.,Avatar,7.2,11800
300000000,Adventure,"[{""id"": 12, ""name"": ""Adventure""}]",NA,285,tt0449088,en,NA,139.082615,/jGc.jpg,"[]",2007-05-19,961000000,169,NA,Pirates of the Caribbean: At World's End,6.9,4500
`

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "237000000", recs[0].Budget)
	assert.Equal(t, "Avatar", recs[0].Title)
	assert.Equal(t, "A paraplegic Marine\nis dispatched to Pandora.", recs[0].Overview)
	assert.Equal(t, `[{"id": 28, "name": "Action"}]`, recs[0].Genres)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, 4, recs[1].Line, "multi-line field shifts the next row")
	assert.Equal(t, "NA", recs[1].Homepage)

	data, stats, err := movies.Prepare(recs, movies.PolicyFailFast)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, "2787965087", data.YMax.Decimal.String())
}

func TestReadCSV_ColumnOrderAndExtras(t *testing.T) {
	cols := strings.Split(header, ",")
	reordered := append([]string{"keywords"}, cols[len(cols)-1])
	reordered = append(reordered, cols[:len(cols)-1]...)

	row := map[string]string{"keywords": "space", "vote_count": "42", "title": "Moon"}
	values := make([]string, len(reordered))
	for i, c := range reordered {
		values[i] = row[c]
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	require.NoError(t, w.Write(reordered))
	require.NoError(t, w.Write(values))
	w.Flush()

	recs, err := ReadCSV(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "42", recs[0].VoteCount)
	assert.Equal(t, "Moon", recs[0].Title)
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	recs, err := ReadCSV(context.Background(), strings.NewReader("\ufeff"+sampleCSV))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("budget,revenue\n1,2\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "release_date")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	recs, err := ReadCSV(context.Background(), strings.NewReader(header+"\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadCSV_WrongFieldCount(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(header+"\n1,2,3\n"))
	require.Error(t, err)

	var perr *csv.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, err, csv.ErrFieldCount)
}

func TestReadCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	src := NewCSVSource(path)
	assert.Equal(t, "csv:"+path, src.Name())

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
