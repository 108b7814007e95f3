package movies

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(date, revenue, budget, genre, title string) RawRecord {
	r := validRaw()
	r.ReleaseDate = date
	r.Revenue = revenue
	r.Budget = budget
	r.Genre = genre
	r.Title = title
	return r
}

func sampleRaws() []RawRecord {
	return []RawRecord{
		raw("2001-03-02", "100", "40", "Action", "A"),
		raw("2001-11-30", "50", "10", "Drama", "B"),
		raw("2003-07-04", "200", "300", "Comedy", "C"),
		raw("1999-12-31", "999999", "1", "Action", "Too early"),
		raw("2010-01-01", "999999", "1", "Action", "Too late"),
		raw("2005-05-05", "0", "10", "Action", "No revenue"),
		raw("2005-05-05", "10", "0", "Action", "No budget"),
		raw("2005-05-05", "10", "10", "NA", "No genre"),
		raw("2005-05-05", "10", "10", "Action", "NA"),
	}
}

func TestPrepare_EndToEnd(t *testing.T) {
	data, stats, err := Prepare(sampleRaws(), PolicyFailFast)
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 9, Parsed: 9, Skipped: 0, Kept: 3, Years: 2}, stats)
	assert.Equal(t, map[int]string{2001: "150", 2003: "200"}, values(data.Series[0]))
	assert.Equal(t, map[int]string{2001: "50", 2003: "300"}, values(data.Series[1]))
	assert.Equal(t, "300", data.YMax.Decimal.String())
}

func TestPrepare_Deterministic(t *testing.T) {
	raws := sampleRaws()
	before := append([]RawRecord(nil), raws...)

	first, _, err := Prepare(raws, PolicyFailFast)
	require.NoError(t, err)
	second, _, err := Prepare(raws, PolicyFailFast)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, before, raws)
}

func TestPrepare_NoMatchingRecords(t *testing.T) {
	data, stats, err := Prepare([]RawRecord{raw("1980-01-01", "1", "1", "Action", "Old")}, PolicyFailFast)
	require.NoError(t, err)
	assert.True(t, data.Empty())
	assert.Equal(t, 0, stats.Kept)

	data, stats, err = Prepare(nil, PolicyFailFast)
	require.NoError(t, err)
	assert.True(t, data.Empty())
	assert.Equal(t, Stats{}, stats)
}

func TestParseAll_FailFast(t *testing.T) {
	raws := sampleRaws()
	raws[2].Revenue = "n/a"
	raws[2].Line = 4

	_, _, err := ParseAll(raws, PolicyFailFast)
	require.Error(t, err)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Index)
	assert.Equal(t, 4, rowErr.Line)
	assert.ErrorIs(t, err, ErrCoercion)
	assert.Contains(t, err.Error(), "row 3 (line 4)")

	_, _, err = Prepare(raws, PolicyFailFast)
	assert.ErrorIs(t, err, ErrCoercion)
}

func TestParseAll_SkipInvalid(t *testing.T) {
	raws := sampleRaws()
	raws[0].Genres = "not json"
	raws[4].ReleaseDate = "someday"

	typed, report, err := ParseAll(raws, PolicySkipInvalid)
	require.NoError(t, err)
	assert.Len(t, typed, len(raws)-2)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 0, report.Skipped[0].Index)
	assert.ErrorIs(t, report.Skipped[0], ErrDecode)
	assert.Equal(t, 4, report.Skipped[1].Index)
	assert.ErrorIs(t, report.Skipped[1], ErrInvalidDate)

	data, stats, err := Prepare(raws, PolicySkipInvalid)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 7, stats.Parsed)
	assert.Equal(t, map[int]string{2001: "50", 2003: "200"}, values(data.Series[0]))
}

func TestParsePolicyFromString(t *testing.T) {
	for in, want := range map[string]ParsePolicy{"": PolicyFailFast, "fail": PolicyFailFast, "SKIP": PolicySkipInvalid, " skip ": PolicySkipInvalid} {
		got, err := ParsePolicyFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePolicyFromString("ignore")
	assert.Error(t, err)
	assert.Equal(t, "skip", PolicySkipInvalid.String())
}
