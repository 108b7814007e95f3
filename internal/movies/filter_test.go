package movies

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func typed(year int, revenue, budget int64) TypedRecord {
	return TypedRecord{
		ReleaseDate: YearDate(year).AddDate(0, 5, 3),
		ReleaseYear: year,
		Revenue:     decimal.NewFromInt(revenue),
		Budget:      decimal.NewFromInt(budget),
		Genre:       Some("Drama"),
		Title:       Some("Untitled"),
	}
}

func TestKeep(t *testing.T) {
	cases := []struct {
		name string
		rec  TypedRecord
		want bool
	}{
		{"first year", typed(2000, 1, 1), true},
		{"last year", typed(2009, 1, 1), true},
		{"before window", typed(1999, 1, 1), false},
		{"after window", typed(2010, 1, 1), false},
		{"zero revenue", typed(2005, 0, 1), false},
		{"negative revenue", typed(2005, -5, 1), false},
		{"zero budget", typed(2005, 1, 0), false},
		{"absent genre", func() TypedRecord { r := typed(2005, 1, 1); r.Genre = None[string](); return r }(), false},
		{"absent title", func() TypedRecord { r := typed(2005, 1, 1); r.Title = None[string](); return r }(), false},
		{"empty genre text is present", func() TypedRecord { r := typed(2005, 1, 1); r.Genre = Some(""); return r }(), true},
		{"fractional money", func() TypedRecord {
			r := typed(2005, 0, 0)
			r.Revenue = decimal.RequireFromString("0.01")
			r.Budget = decimal.RequireFromString("0.01")
			return r
		}(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Keep(tc.rec))
		})
	}
}

func TestFilter_SubsetPreservesOrder(t *testing.T) {
	in := []TypedRecord{
		typed(2003, 10, 10),
		typed(1995, 10, 10),
		typed(2001, 20, 20),
		typed(2012, 10, 10),
		typed(2001, 0, 20),
		typed(2008, 30, 30),
	}
	snapshot := append([]TypedRecord(nil), in...)

	out := Filter(in)

	assert.Equal(t, []TypedRecord{in[0], in[2], in[5]}, out)
	assert.Equal(t, snapshot, in, "input must not be modified")
	for _, r := range out {
		assert.Equal(t, r.ReleaseDate.Year(), r.ReleaseYear)
	}
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(nil))
	assert.Empty(t, Filter([]TypedRecord{typed(1980, 1, 1)}))
}
