// Package movies turns raw movie dataset rows into the revenue and budget
// series of the yearly line chart.
//
// The pass is Parse -> Filter -> Aggregate. Every step is a pure function
// of its input; nothing here performs I/O.
package movies

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Years kept by Filter, inclusive.
const (
	FirstYear = 2000
	LastYear  = 2009
)

// Series names and colors, in output order.
const (
	RevenueSeries = "Revenue"
	RevenueColor  = "dodgerblue"
	BudgetSeries  = "Budget"
	BudgetColor   = "darkorange"
)

type (
	// RawRecord is one untyped row of the movie dataset.
	RawRecord struct {
		Budget              string
		Genre               string
		Genres              string
		Homepage            string
		ID                  string
		IMDbID              string
		OriginalLanguage    string
		Overview            string
		Popularity          string
		PosterPath          string
		ProductionCountries string
		ReleaseDate         string
		Revenue             string
		Runtime             string
		Tagline             string
		Title               string
		VoteAverage         string
		VoteCount           string

		// Line is the 1-based position of the row in its source, 0 if unknown.
		Line int
	}

	Genre struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Country struct {
		ISO3166_1 string `json:"iso_3166_1"`
		Name      string `json:"name"`
	}

	// TypedRecord is a RawRecord after coercion and derived-field computation.
	TypedRecord struct {
		Budget              decimal.Decimal
		Genre               Optional[string]
		Genres              []Genre
		Homepage            Optional[string]
		ID                  int64
		IMDbID              Optional[string]
		OriginalLanguage    Optional[string]
		Overview            Optional[string]
		Popularity          float64
		PosterPath          Optional[string]
		ProductionCountries []Country
		ReleaseDate         time.Time
		ReleaseYear         int
		Revenue             decimal.Decimal
		Runtime             float64
		Tagline             Optional[string]
		Title               Optional[string]
		VoteAverage         float64
		VoteCount           int64
	}

	// YearlySum maps a release year to the total of one numeric field.
	YearlySum map[int]decimal.Decimal

	// YearTotal is one entry of a YearlySum.
	YearTotal struct {
		Year  int
		Total decimal.Decimal
	}

	ChartPoint struct {
		Date  time.Time       `json:"date"`
		Value decimal.Decimal `json:"value"`
	}

	// ChartSeries is a named, colored sequence of points ordered by year.
	ChartSeries struct {
		Name   string       `json:"name"`
		Color  string       `json:"color"`
		Values []ChartPoint `json:"values"`
	}

	// ChartData is everything a renderer needs to draw the line chart.
	// YMax is invalid when no record survived filtering.
	ChartData struct {
		Series []ChartSeries
		Dates  []time.Time
		YMax   decimal.NullDecimal
	}
)

var (
	ErrCoercion    = errors.New("not a number")
	ErrInvalidDate = errors.New("invalid date")
	ErrDecode      = errors.New("malformed list")
)

// Empty reports whether the chart has nothing to draw.
func (d ChartData) Empty() bool {
	return !d.YMax.Valid
}

// SeriesByName returns the series with the given name.
func (d ChartData) SeriesByName(name string) (ChartSeries, bool) {
	for _, s := range d.Series {
		if s.Name == name {
			return s, true
		}
	}
	return ChartSeries{}, false
}

// YearDate returns January 1st of year, UTC.
func YearDate(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
