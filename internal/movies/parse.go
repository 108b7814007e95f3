package movies

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// FieldError describes a field that could not be converted.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	v := e.Value
	if len(v) > 64 {
		cut := 64
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut] + "..."
	}
	return fmt.Sprintf("field %s: %q: %v", e.Field, v, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Parse converts one raw row into a TypedRecord. Numeric fields must hold
// finite numbers, release_date must be YYYY-MM-DD and the list fields must
// be JSON arrays of well-formed entries.
func Parse(r RawRecord) (TypedRecord, error) {
	var (
		t   TypedRecord
		err error
	)

	if t.Budget, err = parseDecimal(ColBudget, r.Budget); err != nil {
		return TypedRecord{}, err
	}
	if t.Revenue, err = parseDecimal(ColRevenue, r.Revenue); err != nil {
		return TypedRecord{}, err
	}
	if t.ID, err = parseInt(ColID, r.ID); err != nil {
		return TypedRecord{}, err
	}
	if t.VoteCount, err = parseInt(ColVoteCount, r.VoteCount); err != nil {
		return TypedRecord{}, err
	}
	if t.Popularity, err = parseFloat(ColPopularity, r.Popularity); err != nil {
		return TypedRecord{}, err
	}
	if t.Runtime, err = parseFloat(ColRuntime, r.Runtime); err != nil {
		return TypedRecord{}, err
	}
	if t.VoteAverage, err = parseFloat(ColVoteAverage, r.VoteAverage); err != nil {
		return TypedRecord{}, err
	}

	if t.ReleaseDate, err = parseDate(ColReleaseDate, r.ReleaseDate); err != nil {
		return TypedRecord{}, err
	}
	t.ReleaseYear = t.ReleaseDate.Year()

	if t.Genres, err = decodeGenres(r.Genres); err != nil {
		return TypedRecord{}, err
	}
	if t.ProductionCountries, err = decodeCountries(r.ProductionCountries); err != nil {
		return TypedRecord{}, err
	}

	t.Genre = ParseNA(r.Genre)
	t.Homepage = ParseNA(r.Homepage)
	t.IMDbID = ParseNA(r.IMDbID)
	t.OriginalLanguage = ParseNA(r.OriginalLanguage)
	t.Overview = ParseNA(r.Overview)
	t.PosterPath = ParseNA(r.PosterPath)
	t.Tagline = ParseNA(r.Tagline)
	t.Title = ParseNA(r.Title)

	return t, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &FieldError{Field: field, Value: s, Err: fmt.Errorf("%w: %v", ErrCoercion, err)}
	}
	return d, nil
}

func parseFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: s, Err: fmt.Errorf("%w: %v", ErrCoercion, err)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Field: field, Value: s, Err: fmt.Errorf("%w: not finite", ErrCoercion)}
	}
	return f, nil
}

func parseInt(field, s string) (int64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: s, Err: fmt.Errorf("%w: %v", ErrCoercion, err)}
	}
	return i, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Value: s, Err: fmt.Errorf("%w: %v", ErrInvalidDate, err)}
	}
	return t, nil
}
