package movies

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type genreEntry struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

type countryEntry struct {
	ISO3166_1 *string `json:"iso_3166_1"`
	Name      *string `json:"name"`
}

func decodeGenres(s string) ([]Genre, error) {
	entries, err := decodeArray[genreEntry](ColGenres, s)
	if err != nil {
		return nil, err
	}
	out := make([]Genre, 0, len(entries))
	for i, e := range entries {
		if e.ID == nil || e.Name == nil || *e.Name == "" {
			return nil, listError(ColGenres, s, fmt.Errorf("entry %d: id and name are required", i))
		}
		out = append(out, Genre{ID: *e.ID, Name: *e.Name})
	}
	return out, nil
}

func decodeCountries(s string) ([]Country, error) {
	entries, err := decodeArray[countryEntry](ColProductionCountries, s)
	if err != nil {
		return nil, err
	}
	out := make([]Country, 0, len(entries))
	for i, e := range entries {
		if e.ISO3166_1 == nil || *e.ISO3166_1 == "" || e.Name == nil || *e.Name == "" {
			return nil, listError(ColProductionCountries, s, fmt.Errorf("entry %d: iso_3166_1 and name are required", i))
		}
		out = append(out, Country{ISO3166_1: *e.ISO3166_1, Name: *e.Name})
	}
	return out, nil
}

// decodeArray accepts only a JSON array. Null elements decode to zero
// entries and are rejected by the callers' required-field checks.
func decodeArray[T any](field, s string) ([]*T, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, listError(field, s, errors.New("not a JSON array"))
	}
	var entries []*T
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, listError(field, s, err)
	}
	for i, e := range entries {
		if e == nil {
			entries[i] = new(T)
		}
	}
	return entries, nil
}

func listError(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
}
