package movies

import (
	"fmt"
	"strings"
)

// ParsePolicy decides what ParseAll does with a row that fails to parse.
type ParsePolicy int

const (
	// PolicyFailFast aborts the whole batch at the first bad row.
	PolicyFailFast ParsePolicy = iota
	// PolicySkipInvalid drops bad rows and reports them.
	PolicySkipInvalid
)

func (p ParsePolicy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail"
	case PolicySkipInvalid:
		return "skip"
	default:
		return fmt.Sprintf("ParsePolicy(%d)", int(p))
	}
}

// ParsePolicyFromString accepts "fail" or "skip".
func ParsePolicyFromString(s string) (ParsePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "":
		return PolicyFailFast, nil
	case "skip":
		return PolicySkipInvalid, nil
	default:
		return 0, fmt.Errorf("unknown parse policy %q: must be fail or skip", s)
	}
}

// RowError ties a parse failure to its row.
type RowError struct {
	Index int // 0-based position in the batch
	Line  int // source line, 0 if unknown
	Err   error
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d (line %d): %v", e.Index+1, e.Line, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Index+1, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParseReport lists the rows dropped under PolicySkipInvalid.
type ParseReport struct {
	Skipped []*RowError
}

// ParseAll parses every row according to policy.
func ParseAll(raws []RawRecord, policy ParsePolicy) ([]TypedRecord, ParseReport, error) {
	var report ParseReport
	out := make([]TypedRecord, 0, len(raws))
	for i, raw := range raws {
		t, err := Parse(raw)
		if err != nil {
			rowErr := &RowError{Index: i, Line: raw.Line, Err: err}
			if policy == PolicyFailFast {
				return nil, report, rowErr
			}
			report.Skipped = append(report.Skipped, rowErr)
			continue
		}
		out = append(out, t)
	}
	return out, report, nil
}

// Stats counts what happened to the rows of one Prepare call.
type Stats struct {
	Rows    int `json:"rows"`
	Parsed  int `json:"parsed"`
	Skipped int `json:"skipped"`
	Kept    int `json:"kept"`
	Years   int `json:"years"`
}

// Prepare runs the whole pass over raws. An empty result is not an error;
// check ChartData.Empty.
func Prepare(raws []RawRecord, policy ParsePolicy) (ChartData, Stats, error) {
	stats := Stats{Rows: len(raws)}

	typed, report, err := ParseAll(raws, policy)
	if err != nil {
		return ChartData{}, stats, fmt.Errorf("parse: %w", err)
	}
	stats.Parsed = len(typed)
	stats.Skipped = len(report.Skipped)

	kept := Filter(typed)
	stats.Kept = len(kept)

	data := Aggregate(kept)
	stats.Years = len(data.Dates)
	return data, stats, nil
}
