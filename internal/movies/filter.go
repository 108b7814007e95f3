package movies

// Keep reports whether a record belongs on the chart: released 2000-2009,
// positive revenue and budget, with a genre and a title.
func Keep(r TypedRecord) bool {
	return r.ReleaseYear >= FirstYear && r.ReleaseYear <= LastYear &&
		r.Revenue.IsPositive() &&
		r.Budget.IsPositive() &&
		r.Genre.Present() &&
		r.Title.Present()
}

// Filter returns the records accepted by Keep, in their original order.
// The input slice is not modified.
func Filter(records []TypedRecord) []TypedRecord {
	out := make([]TypedRecord, 0, len(records))
	for _, r := range records {
		if Keep(r) {
			out = append(out, r)
		}
	}
	return out
}
