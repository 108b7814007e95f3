package movies

// Column names of the dataset header.
const (
	ColBudget              = "budget"
	ColGenre               = "genre"
	ColGenres              = "genres"
	ColHomepage            = "homepage"
	ColID                  = "id"
	ColIMDbID              = "imdb_id"
	ColOriginalLanguage    = "original_language"
	ColOverview            = "overview"
	ColPopularity          = "popularity"
	ColPosterPath          = "poster_path"
	ColProductionCountries = "production_countries"
	ColReleaseDate         = "release_date"
	ColRevenue             = "revenue"
	ColRuntime             = "runtime"
	ColTagline             = "tagline"
	ColTitle               = "title"
	ColVoteAverage         = "vote_average"
	ColVoteCount           = "vote_count"
)

// Columns lists every column a source must provide.
var Columns = []string{
	ColBudget, ColGenre, ColGenres, ColHomepage, ColID, ColIMDbID,
	ColOriginalLanguage, ColOverview, ColPopularity, ColPosterPath,
	ColProductionCountries, ColReleaseDate, ColRevenue, ColRuntime,
	ColTagline, ColTitle, ColVoteAverage, ColVoteCount,
}

// Set assigns value to the field named by column. It reports false for
// columns the record does not carry.
func (r *RawRecord) Set(column, value string) bool {
	switch column {
	case ColBudget:
		r.Budget = value
	case ColGenre:
		r.Genre = value
	case ColGenres:
		r.Genres = value
	case ColHomepage:
		r.Homepage = value
	case ColID:
		r.ID = value
	case ColIMDbID:
		r.IMDbID = value
	case ColOriginalLanguage:
		r.OriginalLanguage = value
	case ColOverview:
		r.Overview = value
	case ColPopularity:
		r.Popularity = value
	case ColPosterPath:
		r.PosterPath = value
	case ColProductionCountries:
		r.ProductionCountries = value
	case ColReleaseDate:
		r.ReleaseDate = value
	case ColRevenue:
		r.Revenue = value
	case ColRuntime:
		r.Runtime = value
	case ColTagline:
		r.Tagline = value
	case ColTitle:
		r.Title = value
	case ColVoteAverage:
		r.VoteAverage = value
	case ColVoteCount:
		r.VoteCount = value
	default:
		return false
	}
	return true
}
