package movie

import "strings"

// Raw is a movie row as delivered by a dataset source.
// Categorical fields hold the dataset's encoded list-of-objects text verbatim.
type Raw struct {
	ID                  int
	Title               string
	Genres              string
	Keywords            string
	ProductionCompanies string
	Cast                string
	Crew                string
	Rating              *float64
	ReleaseDate         string
	Overview            string
	PosterPath          string
	Homepage            string
}

// Movie is an immutable catalog entry.
type Movie struct {
	id          int
	title       string
	genres      string
	keywords    string
	companies   string
	cast        string
	crew        string
	rating      *float64
	releaseDate string
	overview    string
	posterPath  string
	homepage    string
}

// FromRaw converts a dataset row into a Movie.
func FromRaw(r Raw) Movie {
	m := Movie{
		id:          r.ID,
		title:       strings.TrimSpace(r.Title),
		genres:      r.Genres,
		keywords:    r.Keywords,
		companies:   r.ProductionCompanies,
		cast:        r.Cast,
		crew:        r.Crew,
		releaseDate: strings.TrimSpace(r.ReleaseDate),
		overview:    r.Overview,
		posterPath:  strings.TrimSpace(r.PosterPath),
		homepage:    strings.TrimSpace(r.Homepage),
	}
	if r.Rating != nil {
		v := *r.Rating
		m.rating = &v
	}
	return m
}

// ID returns the dataset identifier.
func (m *Movie) ID() int { return m.id }

// Title returns the display title. Titles are not unique.
func (m *Movie) Title() string { return m.title }

// RawGenres returns the encoded genres list.
func (m *Movie) RawGenres() string { return m.genres }

// RawKeywords returns the encoded keywords list.
func (m *Movie) RawKeywords() string { return m.keywords }

// RawCompanies returns the encoded production companies list.
func (m *Movie) RawCompanies() string { return m.companies }

// RawCast returns the encoded cast list in billing order.
func (m *Movie) RawCast() string { return m.cast }

// RawCrew returns the encoded crew list.
func (m *Movie) RawCrew() string { return m.crew }

// Rating returns the average vote, nil when unknown.
func (m *Movie) Rating() *float64 {
	if m.rating == nil {
		return nil
	}
	v := *m.rating
	return &v
}

// ReleaseDate returns the release date as found in the dataset (YYYY-MM-DD).
func (m *Movie) ReleaseDate() string { return m.releaseDate }

// Year returns the first four characters of the release date, or "".
func (m *Movie) Year() string {
	if len(m.releaseDate) < 4 {
		return ""
	}
	return m.releaseDate[:4]
}

// Overview returns the plot summary.
func (m *Movie) Overview() string { return m.overview }

// PosterPath returns the poster path relative to the image CDN.
func (m *Movie) PosterPath() string { return m.posterPath }

// Homepage returns the movie homepage URL, or "".
func (m *Movie) Homepage() string { return m.homepage }

// Features is the derived categorical profile of one movie.
// Each field is a space-joined token string; Document concatenates them.
type Features struct {
	Genres    string
	Keywords  string
	Companies string
	Cast      string
	Director  string
}

// Document returns the feature document in fixed order:
// genres, keywords, companies, cast, director.
func (f Features) Document() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{f.Genres, f.Keywords, f.Companies, f.Cast, f.Director} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
