package feature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/cinematch/internal/domain/movie"
)

// Defaults applied by Extractor when its fields are zero.
const (
	DefaultCastLimit   = 3
	DefaultDirectorJob = "Director"
)

// Field names used in ParseError and metrics labels.
const (
	FieldGenres    = "genres"
	FieldKeywords  = "keywords"
	FieldCompanies = "production_companies"
	FieldCast      = "cast"
	FieldDirector  = "director"
)

// ExtractField decodes raw and joins the selected values with single spaces.
// With an empty key every list element is stringified whole and a non-list
// value is stringified as is; with a key the value must be a list.
// maxItems <= 0 disables truncation.
func ExtractField(raw, key string, maxItems int) (string, error) {
	v, err := Parse(raw)
	if err != nil {
		return "", err
	}

	list, ok := v.([]any)
	if !ok {
		if key != "" {
			return "", &ParseError{Err: fmt.Errorf("%w: not a list", ErrMalformed)}
		}
		return stringify(v), nil
	}
	if maxItems > 0 && len(list) > maxItems {
		list = list[:maxItems]
	}

	tokens := make([]string, 0, len(list))
	for _, item := range list {
		var tok string
		if key == "" {
			tok = stringify(item)
		} else if obj, isObj := item.(map[string]any); isObj {
			tok = stringify(obj[key])
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return strings.Join(tokens, " "), nil
}

// Extract is ExtractField with parse failures coerced to "".
func Extract(raw, key string, maxItems int) string {
	s, err := ExtractField(raw, key, maxItems)
	if err != nil {
		return ""
	}
	return s
}

// ExtractDirector keeps crew entries whose job equals the given label and
// joins their names. No match yields "" without error.
func ExtractDirector(raw, job string) (string, error) {
	v, err := Parse(raw)
	if err != nil {
		return "", err
	}
	list, ok := v.([]any)
	if !ok {
		return "", &ParseError{Err: fmt.Errorf("%w: crew is not a list", ErrMalformed)}
	}

	var names []string
	for _, item := range list {
		obj, isObj := item.(map[string]any)
		if !isObj || stringify(obj["job"]) != job {
			continue
		}
		if name := strings.TrimSpace(stringify(obj["name"])); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " "), nil
}

// Director is ExtractDirector with parse failures coerced to "".
func Director(raw, job string) string {
	s, err := ExtractDirector(raw, job)
	if err != nil {
		return ""
	}
	return s
}

// Extractor derives movie.Features from a Movie's categorical fields.
type Extractor struct {
	CastLimit   int
	DirectorJob string
}

// Extract builds the features of m. Field-level failures degrade that field to
// "" and are returned for accounting only. Absent fields degrade silently.
func (e Extractor) Extract(m *movie.Movie) (movie.Features, []error) {
	castLimit := e.CastLimit
	if castLimit <= 0 {
		castLimit = DefaultCastLimit
	}
	job := e.DirectorJob
	if job == "" {
		job = DefaultDirectorJob
	}

	var errs []error
	field := func(name, s string, err error) string {
		if err != nil {
			if errors.Is(err, ErrAbsent) {
				return ""
			}
			var pe *ParseError
			if errors.As(err, &pe) {
				errs = append(errs, &ParseError{Field: name, Err: pe.Err})
			} else {
				errs = append(errs, &ParseError{Field: name, Err: err})
			}
			return ""
		}
		return s
	}

	var f movie.Features
	s, err := ExtractField(m.RawGenres(), "name", 0)
	f.Genres = field(FieldGenres, s, err)
	s, err = ExtractField(m.RawKeywords(), "name", 0)
	f.Keywords = field(FieldKeywords, s, err)
	s, err = ExtractField(m.RawCompanies(), "name", 0)
	f.Companies = field(FieldCompanies, s, err)
	s, err = ExtractField(m.RawCast(), "name", castLimit)
	f.Cast = field(FieldCast, s, err)
	s, err = ExtractDirector(m.RawCrew(), job)
	f.Director = field(FieldDirector, s, err)

	return f, errs
}
