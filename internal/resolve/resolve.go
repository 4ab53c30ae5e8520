// Package resolve maps free-text queries onto known titles by approximate
// string matching.
package resolve

import (
	"errors"
	"sort"
)

// ErrNoCandidates is returned when there is nothing to match against.
var ErrNoCandidates = errors.New("no candidate titles")

// Match is a scored candidate. Index is its position in the candidate list.
type Match struct {
	Index      int
	Title      string
	Confidence int
}

// Index holds candidate titles with their normalized forms computed once.
type Index struct {
	titles   []string
	prepared []text
}

// NewIndex prepares titles for repeated matching. Order is preserved.
func NewIndex(titles []string) *Index {
	idx := &Index{
		titles:   append([]string(nil), titles...),
		prepared: make([]text, len(titles)),
	}
	for i, t := range titles {
		idx.prepared[i] = prepare(t)
	}
	return idx
}

// Len returns the number of candidates.
func (x *Index) Len() int { return len(x.titles) }

// Resolve returns the best scoring candidate. Ties go to the earliest one.
// Any non-empty index yields a match; Confidence tells how good it is.
func (x *Index) Resolve(query string) (Match, error) {
	if len(x.titles) == 0 {
		return Match{}, ErrNoCandidates
	}
	q := prepare(query)
	best := Match{Index: 0, Title: x.titles[0], Confidence: weighted(q, x.prepared[0])}
	for i := 1; i < len(x.titles); i++ {
		if c := weighted(q, x.prepared[i]); c > best.Confidence {
			best = Match{Index: i, Title: x.titles[i], Confidence: c}
		}
	}
	return best, nil
}

// ResolveMany returns up to limit candidates by descending confidence,
// ties in candidate order.
func (x *Index) ResolveMany(query string, limit int) []Match {
	if limit <= 0 || len(x.titles) == 0 {
		return nil
	}
	q := prepare(query)
	all := make([]Match, len(x.titles))
	for i, t := range x.titles {
		all[i] = Match{Index: i, Title: t, Confidence: weighted(q, x.prepared[i])}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Resolve is a one-shot Index.Resolve over candidates.
func Resolve(query string, candidates []string) (Match, error) {
	return NewIndex(candidates).Resolve(query)
}

// ResolveMany is a one-shot Index.ResolveMany over candidates.
func ResolveMany(query string, candidates []string, limit int) []Match {
	return NewIndex(candidates).ResolveMany(query, limit)
}
