// Package vectorize turns feature documents into a bag-of-words vector space:
// a corpus vocabulary and a sparse document-term count matrix.
package vectorize

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Tokenize lower-cases doc and splits it into terms of at least two letters,
// digits or underscores. Stop words are dropped.
func Tokenize(doc string) []string {
	words := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !isWordRune(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 2 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Vocabulary maps terms to column indexes. Terms are ordered lexicographically.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Entry is a non-zero cell of a matrix row.
type Entry struct {
	Col   int
	Count int
}

// Matrix is a sparse document-term matrix of raw term counts.
// Each row's entries are sorted by column.
type Matrix struct {
	rows  [][]Entry
	norms []float64
	cols  int
}

// Rows returns the number of documents.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the vocabulary size.
func (m *Matrix) Cols() int { return m.cols }

// Row returns the non-zero entries of document i. The slice must not be modified.
func (m *Matrix) Row(i int) []Entry { return m.rows[i] }

// Norm returns the Euclidean norm of row i.
func (m *Matrix) Norm(i int) float64 { return m.norms[i] }

// Build tokenizes docs, assigns a vocabulary and counts terms per document.
// Documents without surviving tokens yield empty rows.
func Build(docs []string) (*Vocabulary, *Matrix) {
	tokens := make([][]string, len(docs))
	seen := make(map[string]struct{})
	for i, d := range docs {
		tokens[i] = Tokenize(d)
		for _, t := range tokens[i] {
			seen[t] = struct{}{}
		}
	}

	vocab := &Vocabulary{
		terms: make([]string, 0, len(seen)),
		index: make(map[string]int, len(seen)),
	}
	for t := range seen {
		vocab.terms = append(vocab.terms, t)
	}
	sort.Strings(vocab.terms)
	for i, t := range vocab.terms {
		vocab.index[t] = i
	}

	m := &Matrix{
		rows:  make([][]Entry, len(docs)),
		norms: make([]float64, len(docs)),
		cols:  vocab.Len(),
	}
	for i, toks := range tokens {
		counts := make(map[int]int, len(toks))
		for _, t := range toks {
			counts[vocab.index[t]]++
		}
		row := make([]Entry, 0, len(counts))
		var sq float64
		for col, c := range counts {
			row = append(row, Entry{Col: col, Count: c})
			sq += float64(c * c)
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Col < row[b].Col })
		m.rows[i] = row
		m.norms[i] = math.Sqrt(sq)
	}

	return vocab, m
}
