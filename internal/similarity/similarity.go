// Package similarity precomputes pairwise cosine similarity over a
// document-term matrix.
//
// The full N×N matrix is built eagerly, O(N²·V) once and O(N) per lookup.
// That is fine for catalogs in the thousands; a catalog orders of magnitude
// larger needs a nearest-neighbour index instead.
package similarity

import "github.com/kailas-cloud/cinematch/internal/vectorize"

// Matrix is a dense symmetric similarity matrix stored row-major.
type Matrix struct {
	n    int
	vals []float64
}

// ComputeAll computes cosine similarity for every pair of rows of m.
// Pairs involving an all-zero row score 0, including its own diagonal cell.
func ComputeAll(m *vectorize.Matrix) *Matrix {
	n := m.Rows()
	s := &Matrix{n: n, vals: make([]float64, n*n)}

	for i := 0; i < n; i++ {
		ni := m.Norm(i)
		if ni == 0 {
			continue
		}
		s.vals[i*n+i] = 1
		ri := m.Row(i)
		for j := i + 1; j < n; j++ {
			nj := m.Norm(j)
			if nj == 0 {
				continue
			}
			v := float64(dot(ri, m.Row(j))) / (ni * nj)
			if v > 1 {
				v = 1
			}
			s.vals[i*n+j] = v
			s.vals[j*n+i] = v
		}
	}
	return s
}

// dot merges two column-sorted sparse rows.
func dot(a, b []vectorize.Entry) int {
	var sum, i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Col == b[j].Col:
			sum += a[i].Count * b[j].Count
			i++
			j++
		case a[i].Col < b[j].Col:
			i++
		default:
			j++
		}
	}
	return sum
}

// Size returns N.
func (s *Matrix) Size() int { return s.n }

// At returns the similarity of rows i and j.
func (s *Matrix) At(i, j int) float64 { return s.vals[i*s.n+j] }

// Row returns the similarities of row i against every row.
// The slice aliases the matrix and must not be modified.
func (s *Matrix) Row(i int) []float64 { return s.vals[i*s.n : (i+1)*s.n : (i+1)*s.n] }
