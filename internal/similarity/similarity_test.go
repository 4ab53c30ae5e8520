package similarity

import (
	"math"
	"testing"

	"github.com/kailas-cloud/cinematch/internal/vectorize"
)

func TestComputeAll_SymmetricWithUnitDiagonal(t *testing.T) {
	_, m := vectorize.Build([]string{
		"action hero marvel",
		"action hero dc",
		"drama romance",
		"",
		"action action drama",
	})
	s := ComputeAll(m)

	if s.Size() != m.Rows() {
		t.Fatalf("size = %d, want %d", s.Size(), m.Rows())
	}
	for i := 0; i < s.Size(); i++ {
		for j := 0; j < s.Size(); j++ {
			if s.At(i, j) != s.At(j, i) {
				t.Errorf("M[%d][%d]=%v != M[%d][%d]=%v", i, j, s.At(i, j), j, i, s.At(j, i))
			}
			if math.IsNaN(s.At(i, j)) {
				t.Errorf("M[%d][%d] is NaN", i, j)
			}
		}
		if m.Norm(i) > 0 && s.At(i, i) != 1 {
			t.Errorf("M[%d][%d] = %v, want 1", i, i, s.At(i, i))
		}
	}
}

func TestComputeAll_Values(t *testing.T) {
	_, m := vectorize.Build([]string{
		"action hero",
		"action drama",
		"romance",
		"",
	})
	s := ComputeAll(m)

	if got := s.At(0, 1); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("M[0][1] = %v, want 0.5", got)
	}
	if got := s.At(0, 2); got != 0 {
		t.Errorf("disjoint documents = %v, want 0", got)
	}
	for j := 0; j < 4; j++ {
		if got := s.At(3, j); got != 0 {
			t.Errorf("empty document M[3][%d] = %v, want 0", j, got)
		}
	}
}

func TestRow(t *testing.T) {
	_, m := vectorize.Build([]string{"action", "action", "drama"})
	s := ComputeAll(m)
	row := s.Row(1)
	if len(row) != 3 {
		t.Fatalf("row length = %d, want 3", len(row))
	}
	if row[0] != 1 || row[1] != 1 || row[2] != 0 {
		t.Errorf("row = %v, want [1 1 0]", row)
	}
}
