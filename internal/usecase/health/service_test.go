package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCorpus struct {
	err error
}

func (m *mockCorpus) Ready(_ context.Context) error { return m.err }

type mockSource struct {
	err error
}

func (m *mockSource) Check(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCorpus{}, &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["corpus"] != CheckOK {
		t.Errorf("expected corpus %q, got %q", CheckOK, r.Checks["corpus"])
	}
	if r.Checks["dataset"] != CheckOK {
		t.Errorf("expected dataset %q, got %q", CheckOK, r.Checks["dataset"])
	}
}

func TestCheck_CorpusNotLoaded(t *testing.T) {
	svc := New(&mockCorpus{err: errors.New("not ready")}, &mockSource{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["corpus"] != CheckError {
		t.Errorf("expected corpus %q, got %q", CheckError, r.Checks["corpus"])
	}
}

func TestCheck_DatasetMissing(t *testing.T) {
	svc := New(&mockCorpus{}, &mockSource{err: errors.New("no such file")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["dataset"] != CheckError {
		t.Errorf("expected dataset %q, got %q", CheckError, r.Checks["dataset"])
	}
	if r.Checks["corpus"] != CheckOK {
		t.Errorf("expected corpus %q, got %q", CheckOK, r.Checks["corpus"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockCorpus{err: errors.New("not ready")},
		&mockSource{err: errors.New("gone")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoSource(t *testing.T) {
	svc := New(&mockCorpus{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["dataset"]; ok {
		t.Error("dataset check should be absent when source is nil")
	}
}
