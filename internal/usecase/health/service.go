package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	corpus CorpusChecker
	source SourceChecker
}

// New creates a Service. source can be nil.
func New(corpus CorpusChecker, source SourceChecker) *Service {
	return &Service{corpus: corpus, source: source}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.corpus.Ready(ctx); err != nil {
		checks["corpus"] = CheckError
	} else {
		checks["corpus"] = CheckOK
	}

	if s.source != nil {
		if err := s.source.Check(ctx); err != nil {
			checks["dataset"] = CheckError
		} else {
			checks["dataset"] = CheckOK
		}
	}

	// Without a corpus nothing can be served.
	status := Healthy
	switch {
	case checks["corpus"] == CheckError:
		status = Unhealthy
	case checks["dataset"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
