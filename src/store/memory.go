package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jobdoctor/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Used in local mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*contracts.RunStatus

	// run IDs in creation order
	order []string

	// runID -> job path -> report
	reports map[string]map[string]contracts.JobReport
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]*contracts.RunStatus),
		reports: make(map[string]map[string]contracts.JobReport),
	}
}

// CreateRun records a new run.
func (s *MemoryStore) CreateRun(ctx context.Context, run *contracts.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return fmt.Errorf("run already exists: %s", run.RunID)
	}
	r := copyRun(run)
	if r.Status == "" {
		r.Status = contracts.StatusPending
	}
	s.runs[run.RunID] = r
	s.order = append(s.order, run.RunID)
	return nil
}

// UpdateRun replaces the stored status of a run.
func (s *MemoryStore) UpdateRun(ctx context.Context, run *contracts.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; !exists {
		return fmt.Errorf("%w: run %s", ErrNotFound, run.RunID)
	}
	s.runs[run.RunID] = copyRun(run)
	return nil
}

// GetRun returns a copy of a run's status.
func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*contracts.RunStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	return copyRun(run), nil
}

// ListRuns returns runs newest first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]contracts.RunStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []contracts.RunStatus
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, *copyRun(s.runs[s.order[i]]))
	}
	return out, nil
}

// SaveJobReport stores a job report.
func (s *MemoryStore) SaveJobReport(ctx context.Context, report *contracts.JobReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byJob, ok := s.reports[report.RunID]
	if !ok {
		byJob = make(map[string]contracts.JobReport)
		s.reports[report.RunID] = byJob
	}
	byJob[report.JobPath] = copyReport(report)
	return nil
}

// GetJobReports returns a run's reports ordered by job path.
func (s *MemoryStore) GetJobReports(ctx context.Context, runID string) ([]contracts.JobReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byJob := s.reports[runID]
	out := make([]contracts.JobReport, 0, len(byJob))
	for _, r := range byJob {
		out = append(out, copyReport(&r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobPath < out[j].JobPath })
	return out, nil
}

// Close is a no-op for memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyRun(run *contracts.RunStatus) *contracts.RunStatus {
	c := *run
	c.Roots = append([]string(nil), run.Roots...)
	return &c
}

func copyReport(r *contracts.JobReport) contracts.JobReport {
	c := *r
	c.Problems = append([]contracts.ProblemRecord(nil), r.Problems...)
	c.Solutions = append([]contracts.SolutionRecord(nil), r.Solutions...)
	return c
}
