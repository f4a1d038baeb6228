// Package store persists audit runs and per-job reports.
package store

import (
	"context"
	"errors"

	"jobdoctor/src/contracts"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persisting runs and job reports.
type Store interface {
	// CreateRun records a new run.
	CreateRun(ctx context.Context, run *contracts.RunStatus) error

	// UpdateRun replaces the stored status of an existing run.
	UpdateRun(ctx context.Context, run *contracts.RunStatus) error

	// GetRun returns the status of a run.
	GetRun(ctx context.Context, runID string) (*contracts.RunStatus, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]contracts.RunStatus, error)

	// SaveJobReport stores a job report, replacing any earlier report for
	// the same run and job path.
	SaveJobReport(ctx context.Context, report *contracts.JobReport) error

	// GetJobReports returns the job reports of a run ordered by job path.
	GetJobReports(ctx context.Context, runID string) ([]contracts.JobReport, error)

	// Close closes the store connection
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
