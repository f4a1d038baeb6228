package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"jobdoctor/src/contracts"
	"jobdoctor/src/store"
)

// ErrJobNotInRun is returned when a run has no report for the job asked for.
var ErrJobNotInRun = errors.New("job not found in run")

// findJobReport looks a job up in a stored run by path or by name.
func findJobReport(ctx context.Context, st store.Store, runID, job string) (*contracts.JobReport, error) {
	reports, err := st.GetJobReports(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if len(reports) == 0 {
		if _, err := st.GetRun(ctx, runID); err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
		}
	}

	clean := filepath.Clean(job)
	for i := range reports {
		if filepath.Clean(reports[i].JobPath) == clean || reports[i].JobName == job {
			return &reports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrJobNotInRun, job, runID)
}

// compressReport returns a copy of r with messages and commands shortened.
func compressReport(r contracts.JobReport) contracts.JobReport {
	problems := make([]contracts.ProblemRecord, len(r.Problems))
	for i, p := range r.Problems {
		p.Message = CompressLine(p.Message, r.JobPath)
		p.Path = relativeToJob(p.Path, r.JobPath)
		problems[i] = p
	}
	solutions := make([]contracts.SolutionRecord, len(r.Solutions))
	for i, s := range r.Solutions {
		s.Command = CompressLine(s.Command, r.JobPath)
		solutions[i] = s
	}
	r.Problems = problems
	r.Solutions = solutions
	return r
}
