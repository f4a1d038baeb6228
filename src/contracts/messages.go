// Package contracts defines the report messages passed between the audit
// driver, the broker, the store and the front ends.
package contracts

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TopicReports carries one JobReport per audited job.
// Key: {run_id}
const TopicReports = "jobdoctor.reports"

// ProblemRecord is one problem found in a job.
type ProblemRecord struct {
	// Problem tag (e.g. BROKEN, ORDER, NEXT).
	Tag string `json:"tag" yaml:"tag"`
	// Human-readable description.
	Message string `json:"message" yaml:"message"`
	// Entry the problem is about, if any.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SolutionRecord is a proposed repair for the problem at index Problem.
type SolutionRecord struct {
	Problem int    `json:"problem" yaml:"problem"`
	Message string `json:"message" yaml:"message"`
	Verb    string `json:"verb" yaml:"verb"`
	// Shell-like rendering of the action, for logs and dry runs.
	Command string `json:"command" yaml:"command"`
}

// JobReport is the result of auditing (and possibly repairing) one job.
// Published to: jobdoctor.reports
type JobReport struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	JobPath string `json:"job_path" yaml:"job_path"`
	JobName string `json:"job_name" yaml:"job_name"`

	// Index sizes from the scan.
	NumberedLinks int `json:"numbered_links" yaml:"numbered_links"`
	DatedDirs     int `json:"dated_dirs" yaml:"dated_dirs"`

	Problems  []ProblemRecord  `json:"problems" yaml:"problems"`
	Solutions []SolutionRecord `json:"solutions" yaml:"solutions"`

	// Repair mode only.
	Repaired    bool   `json:"repaired" yaml:"repaired"`
	Applied     int    `json:"applied" yaml:"applied"`
	RepairError string `json:"repair_error,omitempty" yaml:"repair_error,omitempty"`

	// Set when the job could not be scanned at all.
	ScanError string `json:"scan_error,omitempty" yaml:"scan_error,omitempty"`

	// Oldest dated directory, RFC 3339.
	OldestBuild string `json:"oldest_build,omitempty" yaml:"oldest_build,omitempty"`
	ScannedAt   string `json:"scanned_at" yaml:"scanned_at"`
}

// HasProblems reports whether the job had problems or its repair failed.
func (r *JobReport) HasProblems() bool {
	return len(r.Problems) > 0 || r.RepairError != "" || r.ScanError != ""
}

// RunStatus tracks one invocation over one or more roots.
type RunStatus struct {
	RunID            string   `json:"run_id" yaml:"run_id"`
	Roots            []string `json:"roots" yaml:"roots"`
	Status           string   `json:"status" yaml:"status"` // pending, running, completed, failed
	Destroy          bool     `json:"destroy" yaml:"destroy"`
	JobsTotal        int      `json:"jobs_total" yaml:"jobs_total"`
	JobsScanned      int      `json:"jobs_scanned" yaml:"jobs_scanned"`
	JobsWithProblems int      `json:"jobs_with_problems" yaml:"jobs_with_problems"`
	ProblemsTotal    int      `json:"problems_total" yaml:"problems_total"`
	RepairFailures   int      `json:"repair_failures" yaml:"repair_failures"`
	StartedAt        string   `json:"started_at" yaml:"started_at"`
	FinishedAt       string   `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// RunReport is a run and the reports of every job in it.
type RunReport struct {
	Run  RunStatus   `json:"run" yaml:"run"`
	Jobs []JobReport `json:"jobs" yaml:"jobs"`
}

// ExitCode is 1 if any job had problems or a failed repair, else 0.
func (r *RunReport) ExitCode() int {
	for i := range r.Jobs {
		if r.Jobs[i].HasProblems() {
			return 1
		}
	}
	return 0
}

// Tally recomputes the run counters from the job reports.
func (r *RunReport) Tally() {
	r.Run.JobsScanned = len(r.Jobs)
	r.Run.JobsWithProblems = 0
	r.Run.ProblemsTotal = 0
	r.Run.RepairFailures = 0
	for i := range r.Jobs {
		j := &r.Jobs[i]
		if j.HasProblems() {
			r.Run.JobsWithProblems++
		}
		r.Run.ProblemsTotal += len(j.Problems)
		if j.RepairError != "" {
			r.Run.RepairFailures++
		}
	}
}
