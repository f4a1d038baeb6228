// Package mcp serves audit results to LLM clients over the Model Context
// Protocol. It only reports; repairs are left to the CLI.
package mcp

// ManifestResponse is the audit_jobs result: tier 1 problems in full, the
// rest as summaries that get_job_report can expand.
type ManifestResponse struct {
	RunID   string     `json:"run_id"`
	Summary RunSummary `json:"summary"`

	Tier1Problems []Finding        `json:"tier_1_problems"`
	OtherProblems []FindingSummary `json:"other_problems,omitempty"`
	// Problems left out by the per-tier limits.
	Omitted int `json:"omitted,omitempty"`
}

// RunSummary contains run metadata.
type RunSummary struct {
	Roots            []string `json:"roots"`
	Status           string   `json:"status"`
	JobsScanned      int      `json:"jobs_scanned"`
	JobsWithProblems []string `json:"jobs_with_problems"`
	ProblemsTotal    int      `json:"problems_total"`
	Timestamp        string   `json:"timestamp"`
}

// TieredResponse groups findings by severity tier.
type TieredResponse struct {
	Tier1Integrity   []Finding `json:"tier_1_integrity"`
	Tier2Index       []Finding `json:"tier_2_index"`
	Tier3Bookkeeping []Finding `json:"tier_3_bookkeeping"`
	Omitted          int       `json:"omitted,omitempty"`
}

// Finding is one problem with its proposed repairs, ready for an LLM.
type Finding struct {
	// Stable within a run: <job name>#<problem index>.
	ID      string `json:"id"`
	Tier    int    `json:"tier"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	// Relative to the job directory.
	Path    string   `json:"path,omitempty"`
	Job     string   `json:"job"`
	JobPath string   `json:"job_path"`
	Repairs []string `json:"repairs,omitempty"`
}

// FindingSummary is the short form of a tier 2 or 3 finding.
type FindingSummary struct {
	ID      string `json:"id"`
	Tier    int    `json:"tier"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Job     string `json:"job"`
}
