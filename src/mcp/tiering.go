package mcp

import (
	"fmt"
	"path/filepath"
	"sort"

	"jobdoctor/src/contracts"
	"jobdoctor/src/sanitize"
)

// Default finding limits per tier.
// Tier 1 gets more findings since they're the ones that lose history.
const (
	DefaultTier1Limit = 25
	DefaultTier2Limit = 10
	DefaultTier3Limit = 5
)

// summaryMessageLimit caps messages in tier 2/3 summaries.
const summaryMessageLimit = 100

// findingID identifies a problem within a run.
func findingID(job string, problem int) string {
	return fmt.Sprintf("%s#%d", job, problem)
}

// convertToFinding builds the LLM-ready form of problem p of report r.
func convertToFinding(r contracts.JobReport, p int) Finding {
	rec := r.Problems[p]
	f := Finding{
		ID:      findingID(r.JobName, p),
		Tier:    contracts.Tier(rec.Tag),
		Tag:     rec.Tag,
		Message: sanitize.Name(rec.Message),
		Job:     sanitize.Name(r.JobName),
		JobPath: r.JobPath,
	}
	if rel, err := filepath.Rel(r.JobPath, rec.Path); err == nil && rec.Path != "" {
		f.Path = sanitize.Name(rel)
	}
	for _, s := range r.Solutions {
		if s.Problem == p {
			f.Repairs = append(f.Repairs, sanitize.Name(s.Command))
		}
	}
	return f
}

// scanFinding reports a job that could not be scanned.
func scanFinding(r contracts.JobReport) Finding {
	return Finding{
		ID:      findingID(r.JobName, -1),
		Tier:    contracts.TierIntegrity,
		Tag:     contracts.TagScanError,
		Message: sanitize.Name(r.ScanError),
		Job:     sanitize.Name(r.JobName),
		JobPath: r.JobPath,
	}
}

// TierFindings groups the problems of all reports into tiers. limit caps
// tier 1 (0 means the default); tiers 2 and 3 get proportionally less.
// Findings past the limits are counted in Omitted.
func TierFindings(reports []contracts.JobReport, limit int) TieredResponse {
	tier1Limit := DefaultTier1Limit
	tier2Limit := DefaultTier2Limit
	tier3Limit := DefaultTier3Limit

	if limit > 0 && limit != DefaultTier1Limit {
		tier1Limit = limit
		tier2Limit = max(1, limit/3)
		tier3Limit = max(1, limit/5)
	}

	sorted := make([]contracts.JobReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].JobName < sorted[j].JobName })

	var resp TieredResponse
	add := func(f Finding) {
		switch f.Tier {
		case contracts.TierIntegrity:
			if len(resp.Tier1Integrity) < tier1Limit {
				resp.Tier1Integrity = append(resp.Tier1Integrity, f)
				return
			}
		case contracts.TierIndex:
			if len(resp.Tier2Index) < tier2Limit {
				resp.Tier2Index = append(resp.Tier2Index, f)
				return
			}
		default:
			if len(resp.Tier3Bookkeeping) < tier3Limit {
				resp.Tier3Bookkeeping = append(resp.Tier3Bookkeeping, f)
				return
			}
		}
		resp.Omitted++
	}

	for _, r := range sorted {
		if r.ScanError != "" {
			add(scanFinding(r))
		}
		for p := range r.Problems {
			add(convertToFinding(r, p))
		}
	}
	return resp
}

// ToManifest converts a TieredResponse to a ManifestResponse.
// Tier 1 findings are fully expanded with compression applied.
// Tier 2-3 findings are converted to lightweight summaries.
func ToManifest(run contracts.RunStatus, reports []contracts.JobReport, response TieredResponse) ManifestResponse {
	tier1 := make([]Finding, len(response.Tier1Integrity))
	for i, f := range response.Tier1Integrity {
		tier1[i] = compressFinding(f)
	}

	var other []FindingSummary
	for _, f := range response.Tier2Index {
		other = append(other, toSummary(f))
	}
	for _, f := range response.Tier3Bookkeeping {
		other = append(other, toSummary(f))
	}

	var withProblems []string
	for _, r := range reports {
		if r.HasProblems() {
			withProblems = append(withProblems, sanitize.Name(r.JobName))
		}
	}
	sort.Strings(withProblems)

	return ManifestResponse{
		RunID: run.RunID,
		Summary: RunSummary{
			Roots:            run.Roots,
			Status:           run.Status,
			JobsScanned:      run.JobsScanned,
			JobsWithProblems: withProblems,
			ProblemsTotal:    run.ProblemsTotal,
			Timestamp:        run.FinishedAt,
		},
		Tier1Problems: tier1,
		OtherProblems: other,
		Omitted:       response.Omitted,
	}
}

// compressFinding shortens the message and repairs of a Finding.
func compressFinding(f Finding) Finding {
	f.Message = CompressLine(f.Message, f.JobPath)
	f.Repairs = CompressLines(f.Repairs, f.JobPath)
	return f
}

// toSummary converts a Finding to a FindingSummary.
func toSummary(f Finding) FindingSummary {
	msg := CompressLine(f.Message, f.JobPath)
	if len(msg) > summaryMessageLimit {
		msg = msg[:summaryMessageLimit-3] + "..."
	}
	return FindingSummary{
		ID:      f.ID,
		Tier:    f.Tier,
		Tag:     f.Tag,
		Message: msg,
		Job:     f.Job,
	}
}
