// Package pipeline drives audits over many job directories: it discovers
// jobs, audits them concurrently, applies repairs in destroy mode, and
// hands every job report to the broker and the store.
// It is shared by the CLI, the watch loop and the MCP server.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jobdoctor/src/broker"
	"jobdoctor/src/check"
	"jobdoctor/src/contracts"
	"jobdoctor/src/job"
	"jobdoctor/src/logger"
	"jobdoctor/src/store"
)

// Options control a run.
type Options struct {
	// Destroy applies the proposed repairs.
	Destroy bool
	// Parallelism is the number of jobs audited at once.
	Parallelism int
}

// Runner audits jobs and publishes their reports.
type Runner struct {
	broker broker.Broker
	store  store.Store
	log    logger.Logger
	opts   Options

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner.
func NewRunner(b broker.Broker, s store.Store, log logger.Logger, opts Options) *Runner {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Runner{
		broker: b,
		store:  s,
		log:    log,
		opts:   opts,
		now:    time.Now,
		newID:  func() string { return fmt.Sprintf("run-%d", time.Now().UnixNano()) },
	}
}

// Run audits every job under roots. Problems and failed repairs are
// recorded in the returned report; the error is only for bad roots and
// for broker or store failures.
func (r *Runner) Run(ctx context.Context, roots []string) (*contracts.RunReport, error) {
	if err := ValidateRoots(roots); err != nil {
		return nil, err
	}

	targets, err := DiscoverAll(roots)
	if err != nil {
		return nil, err
	}

	status := contracts.RunStatus{
		RunID:     r.newID(),
		Roots:     roots,
		Status:    contracts.StatusPending,
		Destroy:   r.opts.Destroy,
		JobsTotal: len(targets),
		StartedAt: r.timestamp(),
	}
	if err := r.store.CreateRun(ctx, &status); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	status.Status = contracts.StatusRunning
	if err := r.store.UpdateRun(ctx, &status); err != nil {
		return nil, fmt.Errorf("failed to update run record: %w", err)
	}
	r.log.Info("[Runner] Run %s: %d jobs under %d roots", status.RunID, len(targets), len(roots))

	reports := make([]contracts.JobReport, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)

	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report := r.auditJob(status.RunID, target)
			reports[i] = report
			return r.deliver(gctx, &report)
		})
	}

	runErr := g.Wait()

	result := &contracts.RunReport{Run: status, Jobs: reports}
	if runErr != nil {
		// Reports after the failure were never produced.
		result.Jobs = completed(reports)
	}
	result.Tally()
	result.Run.FinishedAt = r.timestamp()
	result.Run.Status = contracts.StatusCompleted
	if runErr != nil {
		result.Run.Status = contracts.StatusFailed
	}

	// The run context may already be cancelled; record the outcome anyway.
	if err := r.store.UpdateRun(context.WithoutCancel(ctx), &result.Run); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to update run record: %w", err)
	}

	r.log.Info("[Runner] Run %s %s: %d/%d jobs with problems",
		result.Run.RunID, result.Run.Status, result.Run.JobsWithProblems, result.Run.JobsScanned)

	return result, runErr
}

// auditJob scans and checks one job, then repairs it in destroy mode.
// Every check runs before any repair.
func (r *Runner) auditJob(runID string, target Target) contracts.JobReport {
	report := contracts.JobReport{
		RunID:     runID,
		JobPath:   target.Path,
		JobName:   target.Name,
		ScannedAt: r.timestamp(),
	}

	j, err := check.Audit(target.Path)
	if err != nil {
		r.log.Error("[Runner] %s: %v", target.Name, err)
		report.ScanError = err.Error()
		return report
	}

	fillReport(&report, j)
	r.log.Debug("[Runner] %s: %d problems, %d solutions", target.Name, len(report.Problems), len(report.Solutions))

	if !r.opts.Destroy || !j.HasProblems() {
		return report
	}

	report.Repaired = true
	applied, err := j.Repair()
	report.Applied = applied
	if err != nil {
		report.RepairError = err.Error()
		r.log.Error("[Runner] %s: repair failed after %d of %d actions: %v",
			target.Name, applied, len(report.Solutions), err)
	} else {
		r.log.Info("[Runner] %s: applied %d repairs", target.Name, applied)
	}
	return report
}

// fillReport copies the scan and check results of j into report.
func fillReport(report *contracts.JobReport, j *job.Job) {
	report.NumberedLinks = len(j.Numbers)
	report.DatedDirs = len(j.Dates)
	if len(j.Dates) > 0 {
		report.OldestBuild = j.Dates[0].Time.Format(time.RFC3339)
	}

	for _, p := range j.Problems() {
		report.Problems = append(report.Problems, contracts.ProblemRecord{
			Tag:     string(p.Tag),
			Message: p.Message,
			Path:    p.Path,
		})
	}
	for _, s := range j.Solutions() {
		report.Solutions = append(report.Solutions, contracts.SolutionRecord{
			Problem: s.Problem,
			Message: s.Message,
			Verb:    string(s.Action.Verb),
			Command: s.Action.String(),
		})
	}
}

// deliver publishes a job report and saves it in the store.
func (r *Runner) deliver(ctx context.Context, report *contracts.JobReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal job report: %w", err)
	}
	if err := r.broker.Publish(ctx, contracts.TopicReports, report.RunID, data); err != nil {
		return fmt.Errorf("failed to publish job report: %w", err)
	}
	if err := r.store.SaveJobReport(ctx, report); err != nil {
		return fmt.Errorf("failed to save job report: %w", err)
	}
	return nil
}

func (r *Runner) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

func completed(reports []contracts.JobReport) []contracts.JobReport {
	var out []contracts.JobReport
	for _, rep := range reports {
		if rep.RunID != "" {
			out = append(out, rep)
		}
	}
	return out
}
