// Package persist provides the report agent for the distributed mode.
// The agent consumes job reports from Redpanda and keeps them in the store,
// so that reports published by any producer can be browsed later.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobdoctor/src/broker"
	"jobdoctor/src/contracts"
	"jobdoctor/src/logger"
	"jobdoctor/src/store"
)

// GroupID is the consumer group of the report agent.
const GroupID = "jobdoctor-persist"

// Agent consumes job reports and saves them in a store.
type Agent struct {
	broker broker.Broker
	store  store.Store
	logger logger.Logger
}

// NewAgent creates a new report agent.
func NewAgent(brk broker.Broker, st store.Store, log logger.Logger) *Agent {
	return &Agent{
		broker: brk,
		store:  st,
		logger: log,
	}
}

// Run subscribes to jobdoctor.reports and saves every report until ctx
// is done or the subscription closes.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[ReportAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicReports, GroupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicReports, err)
	}

	a.logger.Info("[ReportAgent] Listening for job reports on '%s' topic...", contracts.TopicReports)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[ReportAgent] Message channel closed, shutting down")
				return nil
			}

			if err := a.processReport(ctx, msg); err != nil {
				a.logger.Error("[ReportAgent] Error processing report: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[ReportAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processReport saves one report. A report for a run the store has never
// seen gets a run record of its own, marked running.
func (a *Agent) processReport(ctx context.Context, msg broker.Message) error {
	var report contracts.JobReport
	if err := json.Unmarshal(msg.Value, &report); err != nil {
		return fmt.Errorf("failed to unmarshal report: %w", err)
	}
	if report.RunID == "" {
		report.RunID = msg.Key
	}
	if report.RunID == "" || report.JobPath == "" {
		return fmt.Errorf("report at offset %d has no run ID or job path", msg.Offset)
	}

	if err := a.ensureRun(ctx, &report); err != nil {
		return err
	}
	if err := a.store.SaveJobReport(ctx, &report); err != nil {
		return fmt.Errorf("failed to save report for %s: %w", report.JobPath, err)
	}

	a.logger.Debug("[ReportAgent] Saved %s (run %s): %d problems",
		report.JobName, report.RunID, len(report.Problems))
	return nil
}

func (a *Agent) ensureRun(ctx context.Context, report *contracts.JobReport) error {
	_, err := a.store.GetRun(ctx, report.RunID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up run %s: %w", report.RunID, err)
	}

	a.logger.Info("[ReportAgent] First report of unknown run %s, recording it", report.RunID)
	run := contracts.RunStatus{
		RunID:     report.RunID,
		Status:    contracts.StatusRunning,
		Destroy:   report.Repaired,
		StartedAt: report.ScannedAt,
	}
	if err := a.store.CreateRun(ctx, &run); err != nil {
		// Another consumer or the producer may have just created it.
		if _, getErr := a.store.GetRun(ctx, report.RunID); getErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create run %s: %w", report.RunID, err)
	}
	return nil
}
