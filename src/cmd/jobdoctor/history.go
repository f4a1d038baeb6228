package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jobdoctor/src/contracts"
	"jobdoctor/src/pipeline"
	"jobdoctor/src/report"
	"jobdoctor/src/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit   int
		verbose int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List earlier runs or show the reports of one run",
		Long: `Without arguments, lists the most recent runs. With a run ID, prints
that run's job reports as check would have.

Runs are only kept in distributed mode, where reports go to Postgres.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			if backend.Mode != pipeline.DistributedMode {
				return &pipeline.UserError{
					Message: "No run history in local mode",
					Hint:    "Set JOBDOCTOR_REDPANDA_BROKERS and JOBDOCTOR_POSTGRES_DSN so runs are recorded.",
				}
			}

			out := cmd.OutOrStdout()
			opts := report.Options{
				Format:    a.cfg.Format,
				Verbosity: report.VerbosityFromFlags(false, verbose),
			}

			if len(args) == 0 {
				runs, err := backend.Store.ListRuns(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				return report.WriteRuns(out, runs, opts)
			}

			run, err := loadRun(cmd, backend.Store, args[0])
			if err != nil {
				return err
			}
			return report.Write(out, run, opts)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().CountVarP(&verbose, "verbose", "v", "Show proposed repairs and repair outcomes")
	cmd.Flags().String("format", report.FormatText, "Output format: text, json or yaml")
	return cmd
}

// loadRun reads a run and its job reports back from the store.
func loadRun(cmd *cobra.Command, st store.Store, runID string) (*contracts.RunReport, error) {
	ctx := cmd.Context()
	status, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &pipeline.UserError{
			Message: fmt.Sprintf("Unknown run %s", runID),
			Hint:    "Run 'jobdoctor history' to list recorded runs.",
			Err:     err,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	jobs, err := st.GetJobReports(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports of run %s: %w", runID, err)
	}
	return &contracts.RunReport{Run: *status, Jobs: jobs}, nil
}
