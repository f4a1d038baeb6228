package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"jobdoctor/src/broker"
	"jobdoctor/src/contracts"
	"jobdoctor/src/logger"
	"jobdoctor/src/pipeline"
	"jobdoctor/src/store"
	"jobdoctor/src/tui"
)

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [paths...]",
		Short: "Browse problems interactively as jobs are checked",
		Long: `Checks every job under the given paths and opens a terminal browser
that fills in as reports arrive. Problems are ranked by severity: data
integrity first, then the build index, then bookkeeping.

view never repairs. It always runs in process, whatever the configured
mode.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), a, args)
		},
	}
	cmd.Flags().Int("jobs", 0, "Number of jobs checked at once (default: number of CPUs)")
	return cmd
}

func runView(ctx context.Context, a *app, roots []string) error {
	if err := pipeline.ValidateRoots(roots); err != nil {
		return err
	}
	targets, err := pipeline.DiscoverAll(roots)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgBroker := broker.NewInMemoryBroker()
	defer msgBroker.Close()

	// Subscribe before the run starts so no report is missed.
	msgs, err := msgBroker.Subscribe(ctx, contracts.TopicReports, "jobdoctor-view")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicReports, err)
	}

	// Log lines would tear the alternate screen.
	runner := pipeline.NewRunner(msgBroker, store.NewMemoryStore(), logger.NewSilentLogger(), pipeline.Options{
		Parallelism: a.cfg.Parallelism,
	})
	runErr := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx, roots)
		runErr <- err
	}()

	err = tui.StartStreaming(ctx, msgs, len(targets))
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
