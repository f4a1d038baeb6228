package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jobdoctor/src/pipeline"
	"jobdoctor/src/report"
)

const destroyWarning = `WARNING: repair mode rewrites build history in place.
Stop Jenkins first, or run against a copy of JENKINS_HOME: jobdoctor takes no locks.`

type checkOptions struct {
	destroy bool
	verbose int
	quiet   bool
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check job build histories and optionally repair them",
		Long: `Checks every job under the given paths. A path may be a job directory,
a folder, or JENKINS_HOME.

Without --destroy nothing is changed: problems are printed together with
the repairs that would fix them (use -v to see the repairs). With
--destroy the repairs are applied.

Exit status is 0 when every job is consistent, 1 when a job had problems
or a repair failed, and 2 on usage errors.

Examples:
  jobdoctor check /var/lib/jenkins
  jobdoctor check -v /var/lib/jenkins/jobs/app
  jobdoctor check --destroy --format json /srv/jenkins-copy`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.destroy, "destroy", "d", false, "Apply the proposed repairs")
	cmd.Flags().CountVarP(&opts.verbose, "verbose", "v", "Show healthy jobs, proposed repairs and repair outcomes")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print the run summary only (overrides -v)")
	cmd.Flags().String("format", report.FormatText, "Output format: text, json or yaml")
	cmd.Flags().Int("jobs", 0, "Number of jobs checked at once (default: number of CPUs)")

	return cmd
}

func runCheck(cmd *cobra.Command, a *app, opts checkOptions, roots []string) error {
	if err := pipeline.ValidateRoots(roots); err != nil {
		return err
	}

	if opts.destroy && !opts.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), destroyWarning)
	}

	ctx := cmd.Context()
	backend, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	runner := pipeline.NewRunner(backend.Broker, backend.Store, a.log, pipeline.Options{
		Destroy:     opts.destroy,
		Parallelism: a.cfg.Parallelism,
	})
	run, runErr := runner.Run(ctx, roots)
	if run == nil {
		return runErr
	}

	err = report.Write(cmd.OutOrStdout(), run, report.Options{
		Format:    a.cfg.Format,
		Verbosity: report.VerbosityFromFlags(opts.quiet, opts.verbose),
	})
	if err != nil {
		return err
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return &exitError{code: exitProblems, err: errors.New("interrupted, the report above is partial")}
		}
		return runErr
	}
	if code := run.ExitCode(); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}
