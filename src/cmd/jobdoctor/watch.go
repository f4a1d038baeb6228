package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"jobdoctor/src/job"
	"jobdoctor/src/logger"
	"jobdoctor/src/pipeline"
	"jobdoctor/src/report"
)

func newWatchCmd(a *app) *cobra.Command {
	var verbose int

	cmd := &cobra.Command{
		Use:   "watch <job>",
		Short: "Re-check a job whenever its build history changes",
		Long: `Checks one job, then checks it again each time its builds directory,
config.xml or nextBuildNumber changes. Changes are batched: a check runs
once nothing has changed for the debounce interval.

watch never repairs. Stop it with Ctrl+C.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateRoots(args); err != nil {
				return err
			}

			ctx := cmd.Context()
			backend, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			runner := pipeline.NewRunner(backend.Broker, backend.Store, a.log, pipeline.Options{
				Parallelism: a.cfg.Parallelism,
			})
			out := cmd.OutOrStdout()
			opts := report.Options{
				Format:    a.cfg.Format,
				Verbosity: report.VerbosityFromFlags(false, verbose),
			}

			w := &watcher{
				jobDir:   filepath.Clean(args[0]),
				debounce: a.cfg.WatchDebounce,
				log:      a.log,
				status:   cmd.ErrOrStderr(),
				audit: func(ctx context.Context) error {
					run, err := runner.Run(ctx, args)
					if run == nil {
						return err
					}
					if werr := report.Write(out, run, opts); werr != nil {
						return werr
					}
					return err
				},
			}
			return w.run(ctx)
		},
	}

	cmd.Flags().CountVarP(&verbose, "verbose", "v", "Show proposed repairs")
	cmd.Flags().String("format", report.FormatText, "Output format: text, json or yaml")
	cmd.Flags().Duration("debounce", 2*time.Second, "Quiet period before re-checking")
	return cmd
}

// watcher re-runs audit when the build history of jobDir changes. Audits
// never overlap.
type watcher struct {
	jobDir   string
	debounce time.Duration
	audit    func(ctx context.Context) error
	log      logger.Logger
	status   io.Writer

	// audited is signalled after every audit, for tests.
	audited chan<- struct{}
}

// watchedEntries are the job directory entries that feed the checks.
var watchedEntries = map[string]bool{
	job.BuildsDirName:   true,
	job.ConfigFileName:  true,
	job.CounterFileName: true,
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	buildsDir := filepath.Join(w.jobDir, job.BuildsDirName)
	if err := fsw.Add(w.jobDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.jobDir, err)
	}
	// builds/ may not exist yet; its creation is seen through the job directory.
	_ = fsw.Add(buildsDir)

	if err := w.runAudit(ctx); err != nil {
		return err
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w.status, "Stopped watching.")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if filepath.Clean(event.Name) == buildsDir && event.Has(fsnotify.Create) {
				_ = fsw.Add(buildsDir)
			}
			w.log.Debug("[Watch] %s %s", event.Op, event.Name)
			settle = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("[Watch] %v", err)

		case <-settle:
			settle = nil
			if err := w.runAudit(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *watcher) runAudit(ctx context.Context) error {
	err := w.audit(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w.status, "Watching %s for changes... (Press Ctrl+C to exit)\n", w.jobDir)
	if w.audited != nil {
		select {
		case w.audited <- struct{}{}:
		case <-ctx.Done():
		}
	}
	return nil
}

// relevant reports whether event touches the build history. Attribute
// changes never do.
func (w *watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	dir, name := filepath.Split(event.Name)
	dir = filepath.Clean(dir)
	if dir == w.jobDir {
		return watchedEntries[name]
	}
	return dir == filepath.Join(w.jobDir, job.BuildsDirName)
}
