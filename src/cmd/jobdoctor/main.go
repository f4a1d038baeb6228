// Command jobdoctor checks the build history of Jenkins jobs and repairs
// what it can.
//
// Mode is auto-detected: with JOBDOCTOR_REDPANDA_BROKERS (or
// REDPANDA_BROKERS) set, reports are published to Redpanda and kept in
// Postgres; otherwise everything stays in process.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"jobdoctor/src/config"
	"jobdoctor/src/logger"
	"jobdoctor/src/pipeline"
)

// Exit statuses.
const (
	exitOK       = 0
	exitProblems = 1
	exitUsage    = 2
)

// exitError carries an exit status out of a command. err may be nil when
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

// usageArgs turns a failed argument check into a usage error.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// flagKeys maps command-line flags onto config keys. Only the flags of the
// command being run are bound, so commands may share a flag name.
var flagKeys = map[string]string{
	"log-format": config.KeyLogFormat,
	"format":     config.KeyFormat,
	"jobs":       config.KeyParallelism,
	"debounce":   config.KeyWatchDebounce,
}

// app is the state shared by the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg *config.Config
	log logger.Logger
}

// load binds the running command's flags and reads the configuration.
func (a *app) load(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogFormat, "jobdoctor")
	return nil
}

// open connects the backend for the configured mode.
func (a *app) open(ctx context.Context) (*pipeline.Backend, error) {
	backend, err := pipeline.Open(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.log.Debug("Backend: %s mode", backend.Mode)
	return backend, nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "jobdoctor",
		Short: "jobdoctor - Jenkins build history checker",
		Long: `jobdoctor checks the on-disk build history of Jenkins jobs: the
numbered build links, the dated build directories they point to, the
convenience links and the next build number. In repair mode it fixes what
it finds, moving anything it cannot place into outOfOrderBuilds.

Jenkins must not be running against the directories being repaired.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Path to a jobdoctor.yaml config file")
	rootCmd.PersistentFlags().String("log-format", "silent", "Log output: text, structured or silent")

	rootCmd.AddCommand(
		newCheckCmd(a),
		newViewCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

// execute runs the CLI with args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return exitCode(rootCmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var userErr *pipeline.UserError
	if errors.As(err, &userErr) {
		return exitUsage
	}
	return exitProblems
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
