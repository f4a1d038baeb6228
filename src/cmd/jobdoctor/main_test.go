package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"jobdoctor/src/contracts"
	"jobdoctor/src/jobtest"
	"jobdoctor/src/pipeline"
	"jobdoctor/src/sanitize"
)

// isolate keeps the host environment out of the configuration.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"REDPANDA_BROKERS", "POSTGRES_DSN",
		"JOBDOCTOR_REDPANDA_BROKERS", "JOBDOCTOR_POSTGRES_DSN",
		"JOBDOCTOR_FORMAT", "JOBDOCTOR_LOG_FORMAT", "JOBDOCTOR_PARALLELISM",
	} {
		t.Setenv(name, "")
	}
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	isolate(t)
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return code, sanitize.StripANSI(out.String()), errOut.String()
}

func TestCheck_CleanJob(t *testing.T) {
	f := jobtest.New(t).Build(1, jobtest.Day(1)).Counter(2)

	code, out, errOut := runCLI(t, "check", f.Path)
	if code != exitOK {
		t.Fatalf("Expected exit 0, got %d\nstdout:\n%s\nstderr:\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "(report mode): 1 job checked, 0 with problems, 0 problems") {
		t.Errorf("Unexpected summary:\n%s", out)
	}
}

func TestCheck_ReportsProblems(t *testing.T) {
	f := jobtest.New(t).
		Build(1, jobtest.Day(1)).
		Link(2, jobtest.Day(2)).
		Counter(2)

	code, out, _ := runCLI(t, "check", "-v", f.Path)
	if code != exitProblems {
		t.Fatalf("Expected exit 1, got %d\n%s", code, out)
	}
	for _, want := range []string{"BROKEN:", "fix: unlink builds/2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if !f.IsSymlink("2") {
		t.Error("Report mode must not touch the job")
	}
}

func TestCheck_DestroyRepairs(t *testing.T) {
	f := jobtest.New(t).
		Build(1, jobtest.Day(1)).
		Link(2, jobtest.Day(2)).
		Counter(2)

	code, out, errOut := runCLI(t, "check", "--destroy", f.Path)
	if code != exitProblems {
		t.Fatalf("Expected exit 1 for a run that found problems, got %d\n%s", code, out)
	}
	if !strings.Contains(errOut, "Stop Jenkins first") {
		t.Errorf("Expected the stop-the-server warning on stderr, got %q", errOut)
	}
	if !strings.Contains(out, "(repair mode)") {
		t.Errorf("Expected repair mode summary:\n%s", out)
	}
	if f.Exists("2") {
		t.Error("Expected builds/2 to be unlinked")
	}

	code, out, _ = runCLI(t, "check", f.Path)
	if code != exitOK {
		t.Errorf("Expected a clean second run, got exit %d\n%s", code, out)
	}
}

func TestCheck_QuietSuppressesWarning(t *testing.T) {
	f := jobtest.New(t).Build(1, jobtest.Day(1)).Counter(2)

	code, out, errOut := runCLI(t, "check", "-d", "-q", f.Path)
	if code != exitOK {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if errOut != "" {
		t.Errorf("Expected no stderr in quiet mode, got %q", errOut)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 1 {
		t.Errorf("Expected only the summary, got:\n%s", out)
	}
}

func TestCheck_JSON(t *testing.T) {
	f := jobtest.New(t).Build(1, jobtest.Day(1)).Counter(1)

	code, out, _ := runCLI(t, "check", "--format", "json", f.Path)
	if code != exitProblems {
		t.Fatalf("Expected exit 1, got %d", code)
	}
	var run contracts.RunReport
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if len(run.Jobs) != 1 || len(run.Jobs[0].Problems) != 1 || run.Jobs[0].Problems[0].Tag != "NEXT" {
		t.Errorf("Unexpected report %+v", run)
	}
}

func TestCheck_UsageErrors(t *testing.T) {
	f := jobtest.New(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no paths", []string{"check"}, "Hint:"},
		{"missing path", []string{"check", f.Path + "-missing"}, "Cannot read"},
		{"unknown flag", []string{"check", "--bogus", f.Path}, "unknown flag"},
		{"unknown format", []string{"check", "--format", "xml", f.Path}, "format must be one of"},
		{"zero jobs", []string{"check", "--jobs", "0", f.Path}, "parallelism must be at least 1"},
		{"watch arity", []string{"watch"}, "accepts 1 arg"},
		{"history arity", []string{"history", "a", "b"}, "accepts at most 1 arg"},
		{"history local", []string{"history"}, "No run history in local mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != exitUsage {
				t.Errorf("Expected exit 2, got %d (stderr %q)", code, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("Expected %q in stderr, got %q", tt.want, errOut)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"problems", &exitError{code: exitProblems}, exitProblems},
		{"usage", usageError(errors.New("bad")), exitUsage},
		{"user error", &pipeline.UserError{Message: "No paths"}, exitUsage},
		{"wrapped user error", errors.Join(errors.New("ctx"), &pipeline.UserError{Message: "x"}), exitUsage},
		{"runtime", errors.New("broker down"), exitProblems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err, io.Discard); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCode_SilentExitError(t *testing.T) {
	var buf bytes.Buffer
	exitCode(&exitError{code: exitProblems}, &buf)
	if buf.Len() != 0 {
		t.Errorf("Expected nothing printed for a bare exit status, got %q", buf.String())
	}
}
