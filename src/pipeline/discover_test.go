package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jobdoctor/src/jobtest"
)

func names(targets []Target) []string {
	var out []string
	for _, t := range targets {
		out = append(out, t.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover_JobDirectory(t *testing.T) {
	f := jobtest.New(t)

	targets, err := Discover(f.Path)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(targets) != 1 || targets[0].Path != f.Path || targets[0].Name != "job" {
		t.Errorf("Expected the job itself, got %+v", targets)
	}
}

func TestDiscover_JenkinsHomeWithFolders(t *testing.T) {
	home := t.TempDir()
	jobs := filepath.Join(home, "jobs")
	jobtest.At(t, filepath.Join(jobs, "beta"))
	jobtest.At(t, filepath.Join(jobs, "alpha"))

	// A folder: config.xml plus its own jobs/.
	folder := filepath.Join(jobs, "team")
	mkdir(t, filepath.Join(folder, "jobs"))
	writeFile(t, filepath.Join(folder, "config.xml"))
	jobtest.At(t, filepath.Join(folder, "jobs", "deploy"))

	writeFile(t, filepath.Join(jobs, "README"))
	mkdir(t, filepath.Join(jobs, "empty"))

	targets, err := Discover(home)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{"alpha", "beta", "team/deploy"}
	if got := names(targets); !equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDiscover_DirectoryOfJobs(t *testing.T) {
	dir := t.TempDir()
	jobtest.At(t, filepath.Join(dir, "x"))
	jobtest.At(t, filepath.Join(dir, "y"))

	targets, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if got := names(targets); !equal(got, []string{"x", "y"}) {
		t.Errorf("Expected [x y], got %v", got)
	}
}

func TestDiscover_ConfigOnlyJob(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	mkdir(t, dir)
	writeFile(t, filepath.Join(dir, "config.xml"))

	targets, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(targets) != 1 {
		t.Errorf("Expected a job without builds to be found, got %v", targets)
	}
}

func TestDiscoverAll_Deduplicates(t *testing.T) {
	home := t.TempDir()
	app := jobtest.At(t, filepath.Join(home, "jobs", "app"))

	targets, err := DiscoverAll([]string{home, app.Path})
	if err != nil {
		t.Fatalf("DiscoverAll failed: %v", err)
	}
	if len(targets) != 1 {
		t.Errorf("Expected 1 target, got %d", len(targets))
	}
}

func TestValidateRoots(t *testing.T) {
	f := jobtest.New(t)

	if err := ValidateRoots([]string{f.Path}); err != nil {
		t.Errorf("Expected valid root, got %v", err)
	}

	tests := []struct {
		name  string
		roots []string
	}{
		{"none", nil},
		{"missing", []string{filepath.Join(f.Path, "missing")}},
		{"file", []string{filepath.Join(f.Path, "config.xml")}},
		{"one bad among good", []string{f.Path, filepath.Join(f.Path, "config.xml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoots(tt.roots)
			var userErr *UserError
			if !errors.As(err, &userErr) {
				t.Fatalf("Expected UserError, got %v", err)
			}
			if userErr.Hint == "" {
				t.Error("Expected a hint")
			}
		})
	}
}

func TestUserError_Format(t *testing.T) {
	err := &UserError{Message: "Bad path", Hint: "Try again", Err: os.ErrNotExist}

	want := "Bad path\n\nHint: Try again\n\nDetails: file does not exist"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected UserError to unwrap")
	}
}
