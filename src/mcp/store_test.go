package mcp

import (
	"context"
	"errors"
	"testing"

	"jobdoctor/src/contracts"
	"jobdoctor/src/store"
)

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	if err := st.CreateRun(ctx, &contracts.RunStatus{RunID: "run-1"}); err != nil {
		t.Fatal(err)
	}
	for _, r := range testReports() {
		r.RunID = "run-1"
		if err := st.SaveJobReport(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.CreateRun(ctx, &contracts.RunStatus{RunID: "empty"}); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestFindJobReport(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	byPath, err := findJobReport(ctx, st, "run-1", "/j/jobs/api/")
	if err != nil {
		t.Fatalf("lookup by path failed: %v", err)
	}
	if byPath.JobName != "api" {
		t.Errorf("Expected api, got %s", byPath.JobName)
	}

	byName, err := findJobReport(ctx, st, "run-1", "web")
	if err != nil {
		t.Fatalf("lookup by name failed: %v", err)
	}
	if len(byName.Problems) != 2 {
		t.Errorf("Expected 2 problems, got %d", len(byName.Problems))
	}

	if _, err := findJobReport(ctx, st, "run-1", "nope"); !errors.Is(err, ErrJobNotInRun) {
		t.Errorf("Expected ErrJobNotInRun, got %v", err)
	}
	if _, err := findJobReport(ctx, st, "empty", "web"); !errors.Is(err, ErrJobNotInRun) {
		t.Errorf("Expected ErrJobNotInRun for an empty run, got %v", err)
	}
	if _, err := findJobReport(ctx, st, "run-404", "web"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected store.ErrNotFound, got %v", err)
	}
}

func TestCompressReport(t *testing.T) {
	orig := testReports()[0]
	c := compressReport(orig)

	if c.Solutions[0].Command != "unlink builds/7" {
		t.Errorf("Expected compressed command, got %q", c.Solutions[0].Command)
	}
	if c.Problems[0].Path != "builds/7" {
		t.Errorf("Expected relative path, got %q", c.Problems[0].Path)
	}
	if orig.Solutions[0].Command != "unlink /j/jobs/web/builds/7" {
		t.Error("compressReport must not modify the original")
	}
}
