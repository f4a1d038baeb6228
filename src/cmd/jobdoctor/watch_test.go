package main

import (
	"context"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"jobdoctor/src/jobtest"
	"jobdoctor/src/logger"
)

func TestWatcher_Relevant(t *testing.T) {
	w := &watcher{jobDir: "/jobs/app"}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"new build dir", fsnotify.Event{Name: "/jobs/app/builds/2024-01-01_00-00-00", Op: fsnotify.Create}, true},
		{"link removed", fsnotify.Event{Name: "/jobs/app/builds/3", Op: fsnotify.Remove}, true},
		{"counter written", fsnotify.Event{Name: "/jobs/app/nextBuildNumber", Op: fsnotify.Write}, true},
		{"config renamed", fsnotify.Event{Name: "/jobs/app/config.xml", Op: fsnotify.Rename}, true},
		{"builds created", fsnotify.Event{Name: "/jobs/app/builds", Op: fsnotify.Create}, true},
		{"workspace noise", fsnotify.Event{Name: "/jobs/app/workspace", Op: fsnotify.Create}, false},
		{"chmod only", fsnotify.Event{Name: "/jobs/app/builds/3", Op: fsnotify.Chmod}, false},
		{"inside a build", fsnotify.Event{Name: "/jobs/app/builds/2024-01-01_00-00-00/log", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestWatcher_ReauditsAfterChange(t *testing.T) {
	f := jobtest.New(t).Build(1, jobtest.Day(1)).Counter(2)

	var audits atomic.Int32
	audited := make(chan struct{}, 4)
	w := &watcher{
		jobDir:   filepath.Clean(f.Path),
		debounce: 200 * time.Millisecond,
		log:      logger.NewSilentLogger(),
		status:   io.Discard,
		audited:  audited,
		audit: func(ctx context.Context) error {
			audits.Add(1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	waitAudit(t, audited)

	// Several changes in a burst settle into one audit.
	f.Build(2, jobtest.Day(2)).Counter(3)
	waitAudit(t, audited)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watcher did not stop after cancel")
	}

	if got := audits.Load(); got != 2 {
		t.Errorf("Expected 2 audits (initial and one after the burst), got %d", got)
	}
}

func waitAudit(t *testing.T, audited <-chan struct{}) {
	t.Helper()
	select {
	case <-audited:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for an audit")
	}
}
