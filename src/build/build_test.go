package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobdoctor/src/jobtest"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"1", KindNumber},
		{"0042", KindNumber},
		{"2024-01-31_23-59-59", KindDate},
		{"2024-13-01_00-00-00", KindNone},
		{"2024-01-01_00-00", KindNone},
		{"lastStableBuild", KindNone},
		{"legacyIds", KindNone},
		{"-1", KindNone},
		{"12a", KindNone},
		{"", KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2024-03-05_07-08-09")
	if err != nil {
		t.Fatalf("ParseTimestamp failed: %v", err)
	}
	want := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := ParseTimestamp("5"); err == nil {
		t.Error("Expected error for non-timestamp name")
	}
}

func TestNumberedLink_ResolvesRelativeTarget(t *testing.T) {
	f := jobtest.New(t).Build(3, jobtest.Day(3))

	link, err := NewNumberedLink(f.BuildsDir(), "3")
	if err != nil {
		t.Fatalf("NewNumberedLink failed: %v", err)
	}
	if link.Number != 3 {
		t.Errorf("Expected number 3, got %d", link.Number)
	}
	if !link.IsSymlink() || !link.TargetExists() || !link.Valid() {
		t.Error("Expected a valid symlink")
	}

	target, ok := link.Target()
	if !ok {
		t.Fatal("Expected target to resolve")
	}
	if target != f.Entry(jobtest.Day(3)) {
		t.Errorf("Expected target %s, got %s", f.Entry(jobtest.Day(3)), target)
	}

	dated, ok := link.Dated()
	if !ok {
		t.Fatal("Expected dated dir")
	}
	if dated.Name() != jobtest.Day(3) {
		t.Errorf("Expected dated name %s, got %s", jobtest.Day(3), dated.Name())
	}
	n, ok := dated.Number()
	if !ok || n != 3 {
		t.Errorf("Expected recorded number 3, got %d (ok=%v)", n, ok)
	}

	if !Same(link, dated) {
		t.Error("Expected link and its dated dir to be the same build")
	}
	if link.String() != filepath.Join("builds", "3") {
		t.Errorf("Unexpected display string %q", link.String())
	}
}

func TestNumberedLink_Broken(t *testing.T) {
	f := jobtest.New(t).Link(7, jobtest.Day(7))

	link, _ := NewNumberedLink(f.BuildsDir(), "7")
	if !link.IsSymlink() {
		t.Error("Expected symlink")
	}
	if link.TargetExists() || link.Valid() {
		t.Error("Expected broken link")
	}

	// Timestamp comes from the target's name, which is still parsable.
	ts, ok := link.Timestamp()
	if !ok {
		t.Fatal("Expected timestamp from dangling target name")
	}
	if got := ts.Format(TimestampLayout); got != jobtest.Day(7) {
		t.Errorf("Expected %s, got %s", jobtest.Day(7), got)
	}
	if _, ok := link.Canonical(); ok {
		t.Error("Expected no canonical path for a broken link")
	}
}

func TestNumberedLink_NotSymlink(t *testing.T) {
	f := jobtest.New(t).Dir("4")

	link, _ := NewNumberedLink(f.BuildsDir(), "4")
	if !link.Exists() {
		t.Error("Expected entry to exist")
	}
	if link.IsSymlink() || link.Valid() {
		t.Error("Expected a non-symlink entry")
	}
	if _, ok := link.Dated(); ok {
		t.Error("Expected no dated dir for a plain directory")
	}
}

func TestNumberedLink_TargetNotTimestamp(t *testing.T) {
	f := jobtest.New(t).Dir("elsewhere").Link(2, "elsewhere")

	link, _ := NewNumberedLink(f.BuildsDir(), "2")
	if !link.Valid() {
		t.Error("Expected valid link")
	}
	if _, ok := link.Timestamp(); ok {
		t.Error("Expected undefined timestamp for non-timestamp target")
	}
}

func TestNewNumberedLink_RejectsNames(t *testing.T) {
	if _, err := NewNumberedLink("/tmp", "lastStableBuild"); err == nil {
		t.Error("Expected error for non-numeric name")
	}
	if _, err := NewDatedDir("/tmp", "12"); err == nil {
		t.Error("Expected error for non-timestamp name")
	}
}

func TestDatedDir_NumberUndefined(t *testing.T) {
	f := jobtest.New(t).
		DatedEmpty(jobtest.Day(1)).
		DatedRecord(jobtest.Day(2), "<build><result>SUCCESS</result></build>").
		DatedRecord(jobtest.Day(3), "<build><number>abc</number></build>").
		DatedRecord(jobtest.Day(4), "not xml at all <<<")

	for i := 1; i <= 4; i++ {
		d, err := NewDatedDir(f.BuildsDir(), jobtest.Day(i))
		if err != nil {
			t.Fatalf("NewDatedDir failed: %v", err)
		}
		if !d.IsDir() {
			t.Errorf("Expected %s to be a directory", d)
		}
		if n, ok := d.Number(); ok {
			t.Errorf("Expected undefined number for %s, got %d", d, n)
		}
	}
}

func TestDatedDir_FileIsNotDir(t *testing.T) {
	f := jobtest.New(t).File(jobtest.Day(1))

	d, _ := NewDatedDir(f.BuildsDir(), jobtest.Day(1))
	if d.IsDir() {
		t.Error("Expected regular file not to count as a directory")
	}
	if _, ok := d.Number(); ok {
		t.Error("Expected undefined number")
	}
}

func TestSame_DifferentBuilds(t *testing.T) {
	f := jobtest.New(t).Build(1, jobtest.Day(1)).Build(2, jobtest.Day(2))

	a, _ := NewNumberedLink(f.BuildsDir(), "1")
	b, _ := NewNumberedLink(f.BuildsDir(), "2")
	if Same(a, b) {
		t.Error("Expected different builds")
	}
	if Same(a, nil) {
		t.Error("Expected nil ref never to match")
	}
}

func TestSame_AbsoluteTarget(t *testing.T) {
	f := jobtest.New(t).Dated(jobtest.Day(1), 1)
	if err := os.Symlink(f.Entry(jobtest.Day(1)), f.Entry("1")); err != nil {
		t.Fatal(err)
	}

	link, _ := NewNumberedLink(f.BuildsDir(), "1")
	dated, _ := NewDatedDir(f.BuildsDir(), jobtest.Day(1))
	if !Same(link, dated) {
		t.Error("Expected absolute link to match its directory")
	}
}
