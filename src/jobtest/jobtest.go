// Package jobtest builds Jenkins job directory fixtures on a temporary
// filesystem for tests. Fixtures use real symlinks, so tests that use it
// need a platform with symlink support.
package jobtest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"
)

// Fixture is a job directory under t.TempDir().
type Fixture struct {
	t    *testing.T
	Path string
}

// SkipOnWindows skips tests that rely on symlinks.
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping symlink test on Windows")
	}
}

// New creates an empty job directory with config.xml and builds/.
func New(t *testing.T) *Fixture {
	t.Helper()
	SkipOnWindows(t)
	f := Bare(t)
	f.Config()
	f.mkdir(f.BuildsDir())
	return f
}

// Bare creates an empty job directory with nothing in it.
func Bare(t *testing.T) *Fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "job")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &Fixture{t: t, Path: dir}
}

// At creates a job directory with config.xml and builds/ at path.
func At(t *testing.T, path string) *Fixture {
	t.Helper()
	SkipOnWindows(t)
	f := &Fixture{t: t, Path: path}
	f.mkdir(f.BuildsDir())
	f.Config()
	return f
}

func (f *Fixture) BuildsDir() string { return filepath.Join(f.Path, "builds") }

// Entry returns the path of a builds/ entry.
func (f *Fixture) Entry(name string) string { return filepath.Join(f.BuildsDir(), name) }

// Config writes a minimal config.xml.
func (f *Fixture) Config() *Fixture {
	f.write(filepath.Join(f.Path, "config.xml"), "<?xml version='1.1' encoding='UTF-8'?>\n<project/>\n")
	return f
}

// Stamp formats t the way Jenkins names build directories.
func Stamp(t time.Time) string {
	return t.Format("2006-01-02_15-04-05")
}

// Day returns a timestamp name n days after 2024-01-01 at noon.
func Day(n int) string {
	return Stamp(time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local).AddDate(0, 0, n))
}

// Dated creates builds/<name>/build.xml recording number.
func (f *Fixture) Dated(name string, number int) *Fixture {
	return f.DatedRecord(name, fmt.Sprintf("<?xml version='1.1' encoding='UTF-8'?>\n<build>\n  <number>%d</number>\n  <result>SUCCESS</result>\n</build>\n", number))
}

// DatedRecord creates builds/<name>/build.xml with arbitrary content.
func (f *Fixture) DatedRecord(name, content string) *Fixture {
	dir := f.Entry(name)
	f.mkdir(dir)
	f.write(filepath.Join(dir, "build.xml"), content)
	return f
}

// DatedEmpty creates builds/<name>/ without a build.xml.
func (f *Fixture) DatedEmpty(name string) *Fixture {
	f.mkdir(f.Entry(name))
	return f
}

// Link creates builds/<n> as a relative symlink to target.
func (f *Fixture) Link(n int, target string) *Fixture {
	return f.Symlink(strconv.Itoa(n), target)
}

// Symlink creates builds/<name> pointing at target.
func (f *Fixture) Symlink(name, target string) *Fixture {
	f.mkdir(f.BuildsDir())
	if err := os.Symlink(target, f.Entry(name)); err != nil {
		f.t.Fatal(err)
	}
	return f
}

// Build creates a dated directory recording n and the link n pointing at it.
func (f *Fixture) Build(n int, name string) *Fixture {
	return f.Dated(name, n).Link(n, name)
}

// File creates a regular file builds/<name>.
func (f *Fixture) File(name string) *Fixture {
	f.mkdir(f.BuildsDir())
	f.write(f.Entry(name), "not a link\n")
	return f
}

// Dir creates a directory builds/<name> containing one file.
func (f *Fixture) Dir(name string) *Fixture {
	f.mkdir(f.Entry(name))
	f.write(filepath.Join(f.Entry(name), "log"), "log\n")
	return f
}

// Counter writes nextBuildNumber.
func (f *Fixture) Counter(v int) *Fixture {
	f.write(filepath.Join(f.Path, "nextBuildNumber"), strconv.Itoa(v)+"\n")
	return f
}

// ReadCounter returns the raw nextBuildNumber content.
func (f *Fixture) ReadCounter() string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.Path, "nextBuildNumber"))
	if err != nil {
		f.t.Fatal(err)
	}
	return string(data)
}

// Quarantined reports whether name was archived into outOfOrderBuilds.
func (f *Fixture) Quarantined(name string) bool {
	_, err := os.Lstat(filepath.Join(f.Path, "outOfOrderBuilds", name))
	return err == nil
}

// Exists reports whether builds/<name> exists (without following links).
func (f *Fixture) Exists(name string) bool {
	_, err := os.Lstat(f.Entry(name))
	return err == nil
}

// IsSymlink reports whether builds/<name> is a symlink.
func (f *Fixture) IsSymlink(name string) bool {
	info, err := os.Lstat(f.Entry(name))
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// Readlink returns the target of builds/<name>.
func (f *Fixture) Readlink(name string) string {
	f.t.Helper()
	target, err := os.Readlink(f.Entry(name))
	if err != nil {
		f.t.Fatal(err)
	}
	return target
}

func (f *Fixture) mkdir(path string) {
	f.t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		f.t.Fatal(err)
	}
}

func (f *Fixture) write(path, content string) {
	f.t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatal(err)
	}
}
