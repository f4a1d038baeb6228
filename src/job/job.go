// Package job scans a Jenkins job directory into its two build indexes
// and collects the problems and proposed repairs that checks report.
package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"jobdoctor/src/build"
)

const (
	BuildsDirName     = "builds"
	QuarantineDirName = "outOfOrderBuilds"
	CounterFileName   = "nextBuildNumber"
	ConfigFileName    = "config.xml"
)

// ErrNotJob is returned by Scan when the path is not a directory.
var ErrNotJob = errors.New("not a job directory")

// Job is a snapshot of one job's build history. Re-scan instead of
// updating it after repairs.
type Job struct {
	Path    string
	Numbers []*build.NumberedLink
	Dates   []*build.DatedDir

	problems  []Problem
	solutions []Solution
}

// Scan lists path/builds and sorts its numbered links by number and its
// dated directories by time. Entries matching neither pattern are skipped.
func Scan(path string) (*Job, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotJob, path)
	}

	j := &Job{Path: filepath.Clean(path)}

	entries, err := os.ReadDir(j.BuildsDir())
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read builds directory: %w", err)
	}

	for _, e := range entries {
		switch build.Classify(e.Name()) {
		case build.KindNumber:
			l, err := build.NewNumberedLink(j.BuildsDir(), e.Name())
			if err != nil {
				continue
			}
			j.Numbers = append(j.Numbers, l)
		case build.KindDate:
			d, err := build.NewDatedDir(j.BuildsDir(), e.Name())
			if err != nil {
				continue
			}
			j.Dates = append(j.Dates, d)
		}
	}

	// Names like "007" and "7" share a number; keep the name order stable.
	sort.SliceStable(j.Numbers, func(a, b int) bool {
		if j.Numbers[a].Number != j.Numbers[b].Number {
			return j.Numbers[a].Number < j.Numbers[b].Number
		}
		return j.Numbers[a].Name() < j.Numbers[b].Name()
	})
	sort.SliceStable(j.Dates, func(a, b int) bool {
		return j.Dates[a].Time.Before(j.Dates[b].Time)
	})

	return j, nil
}

func (j *Job) BuildsDir() string     { return filepath.Join(j.Path, BuildsDirName) }
func (j *Job) QuarantineDir() string { return filepath.Join(j.Path, QuarantineDirName) }
func (j *Job) CounterPath() string   { return filepath.Join(j.Path, CounterFileName) }
func (j *Job) ConfigPath() string    { return filepath.Join(j.Path, ConfigFileName) }

// EntryPath returns the path of builds/<name>.
func (j *Job) EntryPath(name string) string {
	return filepath.Join(j.BuildsDir(), name)
}

// Link returns the numbered link for n, whether or not it was scanned.
func (j *Job) Link(n int) *build.NumberedLink {
	return build.LinkFor(j.BuildsDir(), n)
}

// Report records a problem and the solutions proposed for it.
func (j *Job) Report(p Problem, actions ...Solution) {
	idx := len(j.problems)
	j.problems = append(j.problems, p)
	for _, s := range actions {
		s.Problem = idx
		j.solutions = append(j.solutions, s)
	}
}

func (j *Job) HasProblems() bool { return len(j.problems) > 0 }

// Problems returns a copy of the reported problems in report order.
func (j *Job) Problems() []Problem {
	out := make([]Problem, len(j.problems))
	copy(out, j.problems)
	return out
}

// Solutions returns a copy of the proposed solutions in report order.
func (j *Job) Solutions() []Solution {
	out := make([]Solution, len(j.solutions))
	copy(out, j.solutions)
	return out
}

// Repair applies every solution in order and stops at the first failure.
// It returns the number of solutions applied. Actions that reach outside
// the job directory are refused.
func (j *Job) Repair() (int, error) {
	for i, s := range j.solutions {
		if err := s.Action.Confine(j.Path); err != nil {
			return i, err
		}
		if err := s.Apply(); err != nil {
			return i, fmt.Errorf("%s: %w", s.Action, err)
		}
	}
	return len(j.solutions), nil
}
