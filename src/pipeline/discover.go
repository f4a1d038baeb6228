package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"jobdoctor/src/job"
)

// jobsDirName is where Jenkins keeps the jobs of JENKINS_HOME and of folders.
const jobsDirName = "jobs"

// Target is a job directory to audit. Name is its Jenkins full name
// (folders joined with "/").
type Target struct {
	Path string
	Name string
}

// Discover finds the job directories under root. root may be a job
// directory, a JENKINS_HOME or folder (with jobs/), or a plain directory
// whose children are jobs. Folders are descended.
func Discover(root string) ([]Target, error) {
	root = filepath.Clean(root)
	if isJob(root) {
		return []Target{{Path: root, Name: filepath.Base(root)}}, nil
	}

	var out []Target
	dir := root
	if isDir(filepath.Join(root, jobsDirName)) {
		dir = filepath.Join(root, jobsDirName)
	}
	if err := walkJobs(dir, "", &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func walkJobs(dir, prefix string, out *[]Target) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !isDir(path) {
			continue
		}
		name := e.Name()
		if prefix != "" {
			name = prefix + "/" + name
		}
		switch {
		case isJob(path):
			*out = append(*out, Target{Path: path, Name: name})
		case isDir(filepath.Join(path, jobsDirName)):
			if err := walkJobs(filepath.Join(path, jobsDirName), name, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// isJob reports whether dir looks like a single job: it has a builds
// directory, or a config.xml without a jobs directory.
func isJob(dir string) bool {
	if isDir(filepath.Join(dir, job.BuildsDirName)) {
		return true
	}
	_, err := os.Stat(filepath.Join(dir, job.ConfigFileName))
	return err == nil && !isDir(filepath.Join(dir, jobsDirName))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DiscoverAll runs Discover on every root and drops duplicate paths.
func DiscoverAll(roots []string) ([]Target, error) {
	seen := make(map[string]bool)
	var out []Target
	for _, root := range roots {
		targets, err := Discover(root)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			key := t.Path
			if abs, err := filepath.Abs(t.Path); err == nil {
				key = abs
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out, nil
}
