package check

import (
	"os"
	"path/filepath"
	"time"

	"jobdoctor/src/build"
	"jobdoctor/src/job"
	"jobdoctor/src/repair"
)

// ConvenienceLinkNames are the symlinks Jenkins keeps next to the builds.
var ConvenienceLinkNames = []string{
	"lastFailedBuild",
	"lastStableBuild",
	"lastSuccessfulBuild",
	"lastUnstableBuild",
	"lastUnsuccessfulBuild",
}

// NoBuildTarget is where Jenkins points a convenience link with no build.
const NoBuildTarget = "-1"

func JobConfig(j *job.Job) {
	if _, err := os.Stat(j.ConfigPath()); err == nil {
		return
	}
	j.Report(job.NewProblem(job.TagNoJob, j.ConfigPath(),
		"%s has no %s", j.Path, job.ConfigFileName))
}

func ConvenienceLinks(j *job.Job) {
	for _, name := range ConvenienceLinkNames {
		path := j.EntryPath(name)
		info, err := os.Lstat(path)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		kind := "file"
		if info.IsDir() {
			kind = "directory"
		}
		display := filepath.Join(job.BuildsDirName, name)
		j.Report(job.NewProblem(job.TagNotLink, path, "%s is a %s, not a symlink", display, kind),
			job.NewSolution(repair.Replace(path, NoBuildTarget), "replace %s with a symlink to %s", display, NoBuildTarget))
	}
}

func NumberLinks(j *job.Job) {
	for _, l := range j.Numbers {
		if !l.Exists() || l.IsSymlink() {
			continue
		}
		j.Report(job.NewProblem(job.TagNotLink, l.Path(), "%s is not a symlink", l),
			job.NewSolution(repair.Archive(l.Path(), j.QuarantineDir()), "archive %s into %s", l, job.QuarantineDirName))
	}
}

func BrokenLinks(j *job.Job) {
	for _, l := range j.Numbers {
		if !l.IsSymlink() || l.TargetExists() {
			continue
		}
		target, _ := l.Target()
		j.Report(job.NewProblem(job.TagBroken, l.Path(), "%s points to missing %s", l, filepath.Base(target)),
			job.NewSolution(repair.Unlink(l.Path()), "unlink %s", l))
	}
}

// BuildOrder flags a valid link whose build is newer than some build with
// a higher number. Equal timestamps pass; links whose target name is not a
// timestamp are left out of the sequence.
func BuildOrder(j *job.Job) {
	type entry struct {
		link *build.NumberedLink
		ts   time.Time
	}

	var seq []entry
	for _, l := range j.Numbers {
		if !l.Valid() {
			continue
		}
		ts, ok := l.Timestamp()
		if !ok {
			continue
		}
		seq = append(seq, entry{link: l, ts: ts})
	}
	if len(seq) < 2 {
		return
	}

	// suffixMin[i] is the earliest timestamp in seq[i:].
	suffixMin := make([]time.Time, len(seq))
	suffixMin[len(seq)-1] = seq[len(seq)-1].ts
	for i := len(seq) - 2; i >= 0; i-- {
		suffixMin[i] = seq[i].ts
		if suffixMin[i+1].Before(suffixMin[i]) {
			suffixMin[i] = suffixMin[i+1]
		}
	}

	flagged := make(map[*build.NumberedLink]bool)
	for i := 0; i < len(seq)-1; i++ {
		if seq[i].ts.After(suffixMin[i+1]) {
			flagged[seq[i].link] = true
		}
	}

	// Several flagged links may share a dated directory; it is archived
	// once, and unflagged links to it are removed.
	for i := 0; i < len(seq)-1; i++ {
		l := seq[i].link
		if !flagged[l] {
			continue
		}
		dated, _ := l.Dated()
		var sols []job.Solution
		if !archiving(j, l.Path()) {
			sols = append(sols, job.NewSolution(repair.Archive(l.Path(), j.QuarantineDir()), "archive %s", l))
		}
		if !archiving(j, dated.Path()) {
			sols = append(sols, job.NewSolution(repair.Archive(dated.Path(), j.QuarantineDir()), "archive %s", dated))
			sols = append(sols, releaseLinks(j, l, func(o *build.NumberedLink) bool { return flagged[o] })...)
		}
		j.Report(job.NewProblem(job.TagOrder, l.Path(),
			"%s (%s) is newer than a later build (%s)",
			l, seq[i].ts.Format(build.TimestampLayout), suffixMin[i+1].Format(build.TimestampLayout)),
			sols...)
	}
}
