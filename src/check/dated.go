package check

import (
	"os"
	"path/filepath"

	"jobdoctor/src/build"
	"jobdoctor/src/job"
	"jobdoctor/src/repair"
)

// DatedDirs checks every dated directory against the numbered links. Each
// directory gets at most one of STOLEN, NONUM, NUMBAD or BADDATE.
func DatedDirs(j *job.Job) {
	linked := make(map[string]bool)
	for _, l := range j.Numbers {
		if !l.Valid() {
			continue
		}
		if c, ok := l.Canonical(); ok {
			linked[c] = true
		}
	}

	for _, d := range j.Dates {
		n, ok := d.Number()
		if !d.IsDir() || !ok {
			badDate(j, d)
			continue
		}
		if c, ok := d.Canonical(); ok && linked[c] {
			continue
		}

		l := j.Link(n)
		switch {
		case l.Valid():
			stolen(j, d, l)
		case !l.Exists() || l.IsSymlink():
			j.Report(job.NewProblem(job.TagNoNum, d.Path(), "%s records build %d but nothing links to it", d, n),
				job.NewSolution(repair.Link(l.Path(), d.Name()), "link %s to %s", l, d.Name()))
		default:
			numBad(j, d, l)
		}
	}
}

func badDate(j *job.Job, d *build.DatedDir) {
	reason := "has no usable build number"
	switch info, err := os.Stat(d.Path()); {
	case err != nil:
		reason = "cannot be read"
	case !info.IsDir():
		reason = "is not a directory"
	default:
		if _, err := os.Stat(d.RecordPath()); err != nil {
			reason = "has no " + build.RecordFile
		}
	}
	var sols []job.Solution
	if !archiving(j, d.Path()) {
		sols = append(sols, job.NewSolution(repair.Archive(d.Path(), j.QuarantineDir()), "archive %s", d))
	}
	sols = append(sols, releaseLinks(j, d, func(*build.NumberedLink) bool { return false })...)
	j.Report(job.NewProblem(job.TagBadDate, d.Path(), "%s %s", d, reason), sols...)
}

// stolen handles a directory whose number is linked to another build. The
// link moves here and the build it pointed at goes to quarantine, unless
// that build is this directory.
func stolen(j *job.Job, d *build.DatedDir, l *build.NumberedLink) {
	n, _ := d.Number()
	target, _ := l.Target()
	p := job.NewProblem(job.TagStolen, d.Path(), "%s records build %d but %s points to %s",
		d, n, l, filepath.Base(target))

	sols := []job.Solution{
		job.NewSolution(repair.Link(l.Path(), d.Name()), "relink %s to %s", l, d.Name()),
	}
	if !build.Same(l, d) && !archiving(j, target) {
		sols = append(sols, job.NewSolution(repair.Archive(target, j.QuarantineDir()),
			"archive %s", filepath.Join(job.BuildsDirName, filepath.Base(target))))
		sols = append(sols, releaseLinks(j, l, func(o *build.NumberedLink) bool { return o == l })...)
	}
	j.Report(p, sols...)
}

func numBad(j *job.Job, d *build.DatedDir, l *build.NumberedLink) {
	n, _ := d.Number()
	p := job.NewProblem(job.TagNumBad, d.Path(), "%s records build %d but %s is not a symlink", d, n, l)

	var sols []job.Solution
	if !archiving(j, l.Path()) {
		sols = append(sols, job.NewSolution(repair.Archive(l.Path(), j.QuarantineDir()), "archive %s", l))
	}
	sols = append(sols, job.NewSolution(repair.Link(l.Path(), d.Name()), "link %s to %s", l, d.Name()))
	j.Report(p, sols...)
}
