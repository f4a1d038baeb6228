// Package check runs the fixed battery of build-history checks against a
// scanned job. Checks only read the job; they report problems and the
// repairs that would fix them.
package check

import (
	"jobdoctor/src/build"
	"jobdoctor/src/job"
	"jobdoctor/src/repair"
)

// Check is one named consistency check.
type Check struct {
	Name string
	Tags []job.Tag
	Run  func(j *job.Job)
}

// All lists the checks in the order they run.
var All = []Check{
	{Name: "job-config", Tags: []job.Tag{job.TagNoJob}, Run: JobConfig},
	{Name: "convenience-links", Tags: []job.Tag{job.TagNotLink}, Run: ConvenienceLinks},
	{Name: "number-links", Tags: []job.Tag{job.TagNotLink}, Run: NumberLinks},
	{Name: "broken-links", Tags: []job.Tag{job.TagBroken}, Run: BrokenLinks},
	{Name: "build-order", Tags: []job.Tag{job.TagOrder}, Run: BuildOrder},
	{Name: "dated-dirs", Tags: []job.Tag{job.TagStolen, job.TagNoNum, job.TagNumBad, job.TagBadDate}, Run: DatedDirs},
	{Name: "next-build-number", Tags: []job.Tag{job.TagNext}, Run: NextBuildNumber},
}

// Run runs every check against j.
func Run(j *job.Job) {
	for _, c := range All {
		c.Run(j)
	}
}

// Audit scans path and runs every check.
func Audit(path string) (*job.Job, error) {
	j, err := job.Scan(path)
	if err != nil {
		return nil, err
	}
	Run(j)
	return j, nil
}

// archiving reports whether an earlier check already proposed moving path
// into quarantine. A second archive of the same entry would collide.
func archiving(j *job.Job, path string) bool {
	return proposed(j, repair.VerbArchive, path)
}

func unlinking(j *job.Job, path string) bool {
	return proposed(j, repair.VerbUnlink, path)
}

func proposed(j *job.Job, verb repair.Verb, path string) bool {
	for _, s := range j.Solutions() {
		if s.Action.Verb == verb && s.Action.Path == path {
			return true
		}
	}
	return false
}

// releaseLinks unlinks the valid numbered links that still resolve to
// gone, a build about to be archived, so the repair leaves none dangling.
// Links in keep and links already moved or removed are left alone.
func releaseLinks(j *job.Job, gone build.Ref, keep func(*build.NumberedLink) bool) []job.Solution {
	var sols []job.Solution
	for _, l := range j.Numbers {
		if !l.Valid() || !build.Same(l, gone) || keep(l) {
			continue
		}
		if archiving(j, l.Path()) || unlinking(j, l.Path()) {
			continue
		}
		sols = append(sols, job.NewSolution(repair.Unlink(l.Path()), "unlink %s", l))
	}
	return sols
}
