package check

import (
	"os"
	"strconv"
	"strings"

	"jobdoctor/src/job"
	"jobdoctor/src/repair"
)

// NextBuildNumber flags a counter that would hand out an existing build
// number again. A missing or unreadable counter counts as 0. Jobs without
// any valid link are left alone.
func NextBuildNumber(j *job.Job) {
	highest := 0
	for _, l := range j.Numbers {
		if l.Valid() && l.Number > highest {
			highest = l.Number
		}
	}
	if highest == 0 {
		return
	}

	want := highest + 1
	got := ReadCounter(j.CounterPath())
	if got >= want {
		return
	}
	j.Report(job.NewProblem(job.TagNext, j.CounterPath(), "%s is %d, expected %d", job.CounterFileName, got, want),
		job.NewSolution(repair.RewriteCounter(j.CounterPath(), want), "set %s to %d", job.CounterFileName, want))
}

// ReadCounter returns the value in a nextBuildNumber file, or 0.
func ReadCounter(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return n
}
