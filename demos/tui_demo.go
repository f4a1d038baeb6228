// Demo program to showcase the jobdoctor TUI with a realistic set of reports.
package main

import (
	"fmt"
	"os"
	"time"

	"jobdoctor/src/contracts"
	"jobdoctor/src/tui"
)

const home = "/var/lib/jenkins/jobs"

func main() {
	fmt.Println("Generating sample job reports...")
	reports := generateSampleData()

	fmt.Printf("Loaded %d problems across %d jobs.\n", countProblems(reports), len(reports))
	fmt.Println("Launching TUI...")
	time.Sleep(500 * time.Millisecond)

	if err := tui.Start(reports); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func countProblems(reports []contracts.JobReport) int {
	n := 0
	for _, r := range reports {
		n += len(r.Problems)
	}
	return n
}

func sampleReport(name string, links, dirs int) contracts.JobReport {
	return contracts.JobReport{
		RunID:         "run-demo",
		JobName:       name,
		JobPath:       home + "/" + name,
		NumberedLinks: links,
		DatedDirs:     dirs,
		OldestBuild:   time.Now().Add(-90 * 24 * time.Hour).UTC().Format(time.RFC3339),
		ScannedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func problem(r *contracts.JobReport, tag, entry, msg string, fixes ...[2]string) {
	idx := len(r.Problems)
	r.Problems = append(r.Problems, contracts.ProblemRecord{Tag: tag, Message: msg, Path: r.JobPath + "/" + entry})
	for _, f := range fixes {
		r.Solutions = append(r.Solutions, contracts.SolutionRecord{Problem: idx, Message: f[0], Command: f[1]})
	}
}

func generateSampleData() []contracts.JobReport {
	backend := sampleReport("backend-release", 412, 415)
	problem(&backend, "STOLEN", "builds/2024-05-02_10-14-07",
		"builds/2024-05-02_10-14-07 records build 388 but builds/388 points to 2024-05-01_22-40-31",
		[2]string{"relink builds/388 to 2024-05-02_10-14-07", "ln -sfn 2024-05-02_10-14-07 " + backend.JobPath + "/builds/388"},
		[2]string{"archive builds/2024-05-01_22-40-31", "mv " + backend.JobPath + "/builds/2024-05-01_22-40-31 " + backend.JobPath + "/outOfOrderBuilds/2024-05-01_22-40-31"})
	problem(&backend, "NONUM", "builds/2024-05-03_08-00-12",
		"builds/2024-05-03_08-00-12 records build 390 but nothing links to it",
		[2]string{"link builds/390 to 2024-05-03_08-00-12", "ln -sfn 2024-05-03_08-00-12 " + backend.JobPath + "/builds/390"})
	problem(&backend, "NEXT", "nextBuildNumber",
		"nextBuildNumber is 400, expected 413",
		[2]string{"set nextBuildNumber to 413", "echo 413 > " + backend.JobPath + "/nextBuildNumber"})

	frontend := sampleReport("frontend/web-app", 57, 57)
	frontend.JobPath = home + "/frontend/jobs/web-app"
	problem(&frontend, "ORDER", "builds/41",
		"builds/41 (2024-04-30_11-02-09) is newer than a later build (2024-04-29_16-45-50)",
		[2]string{"archive builds/41", "mv " + frontend.JobPath + "/builds/41 " + frontend.JobPath + "/outOfOrderBuilds/41"},
		[2]string{"archive builds/2024-04-30_11-02-09", "mv " + frontend.JobPath + "/builds/2024-04-30_11-02-09 " + frontend.JobPath + "/outOfOrderBuilds/2024-04-30_11-02-09"})
	problem(&frontend, "BROKEN", "builds/55",
		"builds/55 points to missing 2024-05-06_09-12-44",
		[2]string{"unlink builds/55", "unlink " + frontend.JobPath + "/builds/55"})

	nightly := sampleReport("nightly-db-backup", 30, 31)
	problem(&nightly, "BADDATE", "builds/2024-05-04_02-00-00",
		"builds/2024-05-04_02-00-00 has no build.xml",
		[2]string{"archive builds/2024-05-04_02-00-00", "mv " + nightly.JobPath + "/builds/2024-05-04_02-00-00 " + nightly.JobPath + "/outOfOrderBuilds/2024-05-04_02-00-00"})
	problem(&nightly, "NOTLINK", "builds/lastSuccessfulBuild",
		"builds/lastSuccessfulBuild is a directory, not a symlink",
		[2]string{"replace builds/lastSuccessfulBuild with a symlink to -1", "rm -rf " + nightly.JobPath + "/builds/lastSuccessfulBuild && ln -s -1 " + nightly.JobPath + "/builds/lastSuccessfulBuild"})

	orphan := sampleReport("old-migration", 0, 0)
	orphan.OldestBuild = ""
	problem(&orphan, "NOJOB", "config.xml", orphan.JobPath+" has no config.xml")

	unreadable := sampleReport("locked-down", 0, 0)
	unreadable.OldestBuild = ""
	unreadable.ScanError = "open " + unreadable.JobPath + "/builds: permission denied"

	return []contracts.JobReport{
		backend,
		frontend,
		nightly,
		orphan,
		unreadable,
		sampleReport("docs-site", 120, 120),
	}
}
