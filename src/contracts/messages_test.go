package contracts

import "testing"

func TestRunReport_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		jobs []JobReport
		want int
	}{
		{"no jobs", nil, 0},
		{"clean", []JobReport{{JobName: "a"}, {JobName: "b"}}, 0},
		{"problem", []JobReport{{JobName: "a"}, {JobName: "b", Problems: []ProblemRecord{{Tag: "NEXT"}}}}, 1},
		{"repair failure", []JobReport{{JobName: "a", RepairError: "archive destination already exists"}}, 1},
		{"scan failure", []JobReport{{JobName: "a", ScanError: "permission denied"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunReport{Jobs: tt.jobs}
			if got := r.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunReport_Tally(t *testing.T) {
	r := &RunReport{Jobs: []JobReport{
		{JobName: "a"},
		{JobName: "b", Problems: []ProblemRecord{{Tag: "BROKEN"}, {Tag: "NEXT"}}},
		{JobName: "c", Problems: []ProblemRecord{{Tag: "ORDER"}}, RepairError: "boom"},
	}}
	r.Tally()

	if r.Run.JobsScanned != 3 {
		t.Errorf("Expected 3 jobs scanned, got %d", r.Run.JobsScanned)
	}
	if r.Run.JobsWithProblems != 2 {
		t.Errorf("Expected 2 jobs with problems, got %d", r.Run.JobsWithProblems)
	}
	if r.Run.ProblemsTotal != 3 {
		t.Errorf("Expected 3 problems, got %d", r.Run.ProblemsTotal)
	}
	if r.Run.RepairFailures != 1 {
		t.Errorf("Expected 1 repair failure, got %d", r.Run.RepairFailures)
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"NOJOB", TierIntegrity},
		{"BADDATE", TierIntegrity},
		{"STOLEN", TierIntegrity},
		{"ORDER", TierIntegrity},
		{TagScanError, TierIntegrity},
		{"BROKEN", TierIndex},
		{"NONUM", TierIndex},
		{"NUMBAD", TierIndex},
		{"NOTLINK", TierIndex},
		{"NEXT", TierBookkeeping},
		{"WHATEVER", TierIndex},
	}
	for _, tt := range tests {
		if got := Tier(tt.tag); got != tt.want {
			t.Errorf("Tier(%s) = %d, expected %d", tt.tag, got, tt.want)
		}
	}
	if TierName(TierBookkeeping) != "bookkeeping" {
		t.Errorf("Unexpected tier name %q", TierName(TierBookkeeping))
	}
}
