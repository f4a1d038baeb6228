package tui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jobdoctor/src/broker"
	"jobdoctor/src/contracts"
)

func sampleReports() []contracts.JobReport {
	return []contracts.JobReport{
		{
			JobName: "web",
			JobPath: "/jenkins/jobs/web",
			Problems: []contracts.ProblemRecord{
				{Tag: "NEXT", Message: "nextBuildNumber is 3, expected 8"},
				{Tag: "BROKEN", Message: "builds/7 points to missing 2024-01-07_12-00-00"},
			},
			Solutions: []contracts.SolutionRecord{
				{Problem: 0, Message: "set nextBuildNumber to 8", Verb: "rewrite-counter", Command: "echo 8 > /jenkins/jobs/web/nextBuildNumber"},
				{Problem: 1, Message: "unlink builds/7", Verb: "unlink", Command: "unlink /jenkins/jobs/web/builds/7"},
			},
		},
		{
			JobName: "api",
			JobPath: "/jenkins/jobs/api",
			Problems: []contracts.ProblemRecord{
				{Tag: "ORDER", Message: "builds/4 (2024-01-09_12-00-00) is newer than a later build (2024-01-05_12-00-00)"},
			},
		},
		{JobName: "clean", JobPath: "/jenkins/jobs/clean"},
		{JobName: "gone", JobPath: "/jenkins/jobs/gone", ScanError: "not a job directory"},
	}
}

func sized(t *testing.T, m MainModel) MainModel {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(MainModel)
}

func press(t *testing.T, m MainModel, keys ...string) MainModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(MainModel)
	}
	return m
}

func visibleTags(m MainModel) []string {
	var tags []string
	for _, it := range m.listView.items {
		tags = append(tags, it.Tag()+"@"+it.Report.JobName)
	}
	return tags
}

func TestItemsFromReports_RanksByTier(t *testing.T) {
	items := ItemsFromReports(sampleReports())

	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Tag() + "@" + it.Report.JobName
	}
	want := []string{"ORDER@api", "SCAN@gone", "BROKEN@web", "NEXT@web"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
	for i, it := range items {
		if it.Rank != i+1 {
			t.Errorf("Expected rank %d, got %d", i+1, it.Rank)
		}
	}

	if sols := items[2].Solutions(); len(sols) != 1 || sols[0].Verb != "unlink" {
		t.Errorf("Expected the unlink solution for BROKEN, got %+v", sols)
	}
	if rec := items[1].Record(); rec.Message != "not a job directory" {
		t.Errorf("Expected scan error as message, got %q", rec.Message)
	}
}

func TestMainModel_Initializing(t *testing.T) {
	m := createTestModel(sampleReports())
	if !strings.Contains(m.View(), "Initializing") {
		t.Errorf("Expected initializing view before the first resize, got %q", m.View())
	}
}

func TestMainModel_NoProblems(t *testing.T) {
	m := sized(t, createTestModel([]contracts.JobReport{{JobName: "clean"}}))

	view := stripAnsi(m.View())
	if !strings.Contains(view, "no problems found") {
		t.Errorf("Expected empty-state message, got:\n%s", view)
	}
	if !strings.Contains(view, "0 problems in 0 of 1 job") {
		t.Errorf("Expected header status, got:\n%s", view)
	}
}

func TestMainModel_JobFilterCycles(t *testing.T) {
	m := sized(t, createTestModel(sampleReports()))
	if len(visibleTags(m)) != 4 {
		t.Fatalf("Expected 4 items, got %v", visibleTags(m))
	}

	m = press(t, m, "tab")
	if m.header.JobFilter() != "api" {
		t.Fatalf("Expected filter api, got %s", m.header.JobFilter())
	}
	if tags := visibleTags(m); len(tags) != 1 || tags[0] != "ORDER@api" {
		t.Errorf("Expected only api items, got %v", tags)
	}

	m = press(t, m, "tab", "tab", "tab")
	if m.header.JobFilter() != allJobs {
		t.Errorf("Expected filter to wrap to ALL, got %s", m.header.JobFilter())
	}
}

func TestMainModel_TierFilter(t *testing.T) {
	m := sized(t, createTestModel(sampleReports()))

	m = press(t, m, "3")
	if tags := visibleTags(m); len(tags) != 1 || tags[0] != "NEXT@web" {
		t.Errorf("Expected only tier 3 items, got %v", tags)
	}
	if !strings.Contains(stripAnsi(m.View()), "Tier: 3 (bookkeeping)") {
		t.Error("Expected header to show the tier filter")
	}

	m = press(t, m, "0")
	if len(visibleTags(m)) != 4 {
		t.Errorf("Expected all items again, got %v", visibleTags(m))
	}
}

func TestMainModel_Search(t *testing.T) {
	m := sized(t, createTestModel(sampleReports()))

	m = press(t, m, "/", "u", "n", "l", "i", "n", "k")
	if !m.searchMode || m.searchQuery != "unlink" {
		t.Fatalf("Expected search mode with query, got %v %q", m.searchMode, m.searchQuery)
	}
	if tags := visibleTags(m); len(tags) != 1 || tags[0] != "BROKEN@web" {
		t.Errorf("Expected the item whose repair matches, got %v", tags)
	}

	m = press(t, m, "backspace", "enter")
	if m.searchMode || m.searchQuery != "unlin" {
		t.Errorf("Expected applied query 'unlin', got %v %q", m.searchMode, m.searchQuery)
	}

	m = press(t, m, "/", "esc")
	if m.searchQuery != "" || len(visibleTags(m)) != 4 {
		t.Errorf("Expected esc to clear the search, got %q %v", m.searchQuery, visibleTags(m))
	}
}

func TestMainModel_Navigation(t *testing.T) {
	m := sized(t, createTestModel(sampleReports()))

	first, _ := m.listView.Selected()
	m = press(t, m, "down")
	second, _ := m.listView.Selected()
	if first.Rank != 1 || second.Rank != 2 {
		t.Errorf("Expected to move from rank 1 to 2, got %d -> %d", first.Rank, second.Rank)
	}
	if !strings.Contains(stripAnsi(m.detailViewport.View()), "not a job directory") {
		t.Error("Expected detail to follow the selection")
	}

	m = press(t, m, "enter")
	if !m.detailFocused {
		t.Fatal("Expected detail focus")
	}
	m = press(t, m, "tab")
	if m.header.JobFilter() != allJobs {
		t.Error("Tab must not change the job filter while the detail has focus")
	}
	m = press(t, m, "esc")
	if m.detailFocused {
		t.Error("Expected esc to return to the list")
	}
}

func TestMainModel_Quit(t *testing.T) {
	m := sized(t, createTestModel(sampleReports()))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestMainModel_Streaming(t *testing.T) {
	ch := make(chan broker.Message, 4)
	reports := sampleReports()

	m := sized(t, newModel(nil, ch, len(reports)))
	if m.status != StatusLoading {
		t.Fatal("Expected loading state")
	}
	if !strings.Contains(stripAnsi(m.View()), auditStage+": 0 of 4 jobs") {
		t.Errorf("Expected progress screen, got:\n%s", stripAnsi(m.View()))
	}

	for i, r := range reports {
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		ch <- broker.Message{Topic: contracts.TopicReports, Value: data}

		msg := waitForReport(ch)()
		updated, cmd := m.Update(msg)
		m = updated.(MainModel)

		last := i == len(reports)-1
		if last && cmd != nil {
			t.Error("Expected streaming to stop after the last report")
		}
		if !last && cmd == nil {
			t.Error("Expected to keep waiting for reports")
		}
	}

	if m.status != StatusReady {
		t.Error("Expected ready state after all reports")
	}
	if len(m.items) != 4 {
		t.Errorf("Expected 4 items, got %d", len(m.items))
	}
	if !strings.Contains(m.header.status, "4 problems in 3 of 4 jobs") {
		t.Errorf("Unexpected status %q", m.header.status)
	}
}

func TestMainModel_StreamClosedEarly(t *testing.T) {
	ch := make(chan broker.Message)
	close(ch)

	m := newModel(nil, ch, 3)
	if _, ok := waitForReport(ch)().(streamClosedMsg); !ok {
		t.Fatal("Expected streamClosedMsg from a closed channel")
	}
	updated, _ := m.Update(streamClosedMsg{})
	if updated.(MainModel).status != StatusReady {
		t.Error("Expected ready state when the stream closes")
	}
}

func TestMainModel_BadReportIsSkipped(t *testing.T) {
	ch := make(chan broker.Message, 1)
	ch <- broker.Message{Value: []byte("not json")}

	m := newModel(nil, ch, 1)
	msg := waitForReport(ch)()
	if _, ok := msg.(badReportMsg); !ok {
		t.Fatalf("Expected badReportMsg, got %T", msg)
	}
	updated, cmd := m.Update(msg)
	if cmd == nil || updated.(MainModel).skipped != 1 {
		t.Error("Expected to skip the message and keep waiting")
	}
}
