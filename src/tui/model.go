// Package tui is the terminal browser for audit results: a ranked list of
// problems on the left and the selected problem with its proposed repairs
// on the right. Reports can be given up front or streamed from the broker
// while a run is in progress.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"

	"jobdoctor/src/broker"
	"jobdoctor/src/contracts"
)

// auditStage is the progress label while reports stream in.
const auditStage = "Auditing jobs"

// Status is the loading state of the browser.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
)

// reportMsg delivers one streamed job report.
type reportMsg struct {
	report contracts.JobReport
}

// badReportMsg is a broker message that did not decode.
type badReportMsg struct {
	err error
}

// streamClosedMsg means no more reports will arrive.
type streamClosedMsg struct{}

// MainModel is the Bubble Tea model of the problems browser.
type MainModel struct {
	reports []contracts.JobReport
	items   []Item

	listView       ProblemList
	detailViewport viewport.Model
	header         Header
	progress       ProgressModel
	styles         *StyleConfig
	status         Status

	width, height int
	ready         bool
	detailFocused bool
	searchMode    bool
	searchQuery   string
	tierFilter    int

	stream   <-chan broker.Message
	received int
	total    int
	skipped  int

	now func() time.Time
}

func newModel(reports []contracts.JobReport, stream <-chan broker.Message, total int) MainModel {
	styles := DefaultStyles()
	m := MainModel{
		listView:       newProblemList(styles),
		detailViewport: viewport.New(0, 0),
		header:         newHeader(styles),
		progress:       NewProgressModel(),
		styles:         styles,
		status:         StatusLoading,
		stream:         stream,
		total:          total,
		now:            time.Now,
	}
	m.setReports(reports)

	if stream == nil {
		m.finish()
	} else {
		m.progress, _ = m.progress.Update(ProgressMsg{Stage: auditStage, Total: total})
	}
	return m
}

// Init starts listening for streamed reports.
func (m MainModel) Init() tea.Cmd {
	if m.stream == nil {
		return nil
	}
	return tea.Batch(waitForReport(m.stream), m.progress.Tick())
}

// waitForReport reads the next report from the broker subscription.
func waitForReport(ch <-chan broker.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		var r contracts.JobReport
		if err := json.Unmarshal(msg.Value, &r); err != nil {
			return badReportMsg{err: err}
		}
		return reportMsg{report: r}
	}
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case reportMsg:
		m.received++
		m.setReports(append(m.reports, msg.report))
		m.progress, _ = m.progress.Update(ProgressMsg{Stage: auditStage, Current: m.received, Total: m.total})
		if m.total > 0 && m.received >= m.total {
			m.finish()
			return m, nil
		}
		return m, waitForReport(m.stream)

	case badReportMsg:
		m.skipped++
		return m, waitForReport(m.stream)

	case streamClosedMsg:
		m.finish()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.searchMode {
		switch msg.Type {
		case tea.KeyEnter:
			m.searchMode = false
		case tea.KeyEsc:
			m.searchMode = false
			m.searchQuery = ""
		case tea.KeyBackspace:
			if r := []rune(m.searchQuery); len(r) > 0 {
				m.searchQuery = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.searchQuery += " "
		case tea.KeyRunes:
			m.searchQuery += string(msg.Runes)
		}
		m.header.SetSearch(m.searchQuery, m.searchMode)
		m.applyFilter()
		return m, nil
	}

	if m.detailFocused {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "enter":
			m.detailFocused = false
			return m, nil
		}
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		if m.listView.Len() > 0 {
			m.detailFocused = true
		}
		return m, nil
	case "tab":
		m.header.CycleFilter()
		m.applyFilter()
		return m, nil
	case "/":
		m.searchMode = true
		m.header.SetSearch(m.searchQuery, true)
		return m, nil
	case "0", "1", "2", "3":
		m.tierFilter = int(msg.Runes[0] - '0')
		m.header.SetTier(m.tierFilter)
		m.applyFilter()
		return m, nil
	}

	before, _ := m.listView.Selected()
	var cmd tea.Cmd
	m.listView, cmd = m.listView.Update(msg)
	if after, ok := m.listView.Selected(); ok && (after.Rank != before.Rank || m.detailViewport.TotalLineCount() == 0) {
		m.updateDetailContent(after)
	}
	return m, cmd
}

// setReports rebuilds the items from reports and refreshes the header.
func (m *MainModel) setReports(reports []contracts.JobReport) {
	m.reports = reports
	m.items = ItemsFromReports(reports)
	m.header.SetJobs(jobNames(m.items))
	m.header.SetStatus(m.statusLine())
	m.applyFilter()
}

// finish marks the stream as done.
func (m *MainModel) finish() {
	m.status = StatusReady
	m.progress, _ = m.progress.Update(ProgressMsg{Stage: stageComplete})
	m.header.SetStatus(m.statusLine())
}

func (m MainModel) statusLine() string {
	withProblems := 0
	for i := range m.reports {
		if m.reports[i].HasProblems() {
			withProblems++
		}
	}
	jobs := len(m.reports)
	if m.status == StatusLoading && m.total > jobs {
		jobs = m.total
	}
	return fmt.Sprintf("jobdoctor: %s in %d of %s",
		english.Plural(len(m.items), "problem", ""), withProblems, english.Plural(jobs, "job", ""))
}

// Start shows a finished set of reports.
func Start(reports []contracts.JobReport) error {
	p := tea.NewProgram(newModel(reports, nil, 0), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// StartStreaming shows reports as they arrive on msgs, a subscription to
// contracts.TopicReports. total is the number of jobs in the run.
func StartStreaming(ctx context.Context, msgs <-chan broker.Message, total int) error {
	p := tea.NewProgram(newModel(nil, msgs, total), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
