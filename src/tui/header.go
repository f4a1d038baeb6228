package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"jobdoctor/src/contracts"
)

// allJobs is the job filter that shows every job.
const allJobs = "ALL"

// Header is the status bar: run summary, active filters and search.
type Header struct {
	status    string
	job       string
	jobs      []string
	tier      int
	query     string
	searching bool
	styles    *StyleConfig
}

func newHeader(styles *StyleConfig) Header {
	return Header{job: allJobs, styles: styles}
}

// SetStatus replaces the run summary shown on the left.
func (h *Header) SetStatus(status string) {
	h.status = status
}

// SetJobs replaces the jobs Tab cycles through. A filter on a job that is
// gone falls back to all jobs.
func (h *Header) SetJobs(jobs []string) {
	h.jobs = jobs
	if !slices.Contains(jobs, h.job) {
		h.job = allJobs
	}
}

// JobFilter is the selected job, or allJobs.
func (h Header) JobFilter() string {
	return h.job
}

// CycleFilter moves to the next job, wrapping through allJobs.
func (h *Header) CycleFilter() {
	next := slices.Index(h.jobs, h.job) + 1
	if next >= len(h.jobs) {
		h.job = allJobs
		return
	}
	h.job = h.jobs[next]
}

// SetTier sets the tier filter; 0 shows every tier.
func (h *Header) SetTier(tier int) {
	h.tier = tier
}

func (h *Header) SetSearch(query string, searching bool) {
	h.query = query
	h.searching = searching
}

func (h Header) Render(width int) string {
	segment := lipgloss.NewStyle().Foreground(h.styles.PrimaryBlue).Bold(true).Padding(0, 2)

	tier := "all"
	if h.tier > 0 {
		tier = fmt.Sprintf("%d (%s)", h.tier, contracts.TierName(h.tier))
	}

	search := lipgloss.NewStyle().Foreground(h.styles.TextSecondary).Padding(0, 2)
	searchText := "[/] to search"
	switch {
	case h.searching:
		search = search.Foreground(h.styles.PrimaryBlue)
		searchText = "Search: " + h.query + "█"
	case h.query != "":
		searchText = "Search: " + h.query
	}

	left := ClipStyled(lipgloss.JoinHorizontal(lipgloss.Left,
		segment.Render(h.status),
		segment.Render("Job: "+h.job),
		segment.Render("Tier: "+tier),
		search.Render(searchText),
	), width)

	return lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width).
		Render(left)
}
