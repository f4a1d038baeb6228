package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"jobdoctor/src/contracts"
	"jobdoctor/src/sanitize"
)

// renderDetail lays out one problem: tag and tier, message, proposed
// repairs, what a repair run did, and the job it belongs to.
func (m MainModel) renderDetail(item Item, maxWidth int) string {
	var content strings.Builder
	rec := item.Record()
	section := m.styles.SectionStyle()
	faint := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Faint(true)
	wrapped := func(s string) string { return Wrap(sanitize.Name(s), maxWidth) }

	header := lipgloss.NewStyle().
		Foreground(m.styles.TierColor(item.Tier())).
		Bold(true).
		Render(Wrap(fmt.Sprintf("%s | Tier %d: %s", rec.Tag, item.Tier(), contracts.TierName(item.Tier())), maxWidth))
	fmt.Fprintf(&content, "%s\n\n", header)

	fmt.Fprintln(&content, section.Render("Problem:"))
	fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.TextPrimary).Render(wrapped(rec.Message)))
	if rec.Path != "" {
		fmt.Fprintln(&content, faint.Render(wrapped(rec.Path)))
	}
	fmt.Fprintln(&content)

	if sols := item.Solutions(); len(sols) > 0 {
		fmt.Fprintln(&content, section.Render("Proposed repairs:"))
		for _, s := range sols {
			fmt.Fprintln(&content, wrapped("• "+s.Message))
			fmt.Fprintln(&content, faint.Render(wrapped("$ "+s.Command)))
		}
		fmt.Fprintln(&content)
	}

	if r := item.Report; r.Repaired {
		fmt.Fprintln(&content, section.Render("Repair:"))
		if r.RepairError != "" {
			fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.TierColor(1)).Render(
				wrapped(fmt.Sprintf("failed after %d of %d: %s", r.Applied, len(r.Solutions), r.RepairError))))
		} else {
			fmt.Fprintln(&content, wrapped("applied "+english.Plural(r.Applied, "repair", "")))
		}
		fmt.Fprintln(&content)
	}

	fmt.Fprintln(&content, section.Render("Job:"))
	fmt.Fprintln(&content, wrapped(item.Report.JobPath))
	fmt.Fprint(&content, faint.Render(Wrap(m.jobSummary(item.Report), maxWidth)))

	return content.String()
}

// jobSummary describes the build history of a job.
func (m MainModel) jobSummary(r contracts.JobReport) string {
	s := fmt.Sprintf("%s, %s",
		english.Plural(r.NumberedLinks, "numbered link", ""),
		english.Plural(r.DatedDirs, "dated directory", "dated directories"))
	if oldest, err := time.Parse(time.RFC3339, r.OldestBuild); err == nil {
		s += ", oldest build " + humanize.RelTime(oldest, m.now(), "ago", "from now")
	}
	return s
}

// updateDetailContent renders item into the viewport, scrolled to the top.
func (m *MainModel) updateDetailContent(item Item) {
	m.detailViewport.SetContent(m.renderDetail(item, m.detailViewport.Width-2))
	m.detailViewport.GotoTop()
}

// renderDetailPanel draws the right panel: the job name over a bordered
// box holding the detail viewport, or a placeholder with nothing selected.
func (m MainModel) renderDetailPanel(width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height)

	item, ok := m.listView.Selected()
	if !ok {
		empty := box.Align(lipgloss.Center, lipgloss.Center).Foreground(m.styles.TextSecondary).Faint(true)
		return lipgloss.JoinVertical(lipgloss.Left, " ", empty.Render("No problem selected"))
	}

	if m.detailFocused {
		box = box.BorderForeground(m.styles.AccentBlue)
	}
	title := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 1).
		Render(Truncate("Job: "+sanitize.Name(item.Report.JobName), width-2, true))

	return lipgloss.JoinVertical(lipgloss.Left, title, box.Render(m.detailViewport.View()))
}
