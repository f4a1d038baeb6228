package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobdoctor/src/sanitize"
)

const (
	// Columns taken by the panel border and the list's own padding.
	listChrome = 10

	// tagWidth fits the longest tags, BADDATE and NOTLINK.
	tagWidth = 7

	minJobWidth = 3
	maxJobWidth = 24

	// Three " │ " separators.
	separatorWidth = 9
)

// rowDelegate draws each problem as one table row: rank, tag, job and
// the start of the message.
type rowDelegate struct {
	rankWidth int
	jobWidth  int
	styles    *StyleConfig
}

// fit sizes the rank and job columns for items.
func (d *rowDelegate) fit(items []Item) {
	d.rankWidth = max(2, len(strconv.Itoa(len(items))))
	d.jobWidth = minJobWidth
	for _, it := range items {
		d.jobWidth = max(d.jobWidth, VisualWidth(sanitize.Name(it.Report.JobName)))
	}
	d.jobWidth = min(d.jobWidth, maxJobWidth)
}

func (d *rowDelegate) Height() int                         { return 1 }
func (d *rowDelegate) Spacing() int                        { return 0 }
func (d *rowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d *rowDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(Item)
	if !ok {
		return
	}
	rec := it.Record()

	text := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	tag := lipgloss.NewStyle().Foreground(d.styles.TierColor(it.Tier())).Bold(true)
	if index == m.Index() {
		text = text.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
		tag = tag.Background(d.styles.SelectedColor)
	}

	message := ""
	if room := m.Width() - d.rankWidth - tagWidth - d.jobWidth - separatorWidth - listChrome; room > 0 {
		message = TruncateAndPad(sanitize.Name(rec.Message), room, true)
	}

	row := text.Render(fmt.Sprintf("%*d │ ", d.rankWidth, it.Rank)) +
		tag.Render(TruncateAndPad(rec.Tag, tagWidth, false)) +
		text.Render(" │ "+TruncateAndPad(sanitize.Name(it.Report.JobName), d.jobWidth, true)+" │ "+message)

	fmt.Fprint(w, ClipStyled(row, m.Width()))
}

// columnHeader labels the delegate's columns.
func (d *rowDelegate) columnHeader() string {
	return fmt.Sprintf("%*s │ %-*s │ %-*s │ Problem", d.rankWidth, "#", tagWidth, "Tag", d.jobWidth, "Job")
}

// ProblemList is the left panel: the filtered problems in rank order.
type ProblemList struct {
	list  list.Model
	items []Item
	rows  *rowDelegate
}

func newProblemList(styles *StyleConfig) ProblemList {
	rows := &rowDelegate{rankWidth: 2, jobWidth: minJobWidth, styles: styles}
	l := list.New(nil, rows, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return ProblemList{list: l, rows: rows}
}

func (p ProblemList) Update(msg tea.Msg) (ProblemList, tea.Cmd) {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *ProblemList) SetSize(width, height int) {
	p.list.SetSize(width, height)
}

// SetItems replaces the rows, keeping the cursor on the last row when the
// list shrinks below it.
func (p *ProblemList) SetItems(items []Item) {
	p.items = items
	p.rows.fit(items)

	rows := make([]list.Item, len(items))
	for i := range items {
		rows[i] = items[i]
	}
	p.list.SetItems(rows)
	if n := len(items); n > 0 && p.list.Index() >= n {
		p.list.Select(n - 1)
	}
}

// Len is the number of visible problems.
func (p ProblemList) Len() int {
	return len(p.items)
}

// Selected is the problem under the cursor.
func (p ProblemList) Selected() (Item, bool) {
	if len(p.items) == 0 {
		return Item{}, false
	}
	it, ok := p.list.SelectedItem().(Item)
	return it, ok
}

// renderListPanel draws the column header over the bordered list.
func (m MainModel) renderListPanel(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(Truncate(m.listView.rows.columnHeader(), width-4, true))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height).
		Render(m.listView.list.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, panel)
}
