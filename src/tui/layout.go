package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// panes is the split of the screen below the header. The list takes two
// fifths of the width.
type panes struct {
	height      int
	listWidth   int
	detailWidth int
}

// Below the header: help line, column header row and the two border rows.
const chromeRows = 4

func (m MainModel) layout() panes {
	headerRows := lipgloss.Height(m.header.Render(m.width))
	list := m.width * 2 / 5
	return panes{
		height:      max(1, m.height-headerRows-chromeRows),
		listWidth:   list,
		detailWidth: m.width - list,
	}
}

func (m MainModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)

	// Until a problem arrives, and for good when there are none.
	if len(m.items) == 0 {
		loading := lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			PaddingTop(2).
			Render(m.progress.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, loading)
	}

	p := m.layout()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderListPanel(p.listWidth, p.height),
		m.renderDetailPanel(p.detailWidth, p.height))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.helpLine())
}

type keyHint struct{ key, action string }

// helpLine lists the keys that do something in the current mode.
func (m MainModel) helpLine() string {
	var hints []keyHint
	switch {
	case m.searchMode:
		hints = []keyHint{{"Enter", "Apply"}, {"Esc", "Clear"}}
	case m.detailFocused:
		hints = []keyHint{{"j/k", "Scroll"}, {"Esc", "Back"}, {"q", "Quit"}}
	default:
		hints = []keyHint{{"j/k", "Nav"}, {"0-3", "Tier"}, {"Enter", "View"}, {"Tab", "Job"}, {"/", "Search"}, {"q", "Quit"}}
	}

	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sep := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Render(" • ")

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.key) + ": " + h.action
	}
	return ClipStyled(m.styles.HelpStyle().Render(strings.Join(parts, sep)), m.width)
}

// resizeComponents fits the list and the detail viewport inside their
// panel borders.
func (m *MainModel) resizeComponents() {
	p := m.layout()

	m.listView.SetSize(p.listWidth-2, p.height)

	// One more row for the job line above the detail text.
	m.detailViewport.Width = p.detailWidth - 2
	m.detailViewport.Height = max(1, p.height-1)

	if selected, ok := m.listView.Selected(); ok {
		m.updateDetailContent(selected)
	}
}
