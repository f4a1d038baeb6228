package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stageComplete ends the progress animation.
const stageComplete = "complete"

var logo = []string{
	"   _       _        _            _              ",
	"  (_) ___ | |__  __| | ___   ___| |_ ___  _ __  ",
	"  | |/ _ \\| '_ \\/ _` |/ _ \\ / __| __/ _ \\| '__| ",
	"  | | (_) | |_) | (_| | (_) | (__| || (_) | |    ",
	" _/ |\\___/|_.__/\\__,_|\\___/ \\___|\\__\\___/|_|    ",
	"|__/                                            ",
}

// Top to bottom, light to dark.
var logoShades = []lipgloss.Color{"#5DADE2", "#3498DB", "#2E86C1", "#2874A6", "#21618C", "#1B4F72"}

// ProgressMsg reports how far the audit has come.
type ProgressMsg struct {
	Stage   string
	Current int
	Total   int
}

// ProgressModel is the loading screen shown until the first problem
// arrives, or for good when a run finds none.
type ProgressModel struct {
	stage   string
	current int
	total   int
	done    bool
	spin    spinner.Model
}

func NewProgressModel() ProgressModel {
	return ProgressModel{
		spin: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))),
		),
	}
}

// Tick starts the spinner.
func (m ProgressModel) Tick() tea.Cmd {
	return m.spin.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (ProgressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.stage, m.current, m.total = msg.Stage, msg.Current, msg.Total
		m.done = msg.Stage == stageComplete
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	shaded := make([]string, len(logo))
	for i, line := range logo {
		shade := logoShades[min(i, len(logoShades)-1)]
		shaded[i] = lipgloss.NewStyle().Foreground(shade).Bold(true).Render(line)
	}
	art := strings.Join(shaded, "\n")

	return lipgloss.JoinVertical(lipgloss.Center, art, "", m.statusLine())
}

func (m ProgressModel) statusLine() string {
	if m.done {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓ Audit complete, no problems found")
	}

	spin := m.spin.View()
	switch {
	case m.total > 0:
		return fmt.Sprintf("%s %s: %d of %d jobs (%d%%)", spin, m.stage, m.current, m.total, m.current*100/m.total)
	case m.stage != "":
		return fmt.Sprintf("%s %s...", spin, m.stage)
	default:
		return spin + " Starting..."
	}
}
