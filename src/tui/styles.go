package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig is the palette of the problems browser.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color // headings, keys, the selected row
	AccentBlue     lipgloss.Color // focused panel border
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Tag colors for tiers 1 to 3.
	TierColors [3]lipgloss.Color
}

func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    "#8AB4F8",
		AccentBlue:     "#4285F4",
		DarkBackground: "#1E1E1E",
		TextPrimary:    "#E8EAED",
		TextSecondary:  "#9AA0A6",
		BorderColor:    "#5F6368",
		SelectedColor:  "#303134",
		TierColors:     [3]lipgloss.Color{"#EA4335", "#FBBC04", "#24C1E0"},
	}
}

// TierColor is the tag color for tier, muted for anything out of range.
func (s *StyleConfig) TierColor(tier int) lipgloss.Color {
	if tier < 1 || tier > len(s.TierColors) {
		return s.TextSecondary
	}
	return s.TierColors[tier-1]
}

func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary).Padding(0, 2)
}

// SectionStyle is used for the headings of the detail panel.
func (s *StyleConfig) SectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary).Bold(true)
}
