package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// VisualWidth is the number of terminal columns s occupies.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate trims s and cuts it to at most width columns. With dots set and
// room for them, a cut string ends in "...".
func Truncate(s string, width int, dots bool) string {
	s = strings.TrimSpace(s)
	switch {
	case width <= 0:
		return ""
	case VisualWidth(s) <= width:
		return s
	case dots && width > len(ellipsis):
		return runewidth.Truncate(s, width-len(ellipsis), "") + ellipsis
	default:
		return runewidth.Truncate(s, width, "")
	}
}

// TruncateAndPad is Truncate followed by right-padding to exactly width
// columns, for table cells.
func TruncateAndPad(s string, width int, dots bool) string {
	s = Truncate(s, width, dots)
	return runewidth.FillRight(s, width)
}

// Wrap folds text to width columns at spaces, keeping its own line breaks.
// Words wider than a line, such as long build paths, are split.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var out []string
	cur, curWidth := "", 0
	for _, word := range words {
		w := VisualWidth(word)
		if w > width {
			if cur != "" {
				out = append(out, cur)
			}
			pieces := splitColumns(word, width)
			out = append(out, pieces[:len(pieces)-1]...)
			cur = pieces[len(pieces)-1]
			curWidth = VisualWidth(cur)
			continue
		}

		switch {
		case cur == "":
			cur, curWidth = word, w
		case curWidth+1+w <= width:
			cur += " " + word
			curWidth += 1 + w
		default:
			out = append(out, cur)
			cur, curWidth = word, w
		}
	}
	out = append(out, cur)
	return strings.Join(out, "\n")
}

// splitColumns cuts s into pieces of at most width columns. A single rune
// wider than width gets a piece of its own.
func splitColumns(s string, width int) []string {
	var pieces []string
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if used > 0 && used+rw > width {
			pieces = append(pieces, b.String())
			b.Reset()
			used = 0
		}
		b.WriteRune(r)
		used += rw
	}
	return append(pieces, b.String())
}

// ClipStyled cuts already styled text to width display columns without
// breaking its escape sequences.
func ClipStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "")
}
