// Package sanitize makes job paths and messages safe to print. Entry names
// under builds/ come from the filesystem and may hold terminal escapes or
// control characters.
package sanitize

import (
	"strconv"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes terminal escape sequences, colors and titles alike.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Name returns s unchanged when it is printable, and a Go-quoted form
// otherwise, so "build\n1" shows up as "build\\n1" instead of breaking a line.
func Name(s string) string {
	for _, r := range s {
		if r == unicode.ReplacementChar || !unicode.IsPrint(r) {
			q := strconv.Quote(s)
			return q[1 : len(q)-1]
		}
	}
	return s
}
