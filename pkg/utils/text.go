// Package utils holds small text helpers shared by the TUI panels.
package utils

import (
	"strings"
	"unicode"
)

// Truncate shortens s to at most max runes, appending an ellipsis when text
// was cut. Used for the sidebar's one-line task entries.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

// FirstLine returns text up to the first line break.
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// CollapseSpaces folds runs of whitespace into single spaces and trims the
// ends, flattening multi-line commands into one sidebar line.
func CollapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// SidebarEntry flattens and truncates a task command for sidebar display.
func SidebarEntry(command string, width int) string {
	return Truncate(CollapseSpaces(command), width)
}
