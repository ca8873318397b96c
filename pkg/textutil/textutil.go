// Package textutil provides common text normalization helpers.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended when a string is shortened by Truncate.
const Ellipsis = "..."

// NormalizeWhitespace replaces every run of whitespace (including newlines)
// with a single space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most width display cells, appending an ellipsis
// marker when anything was cut. Widths are measured in terminal cells so
// CJK text does not overshoot the budget.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}

	return runewidth.Truncate(s, width, Ellipsis)
}

// FirstLine returns the text up to the first newline, trimmed.
func FirstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
