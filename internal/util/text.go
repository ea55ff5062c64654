// Package util holds small text helpers for git output and log fields.
package util

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "…"

// NonEmptyLines splits command output into trimmed lines and drops blank ones.
func NonEmptyLines(out string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(out, isLineBreak) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// Abbreviate keeps at most limit runes of s, ending with an ellipsis when
// something was cut.
func Abbreviate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := 0
	for i := 0; i < limit-1; i++ {
		_, size := utf8.DecodeRuneInString(s[cut:])
		cut += size
	}
	return s[:cut] + ellipsis
}
