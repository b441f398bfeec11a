package common

import "strings"

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// TrimQuotes strips one layer of matching single, double, or back quotes.
func TrimQuotes(s string) string {
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"' || first == '`') {
		return s[1 : len(s)-1]
	}

	return s
}

// CountLines returns the 1-based line number of byte offset off in s.
func CountLines(s string, off int) int {
	if off > len(s) {
		off = len(s)
	}

	return strings.Count(s[:off], "\n") + 1
}
