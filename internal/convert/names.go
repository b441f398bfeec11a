package convert

import (
	"slices"

	"bridge-generator/internal/match"
)

var reservedWords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
}

// AttrName returns the snake_case target identifier for a source name.
// Reserved words get a trailing underscore.
func AttrName(name string) string {
	out := match.Snake(name)
	if out == "" {
		out = "field"
	}

	if slices.Contains(reservedWords, out) {
		out += "_"
	}

	return out
}

// RoutePath returns the URL path a handler is mounted at.
func RoutePath(name string) string {
	return "/" + match.Kebab(name)
}
