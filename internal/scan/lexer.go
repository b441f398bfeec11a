package scan

import (
	"strings"
)

// maskComments returns src with line and block comments replaced by spaces.
// Newlines and byte offsets are preserved.
func maskComments(src string) string {
	b := []byte(src)

	for i := 0; i < len(b); {
		c := b[i]

		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(src, i)
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			for i < len(b) && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(b) && b[i+1] == '*':
			for i < len(b) && (b[i] != '*' || i+1 >= len(b) || b[i+1] != '/') {
				if b[i] != '\n' {
					b[i] = ' '
				}
				i++
			}

			if i+1 < len(b) {
				b[i], b[i+1] = ' ', ' '
				i += 2
			}
		case c == '/' && regexStart(string(b[:i])):
			if k := skipRegex(src, i); k > i {
				i = k
			} else {
				i++
			}
		default:
			i++
		}
	}

	return string(b)
}

// skipString returns the offset just past the string literal starting at i.
// Single- and double-quoted strings end at an unescaped newline so a stray
// apostrophe in JSX text cannot swallow the rest of the file.
func skipString(src string, i int) int {
	q := src[i]

	for j := i + 1; j < len(src); {
		c := src[j]

		switch {
		case c == '\\':
			j += 2
		case c == q:
			return j + 1
		case c == '\n' && q != '`':
			return j
		case q == '`' && c == '$' && j+1 < len(src) && src[j+1] == '{':
			k := matchClose(src, j+1)
			if k < 0 {
				return len(src)
			}

			j = k + 1
		default:
			j++
		}
	}

	return len(src)
}

// regexKeywords are the words after which a slash starts a regex literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true, "in": true,
	"of": true, "void": true, "yield": true, "await": true, "delete": true, "throw": true,
	"new": true, "instanceof": true,
}

// regexStart reports whether a slash following prefix sits where an operand
// is expected, which makes it the start of a regex literal rather than a
// division.
func regexStart(prefix string) bool {
	j := len(prefix) - 1
	for j >= 0 && (prefix[j] == ' ' || prefix[j] == '\t' || prefix[j] == '\r') {
		j--
	}

	if j < 0 || prefix[j] == '\n' {
		return true
	}

	if strings.IndexByte("(,=:[!&|?{};+-*%~^", prefix[j]) >= 0 {
		return true
	}

	end := j + 1
	for j >= 0 && isIdentByte(prefix[j]) {
		j--
	}

	return regexKeywords[prefix[j+1:end]]
}

// skipRegex returns the offset just past the regex literal starting at i,
// flags included, or -1 when no literal closes on the same line.
func skipRegex(src string, i int) int {
	if i+1 >= len(src) || src[i+1] == '/' || src[i+1] == '*' {
		return -1
	}

	inClass := false

	for j := i + 1; j < len(src); j++ {
		switch c := src[j]; {
		case c == '\\':
			j++
		case c == '\n':
			return -1
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			j++
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}

			return j
		}
	}

	return -1
}

// skipLiteral returns the offset just past the string or regex literal
// starting at i, and false when no literal starts there.
func skipLiteral(src string, i int) (int, bool) {
	switch c := src[i]; {
	case c == '\'' || c == '"' || c == '`':
		return skipString(src, i), true
	case c == '/' && regexStart(src[:i]):
		if k := skipRegex(src, i); k > i {
			return k, true
		}
	}

	return i, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func closerOf(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// matchClose returns the offset of the bracket closing the one at open, or
// -1 when the brackets do not balance.
func matchClose(src string, open int) int {
	if open < 0 || open >= len(src) || !strings.ContainsRune("([{", rune(src[open])) {
		return -1
	}

	var stack []byte

	for i := open; i < len(src); {
		c := src[i]

		switch c {
		case '(', '[', '{':
			stack = append(stack, closerOf(c))
			i++
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
			i++
		default:
			if k, ok := skipLiteral(src, i); ok {
				i = k
			} else {
				i++
			}
		}
	}

	return -1
}

// splitTopLevel splits s at any byte of seps that is outside brackets and
// strings. With angles set, <...> also nests, which type text needs.
// Empty segments are dropped.
func splitTopLevel(s, seps string, angles bool) []string {
	var (
		out   []string
		depth int
		start int
	)

	for i := 0; i < len(s); {
		c := s[i]

		if k, ok := skipLiteral(s, i); ok {
			i = k
			continue
		}

		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case angles && c == '<':
			depth++
		case angles && c == '>' && depth > 0 && (i == 0 || s[i-1] != '='):
			depth--
		case depth == 0 && strings.IndexByte(seps, c) >= 0:
			if part := strings.TrimSpace(s[start:i]); part != "" {
				out = append(out, part)
			}

			start = i + 1
		}

		i++
	}

	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}

	return out
}

// indexTopLevel returns the offset of the first top-level c in s, or -1.
func indexTopLevel(s string, c byte) int {
	depth := 0

	for i := 0; i < len(s); {
		if k, ok := skipLiteral(s, i); ok {
			i = k
			continue
		}

		switch ch := s[i]; {
		case ch == '(' || ch == '[' || ch == '{' || ch == '<':
			depth++
		case ch == ')' || ch == ']' || ch == '}' || (ch == '>' && depth > 0 && (i == 0 || s[i-1] != '=')):
			depth--
		case ch == c && depth == 0:
			return i
		}

		i++
	}

	return -1
}

// exprEnd returns the offset where the expression starting at start ends:
// a top-level semicolon, a closing bracket of an enclosing group, or a
// newline that does not continue the expression.
func exprEnd(src string, start int) int {
	depth := 0

	for i := start; i < len(src); {
		c := src[i]

		if k, ok := skipLiteral(src, i); ok {
			i = k
			continue
		}

		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return i
			}
			depth--
		case depth == 0 && c == ';':
			return i
		case depth == 0 && c == '\n':
			if !continues(src[start:i], src[i+1:]) {
				return i
			}
		}

		i++
	}

	return len(src)
}

func continues(before, after string) bool {
	b := strings.TrimRight(before, " \t\r")
	if b == "" {
		return true
	}

	if strings.HasSuffix(b, "=>") || strings.ContainsRune("|&=,<(:?+", rune(b[len(b)-1])) {
		return true
	}

	a := strings.TrimLeft(after, " \t\r\n")

	return a != "" && strings.ContainsRune("|&.?:", rune(a[0]))
}

// skipSpace returns the first offset at or after i that is not whitespace.
func skipSpace(s string, i int) int {
	for i < len(s) && strings.ContainsRune(" \t\r\n", rune(s[i])) {
		i++
	}

	return i
}

// stringLiteral returns the contents of s when s is a single quoted
// literal without template substitutions.
func stringLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", false
	}

	q := s[0]
	if (q != '\'' && q != '"' && q != '`') || s[len(s)-1] != q {
		return "", false
	}

	if skipString(s, 0) != len(s) {
		return "", false
	}

	inner := s[1 : len(s)-1]
	if q == '`' && strings.Contains(inner, "${") {
		return "", false
	}

	return inner, true
}

// objectEntry is one top-level entry of an object literal.
type objectEntry struct {
	Key   string
	Value string
}

// parseObjectLiteral splits the text between an object literal's braces
// into entries. Shorthand properties yield Key == Value; spreads and
// methods are skipped.
func parseObjectLiteral(body string) []objectEntry {
	var out []objectEntry

	for _, part := range splitTopLevel(body, ",", false) {
		if strings.HasPrefix(part, "...") {
			continue
		}

		colon := indexTopLevel(part, ':')
		if colon < 0 {
			if isIdent(part) {
				out = append(out, objectEntry{Key: part, Value: part})
			}

			continue
		}

		key := strings.TrimSpace(part[:colon])
		if lit, ok := stringLiteral(key); ok {
			key = lit
		}

		if strings.HasPrefix(key, "[") || strings.Contains(key, "(") {
			continue
		}

		out = append(out, objectEntry{Key: key, Value: strings.TrimSpace(part[colon+1:])})
	}

	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
