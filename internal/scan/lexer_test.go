package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskComments(t *testing.T) {
	src := "a // x\nb /* y\n z */ c"
	masked := maskComments(src)

	assert.Len(t, masked, len(src))
	assert.NotContains(t, masked, "x")
	assert.NotContains(t, masked, "y")
	assert.Equal(t, 2, countNewlines(masked))

	src = `u = "http://x" // trailing`
	assert.Equal(t, `u = "http://x"`, maskComments(src)[:14])
}

func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}

	return n
}

func TestMatchClose(t *testing.T) {
	assert.Equal(t, 8, matchClose("(a[b]{c})", 0))
	assert.Equal(t, 5, matchClose(`("(" )`, 0))
	assert.Equal(t, -1, matchClose("(a]", 0))
	assert.Equal(t, -1, matchClose("{ open", 0))
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"a", "f(b, c)", "{d, e}"}, splitTopLevel("a, f(b, c), {d, e}", ",", false))
	assert.Equal(t, []string{"Record<K, V>", "x"}, splitTopLevel("Record<K, V>, x", ",", true))
	assert.Equal(t, []string{"'a,b'", "c"}, splitTopLevel("'a,b', c,", ",", false))
}

func TestParseObjectLiteral(t *testing.T) {
	entries := parseObjectLiteral(` a: 1, b, ...rest, "c-d": x, fn() { return 1 } `)

	assert.Equal(t, []objectEntry{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "b"},
		{Key: "c-d", Value: "x"},
	}, entries)
}

func TestStringLiteral(t *testing.T) {
	s, ok := stringLiteral(`"posts"`)
	assert.True(t, ok)
	assert.Equal(t, "posts", s)

	_, ok = stringLiteral("`a${b}`")
	assert.False(t, ok)

	_, ok = stringLiteral("posts")
	assert.False(t, ok)
}

func TestMaskComments_RegexLiteral(t *testing.T) {
	src := "if (!/^https?:\\/\\//.test(url)) { x = a / b; } // gone"
	masked := maskComments(src)

	assert.Len(t, masked, len(src))
	assert.Contains(t, masked, "/^https?:\\/\\//.test(url))")
	assert.NotContains(t, masked, "gone")
	assert.Equal(t, 29, matchClose(masked, 3))
	assert.Equal(t, 44, matchClose(masked, 31))
}

func TestMatchClose_RegexLiteral(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"paren in class", `(s.replace(/[)"]/g, ""))`, 23},
		{"escaped slash", `(/a\/)/.test(s))`, 15},
		{"after return", `{ return /}/.test(s) }`, 21},
		{"division", `(a / b / c)`, 10},
		{"division after call", `(f(x) / 2)`, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchClose(tt.src, 0))
		})
	}
}

func TestSplitTopLevel_RegexLiteral(t *testing.T) {
	assert.Equal(t, []string{"/a,b/g", "c"}, splitTopLevel("/a,b/g, c", ",", false))
	assert.Equal(t, []string{"a / 2", "b"}, splitTopLevel("a / 2, b", ",", false))
}
