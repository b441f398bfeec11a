package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"users"`, "users"},
		{`'users'`, "users"},
		{"`users`", "users"},
		{`"users'`, `"users'`},
		{`x`, `x`},
		{``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimQuotes(tt.in))
		})
	}
}

func TestCountLines(t *testing.T) {
	src := "a\nb\nc"
	assert.Equal(t, 1, CountLines(src, 0))
	assert.Equal(t, 2, CountLines(src, 2))
	assert.Equal(t, 3, CountLines(src, 100))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Dedupe([]string{"b", "a", "b", "c", "a"}))
	assert.Nil(t, Dedupe([]string(nil)))

	v, ok := First([]int{4, 5})
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.True(t, IsEmpty([]int{}))
}
