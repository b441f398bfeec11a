package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bridge-generator/internal/ir"
)

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"string", "string"},
		{"string[]", "string[]"},
		{"Array<number>", "number[]"},
		{"readonly string[]", "string[]"},
		{"string | null", "string?"},
		{"User | undefined | null", "User?"},
		{"Record<string, User>", "Record<string, User>"},
		{"Map<string, number[]>", "Record<string, number[]>"},
		{"'draft' | 'published'", "string"},
		{"Promise<User[]>", "User[]"},
		{"string | number", "string | number"},
		{"(string | number)[]", "(string | number)[]"},
		{"Date", "Date"},
		{"Partial<User>", "?Partial<User>"},
		{"{ a: number }", "?{ a: number }"},
		{"A & B", "?A & B"},
		{"(a: string) => void", "?(a: string) => void"},
		{"", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTypeExpr(tt.in).String())
		})
	}
}

func TestParseTypeExpr_Kinds(t *testing.T) {
	assert.True(t, ParseTypeExpr("Profile").Equal(ir.Named("Profile")))
	assert.True(t, ParseTypeExpr("boolean | null").Equal(ir.OptionalOf(ir.Primitive("boolean"))))
	assert.True(t, ParseTypeExpr("keyof User").IsUnknown())
	assert.True(t, ParseTypeExpr("Foo<").IsUnknown())
}
