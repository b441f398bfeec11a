package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDescriptor_String(t *testing.T) {
	tests := []struct {
		name string
		in   TypeDescriptor
		want string
	}{
		{"primitive", Primitive("string"), "string"},
		{"array", ArrayOf(Primitive("number")), "number[]"},
		{"optional", OptionalOf(Named("User")), "User?"},
		{"record", RecordOf(Primitive("string"), ArrayOf(Named("Tag"))), "Record<string, Tag[]>"},
		{"union", UnionOf(Primitive("string"), Primitive("number")), "string | number"},
		{"array of union", ArrayOf(UnionOf(Primitive("a"), Primitive("b"))), "(a | b)[]"},
		{"unknown", Unknown("{ a: 1 }"), "?{ a: 1 }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestTypeDescriptor_Constructors(t *testing.T) {
	inner := Primitive("string")

	assert.Equal(t, OptionalOf(inner), OptionalOf(OptionalOf(inner)))
	assert.Equal(t, inner, UnionOf(inner))
	assert.True(t, Unknown("").IsUnknown())
	assert.Equal(t, KindUnknown, Primitive("x").KeyType().Kind)
	assert.Equal(t, KindUnknown, Primitive("x").Inner().Kind)
}

func TestTypeDescriptor_EqualAndContains(t *testing.T) {
	a := RecordOf(Primitive("string"), UnionOf(Named("A"), Unknown("x")))
	b := RecordOf(Primitive("string"), UnionOf(Named("A"), Unknown("x")))
	c := RecordOf(Primitive("string"), UnionOf(Named("B"), Unknown("x")))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.Contains(KindUnknown))
	assert.True(t, a.Contains(KindNamed))
	assert.False(t, a.Contains(KindArray))
}

func TestEnums(t *testing.T) {
	assert.Equal(t, MethodPatch, ParseHTTPMethod("patch"))
	assert.Equal(t, MethodUnknown, ParseHTTPMethod("TRACE"))
	assert.Equal(t, "DELETE", MethodDelete.String())
	assert.Equal(t, "HTTPMethod(99)", HTTPMethod(99).String())

	k, ok := ParseOperationKind("upsert")
	assert.True(t, ok)
	assert.True(t, k.IsWrite())
	assert.False(t, OpSelect.IsWrite())

	p, ok := ParseProvider("Anthropic")
	assert.True(t, ok)
	assert.Equal(t, ProviderAnthropic, p)

	c, ok := ParseCapability("chat-completion")
	assert.True(t, ok)
	assert.Equal(t, CapabilityChatCompletion, c)

	_, ok = ParseCapability("teleport")
	assert.False(t, ok)

	assert.Equal(t, ConfidenceManualReview, Worst(ConfidenceExact, ConfidenceManualReview, ConfidenceApproximate))
	assert.Equal(t, ConfidenceExact, Worst())
	assert.Equal(t, "manual-review", ConfidenceManualReview.String())
}

func TestHandlerID(t *testing.T) {
	a := NewHandlerID("supabase/functions/a/index.ts", "handler")
	b := NewHandlerID("supabase/functions/b/index.ts", "handler")

	assert.NotEqual(t, a, b)
	assert.Equal(t, CallSiteID("supabase/functions/a/index.ts#handler@1"), a.CallSite(1))
}

func TestTableSchema_CloneIsDeep(t *testing.T) {
	orig := TableSchema{
		Name: "posts",
		Columns: []ColumnSchema{{
			Name:        "author_id",
			TypeArgs:    []int{1},
			Constraints: ColumnConstraints{References: &ForeignKeyRef{Table: "users", Column: "id"}},
		}},
		Policies: []PolicySchema{{Name: "p", Roles: []string{"authenticated"}}},
	}

	cp := orig.Clone()
	cp.Columns[0].Name = "x"
	cp.Columns[0].Constraints.References.Table = "other"
	cp.Policies[0].Roles[0] = "anon"

	assert.Equal(t, "author_id", orig.Columns[0].Name)
	assert.Equal(t, "users", orig.Columns[0].Constraints.References.Table)
	assert.Equal(t, "authenticated", orig.Policies[0].Roles[0])
}
