package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bridge-generator/internal/ir"
)

func TestPyType(t *testing.T) {
	tests := []struct {
		in   ir.TypeDescriptor
		want string
	}{
		{ir.Primitive("str"), "str"},
		{ir.ArrayOf(ir.Primitive("int")), "list[int]"},
		{ir.OptionalOf(ir.Primitive("UUID")), "UUID | None"},
		{ir.RecordOf(ir.Primitive("str"), ir.Named("Post")), "dict[str, Post]"},
		{ir.UnionOf(ir.Primitive("str"), ir.Primitive("int")), "str | int"},
		{ir.Unknown("Partial<Post>"), "Any"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PyType(tt.in))
		})
	}
}

func TestEnumMember(t *testing.T) {
	assert.Equal(t, "IN_PROGRESS", enumMember("in-progress"))
	assert.Equal(t, "V_2FA", enumMember("2fa"))
	assert.Equal(t, "VALUE", enumMember("--"))
}

func TestResolveValue(t *testing.T) {
	access := map[string]string{"postId": "post_id", "title": "body.title"}

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"postId", "post_id", true},
		{"title", "body.title", true},
		{"'draft'", `"draft"`, true},
		{"42", "42", true},
		{"true", "True", true},
		{"null", "None", true},
		{"user.id", "", false},
		{"`x-${id}`", "", false},
	}

	for _, tt := range tests {
		got, ok := resolveValue(tt.raw, access)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestWhereClause(t *testing.T) {
	access := map[string]string{"ids": "ids"}

	got, ok := whereClause("Posts", ir.FilterHint{Column: "authorId", Operator: "in", Value: "ids"}, access)
	assert.True(t, ok)
	assert.Equal(t, "Posts.author_id.in_(ids)", got)

	got, ok = whereClause("Posts", ir.FilterHint{Column: "title", Operator: "not.like", Value: "'a%'"}, access)
	assert.True(t, ok)
	assert.Equal(t, `~Posts.title.like("a%")`, got)

	_, ok = whereClause("Posts", ir.FilterHint{Column: "title", Operator: "fts", Value: "'a'"}, access)
	assert.False(t, ok)
}

func TestSelectScalingTier(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "small"},
		{10, "small"},
		{11, "medium"},
		{30, "medium"},
		{31, "large"},
		{500, "large"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectScalingTier(tt.count, nil).Name, tt.count)
	}

	custom := []ScalingTier{{Name: "tiny", MaxEntities: 2}, {Name: "big", MaxEntities: 5}}
	assert.Equal(t, "tiny", SelectScalingTier(2, custom).Name)
	assert.Equal(t, "big", SelectScalingTier(9, custom).Name)
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "send_email", uniqueName("send_email", used))
	assert.Equal(t, "send_email_2", uniqueName("send_email", used))
	assert.Equal(t, "send_email_3", uniqueName("send_email", used))
}
