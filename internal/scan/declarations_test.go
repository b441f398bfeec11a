package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

const typesSource = `export interface Post {
  id: string;
  title: string;
  tags?: string[];
  author: Author | null;
  onSave(): void;
}

export type Status = "draft" | "published";

export enum Role { Admin = "admin", User = "user" }

type Meta = { views: number };
`

func TestScanTypeFile(t *testing.T) {
	res := ScanTypeFile("src/types.ts", typesSource)
	assert.Empty(t, res.Diagnostics.Items)
	require.Len(t, res.Declarations, 4)

	post := res.Declarations[0]
	assert.Equal(t, "Post", post.Name)
	assert.Equal(t, ir.DeclInterface, post.Kind)
	assert.Equal(t, 1, post.Line)
	assert.Equal(t, []ir.FieldDecl{
		{Name: "id", Type: ir.Primitive("string")},
		{Name: "title", Type: ir.Primitive("string")},
		{Name: "tags", Type: ir.ArrayOf(ir.Primitive("string")), Optional: true},
		{Name: "author", Type: ir.OptionalOf(ir.Named("Author"))},
	}, post.Fields)

	status := res.Declarations[1]
	assert.Equal(t, ir.DeclAlias, status.Kind)
	assert.Equal(t, ir.Primitive("string"), status.Alias)

	role := res.Declarations[2]
	assert.Equal(t, ir.DeclEnum, role.Kind)
	assert.Equal(t, []string{"admin", "user"}, role.Values)

	meta := res.Declarations[3]
	assert.Equal(t, "Meta", meta.Name)
	assert.Equal(t, ir.DeclInterface, meta.Kind)
	assert.Equal(t, []ir.FieldDecl{{Name: "views", Type: ir.Primitive("number")}}, meta.Fields)
}

func TestScanTypeFile_UnbalancedDeclarationOmitted(t *testing.T) {
	src := `export interface Broken {
  id: string;

export interface Fine { id: number }
`
	res := ScanTypeFile("src/broken.ts", src)

	require.Len(t, res.Diagnostics.Items, 1)
	assert.Equal(t, diagnostic.CodeStructuralParse, res.Diagnostics.Items[0].Code)
	assert.Contains(t, res.Diagnostics.Items[0].Message, "Broken")

	require.Len(t, res.Declarations, 1)
	assert.Equal(t, "Fine", res.Declarations[0].Name)
}
