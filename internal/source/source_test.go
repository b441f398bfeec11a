package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/analyze"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want analyze.FileKind
	}{
		{"supabase/functions/send-email/index.ts", analyze.FileHandler},
		{"supabase/functions/_shared/index.ts", analyze.FileUnknown},
		{"supabase/functions/send-email/util.ts", analyze.FileUnknown},
		{"supabase/migrations/20240101_init.sql", analyze.FileMigration},
		{"supabase/migrations/old/20230101.sql", analyze.FileUnknown},
		{"src/types/post.ts", analyze.FileTypeDeclaration},
		{"src/types/nested/user.ts", analyze.FileTypeDeclaration},
		{"src/integrations/supabase/types.ts", analyze.FileTypeDeclaration},
		{"src/components/ui/Button.tsx", analyze.FileComponent},
		{"src/pages/Home.jsx", analyze.FileComponent},
		{"src/pages/helpers.ts", analyze.FileUnknown},
		{"README.md", analyze.FileUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestLoadDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "storefront")

	files := map[string]string{
		"supabase/functions/checkout/index.ts": "serve(async (req) => new Response('ok'));",
		"supabase/functions/_shared/cors.ts":   "export const cors = {};",
		"supabase/migrations/002_orders.sql":   "CREATE TABLE orders (id int);",
		"supabase/migrations/001_init.sql":     "CREATE TABLE users (id int);",
		"src/types/order.ts":                   "export interface Order { id: number }",
		"src/pages/Cart.tsx":                   "export default function Cart() { return null; }",
		"node_modules/pkg/src/pages/Skip.tsx":  "skip",
		".git/src/types/ignored.ts":            "skip",
		"src/integrations/supabase/types.ts":   "export type Json = string",
		"src/integrations/supabase/client.ts":  "skip",
	}

	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	set, err := LoadDir(root, "")
	require.NoError(t, err)

	assert.Equal(t, "storefront", set.Project)

	var paths []string
	for _, f := range set.Files {
		paths = append(paths, f.Path)
	}

	assert.Equal(t, []string{
		"src/integrations/supabase/types.ts",
		"src/pages/Cart.tsx",
		"src/types/order.ts",
		"supabase/functions/checkout/index.ts",
		"supabase/migrations/001_init.sql",
		"supabase/migrations/002_orders.sql",
	}, paths)

	assert.Equal(t, analyze.MigrationOrderKey("001_init.sql"), set.Files[4].OrderKey)
	assert.Equal(t, 1, set.Count(analyze.FileHandler))
	assert.Equal(t, 2, set.Count(analyze.FileMigration))

	named, err := LoadDir(root, "shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", named.Project)
}

func TestLoadDir_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDir(filepath.Join(dir, "missing"), "")
	require.Error(t, err)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err = LoadDir(file, "")
	require.ErrorIs(t, err, ErrNotDirectory)
}
