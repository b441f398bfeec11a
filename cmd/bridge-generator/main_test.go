package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/gen"
)

func init() {
	color.NoColor = true
}

const createPostHandler = `serve(async (req) => {
  const { title } = await req.json();
  const { data } = await supabase.from("posts").insert({ title }).select().single();
  return Response.json({ post: data }, { status: 201 });
});
`

func writeProject(t *testing.T, name string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), name)

	files := map[string]string{
		"supabase/functions/create-post/index.ts": createPostHandler,
		"supabase/migrations/20240101_init.sql":   "CREATE TABLE posts (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), title text NOT NULL);",
	}

	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), err
}

func TestAnalyze(t *testing.T) {
	dir := writeProject(t, "blog")

	out, err := execute(t, "analyze", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Project blog")
	assert.Contains(t, out, "Handlers (1)")
	assert.Contains(t, out, "posts -> Posts")
}

func TestAnalyze_JSON(t *testing.T) {
	dir := writeProject(t, "blog")

	out, err := execute(t, "analyze", dir, "--json")
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "blog", report.Project)
	require.Len(t, report.Handlers, 1)
	assert.Equal(t, "create-post", report.Handlers[0].Name)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, "Posts", report.Tables[0].Target)
	assert.Equal(t, 1, report.Tally.Tables.Total())
}

func TestAnalyze_MissingDir(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	dir := writeProject(t, "blog")
	out := t.TempDir()

	stdout, err := execute(t, "generate", dir, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "artifacts written to")

	for _, p := range []string{"app/routers/create_post.py", "app/models/posts.py", gen.PathManifest} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(p)))
	}
}

func TestGenerate_Batch(t *testing.T) {
	out := t.TempDir()

	_, err := execute(t, "generate", writeProject(t, "alpha"), writeProject(t, "beta"), "--out", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "alpha", "app", "main.py"))
	assert.FileExists(t, filepath.Join(out, "beta", "app", "main.py"))
}

func TestRules(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "dialects:")

	out, err = execute(t, "rules", "--tiers")
	require.NoError(t, err)
	assert.Contains(t, out, "providers:")
}
