package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/analyze"
	"bridge-generator/internal/gen"
)

const createPostHandler = `import { serve } from "https://deno.land/std/http/server.ts";

serve(async (req) => {
  const { title, draft }: NewPost = await req.json();
  const { data } = await supabase.from("posts").insert({ title, draft }).select().single();
  return Response.json({ post: data }, { status: 201 });
});
`

func projectSet(name string) analyze.FileSet {
	return analyze.FileSet{
		Project: name,
		Files: []analyze.SourceFile{
			{Path: "supabase/functions/create-post/index.ts", Kind: analyze.FileHandler, Content: createPostHandler},
			{Path: "src/types/post.ts", Kind: analyze.FileTypeDeclaration,
				Content: "export interface NewPost {\n  title: string;\n  draft?: boolean;\n}\n"},
			{Path: "supabase/migrations/20240101_init.sql", Kind: analyze.FileMigration,
				OrderKey: analyze.MigrationOrderKey("20240101_init.sql"),
				Content:  "CREATE TABLE posts (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), title text NOT NULL, draft boolean DEFAULT false);"},
		},
	}
}

func TestRun(t *testing.T) {
	res, err := Run(projectSet("blog"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "blog", res.Project)
	require.NotNil(t, res.Model)
	require.NotNil(t, res.Converted)
	assert.Len(t, res.Model.Handlers, 1)
	assert.Len(t, res.Model.Tables, 1)

	paths := res.Output.Paths()
	assert.Equal(t, "app/routers/create_post.py", paths[0])
	assert.Contains(t, paths, "app/models/posts.py")
	assert.Equal(t, gen.PathManifest, paths[len(paths)-1])
	assert.False(t, res.Diagnostics.HasErrors())
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(projectSet("blog"), DefaultOptions())
	require.NoError(t, err)

	second, err := Run(projectSet("blog"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Files(), second.Files())
}

func TestRun_AnalysisError(t *testing.T) {
	res, err := Run(analyze.FileSet{Project: "empty"}, DefaultOptions())
	require.Error(t, err)

	var aerr *analyze.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "empty", aerr.Project)
	assert.ErrorIs(t, err, analyze.ErrEmptyFileSet)
	assert.Nil(t, res.Files())
}

func TestRunBatch(t *testing.T) {
	sets := []analyze.FileSet{projectSet("alpha"), {Project: "broken"}, projectSet("gamma")}

	opts := DefaultOptions()
	opts.Concurrency = 2

	results, err := RunBatch(context.Background(), sets, opts)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, s := range sets {
		assert.Equal(t, s.Project, results[i].Project)
	}

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, analyze.ErrEmptyFileSet)
	assert.NoError(t, results[2].Err)

	alpha, ok := results[0].Output.File(gen.PathPackage)
	require.True(t, ok)
	assert.Contains(t, string(alpha.Content), "alpha")

	gamma, ok := results[2].Output.File(gen.PathPackage)
	require.True(t, ok)
	assert.Contains(t, string(gamma.Content), "gamma")
}

func TestRunBatch_Many(t *testing.T) {
	var sets []analyze.FileSet
	for i := range 12 {
		sets = append(sets, projectSet(fmt.Sprintf("project-%02d", i)))
	}

	results, err := RunBatch(context.Background(), sets, DefaultOptions())
	require.NoError(t, err)

	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, sets[i].Project, r.Project)
		assert.Equal(t, sets[i].Project, r.Model.Name)
	}
}

func TestRunBatch_DuplicateProject(t *testing.T) {
	results, err := RunBatch(context.Background(), []analyze.FileSet{projectSet("blog"), projectSet("blog")}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateProject))
	assert.Nil(t, results)
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunBatch(ctx, []analyze.FileSet{projectSet("a"), projectSet("b")}, DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
