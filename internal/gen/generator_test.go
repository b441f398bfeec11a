package gen

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-generator/internal/convert"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

func sampleModel() *ir.ProjectModel {
	createID := ir.NewHandlerID("supabase/functions/create-post/index.ts", "create-post")
	summarizeID := ir.NewHandlerID("supabase/functions/summarize/index.ts", "summarize")

	return &ir.ProjectModel{
		Name:        "blog",
		Fingerprint: "0123456789abcdef",
		Handlers: []ir.HandlerDescriptor{
			{
				ID:         createID,
				Name:       "create-post",
				SourcePath: "supabase/functions/create-post/index.ts",
				Method:     ir.MethodPost,
				Methods:    []ir.HTTPMethod{ir.MethodPost},
				Params: []ir.Param{
					{Name: "title", Type: ir.Primitive("string"), Location: ir.ParamBody},
					{Name: "tags", Type: ir.OptionalOf(ir.ArrayOf(ir.Primitive("string"))), Location: ir.ParamBody},
				},
				Response: ir.ResponseShape{JSON: true, Fields: []string{"post"},
					Values: map[string]string{"post": "data"}, StatusCodes: []int{400, 201}},
				AuthRequired: true,
				Operations: []ir.DataOperation{
					{Table: "posts", Kind: ir.OpInsert, Line: 12, Binding: "data"},
					{Table: "audit_log", Kind: ir.OpInsert, Line: 14},
				},
			},
			{
				ID:         summarizeID,
				Name:       "summarize",
				SourcePath: "supabase/functions/summarize/index.ts",
				Params: []ir.Param{
					{Name: "postId", Type: ir.Primitive("string"), Location: ir.ParamQuery},
				},
				Operations: []ir.DataOperation{
					{Table: "posts", Kind: ir.OpSelect, Single: true, Line: 5,
						Filters: []ir.FilterHint{{Column: "id", Operator: "eq", Value: "postId"}}},
				},
				ExternalCalls: []ir.ExternalCallSite{
					{ID: summarizeID.CallSite(0), Provider: ir.ProviderOpenAI, Capability: ir.CapabilityChatCompletion,
						Model: "gpt-4", Line: 9},
					{ID: summarizeID.CallSite(1), Provider: ir.ProviderUnknown, Capability: ir.CapabilityHTTPRequest,
						Endpoint: "https://hooks.slack.com/x", Line: 20,
						Params: []ir.RawParam{{Key: "host", Value: "hooks.slack.com"}, {Key: "method", Value: `"POST"`}}},
				},
			},
		},
		Tables: []ir.TableSchema{
			{
				Name: "posts",
				Columns: []ir.ColumnSchema{
					{Name: "id", Type: ir.Primitive("uuid"), Default: "gen_random_uuid()", HasDefault: true,
						Constraints: ir.ColumnConstraints{PrimaryKey: true}},
					{Name: "title", Type: ir.Primitive("varchar"), RawType: "varchar(200)", TypeArgs: []int{200}},
					{Name: "status", Type: ir.Named("post_status"), Default: "'draft'::post_status", HasDefault: true},
					{Name: "created_at", Type: ir.Primitive("timestamptz"), Default: "now()", HasDefault: true},
					{Name: "slug", Type: ir.Primitive("text"), Default: "make_slug(title)", HasDefault: true},
					{Name: "author_id", Type: ir.Primitive("uuid"), Nullable: true,
						Constraints: ir.ColumnConstraints{References: &ir.ForeignKeyRef{Table: "users", Column: "id", OnDelete: "cascade"}}},
				},
				Indexes: []ir.IndexSchema{{Columns: []string{"author_id"}}},
			},
		},
		Enums: []ir.EnumSchema{{Name: "post_status", Values: []string{"draft", "published"}}},
		Declarations: []ir.TypeDeclaration{
			{Name: "Post", Kind: ir.DeclInterface, Fields: []ir.FieldDecl{
				{Name: "title", Type: ir.Primitive("string")},
				{Name: "createdAt", Type: ir.Primitive("Date"), Optional: true},
			}},
			{Name: "FeaturedPost", Kind: ir.DeclInterface, Extends: []string{"Post"}, Fields: []ir.FieldDecl{
				{Name: "rank", Type: ir.Primitive("number")},
			}},
			{Name: "Mood", Kind: ir.DeclEnum, Values: []string{"happy", "sad-ish"}},
			{Name: "PostList", Kind: ir.DeclAlias, Alias: ir.ArrayOf(ir.Named("Post"))},
		},
	}
}

func generate(t *testing.T, m *ir.ProjectModel, opts ...Option) *Output {
	t.Helper()

	cm := convert.NewConverter(nil, nil).Convert(m)

	out, err := NewGenerator(DefaultGeneratorConfig(), opts...).Generate(cm)
	require.NoError(t, err)

	return out
}

func content(t *testing.T, out *Output, path string) string {
	t.Helper()

	f, ok := out.File(path)
	require.True(t, ok, "missing artifact %s; have %v", path, out.Paths())

	return string(f.Content)
}

func TestGenerate_ArtifactOrder(t *testing.T) {
	out := generate(t, sampleModel())

	assert.Equal(t, []string{
		"app/routers/create_post.py",
		"app/routers/summarize.py",
		"app/models/posts.py",
		"app/schemas/posts.py",
		PathTypes,
		PathPackage,
		PathMain,
		PathRoutersInit,
		PathModelsInit,
		PathDatabase,
		PathDependencies,
		PathLLM,
		PathMigration,
		PathAppYAML,
		PathBundle,
		PathEnvExample,
		PathRequirements,
		PathReport,
		PathManifest,
	}, out.Paths())
	assert.Empty(t, out.Failures)
	assert.False(t, out.Diagnostics.HasErrors())
}

func TestGenerate_OptionalArtifacts(t *testing.T) {
	m := sampleModel()
	m.Handlers[0].AuthRequired = false
	m.Handlers[1].ExternalCalls = nil

	cfg := DefaultGeneratorConfig()
	cfg.EmitMigrations = false
	cfg.EmitBundle = false
	cfg.EmitReport = false
	cfg.EmitManifest = false

	out, err := NewGenerator(cfg).Generate(convert.NewConverter(nil, nil).Convert(m))
	require.NoError(t, err)

	paths := out.Paths()
	for _, p := range []string{PathDependencies, PathLLM, PathMigration, PathBundle, PathReport, PathManifest} {
		assert.NotContains(t, paths, p)
	}

	assert.Contains(t, paths, PathAppYAML)
}

func TestGenerate_Deterministic(t *testing.T) {
	first := generate(t, sampleModel())
	second := generate(t, sampleModel())

	assert.Equal(t, first.Files, second.Files)
}

func TestGenerate_SlugCollisions(t *testing.T) {
	m := sampleModel()
	dup := m.Handlers[0]
	dup.ID = ir.NewHandlerID("supabase/functions/create_post/index.ts", "create_post")
	dup.Name = "create_post"
	m.Handlers = append(m.Handlers, dup)

	out := generate(t, m)

	paths := out.Paths()
	assert.Contains(t, paths, "app/routers/create_post.py")
	assert.Contains(t, paths, "app/routers/create_post_2.py")

	init := content(t, out, PathRoutersInit)
	assert.Contains(t, init, "from app.routers.create_post_2 import router as create_post_2_router")
	assert.Less(t, strings.Index(init, "create_post_router"), strings.Index(init, "summarize_router"))
}

func TestGenerate_Router(t *testing.T) {
	out := generate(t, sampleModel())

	create := content(t, out, "app/routers/create_post.py")
	for _, want := range []string{
		`@router.post("/create-post", status_code=201)`,
		"class CreatePostRequest(BaseModel):",
		"    title: str\n",
		"    tags: list[str] | None = None\n",
		"    body: CreatePostRequest,",
		"    user: CurrentUser = Depends(get_current_user),",
		"from app.models.posts import Posts",
		"    posts_row = Posts(**body.model_dump(exclude_none=True))",
		"    session.add(posts_row)",
		`table "audit_log" is not defined by any migration`,
		`    return {"post": posts_row}`,
	} {
		assert.Contains(t, create, want)
	}

	summarize := content(t, out, "app/routers/summarize.py")
	for _, want := range []string{
		"from app import llm",
		"import httpx",
		"    post_id: str,",
		"    statement = statement.where(Posts.id == post_id)",
		"    posts_row = session.exec(statement).first()",
		`    completion = llm.chat("databricks-dbrx-instruct", messages=[])`,
		"    response_data = response.json()",
		"    return response_data",
		`    response = httpx.request("POST", "https://hooks.slack.com/x")`,
	} {
		assert.Contains(t, summarize, want)
	}

	assert.NotContains(t, summarize, "get_current_user")
	assert.Less(t, strings.Index(summarize, "session.exec"), strings.Index(summarize, "llm.chat"))
	assert.Less(t, strings.Index(summarize, "llm.chat"), strings.Index(summarize, "httpx.request"))
}

func TestGenerate_RouterResponseMapsEachStatement(t *testing.T) {
	id := ir.NewHandlerID("supabase/functions/publish/index.ts", "publish")

	m := sampleModel()
	m.Handlers = []ir.HandlerDescriptor{{
		ID:         id,
		Name:       "publish",
		SourcePath: "supabase/functions/publish/index.ts",
		Method:     ir.MethodPost,
		Params:     []ir.Param{{Name: "title", Type: ir.Primitive("string"), Location: ir.ParamBody}},
		Response: ir.ResponseShape{
			JSON:   true,
			Fields: []string{"post", "summary", "ok", "title", "hook", "extra"},
			Values: map[string]string{
				"post":    "data",
				"summary": "completion.choices[0].message.content",
				"ok":      "true",
				"title":   "title",
				"hook":    "res",
				"extra":   "computeExtra()",
			},
		},
		Operations: []ir.DataOperation{
			{Table: "posts", Kind: ir.OpInsert, Line: 3, Binding: "data"},
			{Table: "posts", Kind: ir.OpSelect, Line: 4},
		},
		ExternalCalls: []ir.ExternalCallSite{
			{ID: id.CallSite(0), Provider: ir.ProviderOpenAI, Capability: ir.CapabilityChatCompletion,
				Model: "gpt-4", Line: 5, Binding: "completion"},
			{ID: id.CallSite(1), Provider: ir.ProviderUnknown, Capability: ir.CapabilityHTTPRequest,
				Endpoint: "https://hooks.example.com/notify", Line: 7, Binding: "res"},
		},
	}}

	out := generate(t, m)
	router := content(t, out, "app/routers/publish.py")

	for _, want := range []string{
		"    posts_row = Posts(**body.model_dump(exclude_none=True))",
		"    posts_rows = session.exec(statement).all()",
		`    completion = llm.chat("databricks-dbrx-instruct", messages=[])`,
		"    response_data = response.json()",
		`    return {"post": posts_row, "summary": completion, "ok": True, "title": body.title, "hook": response_data, "extra": None}`,
	} {
		assert.Contains(t, router, want)
	}

	assert.NotContains(t, router, "result")
}

func TestGenerate_TableArtifacts(t *testing.T) {
	out := generate(t, sampleModel())

	model := content(t, out, "app/models/posts.py")
	for _, want := range []string{
		"class Posts(SQLModel, table=True):",
		`    __tablename__ = "posts"`,
		"primary_key=True, default_factory=uuid4",
		"from uuid import uuid4",
		"from app.database import utcnow",
		"    title: str = Field(max_length=200)",
		`    status: str = Field(default="draft")`,
		"    slug: str  # server default: make_slug(title)",
		`foreign_key="users.id", ondelete="CASCADE"`,
	} {
		assert.Contains(t, model, want)
	}

	schemas := content(t, out, "app/schemas/posts.py")
	assert.Contains(t, schemas, "class PostsCreate(PostsBase):")
	assert.Contains(t, schemas, "class PostsUpdate(BaseModel):\n    title: str | None = None")
	assert.Contains(t, schemas, "class PostsRead(PostsBase):")

	base := schemas[strings.Index(schemas, "class PostsBase"):strings.Index(schemas, "class PostsCreate")]
	assert.NotContains(t, base, "    id:")
	assert.NotContains(t, base, "created_at")

	migration := content(t, out, PathMigration)
	for _, want := range []string{
		`        "posts",`,
		`server_default=sa.text("now()")`,
		`server_default=sa.text("'draft'")`,
		`sa.ForeignKey("users.id", ondelete="CASCADE")`,
		`op.create_index("ix_posts_author_id", "posts", ["author_id"])`,
		`op.drop_table("posts")`,
	} {
		assert.Contains(t, migration, want)
	}
}

func TestGenerate_Types(t *testing.T) {
	out := generate(t, sampleModel())

	types := content(t, out, PathTypes)
	for _, want := range []string{
		"from enum import Enum",
		"class Mood(str, Enum):\n    HAPPY = \"happy\"\n    SAD_ISH = \"sad-ish\"",
		"class Post(BaseModel):\n    model_config = ConfigDict(populate_by_name=True)",
		`    created_at: datetime | None = Field(default=None, alias="createdAt")`,
		"class FeaturedPost(Post):\n    rank: float",
		"PostList = list[Post]",
	} {
		assert.Contains(t, types, want)
	}

	assert.Less(t, strings.Index(types, "class Post("), strings.Index(types, "class FeaturedPost("))
}

func TestGenerate_Deployment(t *testing.T) {
	out := generate(t, sampleModel())

	assert.Equal(t, "small", out.Tier.Name)

	bundle := content(t, out, PathBundle)
	assert.Contains(t, bundle, "name: blog")
	assert.Contains(t, bundle, "    default: small")
	assert.Contains(t, bundle, "    default: 512Mi")
	assert.Contains(t, bundle, "            name: databricks-dbrx-instruct")

	env := content(t, out, PathEnvExample)
	assert.Contains(t, env, "HOOKS_SLACK_COM_API_KEY=")

	app := content(t, out, PathAppYAML)
	assert.Contains(t, app, `  - "8000"`)
	assert.Contains(t, app, "valueFrom: hooks_slack_com_api_key")

	reqs := content(t, out, PathRequirements)
	assert.Contains(t, reqs, "httpx>=0.27\n")
	assert.Contains(t, reqs, "openai>=1.30\n")
	assert.Contains(t, reqs, "databricks-sdk>=0.30\n")

	report := content(t, out, PathReport)
	assert.Contains(t, report, "# Conversion report: blog")
	assert.Contains(t, report, "| create-post | `POST /create-post` |")
	assert.Contains(t, report, "| foundation-model-chat | 1 |")
}

func TestGenerate_Manifest(t *testing.T) {
	out := generate(t, sampleModel())

	m, err := ParseManifest([]byte(content(t, out, PathManifest)))
	require.NoError(t, err)

	assert.Equal(t, "blog", m.Project)
	assert.Equal(t, "0123456789abcdef", m.Fingerprint)
	require.Len(t, m.Artifacts, len(out.Files)-1)
	assert.Empty(t, m.Failed)

	for i, e := range m.Artifacts {
		assert.Equal(t, out.Files[i].Path, e.Path)
		assert.Equal(t, Digest(out.Files[i].Content), e.Digest)
		assert.Len(t, e.Digest, 16)
	}
}

// templatesWithout returns the embedded templates minus the named ones.
func templatesWithout(t *testing.T, names ...string) *TemplateSet {
	t.Helper()

	sub, err := fs.Sub(templateFS, "templates")
	require.NoError(t, err)

	entries, err := fs.ReadDir(sub, ".")
	require.NoError(t, err)

	mfs := fstest.MapFS{}

outer:
	for _, e := range entries {
		for _, n := range names {
			if e.Name() == n {
				continue outer
			}
		}

		data, err := fs.ReadFile(sub, e.Name())
		require.NoError(t, err)

		mfs[e.Name()] = &fstest.MapFile{Data: data}
	}

	ts, err := LoadTemplateSet(mfs)
	require.NoError(t, err)

	return ts
}

func TestGenerate_MissingTemplateFailsOnlyItsArtifacts(t *testing.T) {
	out := generate(t, sampleModel(), WithTemplates(templatesWithout(t, TmplRouter)))

	require.Len(t, out.Failures, 2)
	assert.Equal(t, "app/routers/create_post.py", out.Failures[0].Path)
	assert.Equal(t, "app/routers/summarize.py", out.Failures[1].Path)
	assert.ErrorIs(t, out.Failures[0], ErrUnknownTemplate)

	errs := out.Diagnostics.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, diagnostic.CodeTemplateRender, errs[0].Code)

	_, ok := out.File("app/routers/create_post.py")
	assert.False(t, ok)
	assert.Contains(t, out.Paths(), "app/models/posts.py")

	m, err := ParseManifest([]byte(content(t, out, PathManifest)))
	require.NoError(t, err)
	assert.Equal(t, []string{"app/routers/create_post.py", "app/routers/summarize.py"}, m.Failed)
}

func TestGenerate_BrokenTemplate(t *testing.T) {
	ts, err := templatesWithout(t).Override(fstest.MapFS{
		TmplPackage: &fstest.MapFile{Data: []byte("{{.NoSuchField}}")},
	})
	require.NoError(t, err)

	out := generate(t, sampleModel(), WithTemplates(ts))

	require.Len(t, out.Failures, 1)
	assert.Equal(t, PathPackage, out.Failures[0].Path)
	assert.Equal(t, TmplPackage, out.Failures[0].Template)
}

func TestGenerate_AllArtifactsFailed(t *testing.T) {
	ts, err := LoadTemplateSet(fstest.MapFS{})
	require.NoError(t, err)

	cm := convert.NewConverter(nil, nil).Convert(sampleModel())

	out, err := NewGenerator(DefaultGeneratorConfig(), WithTemplates(ts)).Generate(cm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllArtifactsFailed))
	assert.Empty(t, out.Files)
	assert.NotEmpty(t, out.Failures)
}

func TestTemplateSet_Names(t *testing.T) {
	names := DefaultTemplateSet().Names()

	for _, n := range []string{
		TmplRouter, TmplModel, TmplSchema, TmplTypes, TmplPackage, TmplMain, TmplRoutersInit, TmplModelsInit,
		TmplDatabase, TmplDependencies, TmplLLM, TmplMigration, TmplAppYAML, TmplBundle, TmplEnvExample,
		TmplRequirements, TmplReport,
	} {
		assert.Contains(t, names, n)
	}
}
