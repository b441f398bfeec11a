package gen

import (
	"fmt"
	"io"
	"log/slog"

	"bridge-generator/internal/convert"
	"bridge-generator/internal/diagnostic"
)

// Aggregate artifact paths, in emission order.
const (
	PathTypes        = "app/schemas/types.py"
	PathPackage      = "app/__init__.py"
	PathMain         = "app/main.py"
	PathRoutersInit  = "app/routers/__init__.py"
	PathModelsInit   = "app/models/__init__.py"
	PathDatabase     = "app/database.py"
	PathDependencies = "app/dependencies.py"
	PathLLM          = "app/llm.py"
	PathMigration    = "migrations/versions/0001_initial.py"
	PathAppYAML      = "app.yaml"
	PathBundle       = "databricks.yml"
	PathEnvExample   = ".env.example"
	PathRequirements = "requirements.txt"
	PathReport       = "CONVERSION_REPORT.md"
	PathManifest     = "manifest.json"
)

const defaultProjectName = "app"

// GeneratorConfig holds configuration for artifact generation.
type GeneratorConfig struct {
	// ProjectName overrides the project identity in generated names.
	ProjectName string `mapstructure:"project_name"`
	// Catalog and Schema are the target data location.
	Catalog string `mapstructure:"catalog"`
	Schema  string `mapstructure:"schema"`
	// Port is the port the generated service listens on.
	Port int `mapstructure:"port"`
	// ScalingTiers replaces the default small/medium/large profiles.
	ScalingTiers []ScalingTier `mapstructure:"scaling_tiers"`

	EmitMigrations bool `mapstructure:"emit_migrations"`
	EmitBundle     bool `mapstructure:"emit_bundle"`
	EmitReport     bool `mapstructure:"emit_report"`
	EmitManifest   bool `mapstructure:"emit_manifest"`
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Catalog:        "main",
		Schema:         "default",
		Port:           8000,
		ScalingTiers:   DefaultScalingTiers(),
		EmitMigrations: true,
		EmitBundle:     true,
		EmitReport:     true,
		EmitManifest:   true,
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for generation events.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTemplates replaces the embedded template set.
func WithTemplates(ts *TemplateSet) Option {
	return func(g *Generator) {
		if ts != nil {
			g.templates = ts
		}
	}
}

// Generator renders a converted model into artifact text. It holds no
// per-run state and is safe for concurrent use.
type Generator struct {
	config    GeneratorConfig
	templates *TemplateSet
	logger    *slog.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, opts ...Option) *Generator {
	g := &Generator{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.templates == nil {
		g.templates = DefaultTemplateSet()
	}

	return g
}

// GeneratedFile is one rendered artifact.
type GeneratedFile struct {
	// Path is relative to the output root, with forward slashes.
	Path    string
	Content []byte
}

// Output is the result of one generation run.
type Output struct {
	// Files are the rendered artifacts in emission order.
	Files []GeneratedFile
	// Failures lists the artifacts that could not be rendered.
	Failures    []*TemplateRenderError
	Diagnostics diagnostic.Diagnostics
	Tier        ScalingTier
}

// File returns the artifact at path.
func (o *Output) File(path string) (GeneratedFile, bool) {
	for _, f := range o.Files {
		if f.Path == path {
			return f, true
		}
	}

	return GeneratedFile{}, false
}

// Paths returns the artifact paths in emission order.
func (o *Output) Paths() []string {
	out := make([]string, 0, len(o.Files))
	for _, f := range o.Files {
		out = append(out, f.Path)
	}

	return out
}

type artifact struct {
	path     string
	template string
	data     any
}

// Generate renders every artifact of cm. A template failure is fatal for
// that artifact only: it is recorded on Output.Failures and as an error
// diagnostic. ErrAllArtifactsFailed is returned when nothing rendered.
func (g *Generator) Generate(cm *convert.ConvertedModel) (*Output, error) {
	l := newLayout(cm)
	tier := SelectScalingTier(cm.EntityCount(), g.config.ScalingTiers)
	arts := g.artifacts(cm, l, tier)

	g.logger.Info("gen.start", "project", g.projectName(cm), "artifacts", len(arts), "tier", tier.Name)

	out := &Output{Tier: tier}

	for _, a := range arts {
		content, err := g.templates.Render(a.template, a.data)
		if err != nil {
			rerr := &TemplateRenderError{Path: a.path, Template: a.template, Err: err}
			out.Failures = append(out.Failures, rerr)
			out.Diagnostics.AddError(diagnostic.CodeTemplateRender, rerr.Error(), a.path)
			g.logger.Warn("gen.artifact.failed", "path", a.path, "template", a.template, "error", err)

			continue
		}

		out.Files = append(out.Files, GeneratedFile{Path: a.path, Content: content})
		g.logger.Debug("gen.artifact", "path", a.path, "bytes", len(content))
	}

	if len(out.Files) == 0 {
		return out, fmt.Errorf("%w: %d artifacts", ErrAllArtifactsFailed, len(arts))
	}

	if g.config.EmitManifest {
		content, err := BuildManifest(g.projectName(cm), cm.Model.Fingerprint, tier, out)
		if err != nil {
			return out, fmt.Errorf("building manifest: %w", err)
		}

		out.Files = append(out.Files, GeneratedFile{Path: PathManifest, Content: content})
	}

	return out, nil
}

func (g *Generator) artifacts(cm *convert.ConvertedModel, l layout, tier ScalingTier) []artifact {
	var arts []artifact

	for _, h := range cm.Handlers() {
		arts = append(arts, artifact{
			path:     "app/routers/" + l.routers[h.ID] + ".py",
			template: TmplRouter,
			data:     g.routerData(cm, l, h),
		})
	}

	for _, t := range cm.Tables() {
		module := l.tables[t.Name]
		arts = append(arts,
			artifact{path: "app/models/" + module + ".py", template: TmplModel, data: g.modelData(cm, t)},
			artifact{path: "app/schemas/" + module + ".py", template: TmplSchema, data: g.schemaData(cm, t)},
		)
	}

	p := g.projectData(cm, l, tier)

	arts = append(arts,
		artifact{path: PathTypes, template: TmplTypes, data: g.typesData(cm)},
		artifact{path: PathPackage, template: TmplPackage, data: p},
		artifact{path: PathMain, template: TmplMain, data: p},
		artifact{path: PathRoutersInit, template: TmplRoutersInit, data: p},
		artifact{path: PathModelsInit, template: TmplModelsInit, data: p},
		artifact{path: PathDatabase, template: TmplDatabase, data: p},
	)

	if p.RequiresAuth {
		arts = append(arts, artifact{path: PathDependencies, template: TmplDependencies, data: p})
	}

	if p.UsesLLM {
		arts = append(arts, artifact{path: PathLLM, template: TmplLLM, data: p})
	}

	if g.config.EmitMigrations {
		arts = append(arts, artifact{path: PathMigration, template: TmplMigration, data: g.migrationData(cm)})
	}

	arts = append(arts, artifact{path: PathAppYAML, template: TmplAppYAML, data: p})

	if g.config.EmitBundle {
		arts = append(arts, artifact{path: PathBundle, template: TmplBundle, data: p})
	}

	arts = append(arts,
		artifact{path: PathEnvExample, template: TmplEnvExample, data: p},
		artifact{path: PathRequirements, template: TmplRequirements, data: p},
	)

	if g.config.EmitReport {
		arts = append(arts, artifact{path: PathReport, template: TmplReport, data: g.reportData(cm, p)})
	}

	return arts
}

func (g *Generator) projectName(cm *convert.ConvertedModel) string {
	switch {
	case g.config.ProjectName != "":
		return g.config.ProjectName
	case cm.Model.Name != "":
		return cm.Model.Name
	default:
		return defaultProjectName
	}
}
