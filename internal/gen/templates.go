package gen

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	TmplRouter        = "router.py.tmpl"
	TmplModel         = "model.py.tmpl"
	TmplSchema        = "schema.py.tmpl"
	TmplTypes         = "types.py.tmpl"
	TmplPackage       = "package.py.tmpl"
	TmplMain          = "main.py.tmpl"
	TmplRoutersInit   = "routers_init.py.tmpl"
	TmplModelsInit    = "models_init.py.tmpl"
	TmplDatabase      = "database.py.tmpl"
	TmplDependencies  = "dependencies.py.tmpl"
	TmplLLM           = "llm.py.tmpl"
	TmplMigration     = "migration.py.tmpl"
	TmplAppYAML       = "app.yaml.tmpl"
	TmplBundle        = "databricks.yml.tmpl"
	TmplEnvExample    = "env.example.tmpl"
	TmplRequirements  = "requirements.txt.tmpl"
	TmplReport        = "report.md.tmpl"
	templateExtension = ".tmpl"
)

var funcMap = template.FuncMap{
	"pyType": PyType,
	"quote":  pyString,
	"lower":  strings.ToLower,
	"upper":  strings.ToUpper,
	"join":   strings.Join,
}

// TemplateSet is a named collection of parsed templates.
type TemplateSet struct {
	templates map[string]*template.Template
}

// DefaultTemplateSet returns the embedded templates.
func DefaultTemplateSet() *TemplateSet {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}

	ts, err := LoadTemplateSet(sub)
	if err != nil {
		panic(fmt.Sprintf("embedded templates invalid: %v", err))
	}

	return ts
}

// LoadTemplateSet parses every *.tmpl file at the root of fsys. Templates
// the set lacks fail the artifacts that need them at render time.
func LoadTemplateSet(fsys fs.FS) (*TemplateSet, error) {
	ts := &TemplateSet{templates: map[string]*template.Template{}}

	if err := ts.load(fsys); err != nil {
		return nil, err
	}

	return ts, nil
}

// Override returns a copy of the set with the templates in fsys replacing
// or adding to its own.
func (s *TemplateSet) Override(fsys fs.FS) (*TemplateSet, error) {
	ts := &TemplateSet{templates: maps.Clone(s.templates)}

	if err := ts.load(fsys); err != nil {
		return nil, err
	}

	return ts, nil
}

func (s *TemplateSet) load(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading template directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != templateExtension {
			continue
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("reading template %s: %w", e.Name(), err)
		}

		t, err := template.New(e.Name()).Funcs(funcMap).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", e.Name(), err)
		}

		s.templates[e.Name()] = t
	}

	return nil
}

// Names returns the template names in sorted order.
func (s *TemplateSet) Names() []string {
	return slices.Sorted(maps.Keys(s.templates))
}

// Render executes the named template with data.
func (s *TemplateSet) Render(name string, data any) ([]byte, error) {
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.Bytes(), nil
}
