package analyze

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"unicode/utf8"

	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/scan"
	"bridge-generator/internal/schema"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for analysis events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// Analyzer turns a FileSet into an ir.ProjectModel. It holds no state
// between runs and is safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze scans and folds every file of set. It returns an *AnalysisError
// only when the set is unusable as a whole; everything else is reported on
// the model's diagnostics.
func (a *Analyzer) Analyze(set FileSet) (*ir.ProjectModel, error) {
	if len(set.Files) == 0 {
		return nil, &AnalysisError{Project: set.Project, Err: ErrEmptyFileSet}
	}

	model := &ir.ProjectModel{Name: set.Project, Fingerprint: set.Fingerprint()}

	files, err := a.readable(set, &model.Diagnostics)
	if err != nil {
		return nil, err
	}

	a.logger.Info("analyze.start", "project", set.Project, "files", len(files), "fingerprint", model.Fingerprint)

	var migrations []SourceFile

	for _, f := range files {
		a.logger.Debug("analyze.file", "path", f.Path, "kind", f.Kind)

		var res scan.Result

		switch f.Kind {
		case FileHandler:
			res = scan.ScanHandlerFile(f.Path, f.Content)
		case FileTypeDeclaration:
			res = scan.ScanTypeFile(f.Path, f.Content)
		case FileComponent:
			res = scan.ScanComponentFile(f.Path, f.Content)
		case FileMigration:
			migrations = append(migrations, f)
			continue
		}

		model.Handlers = append(model.Handlers, res.Handlers...)
		model.Declarations = append(model.Declarations, res.Declarations...)
		model.Components = append(model.Components, res.Components...)
		model.Diagnostics.Merge(res.Diagnostics)
	}

	s := a.fold(migrations, &model.Diagnostics)
	model.Tables = s.Tables()
	model.Enums = s.Enums()

	refineBodyParams(model)

	a.logger.Info("analyze.done",
		"project", set.Project,
		"handlers", len(model.Handlers),
		"tables", len(model.Tables),
		"declarations", len(model.Declarations),
		"diagnostics", model.Diagnostics.Len())

	return model, nil
}

// readable validates the set and returns its usable files sorted by path.
func (a *Analyzer) readable(set FileSet, diags *diagnostic.Diagnostics) ([]SourceFile, error) {
	seen := make(map[string]bool, len(set.Files))
	files := make([]SourceFile, 0, len(set.Files))

	for _, f := range set.Files {
		if f.Path != "" && seen[f.Path] {
			return nil, &AnalysisError{Project: set.Project, Err: fmt.Errorf("%w: %s", ErrDuplicatePath, f.Path)}
		}

		seen[f.Path] = true

		switch {
		case f.Path == "":
			diags.AddWarning(diagnostic.CodeFileSkipped, "file without a path skipped", set.Project)
		case f.Kind == FileUnknown:
			diags.AddWarning(diagnostic.CodeFileSkipped, fmt.Sprintf("%s: unknown file kind, skipped", f.Path), f.Path)
		case !utf8.ValidString(f.Content):
			diags.AddWarning(diagnostic.CodeFileSkipped, fmt.Sprintf("%s: content is not valid UTF-8, skipped", f.Path), f.Path)
		default:
			files = append(files, f)
		}
	}

	if len(files) == 0 {
		return nil, &AnalysisError{Project: set.Project, Err: ErrNoReadableFiles}
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return files, nil
}

// fold replays migrations in ascending (OrderKey, Path) order.
func (a *Analyzer) fold(migrations []SourceFile, diags *diagnostic.Diagnostics) schema.Schema {
	sort.SliceStable(migrations, func(i, j int) bool {
		if migrations[i].OrderKey != migrations[j].OrderKey {
			return CompareOrderKeys(migrations[i].OrderKey, migrations[j].OrderKey) < 0
		}

		return migrations[i].Path < migrations[j].Path
	})

	var s schema.Schema

	for _, m := range migrations {
		var more []diagnostic.Diagnostic

		s, more = schema.Replay(s, schema.Migration{Path: m.Path, Content: m.Content})
		diags.Add(more...)

		a.logger.Debug("schema.fold", "path", m.Path, "order_key", m.OrderKey, "tables", len(s.Tables()), "diagnostics", len(more))
	}

	return s
}

// refineBodyParams types body parameters from the declaration named by the
// handler's body type. A declared body type with no destructured fields
// contributes every declared field.
func refineBodyParams(model *ir.ProjectModel) {
	decls := make(map[string]ir.TypeDeclaration, len(model.Declarations))
	for _, d := range model.Declarations {
		if _, dup := decls[d.Name]; !dup && d.Kind == ir.DeclInterface {
			decls[d.Name] = d
		}
	}

	for i := range model.Handlers {
		h := &model.Handlers[i]

		decl, ok := decls[h.BodyType]
		if !ok {
			continue
		}

		hasBody := false

		for j := range h.Params {
			p := &h.Params[j]
			if p.Location != ir.ParamBody {
				continue
			}

			hasBody = true

			if f, ok := decl.Field(p.Name); ok {
				p.Type = fieldType(f)
			}
		}

		if hasBody {
			continue
		}

		body := make([]ir.Param, 0, len(decl.Fields))
		for _, f := range decl.Fields {
			body = append(body, ir.Param{Name: f.Name, Type: fieldType(f), Location: ir.ParamBody})
		}

		h.Params = append(body, h.Params...)
	}
}

func fieldType(f ir.FieldDecl) ir.TypeDescriptor {
	if f.Optional {
		return ir.OptionalOf(f.Type)
	}

	return f.Type
}
