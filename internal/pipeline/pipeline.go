package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bridge-generator/internal/analyze"
	"bridge-generator/internal/convert"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/gen"
	"bridge-generator/internal/ir"
	"bridge-generator/internal/mapping"
)

// Options configures a pipeline run. Nil tables and template sets fall back
// to the embedded defaults.
type Options struct {
	Rules     *mapping.RuleFile
	Tiers     *mapping.TierFile
	Templates *gen.TemplateSet
	Generator gen.GeneratorConfig
	Logger    *slog.Logger
	// Concurrency bounds RunBatch. Zero means GOMAXPROCS.
	Concurrency int
}

// DefaultOptions returns options using every embedded default.
func DefaultOptions() Options {
	return Options{Generator: gen.DefaultGeneratorConfig()}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result is the outcome of one project run.
type Result struct {
	Project   string
	Model     *ir.ProjectModel
	Converted *convert.ConvertedModel
	Output    *gen.Output
	// Diagnostics merges every stage's diagnostics in stage order.
	Diagnostics diagnostic.Diagnostics
	// Err is set by RunBatch when this project failed.
	Err error
}

// Files returns the generated artifacts, or nil when generation did not run.
func (r *Result) Files() []gen.GeneratedFile {
	if r == nil || r.Output == nil {
		return nil
	}

	return r.Output.Files
}

// Run analyzes, converts and generates one project. It fails only with an
// *analyze.AnalysisError or gen.ErrAllArtifactsFailed; every other problem
// is a diagnostic on the result.
func Run(set analyze.FileSet, opts Options) (*Result, error) {
	logger := opts.logger().With("project", set.Project)
	start := time.Now()

	logger.Info("pipeline.start", "files", len(set.Files))

	res := &Result{Project: set.Project}

	model, err := analyze.NewAnalyzer(analyze.WithLogger(logger)).Analyze(set)
	if err != nil {
		logger.Error("pipeline.analyze.failed", "error", err)
		return res, err
	}

	res.Model = model
	res.Diagnostics.Merge(model.Diagnostics)

	cm := convert.NewConverter(opts.Rules, opts.Tiers).Convert(model)
	res.Converted = cm
	res.Diagnostics.Merge(cm.Diagnostics)

	logger.Info("pipeline.converted",
		"confidence", cm.Confidence(),
		"exact", cm.Tally.Handlers.Exact+cm.Tally.Tables.Exact,
		"manual_review", cm.Tally.Handlers.ManualReview+cm.Tally.Tables.ManualReview)

	g := gen.NewGenerator(opts.Generator, gen.WithLogger(logger), gen.WithTemplates(opts.Templates))

	out, err := g.Generate(cm)
	res.Output = out

	if out != nil {
		res.Diagnostics.Merge(out.Diagnostics)
	}

	if err != nil {
		logger.Error("pipeline.generate.failed", "error", err)
		return res, fmt.Errorf("generating %s: %w", set.Project, err)
	}

	logger.Info("pipeline.done",
		"artifacts", len(out.Files),
		"failed", len(out.Failures),
		"diagnostics", res.Diagnostics.Len(),
		"elapsed", time.Since(start))

	return res, nil
}

// RunBatch runs several projects concurrently and returns their results in
// input order. A project's failure is recorded on its Result and does not
// stop the others. Duplicate identities reject the whole batch before
// anything runs.
func RunBatch(ctx context.Context, sets []analyze.FileSet, opts Options) ([]*Result, error) {
	seen := make(map[string]bool, len(sets))
	for _, s := range sets {
		if seen[s.Project] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProject, s.Project)
		}

		seen[s.Project] = true
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(sets))

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, set := range sets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = &Result{Project: set.Project, Err: err}
				return nil
			}

			res, err := Run(set, opts)
			res.Err = err
			results[i] = res

			return nil
		})
	}

	_ = g.Wait()

	return results, ctx.Err()
}
