package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bridge-generator/internal/analyze"
	"bridge-generator/internal/gen"
	"bridge-generator/internal/pipeline"
	"bridge-generator/internal/source"
)

func (a *app) generateCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate <dir> [dir...]",
		Short: "Generate the target service for one or more projects",
		Long: `Runs analysis, conversion and generation and writes the artifact tree.
With several project directories, each project is written to <out>/<project>
and the projects run concurrently.

Example:
  bridge-generator generate ./my-app --out ./my-app-databricks
  bridge-generator generate ./shop ./blog --out ./converted`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := a.load(args[0])
			if err != nil {
				return err
			}

			sets := make([]analyze.FileSet, 0, len(args))

			for _, dir := range args {
				project := ""
				if len(args) == 1 {
					project = cfg.Project
				}

				set, err := source.LoadDir(dir, project)
				if err != nil {
					return err
				}

				sets = append(sets, set)
			}

			results, err := pipeline.RunBatch(cmd.Context(), sets, opts)
			if err != nil {
				return err
			}

			var failed []error

			for _, res := range results {
				dest := outDir
				if len(results) > 1 {
					dest = filepath.Join(outDir, res.Project)
				}

				if err := a.report(res, dest); err != nil {
					failed = append(failed, fmt.Errorf("%s: %w", res.Project, err))
				}
			}

			return errors.Join(failed...)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "./out", "Output directory for the generated service")

	return cmd
}

// report prints one project's outcome and writes its artifacts.
func (a *app) report(res *pipeline.Result, dest string) error {
	headerColor.Fprintf(a.stdout, "%s\n", res.Project)

	printDiagnostics(a.stdout, res.Diagnostics)

	if res.Err != nil {
		errorColor.Fprintf(a.stdout, "  failed: %v\n", res.Err)
		return res.Err
	}

	files := res.Files()
	if err := gen.WriteFiles(files, dest); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "  %d artifacts written to %s (scaling tier %s)\n", len(files), dest, res.Output.Tier.Name)

	if n := len(res.Output.Failures); n > 0 {
		warningColor.Fprintf(a.stdout, "  %d artifacts failed to render\n", n)
	}

	fmt.Fprint(a.stdout, "  confidence: ")
	confidenceColor(res.Converted.Confidence()).Fprintln(a.stdout, res.Converted.Confidence())

	return nil
}
