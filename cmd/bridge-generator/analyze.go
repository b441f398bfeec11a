package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bridge-generator/internal/analyze"
	"bridge-generator/internal/convert"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/source"
)

func (a *app) analyzeCmd() *cobra.Command {
	var asJSON, dump bool

	cmd := &cobra.Command{
		Use:   "analyze <dir>",
		Short: "Analyze a project and report conversion confidence",
		Long: `Scans the project at <dir>, converts it in memory and prints a summary
of handlers, tables and external calls with their confidence. Nothing is written.

Example:
  bridge-generator analyze ./my-app
  bridge-generator analyze ./my-app --json > analysis.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := a.load(args[0])
			if err != nil {
				return err
			}

			set, err := source.LoadDir(args[0], cfg.Project)
			if err != nil {
				return err
			}

			model, err := analyze.NewAnalyzer(analyze.WithLogger(a.logger)).Analyze(set)
			if err != nil {
				return err
			}

			cm := convert.NewConverter(opts.Rules, opts.Tiers).Convert(model)

			switch {
			case dump:
				spew.Fdump(a.stdout, model)
			case asJSON:
				data, err := json.MarshalIndent(buildJSONReport(cm), "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}

				fmt.Fprintln(a.stdout, string(data))
			default:
				printSummary(a.stdout, cm)

				var all diagnostic.Diagnostics
				all.Merge(cm.Model.Diagnostics)
				all.Merge(cm.Diagnostics)

				if all.Len() > 0 {
					fmt.Fprintf(a.stdout, "\nDiagnostics (%d)\n", all.Len())
					printDiagnostics(a.stdout, all)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the raw project model")

	return cmd
}
