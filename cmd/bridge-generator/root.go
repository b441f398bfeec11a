package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"bridge-generator/internal/config"
	"bridge-generator/internal/pipeline"
)

// app carries state shared by every command.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "bridge-generator",
		Short: "Convert a Supabase project into a FastAPI service for Databricks Apps",
		Long: `bridge-generator analyzes edge functions, SQL migrations and TypeScript types,
converts them through declarative rule tables and renders a deployable service.

Every conversion is tagged exact, approximate or manual-review; the generated
CONVERSION_REPORT.md lists what needs a human.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}

			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log pipeline events at debug level on stderr")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a config file (default: bridge.yaml in the project directory)")

	cmd.AddCommand(a.analyzeCmd(), a.generateCmd(), a.rulesCmd())

	return cmd
}

// load reads the configuration for the project rooted at dir and resolves
// it into pipeline options.
func (a *app) load(dir string) (*config.Config, pipeline.Options, error) {
	cfg, err := config.Load(a.configPath, dir)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	opts, err := cfg.PipelineOptions(a.logger)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	return cfg, opts, nil
}
