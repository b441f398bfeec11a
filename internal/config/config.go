// Package config loads bridge-generator settings from a bridge.yaml file,
// BRIDGE_* environment variables and built-in defaults, in that order of
// precedence after the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"bridge-generator/internal/gen"
	"bridge-generator/internal/mapping"
	"bridge-generator/internal/pipeline"
)

const (
	// FileName is the config file base name searched for in the project
	// directory.
	FileName  = "bridge"
	envPrefix = "BRIDGE"
)

// ErrInvalidConfig is returned when loaded settings are inconsistent.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable setting.
type Config struct {
	// Project overrides the project identity, which defaults to the
	// source directory name.
	Project string `mapstructure:"project"`
	// RulesFile and TiersFile replace the embedded tables when set.
	RulesFile string `mapstructure:"rules_file"`
	TiersFile string `mapstructure:"tiers_file"`
	// TemplateDir holds *.tmpl files overriding embedded templates by name.
	TemplateDir string `mapstructure:"template_dir"`
	// Concurrency bounds batch runs. Zero means GOMAXPROCS.
	Concurrency int                 `mapstructure:"concurrency"`
	Generator   gen.GeneratorConfig `mapstructure:"generator"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{Generator: gen.DefaultGeneratorConfig()}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("project", d.Project)
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("tiers_file", d.TiersFile)
	v.SetDefault("template_dir", d.TemplateDir)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("generator.project_name", d.Generator.ProjectName)
	v.SetDefault("generator.catalog", d.Generator.Catalog)
	v.SetDefault("generator.schema", d.Generator.Schema)
	v.SetDefault("generator.port", d.Generator.Port)
	v.SetDefault("generator.scaling_tiers", d.Generator.ScalingTiers)
	v.SetDefault("generator.emit_migrations", d.Generator.EmitMigrations)
	v.SetDefault("generator.emit_bundle", d.Generator.EmitBundle)
	v.SetDefault("generator.emit_report", d.Generator.EmitReport)
	v.SetDefault("generator.emit_manifest", d.Generator.EmitManifest)
}

// Load reads configuration. An explicit file must exist; otherwise
// bridge.yaml is looked up in dir and its absence is not an error.
func Load(file, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	var problems []string

	if c.Concurrency < 0 {
		problems = append(problems, "concurrency must not be negative")
	}

	if p := c.Generator.Port; p <= 0 || p > 65535 {
		problems = append(problems, fmt.Sprintf("generator.port %d is out of range", p))
	}

	tiers := c.Generator.ScalingTiers
	for i, t := range tiers {
		switch {
		case t.Name == "":
			problems = append(problems, fmt.Sprintf("scaling tier %d has no name", i))
		case t.MaxEntities < 0:
			problems = append(problems, fmt.Sprintf("scaling tier %s has a negative bound", t.Name))
		case t.MaxEntities == 0 && i != len(tiers)-1:
			problems = append(problems, fmt.Sprintf("scaling tier %s is unbounded but not last", t.Name))
		case i > 0 && t.MaxEntities != 0 && t.MaxEntities <= tiers[i-1].MaxEntities:
			problems = append(problems, fmt.Sprintf("scaling tier %s does not raise the bound of %s", t.Name, tiers[i-1].Name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// PipelineOptions resolves the configured tables and templates into run
// options. Override tables must validate without errors.
func (c *Config) PipelineOptions(logger *slog.Logger) (pipeline.Options, error) {
	opts := pipeline.Options{
		Generator:   c.Generator,
		Logger:      logger,
		Concurrency: c.Concurrency,
	}

	if c.Project != "" && opts.Generator.ProjectName == "" {
		opts.Generator.ProjectName = c.Project
	}

	if c.RulesFile != "" {
		rf, err := mapping.LoadRuleFile(c.RulesFile)
		if err != nil {
			return opts, err
		}

		if d := mapping.ValidateRules(rf); d.HasErrors() {
			return opts, fmt.Errorf("%s: %w", c.RulesFile, d.Error())
		}

		opts.Rules = rf
	}

	if c.TiersFile != "" {
		tf, err := mapping.LoadTierFile(c.TiersFile)
		if err != nil {
			return opts, err
		}

		if d := mapping.ValidateTiers(tf); d.HasErrors() {
			return opts, fmt.Errorf("%s: %w", c.TiersFile, d.Error())
		}

		opts.Tiers = tf
	}

	if c.TemplateDir != "" {
		ts, err := gen.DefaultTemplateSet().Override(os.DirFS(c.TemplateDir))
		if err != nil {
			return opts, fmt.Errorf("loading templates from %s: %w", c.TemplateDir, err)
		}

		opts.Templates = ts
	}

	return opts, nil
}
