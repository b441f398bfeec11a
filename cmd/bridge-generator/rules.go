package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bridge-generator/internal/mapping"
)

func (a *app) rulesCmd() *cobra.Command {
	var tiers bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active type rule table or API tier table as YAML",
		Long: `Prints the rule table in effect, either the embedded default or the file
named by rules_file / tiers_file in the configuration. Use the output as a
starting point for an override.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := a.load(".")
			if err != nil {
				return err
			}

			var data []byte

			switch {
			case tiers && opts.Tiers != nil:
				data, err = mapping.MarshalTiers(opts.Tiers)
			case tiers:
				data = mapping.DefaultTiersYAML()
			case opts.Rules != nil:
				data, err = mapping.MarshalRules(opts.Rules)
			default:
				data = mapping.DefaultRulesYAML()
			}

			if err != nil {
				return fmt.Errorf("encoding table: %w", err)
			}

			_, err = a.stdout.Write(data)

			return err
		},
	}

	cmd.Flags().BoolVar(&tiers, "tiers", false, "Print the API tier table instead of the type rules")

	return cmd
}
