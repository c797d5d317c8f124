package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/designs2/attribute-tags/cmd/tagsctl/commands"
	"github.com/designs2/attribute-tags/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tagsctl",
	Short: "tagsctl - inspect and edit tag attributes",
	Long: `tagsctl - inspect and edit tag attributes.

A tag attribute links items to values drawn from a plain SQL table or a
linked collection (mm_* tables). Attributes are declared in the definitions
file (definitions.path, default tags.yaml).

Available commands:
  tables   - List tables usable as tag source
  columns  - List the columns of a source table
  check    - Validate an attribute definition
  options  - List the selectable values of an attribute
  show     - Show the values stored for items
  tag      - Replace the values of an item
  match    - List items tagged with matching values
  unset    - Remove every value of items
  config   - Show or persist the configuration

Examples:
  tagsctl tables                    # List source tables
  tagsctl check colors              # Validate the colors attribute
  tagsctl tag colors 42 red blue    # Tag item 42 with red and blue
  tagsctl match colors red          # Items tagged red`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := commands.Setup(cmd); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Config file (default: cascade of tags.toml files)")
	rootCmd.PersistentFlags().StringVar(&commands.DatabasePath, "db", "", "Database path (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&commands.DefinitionsPath, "definitions", "", "Definitions file (overrides definitions.path)")
	rootCmd.PersistentFlags().StringVarP(&commands.OutputFormat, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(commands.TablesCmd)
	rootCmd.AddCommand(commands.ColumnsCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.OptionsCmd)
	rootCmd.AddCommand(commands.ShowCmd)
	rootCmd.AddCommand(commands.TagCmd)
	rootCmd.AddCommand(commands.MatchCmd)
	rootCmd.AddCommand(commands.UnsetCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
