package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/cmd/entigraph/commands"
	"github.com/teranos/entigraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "entigraph",
	Short: "entigraph - knowledge-base entity index",
	Long: `entigraph - knowledge-base entity index.

entigraph stores entities as schema-typed documents, answers multilingual
fuzzy label searches with cursor pagination, and serves the same data as
subject-predicate-object triples.

Available commands:
  load     - Load entities and type edges from JSON lines
  search   - Search entities by label and type
  get      - Show one entity
  triples  - Evaluate a triple pattern
  types    - Record and inspect the type hierarchy
  schema   - Inspect the property schema
  db       - Index statistics
  config   - Inspect configuration

Examples:
  entigraph load dump.jsonl
  entigraph search "paris" --type wd:Q515 --locale fr
  entigraph triples --predicate rdf:type --object wd:Q5`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Logger.Debugw("Logger initialized", "level", logger.LevelName(verbosity))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Read configuration from this file only")

	rootCmd.AddCommand(commands.LoadCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.GetCmd)
	rootCmd.AddCommand(commands.TriplesCmd)
	rootCmd.AddCommand(commands.TypesCmd)
	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
