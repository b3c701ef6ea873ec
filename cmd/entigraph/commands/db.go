package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the entity index",
	Long: `Inspect the entity index and the type hierarchy files.

Examples:
  entigraph db stats`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{withHierarchy: true})
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	edges, err := e.hierarchy.Len()
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Index statistics")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Index path", e.cfg.GetDatabasePath()},
		{"Hierarchy path", e.cfg.GetHierarchyPath()},
		{"Documents", pterm.Sprint(st.Documents)},
		{"Distinct types", pterm.Sprint(st.Types)},
		{"Fields", pterm.Sprint(st.Fields)},
		{"Label terms", pterm.Sprint(st.Labels)},
		{"Types with parents", pterm.Sprint(edges)},
		{"Schema properties", pterm.Sprint(e.schema.Len())},
	}).Render()
	return nil
}
