package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/hierarchy"
)

// TypesCmd groups type hierarchy commands
var TypesCmd = &cobra.Command{
	Use:   "types",
	Short: "Record and inspect the type hierarchy",
	Long: `Record and inspect the type hierarchy used for blocklist checks and
type classification during load.

Examples:
  entigraph types record wd:Q515 wd:Q486972 wd:Q1549591
  entigraph types ancestors wd:Q515
  entigraph types check wd:Q515 wd:Q486972`,
}

var typesRecordCmd = &cobra.Command{
	Use:   "record <type> <parent...>",
	Short: "Set the direct parents of a type",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTypesRecord,
}

var typesAncestorsCmd = &cobra.Command{
	Use:   "ancestors <type>",
	Short: "List a type and all of its ancestors",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypesAncestors,
}

var typesCheckCmd = &cobra.Command{
	Use:   "check <type> <candidate...>",
	Short: "Report whether any candidate is an ancestor of the type",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTypesCheck,
}

func init() {
	TypesCmd.AddCommand(typesRecordCmd)
	TypesCmd.AddCommand(typesAncestorsCmd)
	TypesCmd.AddCommand(typesCheckCmd)
}

func runTypesRecord(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{withHierarchy: true})
	if err != nil {
		return err
	}
	defer e.Close()

	parents := make([]string, 0, len(args)-1)
	for _, p := range args[1:] {
		parents = append(parents, e.expand(p))
	}
	if err := e.hierarchy.RecordParents(e.expand(args[0]), parents); err != nil {
		return err
	}
	pterm.Success.Printfln("Recorded %d parents for %s", len(parents), args[0])
	return nil
}

func runTypesAncestors(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{withHierarchy: true})
	if err != nil {
		return err
	}
	defer e.Close()

	data := pterm.TableData{{"#", "Type"}}
	for i, t := range e.hierarchy.Ancestors(e.expand(args[0])) {
		data = append(data, []string{pterm.Sprint(i), e.compact(t)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func runTypesCheck(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{withHierarchy: true})
	if err != nil {
		return err
	}
	defer e.Close()

	candidates := make([]string, 0, len(args)-1)
	for _, c := range args[1:] {
		candidates = append(candidates, e.expand(c))
	}
	if e.hierarchy.IntersectsAny(e.expand(args[0]), hierarchy.Set(candidates...)) {
		pterm.Success.Printfln("%s descends from one of %v", args[0], args[1:])
	} else {
		pterm.Info.Printfln("%s does not descend from any of %v", args[0], args[1:])
	}
	return nil
}
