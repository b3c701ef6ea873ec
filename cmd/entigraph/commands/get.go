package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/model"
)

// GetCmd shows one stored entity
var GetCmd = &cobra.Command{
	Use:   "get <iri>",
	Short: "Show one entity",
	Long: `Show the stored types and claims of one entity.

Examples:
  entigraph get wd:Q42
  entigraph get http://www.wikidata.org/entity/Q90`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := e.store.OpenReader(cmd.Context())
	if err != nil {
		return err
	}
	defer r.Close()

	doc, err := r.Document(cmd.Context(), e.expand(args[0]))
	if err != nil {
		return err
	}
	printEntity(e, e.codec.Decode(doc))
	return nil
}

func printEntity(e *env, ent *model.Entity) {
	pterm.DefaultSection.Println(e.compact(ent.IRI))
	types := make([]string, 0, len(ent.Types))
	for _, t := range ent.SortedTypes() {
		types = append(types, e.compact(t))
	}
	pterm.Printfln("types: %v", types)
	if ent.Rank != 0 {
		pterm.Printfln("rank: %g", ent.Rank)
	}

	data := pterm.TableData{{"Property", "Kind", "Value"}}
	for _, c := range ent.Claims {
		data = append(data, []string{e.compact(c.Property), c.Value.Kind().String(), displayValue(e, c.Value)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func displayValue(e *env, v model.Value) string {
	switch v := v.(type) {
	case model.ResourceValue:
		return e.compact(v.IRI)
	default:
		return fmt.Sprint(v)
	}
}
