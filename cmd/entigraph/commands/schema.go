package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SchemaCmd groups schema inspection commands
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the property schema",
}

var schemaLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List schema properties",
	Long:  "List every property of the configured schema (schema.path) or of the built-in schema.org subset.",
	RunE:  runSchemaLs,
}

func init() {
	SchemaCmd.AddCommand(schemaLsCmd)
}

func runSchemaLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := loadSchema(cfg)
	if err != nil {
		return err
	}

	ns := cfg.LoaderOptions().Namespaces
	data := pterm.TableData{{"Property", "Kind", "Functional", "Label", "Domains"}}
	for _, p := range reg.Properties() {
		domains := make([]string, 0, len(p.Domains))
		for _, d := range p.Domains {
			domains = append(domains, ns.Compact(d))
		}
		data = append(data, []string{
			ns.Compact(p.IRI),
			p.Kind.String(),
			yesNo(p.Functional),
			yesNo(p.LabelSource),
			strings.Join(domains, ", "),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printfln("%d properties", reg.Len())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
