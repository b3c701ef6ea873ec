package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/am"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect entigraph configuration",
	Long: `Inspect entigraph configuration.

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/entigraph/entigraph.toml)
3. User config (~/.entigraph/entigraph.toml)
4. Project config (entigraph.toml, searched upward from the working directory)
5. Environment variables (ENTIGRAPH_* prefix, e.g. ENTIGRAPH_SEARCH_MAX_LIMIT)

Examples:
  entigraph config show
  entigraph config show --format json
  entigraph config get search.max_fuzziness
  entigraph config where
  entigraph config validate`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, search.max_limit)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting comes from",
	RunE:  runConfigWhere,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runConfigValidate,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings := am.GetViper().AllSettings()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))
	case "toml":
		fmt.Println("# entigraph configuration")
		if err := toml.NewEncoder(os.Stdout).Encode(settings); err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json)", configFormat)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.GetViper().IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Println(am.Get(key))
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range am.GetConfigIntrospection() {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pterm.Success.Println("Configuration is valid")
	pterm.Info.Println(cfg.String())
	return nil
}
