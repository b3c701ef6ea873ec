package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/logger"
	"github.com/teranos/entigraph/search"
)

// SearchCmd runs a label/type search
var SearchCmd = &cobra.Command{
	Use:   "search [label]",
	Short: "Search entities by label and type",
	Long: `Search entities by label (exact, then with growing edit distance) and
optionally restrict to a type. Results are ranked by relevance times
popularity. Pass the printed cursor back with --cursor for the next page.

Examples:
  entigraph search "douglas adams"
  entigraph search pari --type wd:Q515 --locale fr --limit 5
  entigraph search --type wd:Q5 --cursor <token>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var (
	searchType    string
	searchLocale  string
	searchCursor  string
	searchLimit   int
	searchHydrate bool
	searchJSON    bool
)

func init() {
	SearchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Restrict to entities of this type")
	SearchCmd.Flags().StringVarP(&searchLocale, "locale", "l", "", "Label locale (default: first supported locale)")
	SearchCmd.Flags().StringVar(&searchCursor, "cursor", "", "Continue from a previous page")
	SearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum results (default from search.default_limit)")
	SearchCmd.Flags().BoolVar(&searchHydrate, "hydrate", false, "Include decoded entities")
	SearchCmd.Flags().BoolVarP(&searchJSON, "json", "j", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := openEnv(envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	req := search.Request{
		Locale:  searchLocale,
		Cursor:  searchCursor,
		Limit:   searchLimit,
		Hydrate: searchHydrate,
	}
	if len(args) == 1 {
		req.Label = args[0]
	}
	if searchType != "" {
		req.Type = e.expand(searchType)
	}

	r, err := e.store.OpenReader(cmd.Context())
	if err != nil {
		return err
	}
	defer r.Close()

	engine := search.NewEngine(e.codec, e.cfg.SearchOptions(), logger.ComponentLogger("search")).WithMetrics(e.metrics)
	res, err := engine.Search(cmd.Context(), r, req)
	if err != nil {
		return err
	}

	if searchJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(res.Matches) == 0 {
		pterm.Info.Println("No matches")
		return nil
	}
	data := pterm.TableData{{"#", "IRI", "Score"}}
	for i, m := range res.Matches {
		data = append(data, []string{fmt.Sprint(i + 1), e.compact(m.IRI), fmt.Sprintf("%.4f", m.Score)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printfln("fuzziness %d, limit %d", res.Fuzziness, res.Limit)
	if res.NextCursor != "" {
		pterm.Printfln("next: --cursor %s", res.NextCursor)
	}
	if searchHydrate {
		for _, m := range res.Matches {
			if m.Entity != nil {
				printEntity(e, m.Entity)
			}
		}
	}
	return nil
}
