package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scbrown/cheeky/internal/analyze"
	"github.com/spf13/cobra"
)

var (
	suggestCommand   string
	suggestThreshold float64
	suggestTopN      int
)

// suggestCmd ranks catalog names similar to a mistyped one.
var suggestCmd = &cobra.Command{
	Use:   "suggest <name>",
	Short: "Suggest catalog commands or flags similar to a name",
	Long: `Suggest finds catalog commands similar to the given name using string
similarity. With --command, it ranks that command's flags instead, which helps
with flags cheeky reported as unrecognized. Leading dashes are ignored.`,
	Example: `  cheeky suggest comit
  cheeky suggest --command push -- --forse
  cheeky suggest psh --threshold 0.3 --top 5
  cheeky suggest comit --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		w := cmd.OutOrStdout()

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		kind := "COMMAND"
		known := cat.Names()
		if suggestCommand != "" {
			c, ok := cat.Find(suggestCommand)
			if !ok {
				return fmt.Errorf("unknown command %q", suggestCommand)
			}
			kind = "FLAG"
			known = known[:0:0]
			for _, f := range c.Flags {
				known = append(known, f.Name)
			}
		}

		threshold := suggestThreshold
		if threshold == 0 {
			threshold = analyze.DefaultThreshold
		}
		suggestions := analyze.SuggestN(query, known, suggestTopN, threshold)

		if jsonOutput {
			return writeSuggestJSON(w, query, suggestions)
		}
		writeSuggestTable(w, kind, query, suggestions)
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestCommand, "command", "", "rank the flags of this command instead of command names")
	suggestCmd.Flags().Float64Var(&suggestThreshold, "threshold", 0, "minimum similarity score (default 0.5)")
	suggestCmd.Flags().IntVar(&suggestTopN, "top", 5, "maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
}

// suggestOutput is the JSON structure for suggest results.
type suggestOutput struct {
	Query       string               `json:"query"`
	Suggestions []analyze.Suggestion `json:"suggestions"`
}

// writeSuggestJSON writes suggestions as JSON.
func writeSuggestJSON(w io.Writer, query string, suggestions []analyze.Suggestion) error {
	if suggestions == nil {
		suggestions = []analyze.Suggestion{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(suggestOutput{Query: query, Suggestions: suggestions})
}

// writeSuggestTable writes suggestions as an aligned text table.
func writeSuggestTable(w io.Writer, kind, query string, suggestions []analyze.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintf(w, "No suggestions found for %q\n", query)
		return
	}
	tbl := NewTable(w, "RANK", kind, "SCORE")
	for i, s := range suggestions {
		tbl.Row(fmt.Sprint(i+1), s.Name, fmt.Sprintf("%.2f", s.Score))
	}
	tbl.Flush()
}
