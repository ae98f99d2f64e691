package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics about explained invocations",
	Long: `Display a summary of the explanation history: how many invocations
were explained and how many named no known command, the most explained
commands and flags, the most frequent misses, the date range and recent
activity counts.`,
	Example: `  cheeky stats
  cheeky stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		st, err := s.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		if jsonOutput {
			return printStatsJSON(cmd.OutOrStdout(), st)
		}
		printStatsText(cmd.OutOrStdout(), st, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStatsJSON(w io.Writer, st store.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func printStatsText(w io.Writer, st store.Stats, now time.Time) {
	heading := style(isTTY(w), color.Bold)

	fmt.Fprintf(w, "Total explained:    %s\n", humanize.Comma(int64(st.Total)))
	fmt.Fprintf(w, "Found:              %s\n", humanize.Comma(int64(st.Found)))
	fmt.Fprintf(w, "Not found:          %s\n", humanize.Comma(int64(st.NotFound)))
	fmt.Fprintf(w, "Unique commands:    %d\n", st.UniqueCommands)

	if st.Total == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Date range:         %s to %s (last %s)\n",
		st.Earliest.Local().Format("2006-01-02"), st.Latest.Local().Format("2006-01-02"),
		humanize.RelTime(st.Latest, now, "ago", "from now"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Last 24h:           %d\n", st.Last24h)
	fmt.Fprintf(w, "Last 7d:            %d\n", st.Last7d)
	fmt.Fprintf(w, "Last 30d:           %d\n", st.Last30d)

	for _, sec := range []struct {
		title string
		rows  []store.NameCount
	}{
		{"Top commands:", st.TopCommands},
		{"Top flags:", st.TopFlags},
		{"Top misses:", st.TopMisses},
	} {
		if len(sec.rows) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading.Sprint(sec.title))
		for _, nc := range sec.rows {
			fmt.Fprintf(w, "  %-30s %d\n", truncate(nc.Name, 30), nc.Count)
		}
	}
}
