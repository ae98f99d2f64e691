package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/scbrown/cheeky/internal/model"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

var (
	historySince   string
	historyCommand string
	historySource  string
	historyMisses  bool
	historyLimit   int
	historyPrune   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently explained invocations",
	Long: `History shows the invocations cheeky has explained, newest first.
Entries that named no known command are marked with a dash in the COMMAND
column; --misses shows only those.

--prune deletes entries older than the given duration instead of listing.`,
	Example: `  cheeky history
  cheeky history --since 7d
  cheeky history --command commit --limit 10
  cheeky history --misses
  cheeky history --prune 90d
  cheeky history --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		if historyPrune != "" {
			d, err := parseDuration(historyPrune)
			if err != nil {
				return fmt.Errorf("invalid --prune value %q: %w", historyPrune, err)
			}
			n, err := s.Prune(ctx, time.Now().Add(-d))
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Fprintf(w, "Removed %s %s.\n", humanize.Comma(int64(n)), plural(n, "entry", "entries"))
			return nil
		}

		opts := store.ListOpts{
			Command:    historyCommand,
			Source:     historySource,
			MissesOnly: historyMisses,
			Limit:      historyLimit,
		}
		if historySince != "" {
			d, err := parseDuration(historySince)
			if err != nil {
				return fmt.Errorf("invalid --since value %q: %w", historySince, err)
			}
			opts.Since = time.Now().Add(-d)
		}

		entries, err := s.List(ctx, opts)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}

		if jsonOutput {
			if entries == nil {
				entries = []model.HistoryEntry{}
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		return writeHistoryTable(w, entries, time.Now())
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "show entries within this duration (e.g., 30m, 24h, 7d)")
	historyCmd.Flags().StringVar(&historyCommand, "command", "", "filter by resolved command name")
	historyCmd.Flags().StringVar(&historySource, "source", "", "filter by source (cli or http)")
	historyCmd.Flags().BoolVar(&historyMisses, "misses", false, "only show invocations that named no known command")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of results")
	historyCmd.Flags().StringVar(&historyPrune, "prune", "", "delete entries older than this duration instead of listing")
	rootCmd.AddCommand(historyCmd)
}

func writeHistoryTable(w io.Writer, entries []model.HistoryEntry, now time.Time) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history found.")
		return nil
	}
	tbl := NewTable(w, "WHEN", "COMMAND", "FLAGS", "INPUT")
	for _, e := range entries {
		command := "-"
		if e.Found {
			command = e.Command
		}
		flags := strings.Join(e.Flags, ",")
		if flags == "" {
			flags = "-"
		}
		tbl.Row(
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			command,
			truncate(flags, 30),
			truncate(e.Input, 50),
		)
	}
	return tbl.Flush()
}

// parseDuration parses a duration string that supports d (days), h (hours), m (minutes), s (seconds).
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Handle "d" suffix for days, which time.ParseDuration doesn't support.
	if strings.HasSuffix(s, "d") {
		numStr := s[:len(s)-1]
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", numStr)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
