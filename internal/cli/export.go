package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/scbrown/cheeky/internal/model"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export raw history records",
	Long: `Export dumps every history record in JSON (one per line) or CSV format,
oldest first.

Output is written to stdout, suitable for piping to jq, spreadsheets, or
other processing tools.`,
	Example: `  cheeky export
  cheeky export --format csv > history.csv
  cheeky export --since 2026-01-01
  cheeky export --since 7d | jq -r .input`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		format := exportFormat
		if jsonOutput {
			format = "json"
		}
		if format != "json" && format != "csv" {
			return fmt.Errorf("unsupported format %q (use json or csv)", format)
		}

		var opts store.ListOpts
		if exportSince != "" {
			t, err := parseSince(exportSince, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --since value %q: %w", exportSince, err)
			}
			opts.Since = t
		}

		entries, err := s.List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		// List is newest first; exports read chronologically.
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}

		if format == "csv" {
			return writeEntriesCSV(cmd.OutOrStdout(), entries)
		}
		return writeEntriesJSONL(cmd.OutOrStdout(), entries)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only export records after this time (RFC3339, YYYY-MM-DD or a duration like 7d)")
	rootCmd.AddCommand(exportCmd)
}

// parseSince parses an RFC3339 time, a date, or a duration back from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if d, err := parseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 (e.g. 2026-01-01T00:00:00Z), a date (e.g. 2026-01-01) or a duration (e.g. 7d)")
}

// writeEntriesJSONL writes one JSON object per line.
func writeEntriesJSONL(w io.Writer, entries []model.HistoryEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}
	return nil
}

// writeEntriesCSV writes entries as CSV with a header row. Flags are joined
// with spaces.
func writeEntriesCSV(w io.Writer, entries []model.HistoryEntry) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "timestamp", "source", "found", "command", "flags", "input"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			e.Source,
			strconv.FormatBool(e.Found),
			e.Command,
			strings.Join(e.Flags, " "),
			e.Input,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
