package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/scbrown/cheeky/internal/model"
	"github.com/scbrown/cheeky/internal/store"
)

// seed writes entries straight into the env's database.
func (e *cliEnv) seed(entries ...model.HistoryEntry) {
	e.t.Helper()
	s, err := store.New(e.dbPath)
	if err != nil {
		e.t.Fatalf("store.New: %v", err)
	}
	defer s.Close()
	for _, en := range entries {
		if err := s.Record(context.Background(), en); err != nil {
			e.t.Fatalf("seed %q: %v", en.Input, err)
		}
	}
}

func sampleHistory(now time.Time) []model.HistoryEntry {
	return []model.HistoryEntry{
		{ID: "h1", Input: "git add .", Command: "add", Found: true, Source: "cli", Timestamp: now.Add(-40 * 24 * time.Hour)},
		{ID: "h2", Input: "git commit -am wip", Command: "commit", Flags: []string{"all", "message"}, Found: true, Source: "http", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "h3", Input: "git comit", Found: false, Source: "cli", Timestamp: now.Add(-time.Hour)},
	}
}

func TestHistoryTable(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "history")
	for _, want := range []string{"WHEN", "COMMAND", "git commit -am wip", "all,message", "1 hour ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Newest first.
	if strings.Index(out, "git comit") > strings.Index(out, "git add .") {
		t.Errorf("entries not newest first:\n%s", out)
	}
}

func TestHistoryFilters(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"--misses"}, []string{"h3"}},
		{[]string{"--command", "commit"}, []string{"h2"}},
		{[]string{"--source", "cli"}, []string{"h3", "h1"}},
		{[]string{"--since", "7d"}, []string{"h3", "h2"}},
		{[]string{"--limit", "1"}, []string{"h3"}},
	}
	for _, tt := range tests {
		out := e.mustRun("", append([]string{"history", "--json"}, tt.args...)...)
		var got []model.HistoryEntry
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("%v: unmarshal: %v", tt.args, err)
		}
		var ids []string
		for _, en := range got {
			ids = append(ids, en.ID)
		}
		if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
			t.Errorf("history %v = %v, want %v", tt.args, ids, tt.want)
		}
	}
}

func TestHistoryJSONEmpty(t *testing.T) {
	out, _, err := execute(t, "", "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestHistoryPrune(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "history", "--prune", "30d")
	if !strings.Contains(out, "Removed 1 entry.") {
		t.Errorf("output = %q", out)
	}
	out = e.mustRun("", "history")
	if strings.Contains(out, "git add .") {
		t.Errorf("pruned entry still listed:\n%s", out)
	}
}

func TestHistoryInvalidDuration(t *testing.T) {
	if _, _, err := execute(t, "", "history", "--since", "soon"); err == nil {
		t.Error("expected error for invalid --since")
	}
}

func TestWriteHistoryTableMiss(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	entries := []model.HistoryEntry{{Input: "git nope", Timestamp: now.Add(-3 * time.Minute)}}
	if err := writeHistoryTable(&buf, entries, now); err != nil {
		t.Fatalf("writeHistoryTable: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and one row:\n%s", len(lines), buf.String())
	}
	fields := strings.Fields(lines[1])
	// WHEN spans "3 minutes ago"; COMMAND and FLAGS are dashes for a miss.
	if fields[3] != "-" || fields[4] != "-" {
		t.Errorf("row = %q, want dashes for command and flags", lines[1])
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30m", 30 * time.Minute, false},
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestStatsText(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "stats")
	for _, want := range []string{
		"Total explained:    3",
		"Found:              2",
		"Not found:          1",
		"Unique commands:    2",
		"Top commands:",
		"Top misses:",
		"git comit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsEmpty(t *testing.T) {
	out, _, err := execute(t, "", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Total explained:    0") || strings.Contains(out, "Date range") {
		t.Errorf("output = %q", out)
	}
}

func TestStatsJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "stats", "--json")
	var st store.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if st.Total != 3 || st.NotFound != 1 || st.Last7d != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestExportJSONL(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "export")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	var first model.HistoryEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0: %v", err)
	}
	if first.ID != "h1" {
		t.Errorf("first exported = %q, want oldest h1", first.ID)
	}
}

func TestExportCSV(t *testing.T) {
	e := newCLIEnv(t)
	e.seed(sampleHistory(time.Now())...)

	out := e.mustRun("", "export", "--format", "csv", "--since", "7d")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header and 2: %v", len(records), records)
	}
	if strings.Join(records[0], ",") != "id,timestamp,source,found,command,flags,input" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][5] != "all message" || records[1][3] != "true" {
		t.Errorf("row = %v", records[1])
	}
}

func TestExportBadFormat(t *testing.T) {
	if _, _, err := execute(t, "", "export", "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-01-01T00:00:00Z", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2026-02-01", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"2d", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), false},
		{"not-a-date", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseSince(tt.in, now)
		if (err != nil) != tt.wantErr || !got.Equal(tt.want) {
			t.Errorf("parseSince(%q) = %v, %v", tt.in, got, err)
		}
	}
}
