package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlagSpellings(t *testing.T) {
	tests := []struct {
		name string
		f    Flag
		want []string
	}{
		{name: "no aliases", f: Flag{Name: "prune"}, want: []string{"--prune"}},
		{name: "short alias", f: Flag{Name: "verbose", Aliases: []string{"v"}}, want: []string{"--verbose", "-v"}},
		{name: "long alias", f: Flag{Name: "dry-run", Aliases: []string{"n", "simulate"}}, want: []string{"--dry-run", "-n", "--simulate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.Spellings()
			if len(got) != len(tt.want) {
				t.Fatalf("Spellings() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Spellings()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCommandFlag(t *testing.T) {
	c := Command{
		Name: "push",
		Flags: []Flag{
			{Name: "all"},
			{Name: "prune"},
		},
	}
	if f, ok := c.Flag("prune"); !ok || f.Name != "prune" {
		t.Errorf("Flag(prune) = %+v, %v", f, ok)
	}
	if _, ok := c.Flag("force"); ok {
		t.Error("Flag(force) should not be found")
	}
}

func TestExplanationJSON(t *testing.T) {
	e := Explanation{
		Name:        "add",
		Description: "Adds a.txt to the staging area, ready to be committed.",
		Flags:       []FlagExplanation{{Name: "verbose", Aliases: []string{"v"}, Description: "Be verbose."}},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["name"] != "add" {
		t.Errorf("name = %v, want add", raw["name"])
	}
	if _, ok := raw["unrecognized"]; ok {
		t.Error("unrecognized should be omitted when empty")
	}
	if got := e.FlagNames(); len(got) != 1 || got[0] != "verbose" {
		t.Errorf("FlagNames() = %v", got)
	}
}

func TestExplanationEmptyFlagsMarshalsArray(t *testing.T) {
	e := Explanation{Name: "push", Flags: []FlagExplanation{}}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"push","description":"","flags":[]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestHistoryEntryTimestamp(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	h := HistoryEntry{ID: "h-1", Input: "git add .", Command: "add", Found: true, Timestamp: ts}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got HistoryEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if !got.Found || got.Command != "add" {
		t.Errorf("got %+v", got)
	}
}
