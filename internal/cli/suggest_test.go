package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/scbrown/cheeky/internal/analyze"
)

func TestWriteSuggestTable(t *testing.T) {
	suggestions := []analyze.Suggestion{
		{Name: "commit", Score: 0.83},
		{Name: "config", Score: 0.5},
	}
	var buf bytes.Buffer
	writeSuggestTable(&buf, "COMMAND", "comit", suggestions)
	out := buf.String()

	for _, want := range []string{"RANK", "COMMAND", "SCORE", "commit", "0.83", "0.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSuggestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeSuggestTable(&buf, "FLAG", "zzz", nil)
	if got := buf.String(); got != "No suggestions found for \"zzz\"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteSuggestJSONNeverNull(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSuggestJSON(&buf, "zzz", nil); err != nil {
		t.Fatalf("writeSuggestJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"suggestions": []`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSuggestCmdCommands(t *testing.T) {
	out, _, err := execute(t, "", "suggest", "comit")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "commit") {
		t.Errorf("output = %q, want commit", out)
	}
}

func TestSuggestCmdFlags(t *testing.T) {
	out, _, err := execute(t, "", "suggest", "--json", "--command", "push", "--", "--forse")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	var got suggestOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got.Query != "--forse" {
		t.Errorf("query = %q", got.Query)
	}
	for _, s := range got.Suggestions {
		if s.Name == "all" {
			t.Errorf("unrelated flag suggested: %+v", got.Suggestions)
		}
	}
}

func TestSuggestCmdUnknownCommand(t *testing.T) {
	if _, _, err := execute(t, "", "suggest", "--command", "frob", "x"); err == nil {
		t.Error("expected error for unknown --command")
	}
}

func TestSuggestCmdNoMatch(t *testing.T) {
	out, _, err := execute(t, "", "suggest", "zzzzzzzzz")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "No suggestions found") {
		t.Errorf("output = %q", out)
	}
}
