package analyze

import (
	"math"
	"testing"
)

var gitCommands = []string{"add", "commit", "push", "pull", "status"}

func TestSuggestExactMatch(t *testing.T) {
	results := Suggest("commit", gitCommands)
	if len(results) == 0 {
		t.Fatal("expected at least one suggestion for exact match")
	}
	if results[0].Name != "commit" {
		t.Errorf("Name = %q, want %q", results[0].Name, "commit")
	}
	if results[0].Score != 1.0 {
		t.Errorf("Score = %f, want 1.0", results[0].Score)
	}
}

func TestSuggestTypo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"comit", "commit"},
		{"commmit", "commit"},
		{"psuh", "push"},
		{"stauts", "status"},
		{"ad", "add"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			results := Suggest(tt.in, gitCommands)
			if len(results) == 0 {
				t.Fatalf("no suggestions for %q", tt.in)
			}
			if results[0].Name != tt.want {
				t.Errorf("top suggestion = %q, want %q (all: %+v)", results[0].Name, tt.want, results)
			}
		})
	}
}

func TestSuggestCaseInsensitive(t *testing.T) {
	results := Suggest("COMMIT", gitCommands)
	if len(results) == 0 || results[0].Name != "commit" || results[0].Score != 1.0 {
		t.Errorf("got %+v, want exact commit match", results)
	}
}

func TestSuggestFlagNames(t *testing.T) {
	flags := []string{"verbose", "dry-run", "force", "pathspec-from-file"}
	name, ok := Closest("--verbos", flags)
	if !ok || name != "verbose" {
		t.Errorf("Closest(--verbos) = %q, %v; want verbose", name, ok)
	}
	name, ok = Closest("dry_run", flags)
	if !ok || name != "dry-run" {
		t.Errorf("Closest(dry_run) = %q, %v; want dry-run", name, ok)
	}
}

func TestSuggestBelowThreshold(t *testing.T) {
	if results := Suggest("zzzzzzzz", gitCommands); len(results) != 0 {
		t.Errorf("expected no suggestions, got %+v", results)
	}
	if _, ok := Closest("zzzzzzzz", gitCommands); ok {
		t.Error("Closest should report no match")
	}
}

func TestSuggestEmpty(t *testing.T) {
	if results := Suggest("", gitCommands); results != nil {
		t.Errorf("expected nil for empty name, got %+v", results)
	}
	if results := Suggest("add", nil); results != nil {
		t.Errorf("expected nil for empty known list, got %+v", results)
	}
}

func TestSuggestTopN(t *testing.T) {
	results := SuggestN("p", []string{"pa", "pb", "pc", "pd"}, 2, 0)
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSuggestSortedByScore(t *testing.T) {
	results := SuggestN("pul", gitCommands, 0, 0)
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted: %+v", results)
		}
	}
	if results[0].Name != "pull" {
		t.Errorf("top = %q, want pull", results[0].Name)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"commit", "commit"},
		{"dry-run", "dry run"},
		{"--dry_run", "dry run"},
		{"dryRun", "dry run"},
		{"PATHSPEC", "pathspec"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{{"a", "b"}, {"add", "commit"}, {"push", "pull"}, {"ü", "u"}}
	for _, p := range pairs {
		s := similarity(p[0], p[1])
		if s < 0 || s > 1 || math.IsNaN(s) {
			t.Errorf("similarity(%q, %q) = %f out of [0,1]", p[0], p[1], s)
		}
	}
	if similarity("", "add") != 0 {
		t.Error("similarity with empty string should be 0")
	}
	if similarity("add", "add") != 1 {
		t.Error("identical strings should score 1")
	}
}

func TestCommonPrefixSuffixLen(t *testing.T) {
	if got := commonPrefixLen("commit", "comment"); got != 4 {
		t.Errorf("commonPrefixLen = %d, want 4", got)
	}
	if got := commonSuffixLen("push", "fetch"); got != 1 {
		t.Errorf("commonSuffixLen = %d, want 1", got)
	}
	if got := commonPrefixLen("", "x"); got != 0 {
		t.Errorf("commonPrefixLen empty = %d, want 0", got)
	}
}
