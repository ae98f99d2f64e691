package explain

import (
	"testing"

	"github.com/scbrown/cheeky/internal/catalog"
)

func TestJoinWithFinalAnd(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{}, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
		{[]string{"a", "b", "c", "d"}, "a, b, c and d"},
	}
	for _, tt := range tests {
		if got := JoinWithFinalAnd(tt.in); got != tt.want {
			t.Errorf("JoinWithFinalAnd(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReplaceSpecialTokens(t *testing.T) {
	tokens := catalog.SpecialTokens{".": "here", "..": "up there"}
	in := []string{".", "a.txt", "..", "./b"}
	got := ReplaceSpecialTokens(in, tokens)
	want := []string{"here", "a.txt", "up there", "./b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if in[0] != "." {
		t.Error("input slice was modified")
	}
	if got := ReplaceSpecialTokens(nil, tokens); len(got) != 0 {
		t.Errorf("nil input gave %q", got)
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		template, value, want string
	}{
		{"Adds %s to the index.", "a.txt", "Adds a.txt to the index."},
		{"No marker here.", "a.txt", "No marker here."},
		{"Set the commit message to %s", "", "Set the commit message to "},
		{"Value %s keeps %%s literal", "x", "Value x keeps %%s literal"},
	}
	for _, tt := range tests {
		if got := Substitute(tt.template, tt.value); got != tt.want {
			t.Errorf("Substitute(%q, %q) = %q, want %q", tt.template, tt.value, got, tt.want)
		}
	}
}
