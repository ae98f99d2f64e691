package explain

import (
	"strings"

	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/model"
)

// ReplaceSpecialTokens returns a copy of args with every argument that is a
// key of tokens replaced by its phrase.
func ReplaceSpecialTokens(args []string, tokens catalog.SpecialTokens) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if phrase, ok := tokens[a]; ok {
			out[i] = phrase
			continue
		}
		out[i] = a
	}
	return out
}

// JoinWithFinalAnd renders items as an English list: "a", "a and b",
// "a, b and c".
func JoinWithFinalAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// Substitute replaces the first marker in template with value. Templates
// without a marker are returned unchanged.
func Substitute(template, value string) string {
	return strings.Replace(template, model.Marker, value, 1)
}
