package explain

import (
	"strings"

	"github.com/scbrown/cheeky/internal/analyze"
	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/cmdparse"
	"github.com/scbrown/cheeky/internal/model"
)

// CommandHints suggests catalog commands for an input whose command name was
// not found. It returns nil when the input does not start with the prefix.
func CommandHints(raw string, cat *catalog.Catalog) []analyze.Suggestion {
	tokens := cmdparse.Tokenize(raw)
	if len(tokens) < 2 || !strings.EqualFold(tokens[0], cat.Prefix()) {
		return nil
	}
	return analyze.Suggest(strings.ToLower(tokens[1]), cat.Names())
}

// FlagHints maps each unrecognized flag of e to the closest flag name the
// command declares. Flags with no close match are omitted.
func FlagHints(e *model.Explanation, cat *catalog.Catalog) map[string]string {
	if e == nil || len(e.Unrecognized) == 0 {
		return nil
	}
	cmd, ok := cat.Find(e.Name)
	if !ok {
		return nil
	}
	var known []string
	for _, f := range cmd.Flags {
		known = append(known, f.Name)
	}
	hints := make(map[string]string)
	for _, u := range e.Unrecognized {
		if name, ok := analyze.Closest(u, known); ok {
			hints[u] = name
		}
	}
	return hints
}
