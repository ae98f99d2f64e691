package explain

import (
	"github.com/scbrown/cheeky/internal/cmdparse"
	"github.com/scbrown/cheeky/internal/model"
)

// Matched pairs a catalog flag definition with the value it was given.
type Matched struct {
	Flag  model.Flag
	Value cmdparse.Assignment
}

// Match returns the flags of cmd that inv turns on, in catalog declaration
// order. Flags the catalog does not declare are dropped.
func Match(cmd model.Command, inv cmdparse.Invocation) []Matched {
	var out []Matched
	for _, f := range cmd.Flags {
		a, ok := inv.Lookup(f.Name)
		if !ok || !a.Present() {
			continue
		}
		out = append(out, Matched{Flag: f, Value: a})
	}
	return out
}
