// Package docscrape builds catalog command definitions offline from locally
// saved documentation: git-scm.com manual pages (HTML) or the plain text a
// command prints for -h / --help.
//
// Entries are validated one at a time. Anything that cannot become a valid
// flag definition (no name, a positional placeholder, an alias already taken
// by an earlier option) is reported in Result.Skipped instead of being kept.
package docscrape

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/scbrown/cheeky/internal/model"
)

// ErrNoOptions is returned when the input has no recognizable options section.
var ErrNoOptions = errors.New("no options found")

// Skip records a documentation entry that was not turned into a flag.
type Skip struct {
	Spelling string `json:"spelling"`
	Reason   string `json:"reason"`
}

// Result is a scraped command together with the entries that were rejected.
type Result struct {
	Command model.Command `json:"command"`
	Skipped []Skip        `json:"skipped,omitempty"`
}

// entry is one documented option before validation: every spelling listed
// for it and its description text.
type entry struct {
	spellings   []string
	description string
}

// builder accumulates validated flags, enforcing name/alias uniqueness.
type builder struct {
	res   Result
	taken map[string]string
}

func newBuilder(name, description string) *builder {
	return &builder{
		res:   Result{Command: model.Command{Name: name, Description: description}},
		taken: make(map[string]string),
	}
}

func (b *builder) skip(spelling, reason string) {
	b.res.Skipped = append(b.res.Skipped, Skip{Spelling: spelling, Reason: reason})
}

// add validates e and appends it as a flag definition.
func (b *builder) add(e entry) {
	raw := strings.Join(e.spellings, ", ")
	var names []string
	isString := false
	for _, s := range splitSpellings(e.spellings) {
		name, takesValue, ok := parseSpelling(s)
		if takesValue {
			isString = true
		}
		if !ok {
			continue
		}
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		b.skip(raw, "missing flag name")
		return
	}

	// The longest spelling is the canonical name; the rest are aliases.
	longest := 0
	for i, n := range names {
		if len(n) > len(names[longest]) {
			longest = i
		}
	}
	f := model.Flag{
		Name:        names[longest],
		Description: escapeMarkers(cleanText(e.description)),
		IsString:    isString,
	}
	if owner, ok := b.taken[f.Name]; ok {
		b.skip(raw, fmt.Sprintf("name %q already used by %q", f.Name, owner))
		return
	}
	if f.Description == "" {
		b.skip(raw, "missing description")
		return
	}
	if isString {
		f.Description += " Value: " + model.Marker + "."
	}
	b.taken[f.Name] = f.Name
	for i, n := range names {
		if i == longest {
			continue
		}
		if owner, ok := b.taken[n]; ok {
			b.skip("-"+n, fmt.Sprintf("alias already used by %q", owner))
			continue
		}
		b.taken[n] = f.Name
		f.Aliases = append(f.Aliases, n)
	}
	b.res.Command.Flags = append(b.res.Command.Flags, f)
}

func (b *builder) result() (*Result, error) {
	if b.res.Command.Name == "" {
		return nil, errors.New("command name is required")
	}
	if len(b.res.Command.Flags) == 0 && len(b.res.Skipped) == 0 {
		return nil, ErrNoOptions
	}
	return &b.res, nil
}

// splitSpellings flattens entries like "-v, --verbose" into one spelling each.
func splitSpellings(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseSpelling extracts the flag name from a documented spelling such as
// "--message=<msg>", "-m <msg>", "--[no-]verify" or "-S[<keyid>]".
// takesValue reports whether the spelling shows a value placeholder.
func parseSpelling(s string) (name string, takesValue bool, ok bool) {
	s = strings.TrimSpace(s)
	takesValue = strings.Contains(s, "<")
	if !strings.HasPrefix(s, "-") {
		return "", takesValue, false
	}
	s = strings.Replace(s, "[no-]", "", 1)
	body := strings.TrimLeft(s, "-")
	if end := strings.IndexFunc(body, func(r rune) bool {
		return r == '=' || r == '[' || r == '<' || unicode.IsSpace(r)
	}); end >= 0 {
		body = body[:end]
	}
	if body == "" {
		return "", takesValue, false
	}
	return body, takesValue, true
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeMarkers keeps literal "%s" in documentation from being read as a
// template marker.
func escapeMarkers(s string) string {
	return strings.ReplaceAll(s, model.Marker, "% s")
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	s = cleanText(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	s = string(r)
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
