package cmdparse

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Assignment is one flag occurrence in an invocation.
type Assignment struct {
	Name  string // canonical name; the name as typed when Known is false
	Kind  Kind
	Bool  bool   // presence for boolean flags
	Value string // value for string flags
	Known bool   // whether the schema declares the flag
}

// Present reports whether the assignment turns the flag on. String flags are
// present whenever they appear, even with an empty value.
func (a Assignment) Present() bool {
	if a.Kind == KindString {
		return true
	}
	return a.Bool
}

// Invocation is the parsed form of one tool invocation.
type Invocation struct {
	Prefix      string
	Command     string
	Positionals []string
	Flags       []Assignment
}

// Lookup returns the last assignment of a canonical flag name.
func (inv Invocation) Lookup(name string) (Assignment, bool) {
	for i := len(inv.Flags) - 1; i >= 0; i-- {
		if inv.Flags[i].Known && inv.Flags[i].Name == name {
			return inv.Flags[i], true
		}
	}
	return Assignment{}, false
}

// Unknown returns the distinct names of flags the schema does not declare,
// in the order they first appeared.
func (inv Invocation) Unknown() []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range inv.Flags {
		if a.Known || seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a.Name)
	}
	return out
}

// ParseArgs parses the tokens that follow the command name. Tokens that do
// not look like flags are positionals; "--" ends flag parsing. Unknown flags
// are recorded as boolean presences and never consume the next token.
func ParseArgs(tokens []string, schema *Schema) Invocation {
	p := &argParser{schema: schema, tokens: tokens}
	p.run()
	return p.inv
}

type argParser struct {
	schema *Schema
	tokens []string
	pos    int
	inv    Invocation
}

func (p *argParser) run() {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		switch {
		case tok == "--":
			p.inv.Positionals = append(p.inv.Positionals, p.tokens[p.pos:]...)
			p.pos = len(p.tokens)
		case strings.HasPrefix(tok, "--"):
			p.long(tok[2:])
		case isFlagToken(tok):
			p.short(tok[1:])
		default:
			p.inv.Positionals = append(p.inv.Positionals, tok)
		}
	}
}

// long handles --name, --name=value and --no-name.
func (p *argParser) long(body string) {
	name, value, hasValue := strings.Cut(body, "=")
	if canon, ok := p.schema.Canonical(name); ok {
		p.assign(canon, value, hasValue)
		return
	}
	if neg, ok := strings.CutPrefix(name, "no-"); ok && !hasValue {
		if canon, ok := p.schema.Canonical(neg); ok {
			if kind, _ := p.schema.Kind(canon); kind == KindBool {
				p.inv.Flags = append(p.inv.Flags, Assignment{Name: canon, Kind: KindBool, Known: true})
				return
			}
		}
	}
	p.unknown(name, value)
}

// short handles -a, -a=value, -abc groups, -mvalue and whole-word aliases.
func (p *argParser) short(body string) {
	name, value, hasValue := strings.Cut(body, "=")
	if canon, ok := p.schema.Canonical(name); ok {
		p.assign(canon, value, hasValue)
		return
	}
	for i, r := range name {
		ch := string(r)
		// Invalid bytes decode as RuneError with width 1, not RuneLen(RuneError).
		_, width := utf8.DecodeRuneInString(name[i:])
		rest := name[i+width:]
		canon, ok := p.schema.Canonical(ch)
		if !ok {
			if rest == "" && hasValue {
				p.unknown(ch, value)
			} else {
				p.unknown(ch, "")
			}
			continue
		}
		kind, _ := p.schema.Kind(canon)
		if kind == KindString && rest != "" {
			v := rest
			if hasValue {
				v += "=" + value
			}
			p.assign(canon, v, true)
			return
		}
		if rest == "" {
			p.assign(canon, value, hasValue)
			return
		}
		p.assign(canon, "", false)
	}
}

func (p *argParser) assign(canon, value string, hasValue bool) {
	kind, _ := p.schema.Kind(canon)
	a := Assignment{Name: canon, Kind: kind, Known: true}
	switch kind {
	case KindString:
		switch {
		case hasValue:
			a.Value = value
		case p.pos < len(p.tokens) && isValueToken(p.tokens[p.pos]):
			a.Value = p.tokens[p.pos]
			p.pos++
		}
	default:
		a.Bool = true
		if hasValue {
			if b, err := strconv.ParseBool(value); err == nil {
				a.Bool = b
			}
		}
	}
	p.inv.Flags = append(p.inv.Flags, a)
}

func (p *argParser) unknown(name, value string) {
	p.inv.Flags = append(p.inv.Flags, Assignment{Name: name, Kind: KindBool, Bool: true, Value: value})
}

// isFlagToken reports whether tok is a single-dash flag. A lone "-" and
// negative numbers are positionals.
func isFlagToken(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err != nil
}

// isValueToken reports whether tok can be consumed as a string flag's value.
func isValueToken(tok string) bool {
	if tok == "--" {
		return false
	}
	return !strings.HasPrefix(tok, "--") && !isFlagToken(tok)
}
