package cmdparse

import "github.com/scbrown/cheeky/internal/model"

// Kind is the value arity of a flag.
type Kind int

const (
	// KindBool flags are presence switches.
	KindBool Kind = iota
	// KindString flags consume a value.
	KindString
)

func (k Kind) String() string {
	if k == KindString {
		return "string"
	}
	return "bool"
}

// Schema is the flag vocabulary of one command: which canonical names exist,
// whether each takes a value, and which aliases map to which name.
// A nil *Schema is valid and knows no flags.
type Schema struct {
	kinds   map[string]Kind
	aliases map[string]string   // alias → canonical
	byName  map[string][]string // canonical → aliases
}

// NewSchema builds a Schema from catalog flag definitions. Later definitions
// never override earlier ones; uniqueness is enforced by the catalog.
func NewSchema(flags []model.Flag) *Schema {
	s := &Schema{
		kinds:   make(map[string]Kind, len(flags)),
		aliases: make(map[string]string),
		byName:  make(map[string][]string, len(flags)),
	}
	for _, f := range flags {
		if _, dup := s.kinds[f.Name]; dup {
			continue
		}
		kind := KindBool
		if f.IsString {
			kind = KindString
		}
		s.kinds[f.Name] = kind
		for _, a := range f.Aliases {
			if _, dup := s.aliases[a]; dup {
				continue
			}
			s.aliases[a] = f.Name
			s.byName[f.Name] = append(s.byName[f.Name], a)
		}
	}
	return s
}

// Canonical resolves a flag name or alias to its canonical name.
func (s *Schema) Canonical(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	if _, ok := s.kinds[name]; ok {
		return name, true
	}
	if c, ok := s.aliases[name]; ok {
		return c, true
	}
	return "", false
}

// Kind reports the value arity of a canonical flag name.
func (s *Schema) Kind(name string) (Kind, bool) {
	if s == nil {
		return KindBool, false
	}
	k, ok := s.kinds[name]
	return k, ok
}

// Aliases returns the aliases declared for a canonical flag name.
func (s *Schema) Aliases(name string) []string {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Len returns the number of canonical flags in the schema.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.kinds)
}
