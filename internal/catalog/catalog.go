// Package catalog holds the static registry of known commands, their flags
// and the special positional tokens used when rendering explanations.
//
// A Catalog is validated once by New and is read-only afterwards, so it can
// be shared by any number of goroutines without locking.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/scbrown/cheeky/internal/cmdparse"
	"github.com/scbrown/cheeky/internal/model"
)

// SpecialTokens maps a literal positional argument (e.g. ".") to the phrase
// shown in its place.
type SpecialTokens map[string]string

// ConfigError reports a catalog definition that violates the catalog
// invariants. It is a load-time error; callers should abort startup.
type ConfigError struct {
	Command string // command name, empty for catalog-level problems
	Flag    string // flag name or alias, if the problem is flag-specific
	Reason  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Command != "" && e.Flag != "":
		return fmt.Sprintf("catalog: command %q flag %q: %s", e.Command, e.Flag, e.Reason)
	case e.Command != "":
		return fmt.Sprintf("catalog: command %q: %s", e.Command, e.Reason)
	default:
		return "catalog: " + e.Reason
	}
}

// Catalog is an immutable set of command definitions for one tool.
type Catalog struct {
	prefix  string
	names   []string
	cmds    map[string]model.Command
	schemas map[string]*cmdparse.Schema
	tokens  SpecialTokens
}

// New validates cmds and returns a Catalog for the tool invoked as prefix.
// All invariant violations are reported together; each is a *ConfigError.
func New(prefix string, cmds []model.Command, tokens SpecialTokens) (*Catalog, error) {
	var errs []error
	if prefix == "" || strings.ContainsAny(prefix, " \t\n") {
		errs = append(errs, &ConfigError{Reason: fmt.Sprintf("invalid tool prefix %q", prefix)})
	}

	c := &Catalog{
		prefix:  prefix,
		cmds:    make(map[string]model.Command, len(cmds)),
		schemas: make(map[string]*cmdparse.Schema, len(cmds)),
		tokens:  maps.Clone(tokens),
	}
	if c.tokens == nil {
		c.tokens = SpecialTokens{}
	}
	for tok := range c.tokens {
		if tok == "" {
			errs = append(errs, &ConfigError{Reason: "empty special token"})
		}
	}

	for i, cmd := range cmds {
		if cmd.Name == "" {
			errs = append(errs, &ConfigError{Reason: fmt.Sprintf("command #%d has no name", i+1)})
			continue
		}
		if _, dup := c.cmds[cmd.Name]; dup {
			errs = append(errs, &ConfigError{Command: cmd.Name, Reason: "duplicate command name"})
			continue
		}
		cmdErrs := validateCommand(cmd)
		errs = append(errs, cmdErrs...)
		if len(cmdErrs) > 0 {
			continue
		}
		cmd = cloneCommand(cmd)
		c.names = append(c.names, cmd.Name)
		c.cmds[cmd.Name] = cmd
		c.schemas[cmd.Name] = cmdparse.NewSchema(cmd.Flags)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func validateCommand(cmd model.Command) []error {
	var errs []error
	bad := func(flag, reason string) {
		errs = append(errs, &ConfigError{Command: cmd.Name, Flag: flag, Reason: reason})
	}
	if strings.ContainsAny(cmd.Name, " \t\n") || strings.HasPrefix(cmd.Name, "-") {
		bad("", "command name must be a single word not starting with '-'")
	}
	if n := strings.Count(cmd.Description, model.Marker); n > 1 {
		bad("", fmt.Sprintf("description has %d markers, want at most 1", n))
	}

	// owner maps every flag name and alias to the flag that declared it.
	owner := make(map[string]string)
	claim := func(spelling, flag string) {
		if prev, ok := owner[spelling]; ok {
			bad(flag, fmt.Sprintf("%q is already used by flag %q", spelling, prev))
			return
		}
		owner[spelling] = flag
	}
	for i, f := range cmd.Flags {
		if f.Name == "" {
			bad("", fmt.Sprintf("flag #%d has no name", i+1))
			continue
		}
		if !validSpelling(f.Name) {
			bad(f.Name, "flag name must be a single word not starting with '-'")
		}
		if n := strings.Count(f.Description, model.Marker); n > 1 {
			bad(f.Name, fmt.Sprintf("description has %d markers, want at most 1", n))
		}
		claim(f.Name, f.Name)
		for _, a := range f.Aliases {
			if !validSpelling(a) {
				bad(f.Name, fmt.Sprintf("invalid alias %q", a))
				continue
			}
			claim(a, f.Name)
		}
	}
	return errs
}

func validSpelling(s string) bool {
	return s != "" && !strings.HasPrefix(s, "-") && !strings.ContainsAny(s, " \t\n=")
}

func cloneCommand(cmd model.Command) model.Command {
	flags := make([]model.Flag, len(cmd.Flags))
	for i, f := range cmd.Flags {
		f.Aliases = slices.Clone(f.Aliases)
		flags[i] = f
	}
	cmd.Flags = flags
	return cmd
}

// Prefix returns the tool invocation prefix (e.g. "git").
func (c *Catalog) Prefix() string {
	return c.prefix
}

// Find returns the command with the given name.
func (c *Catalog) Find(name string) (model.Command, bool) {
	cmd, ok := c.cmds[name]
	if !ok {
		return model.Command{}, false
	}
	return cloneCommand(cmd), true
}

// Schema returns the cached flag schema for a command.
func (c *Catalog) Schema(name string) (*cmdparse.Schema, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Names returns command names in declaration order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Commands returns copies of all commands in declaration order.
func (c *Catalog) Commands() []model.Command {
	out := make([]model.Command, len(c.names))
	for i, n := range c.names {
		out[i] = cloneCommand(c.cmds[n])
	}
	return out
}

// Len returns the number of commands.
func (c *Catalog) Len() int {
	return len(c.names)
}

// SpecialTokens returns a copy of the special-token table.
func (c *Catalog) SpecialTokens() SpecialTokens {
	return maps.Clone(c.tokens)
}

// Phrase returns the phrase for a special token.
func (c *Catalog) Phrase(token string) (string, bool) {
	p, ok := c.tokens[token]
	return p, ok
}

// Merge returns a new Catalog with cmds added. A command whose name already
// exists replaces the existing definition in place.
func Merge(base *Catalog, cmds ...model.Command) (*Catalog, error) {
	all := base.Commands()
	for _, cmd := range cmds {
		idx := slices.IndexFunc(all, func(c model.Command) bool { return c.Name == cmd.Name })
		if idx >= 0 {
			all[idx] = cmd
			continue
		}
		all = append(all, cmd)
	}
	return New(base.prefix, all, base.tokens)
}
