// Package model defines core types for cheeky: catalog commands and flags,
// resolved explanations, and recorded history entries.
package model

import (
	"strings"
	"time"
)

// Marker is the placeholder inside description templates that is replaced
// with positional arguments or a flag value.
const Marker = "%s"

// Flag describes one option of a catalog command.
type Flag struct {
	Name        string   `toml:"name" json:"name"`
	Aliases     []string `toml:"aliases,omitempty" json:"aliases,omitempty"`
	Description string   `toml:"description" json:"description"`
	IsString    bool     `toml:"is_string" json:"is_string"`
}

// Spellings returns the flag as a user would type it: "--name" followed by
// "-alias" for each alias.
func (f Flag) Spellings() []string {
	out := make([]string, 0, len(f.Aliases)+1)
	out = append(out, "--"+f.Name)
	for _, a := range f.Aliases {
		out = append(out, aliasSpelling(a))
	}
	return out
}

// Command is a catalog entry for one subcommand of the modeled tool.
type Command struct {
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`
	Flags       []Flag `toml:"flags,omitempty" json:"flags,omitempty"`
}

// Flag returns the flag definition with the given canonical name.
func (c Command) Flag(name string) (Flag, bool) {
	for _, f := range c.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// FlagExplanation is one supplied flag with its description rendered.
type FlagExplanation struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Value       string   `json:"value,omitempty"`
}

// Explanation is the resolved, human-readable description of an invocation.
type Explanation struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Flags        []FlagExplanation `json:"flags"`
	Unrecognized []string          `json:"unrecognized,omitempty"`
}

// FlagNames returns the canonical names of the explained flags in order.
func (e *Explanation) FlagNames() []string {
	names := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		names[i] = f.Name
	}
	return names
}

// HistoryEntry records one explanation request.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Command   string    `json:"command,omitempty"`
	Flags     []string  `json:"flags,omitempty"`
	Found     bool      `json:"found"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func aliasSpelling(a string) string {
	if len(a) == 1 {
		return "-" + a
	}
	if strings.HasPrefix(a, "-") {
		return a
	}
	return "--" + a
}
