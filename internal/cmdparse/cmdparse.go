// Package cmdparse provides lightweight shell command parsing for git-style
// invocations. It splits command lines on pipes and chain operators, tokenizes
// each segment with shell quoting rules, and parses flags against a
// per-command schema of boolean, string and alias definitions.
package cmdparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrInvalidPrefix is returned when the first token is not the tool prefix.
	ErrInvalidPrefix = errors.New("not a recognized invocation")

	// ErrUnknownCommand is returned when the second token names no known command.
	ErrUnknownCommand = errors.New("unknown command")
)

// Segment represents one command in a pipeline or chain.
type Segment struct {
	Command string   // program name (e.g., "git")
	Tokens  []string // all tokens after the command
	Raw     string   // original text of this segment (trimmed)
	Start   int      // byte offset of Raw in the full command string
	End     int      // byte offset end (exclusive)
}

// Split splits a command string into Segments on |, &&, ||, ;.
// It respects single and double quotes and backslash escapes.
// Start and End offsets point to the trimmed segment text within
// the original command string.
func Split(cmd string) []Segment {
	parts := splitOperators(cmd)
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p.text)
		if trimmed == "" {
			continue
		}
		leading := len(p.text) - len(strings.TrimLeft(p.text, " \t"))
		trimStart := p.start + leading
		trimEnd := trimStart + len(trimmed)

		tokens := Tokenize(trimmed)
		s := Segment{
			Raw:   trimmed,
			Start: trimStart,
			End:   trimEnd,
		}
		if len(tokens) > 0 {
			s.Command = tokens[0]
			s.Tokens = tokens[1:]
		}
		segs = append(segs, s)
	}
	return segs
}

// Tokenize splits s into words using shell quoting rules: a quoted substring
// is a single word with its quotes removed. Unquoted ; & | < > are kept as
// literal word characters since chains are already split by Split. Input
// with unbalanced quotes is split on whitespace instead of failing.
func Tokenize(s string) []string {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false
	words, err := p.Parse(escapeOperators(s))
	if err != nil {
		return strings.Fields(s)
	}
	return words
}

// escapeOperators backslash-escapes shell operator characters outside of
// quotes, where shellwords would otherwise stop parsing.
func escapeOperators(s string) string {
	if !strings.ContainsAny(s, ";&|<>") {
		return s
	}
	var b strings.Builder
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case strings.ContainsRune(";&|<>", r):
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SchemaLookup returns the flag schema for a command name, or false when the
// command is unknown.
type SchemaLookup func(command string) (*Schema, bool)

// Parse tokenizes raw, checks that it starts with prefix followed by a known
// command, and parses the remaining tokens against that command's schema.
func Parse(raw, prefix string, lookup SchemaLookup) (Invocation, error) {
	tokens := Tokenize(raw)
	if len(tokens) == 0 || !strings.EqualFold(tokens[0], prefix) {
		return Invocation{}, ErrInvalidPrefix
	}
	if len(tokens) < 2 {
		return Invocation{}, fmt.Errorf("%w: missing command name", ErrUnknownCommand)
	}
	name := tokens[1]
	schema, ok := lookup(name)
	if !ok {
		name = strings.ToLower(name)
		schema, ok = lookup(name)
	}
	if !ok {
		return Invocation{}, fmt.Errorf("%w: %q", ErrUnknownCommand, tokens[1])
	}
	inv := ParseArgs(tokens[2:], schema)
	inv.Prefix = prefix
	inv.Command = name
	return inv, nil
}

// part is an internal type for split results.
type part struct {
	text  string
	start int
	end   int
}

// splitOperators splits on unquoted |, &&, ||, ; while preserving offsets.
func splitOperators(cmd string) []part {
	var parts []part
	inSingle := false
	inDouble := false
	escaped := false
	segStart := 0

	i := 0
	for i < len(cmd) {
		ch := cmd[i]
		if escaped {
			escaped = false
			i++
			continue
		}
		if ch == '\\' && !inSingle {
			escaped = true
			i++
			continue
		}
		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			i++
			continue
		}
		if ch == '"' && !inSingle {
			inDouble = !inDouble
			i++
			continue
		}
		if inSingle || inDouble {
			i++
			continue
		}

		switch {
		case ch == ';':
			parts = append(parts, part{text: cmd[segStart:i], start: segStart, end: i})
			segStart = i + 1
			i++
		case ch == '|' && i+1 < len(cmd) && cmd[i+1] == '|':
			parts = append(parts, part{text: cmd[segStart:i], start: segStart, end: i})
			segStart = i + 2
			i += 2
		case ch == '|':
			parts = append(parts, part{text: cmd[segStart:i], start: segStart, end: i})
			segStart = i + 1
			i++
		case ch == '&' && i+1 < len(cmd) && cmd[i+1] == '&':
			parts = append(parts, part{text: cmd[segStart:i], start: segStart, end: i})
			segStart = i + 2
			i += 2
		default:
			i++
		}
	}
	if segStart < len(cmd) {
		parts = append(parts, part{text: cmd[segStart:], start: segStart, end: len(cmd)})
	}
	return parts
}
