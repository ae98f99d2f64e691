// Package explain turns a raw git invocation into a human-readable
// explanation of the command and each supplied flag.
//
// The pipeline is: tokenize and parse flags against the command's schema,
// match parsed flags to catalog definitions, substitute positional arguments
// and flag values into description templates, and assemble the result.
// Resolve is pure: it performs no I/O and keeps no state between calls.
package explain

import (
	"errors"

	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/cmdparse"
	"github.com/scbrown/cheeky/internal/model"
)

var (
	// ErrInvalidPrefix means the input does not start with the tool prefix.
	ErrInvalidPrefix = cmdparse.ErrInvalidPrefix

	// ErrUnknownCommand means the command name is not in the catalog.
	ErrUnknownCommand = cmdparse.ErrUnknownCommand
)

// IsNotFound reports whether err is one of the expected "not found"
// outcomes of Resolve.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvalidPrefix) || errors.Is(err, ErrUnknownCommand)
}

// Resolve explains raw against cat. It returns ErrInvalidPrefix or
// ErrUnknownCommand (possibly wrapped) when the input names no known command.
func Resolve(raw string, cat *catalog.Catalog) (*model.Explanation, error) {
	inv, err := cmdparse.Parse(raw, cat.Prefix(), cat.Schema)
	if err != nil {
		return nil, err
	}
	cmd, ok := cat.Find(inv.Command)
	if !ok {
		// Schema and Find share one key set; this only guards a broken catalog.
		return nil, ErrUnknownCommand
	}

	args := JoinWithFinalAnd(ReplaceSpecialTokens(inv.Positionals, cat.SpecialTokens()))
	return Assemble(cmd, args, Match(cmd, inv), inv.Unknown()), nil
}

// Assemble builds the explanation for cmd from the joined positional
// arguments and the matched flags. String flags render their own value into
// their template; boolean flags share the positional arguments.
func Assemble(cmd model.Command, args string, matched []Matched, unknown []string) *model.Explanation {
	e := &model.Explanation{
		Name:        cmd.Name,
		Description: Substitute(cmd.Description, args),
		Flags:       make([]model.FlagExplanation, 0, len(matched)),
	}
	for _, m := range matched {
		fe := model.FlagExplanation{
			Name:    m.Flag.Name,
			Aliases: m.Flag.Aliases,
		}
		if m.Flag.IsString {
			fe.Value = m.Value.Value
			fe.Description = Substitute(m.Flag.Description, m.Value.Value)
		} else {
			fe.Description = Substitute(m.Flag.Description, args)
		}
		e.Flags = append(e.Flags, fe)
	}
	if len(unknown) > 0 {
		e.Unrecognized = unknown
	}
	return e
}

// Step is the outcome of explaining one segment of a chained command line.
type Step struct {
	Input       string             `json:"input"`
	Explanation *model.Explanation `json:"explanation,omitempty"`
	Err         error              `json:"-"`
}

// ResolveChain splits line on |, &&, || and ; and resolves every segment.
func ResolveChain(line string, cat *catalog.Catalog) []Step {
	return resolveSegments(line, func(raw string) (*model.Explanation, error) {
		return Resolve(raw, cat)
	})
}

func resolveSegments(line string, resolve func(string) (*model.Explanation, error)) []Step {
	segs := cmdparse.Split(line)
	steps := make([]Step, 0, len(segs))
	for _, seg := range segs {
		e, err := resolve(seg.Raw)
		steps = append(steps, Step{Input: seg.Raw, Explanation: e, Err: err})
	}
	return steps
}
