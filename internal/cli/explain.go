package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/ctxlog"
	"github.com/scbrown/cheeky/internal/explain"
	"github.com/scbrown/cheeky/internal/model"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

var explainNoRecord bool

var explainCmd = &cobra.Command{
	Use:   "explain [invocation...]",
	Short: "Explain what a git command line does",
	Long: `Explain resolves a git invocation against the catalog and prints the
command description and one entry per flag, with your arguments substituted.

The invocation can be given as separate arguments or as one quoted string.
Chains joined by &&, ||, ; or | are explained segment by segment. With no
arguments (or "-"), invocations are read from stdin, one per line.

Flags for cheeky itself must come before the invocation; everything from the
first non-flag argument on is treated as the command to explain. Unknown
flags are reported but do not stop the explanation. When any segment names
no known command, cheeky exits with status 1.`,
	Example: `  cheeky explain git add .
  cheeky explain git commit -am "Fix the build"
  cheeky explain 'git add -v . && git push --all'
  cheeky explain --json git push --dry-run origin
  history | cut -c8- | grep '^git' | cheeky explain`,
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().SetInterspersed(false)
	explainCmd.Flags().BoolVar(&explainNoRecord, "no-record", false, "do not record this request in history")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := ctxlog.FromContext(ctx)

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	var lines []string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		lines, err = readInvocations(cmd.InOrStdin())
		if err != nil {
			return err
		}
	} else {
		lines = []string{joinArgs(args)}
	}
	if len(lines) == 0 {
		return errors.New("nothing to explain")
	}

	x := explain.NewExplainer(cat, len(lines))
	var steps []explain.Step
	for _, line := range lines {
		steps = append(steps, x.ExplainChain(line)...)
	}

	if recordHistory && !explainNoRecord {
		s, err := openStore()
		if err != nil {
			log.Warn("history disabled", "err", err)
		} else {
			defer s.Close()
			recordSteps(cmd, s, steps)
		}
	}

	missing := 0
	for _, st := range steps {
		if st.Err != nil {
			missing++
			log.Debug("not found", "input", st.Input, "err", st.Err)
		}
	}

	if jsonOutput {
		if err := writeExplainJSON(cmd.OutOrStdout(), steps, cat); err != nil {
			return err
		}
	} else {
		writeExplainText(cmd.OutOrStdout(), cmd.ErrOrStderr(), steps, cat)
	}

	if missing > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func recordSteps(cmd *cobra.Command, s store.Store, steps []explain.Step) {
	ctx := cmd.Context()
	for _, st := range steps {
		if err := s.Record(ctx, explain.Record(st.Input, "cli", st.Explanation)); err != nil {
			ctxlog.FromContext(ctx).Warn("recording history", "input", st.Input, "err", err)
			return
		}
	}
}

// readInvocations returns the non-blank lines of r, skipping # comments.
func readInvocations(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

// joinArgs rebuilds a command line from arguments the shell already split,
// single-quoting any argument that would not survive re-tokenizing.
func joinArgs(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`&|;<>()") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// explainOutput is the JSON shape of one explained segment.
type explainOutput struct {
	Input string `json:"input"`
	*model.Explanation
	Hints       map[string]string `json:"hints,omitempty"`
	Error       string            `json:"error,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

func toOutput(st explain.Step, cat *catalog.Catalog) explainOutput {
	out := explainOutput{Input: st.Input, Explanation: st.Explanation}
	if st.Err != nil {
		out.Error = explain.NotFoundMessage(cat.Prefix())
		for _, h := range explain.CommandHints(st.Input, cat) {
			out.Suggestions = append(out.Suggestions, h.Name)
		}
		return out
	}
	out.Hints = explain.FlagHints(st.Explanation, cat)
	return out
}

// writeExplainJSON writes a single object for one segment and an array for
// several.
func writeExplainJSON(w io.Writer, steps []explain.Step, cat *catalog.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(steps) == 1 {
		return enc.Encode(toOutput(steps[0], cat))
	}
	outs := make([]explainOutput, len(steps))
	for i, st := range steps {
		outs[i] = toOutput(st, cat)
	}
	return enc.Encode(outs)
}

func writeExplainText(stdout, stderr io.Writer, steps []explain.Step, cat *catalog.Catalog) {
	out := newRenderer(stdout)
	errOut := newRenderer(stderr)
	printed := false
	for _, st := range steps {
		if st.Err != nil {
			errOut.notFound(cat.Prefix(), st.Input, explain.CommandHints(st.Input, cat))
			continue
		}
		if printed {
			fmt.Fprintln(stdout)
		}
		out.explanation(cat.Prefix(), st.Explanation, explain.FlagHints(st.Explanation, cat))
		printed = true
	}
}
