package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/scbrown/cheeky/internal/analyze"
	"github.com/scbrown/cheeky/internal/model"
)

// minWrap keeps wrapped text readable on very narrow terminals.
const minWrap = 30

// renderer prints explanations for humans: colored on a terminal, wrapped
// to its width.
type renderer struct {
	w     io.Writer
	width int
	title *color.Color
	flag  *color.Color
	warn  *color.Color
	hint  *color.Color
}

func newRenderer(w io.Writer) *renderer {
	colored := isTTY(w)
	return &renderer{
		w:     w,
		width: getTermWidth(w),
		title: style(colored, color.Bold, color.FgCyan),
		flag:  style(colored, color.FgYellow),
		warn:  style(colored, color.FgRed),
		hint:  style(colored, color.Faint),
	}
}

// explanation prints e under a "<prefix> <name>" heading, one block per
// flag, then any unrecognized flags with their closest known spelling.
func (r *renderer) explanation(prefix string, e *model.Explanation, hints map[string]string) {
	fmt.Fprintln(r.w, r.title.Sprint(prefix+" "+e.Name))
	r.paragraph(e.Description, 2)

	for _, f := range e.Flags {
		fmt.Fprintln(r.w)
		line := strings.Join(displaySpellings(f.Name, f.Aliases), ", ")
		if f.Value != "" {
			line += " " + r.hint.Sprintf("%q", f.Value)
		}
		fmt.Fprintln(r.w, "  "+r.flag.Sprint(line))
		r.paragraph(f.Description, 6)
	}

	if len(e.Unrecognized) > 0 {
		fmt.Fprintln(r.w)
	}
	for _, u := range e.Unrecognized {
		msg := "unrecognized flag " + flagSpelling(u)
		if h, ok := hints[u]; ok {
			msg += r.hint.Sprintf(" (did you mean %s?)", flagSpelling(h))
		}
		fmt.Fprintln(r.w, "  "+r.warn.Sprint("!")+" "+msg)
	}
}

// notFound prints the not-found message and up to three close commands.
func (r *renderer) notFound(prefix string, input string, hints []analyze.Suggestion) {
	fmt.Fprintln(r.w, r.warn.Sprint("error:")+" the command is not a valid "+prefix+" command")
	fmt.Fprintln(r.w, r.hint.Sprint("  "+input))
	if len(hints) == 0 {
		return
	}
	names := make([]string, len(hints))
	for i, h := range hints {
		names[i] = prefix + " " + h.Name
	}
	fmt.Fprintf(r.w, "Did you mean: %s?\n", strings.Join(names, ", "))
}

// paragraph word-wraps s to the terminal width and indents every line.
func (r *renderer) paragraph(s string, indent int) {
	width := r.width - indent
	if width < minWrap {
		width = minWrap
	}
	pad := strings.Repeat(" ", indent)
	for _, line := range strings.Split(wordwrap.WrapString(s, uint(width)), "\n") {
		fmt.Fprintln(r.w, pad+line)
	}
}

// displaySpellings lists short aliases before the long name: "-v, --verbose".
func displaySpellings(name string, aliases []string) []string {
	sp := model.Flag{Name: name, Aliases: aliases}.Spellings()
	out := append([]string{}, sp[1:]...)
	return append(out, sp[0])
}

// flagSpelling renders a bare flag name as typed: "-v" or "--verbose".
func flagSpelling(name string) string {
	if len([]rune(name)) == 1 {
		return "-" + name
	}
	return "--" + name
}
