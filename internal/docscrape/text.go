package docscrape

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// optionLine splits a help line into its spellings and an inline
// description, separated by two or more spaces or a tab.
var optionLine = regexp.MustCompile(`^(\s{1,12})(-\S.*?)(?:\s{2,}|\t)(\S.*)$`)

// optionOnly matches an option whose description starts on the next line.
var optionOnly = regexp.MustCompile(`^(\s{1,12})(-\S.*?)\s*$`)

// ParseText reads -h / --help output and returns the command it documents.
// Option lines start with a dash after up to twelve columns of indent;
// deeper-indented lines that follow continue the description.
func ParseText(r io.Reader, name, description string) (*Result, error) {
	b := newBuilder(name, description)

	var cur *entry
	curIndent := 0
	flush := func() {
		if cur == nil {
			return
		}
		cur.description = sentence(cur.description)
		b.add(*cur)
		cur = nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if m := optionLine.FindStringSubmatch(line); m != nil {
			flush()
			cur = &entry{spellings: []string{m[2]}, description: m[3]}
			curIndent = len(m[1])
			continue
		}
		if m := optionOnly.FindStringSubmatch(line); m != nil {
			flush()
			cur = &entry{spellings: []string{m[2]}}
			curIndent = len(m[1])
			continue
		}
		if cur != nil && trimmed != "" && indent > curIndent {
			cur.description += " " + trimmed
			continue
		}
		flush()
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading help text: %w", err)
	}
	flush()
	return b.result()
}
