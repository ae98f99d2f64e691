package docscrape

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads a saved git-scm.com manual page and returns the command
// described by its OPTIONS section. Each <dd> in the options definition list
// closes an option whose spellings are the preceding <dt> elements. When
// description is empty the NAME section's summary is used.
func ParseHTML(r io.Reader, name, description string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	if description == "" {
		description = nameSummary(doc)
	}

	heading := findByID(doc, "_options")
	if heading == nil {
		return nil, ErrNoOptions
	}
	var dl *html.Node
	if body := nextElement(heading); body != nil {
		dl = findAtom(body, atom.Dl)
	}
	if dl == nil {
		return nil, ErrNoOptions
	}

	b := newBuilder(name, description)
	var pending []string
	for c := dl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Dt:
			pending = append(pending, cleanText(textOf(c)))
		case atom.Dd:
			if len(pending) == 0 {
				continue
			}
			b.add(entry{spellings: pending, description: ddText(c)})
			pending = nil
		}
	}
	for _, p := range pending {
		b.skip(p, "missing description")
	}
	return b.result()
}

// nameSummary returns the text after " - " in the NAME section
// ("git-commit - Record changes to the repository").
func nameSummary(doc *html.Node) string {
	h := findByID(doc, "_name")
	if h == nil {
		return ""
	}
	next := nextElement(h)
	if next == nil {
		return ""
	}
	_, summary, ok := strings.Cut(cleanText(textOf(next)), " - ")
	if !ok {
		return ""
	}
	return sentence(summary)
}

// ddText returns the first paragraph of a definition, or all of its text
// when it has no paragraphs.
func ddText(dd *html.Node) string {
	if p := findAtom(dd, atom.P); p != nil {
		return textOf(p)
	}
	return textOf(dd)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
