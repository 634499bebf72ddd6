package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Matcher matches element nodes against a compiled CSS selector group.
// The zero Matcher matches nothing.
type Matcher struct {
	sels []cascadia.Sel
}

// Compile parses a comma-separated CSS selector group. Selectors with
// pseudo-elements are rejected; they cannot address tree nodes.
func Compile(selector string) (Matcher, error) {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return Matcher{}, fmt.Errorf("failed to compile selector %q: %w", selector, err)
	}
	m := Matcher{sels: make([]cascadia.Sel, 0, len(group))}
	for _, sel := range group {
		if sel == nil {
			continue
		}
		if sel.PseudoElement() != "" {
			return Matcher{}, fmt.Errorf("failed to compile selector %q: pseudo-elements are not matchable", selector)
		}
		m.sels = append(m.sels, sel)
	}
	return m, nil
}

// MustCompile is Compile for package-level selector constants; it
// panics on parse errors.
func MustCompile(selector string) Matcher {
	m, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether n is an element matched by any selector of the
// group.
func (m Matcher) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, sel := range m.sels {
		if sel.Match(n) {
			return true
		}
	}
	return false
}

// FindAll returns all elements in the subtree rooted at n, in document
// order, that the matcher matches. n itself is included when it
// matches.
func (m Matcher) FindAll(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(el *html.Node) bool {
		if m.Match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}
