package dom

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// declaration is one property of an inline style attribute.
type declaration struct {
	property  string
	value     string
	important bool
}

// StyleProperty returns the value of prop in n's inline style
// attribute, or "" when the property is not set. When the attribute
// declares the property more than once the last declaration wins.
func StyleProperty(n *html.Node, prop string) string {
	var val string
	for _, d := range readDeclarations(n) {
		if strings.EqualFold(d.property, prop) {
			val = d.value
		}
	}
	return val
}

// SetStyleProperty sets prop in n's inline style attribute, replacing
// existing declarations of the property and preserving all others.
func SetStyleProperty(n *html.Node, prop, value string) {
	decls := readDeclarations(n)
	found := false
	for i := range decls {
		if strings.EqualFold(decls[i].property, prop) {
			decls[i].value = value
			decls[i].important = false
			found = true
		}
	}
	if !found {
		decls = append(decls, declaration{property: prop, value: value})
	}
	writeDeclarations(n, decls)
}

// RemoveStyleProperty removes prop from n's inline style attribute,
// preserving all other declarations. The attribute itself is removed
// when no declarations remain.
func RemoveStyleProperty(n *html.Node, prop string) {
	decls := readDeclarations(n)
	out := decls[:0]
	for _, d := range decls {
		if strings.EqualFold(d.property, prop) {
			continue
		}
		out = append(out, d)
	}
	writeDeclarations(n, out)
}

// readDeclarations parses n's style attribute. Style text that douceur
// rejects falls back to a plain semicolon split so author styles are
// not dropped on the floor.
func readDeclarations(n *html.Node) []declaration {
	inline := strings.TrimSpace(Attr(n, "style"))
	if inline == "" {
		return nil
	}
	if decls, err := parser.ParseDeclarations(inline); err == nil {
		out := make([]declaration, 0, len(decls))
		for _, d := range decls {
			if d == nil {
				continue
			}
			out = append(out, declaration{
				property:  strings.TrimSpace(d.Property),
				value:     strings.TrimSpace(d.Value),
				important: d.Important,
			})
		}
		return out
	}
	var out []declaration
	for _, part := range strings.Split(inline, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		out = append(out, declaration{
			property: strings.TrimSpace(kv[0]),
			value:    strings.TrimSpace(kv[1]),
		})
	}
	return out
}

func writeDeclarations(n *html.Node, decls []declaration) {
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		v := d.value
		if d.important {
			v += " !important"
		}
		parts = append(parts, d.property+": "+v)
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}
