package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present, regardless of
// its value.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, replacing an existing value.
func SetAttr(n *html.Node, key, value string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr removes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// ClassContains reports whether the node's class attribute contains
// fragment as a substring. Class names in the targeted applications are
// build-hashed, so whole-name comparison is useless; only stable
// fragments are compared.
func ClassContains(n *html.Node, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.Contains(Attr(n, "class"), fragment)
}

// Closest returns the nearest ancestor-or-self element for which match
// returns true, or nil when none does.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && match(cur) {
			return cur
		}
	}
	return nil
}

// ParentElement returns the nearest ancestor element, or nil for
// detached nodes and tree roots.
func ParentElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode {
			return cur
		}
	}
	return nil
}

// Walk traverses the subtree rooted at n in depth-first pre-order,
// calling fn for every element node. Returning false from fn prunes the
// element's subtree. The next sibling is captured before descending, so
// fn may detach the node it is visiting.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// CreateElement builds a detached element node.
func CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Text builds a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// InsertAfter inserts n into parent directly after ref.
func InsertAfter(parent, ref, n *html.Node) {
	if parent == nil || n == nil {
		return
	}
	if ref != nil && ref.NextSibling != nil {
		parent.InsertBefore(n, ref.NextSibling)
		return
	}
	parent.AppendChild(n)
}

// Detach removes n from its parent. Detaching an already detached node
// is a no-op.
func Detach(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}
