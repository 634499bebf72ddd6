package dom

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document plus the URL it was captured from.
type Document struct {
	root    *html.Node
	pageURL string
}

// Parse reads and parses a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses s as body content and returns its top-level
// nodes, detached and ready for insertion.
func ParseFragment(s string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	return nodes, nil
}

// Root returns the document root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the document's body element, or nil when the tree has
// none. html.Parse always synthesizes one for full documents.
func (d *Document) Body() *html.Node {
	return d.find(atom.Body)
}

// Head returns the document's head element, or nil.
func (d *Document) Head() *html.Node {
	return d.find(atom.Head)
}

func (d *Document) find(a atom.Atom) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

// PageURL returns the URL this document was captured from, or "".
func (d *Document) PageURL() string {
	return d.pageURL
}

// SetPageURL records the URL this document was captured from.
func (d *Document) SetPageURL(u string) {
	d.pageURL = u
}

// Render serializes the document to w.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

// HTML returns the serialized document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fingerprint returns the SHA3-256 hex digest of the serialized
// document. Two captures of identical markup share a fingerprint.
func (d *Document) Fingerprint() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	sum := sha3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
