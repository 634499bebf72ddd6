package styles

import (
	"fmt"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
)

// AttrStyle marks stylesheet elements owned by the filter. Its value is
// the sheet ID.
const AttrStyle = "data-gifmask-style"

// DefaultID is the sheet ID the engine installs its stylesheet under.
const DefaultID = "gifmask-engine"

// Registry installs and removes identified stylesheet elements.
type Registry struct{}

// NewRegistry creates a Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Install inserts css as a style element into the document head under
// the given ID, replacing a sheet already installed under it. The CSS
// is parsed first; on a parse error the document is left untouched.
func (r *Registry) Install(doc *dom.Document, id, css string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, err := parser.Parse(css); err != nil {
		return fmt.Errorf("failed to parse stylesheet %q: %w", id, err)
	}
	head := doc.Head()
	if head == nil {
		return ErrNoHead
	}

	r.Remove(doc, id)
	style := dom.CreateElement("style", html.Attribute{Key: AttrStyle, Val: id})
	style.AppendChild(dom.Text(css))
	head.AppendChild(style)
	return nil
}

// Remove detaches the sheet installed under the given ID. Removing an
// absent ID is a no-op.
func (r *Registry) Remove(doc *dom.Document, id string) {
	if id == "" {
		return
	}
	dom.Walk(doc.Root(), func(n *html.Node) bool {
		if n.Data == "style" && dom.Attr(n, AttrStyle) == id {
			dom.Detach(n)
			return false
		}
		return true
	})
}

// Installed reports whether a sheet is installed under the given ID.
func (r *Registry) Installed(doc *dom.Document, id string) bool {
	found := false
	dom.Walk(doc.Root(), func(n *html.Node) bool {
		if n.Data == "style" && dom.Attr(n, AttrStyle) == id {
			found = true
		}
		return !found
	})
	return found
}

// Default returns the engine stylesheet covering both placeholder
// variants: the inline timeline panel and the compact picker overlay.
func Default() string {
	return `
.gifmask-embed {
  display: flex;
  align-items: center;
  gap: 8px;
  margin-top: 8px;
  padding: 12px;
  border: 1px solid rgba(250, 166, 26, 0.4);
  border-radius: 8px;
  background: rgba(250, 166, 26, 0.08);
  font-size: 14px;
}
.gifmask-embed-icon {
  font-size: 18px;
}
.gifmask-embed-title {
  font-weight: 600;
}
.gifmask-embed-description {
  margin: 0;
  opacity: 0.8;
}
.gifmask-embed-reveal {
  margin-left: auto;
  padding: 4px 10px;
  border: none;
  border-radius: 4px;
  cursor: pointer;
  pointer-events: auto;
}
.gifmask-embed-picker {
  position: absolute;
  inset: 0;
  flex-direction: column;
  justify-content: center;
  margin: 0;
  border-radius: 4px;
  background: rgba(0, 0, 0, 0.85);
  color: #fff;
  pointer-events: auto;
  z-index: 10;
}
.gifmask-embed-picker .gifmask-embed-reveal {
  margin-left: 0;
}
`
}
