package ledger

import (
	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
)

// Marker attributes written to the document tree. All filter state
// lives in these; removing them restores the original document.
const (
	// AttrProcessed marks a candidate the scan pipeline has handled.
	AttrProcessed = "data-gifmask-processed"

	// AttrOwner marks an owner unit that carries a placeholder. Its
	// value is the masked item ID.
	AttrOwner = "data-gifmask-owner"

	// AttrClickBlocked marks a picker tile whose pointer interaction is
	// suppressed while masked.
	AttrClickBlocked = "data-gifmask-click-blocked"

	// AttrEmbed marks a placeholder panel. Its value is the masked item
	// ID.
	AttrEmbed = "data-gifmask-embed"

	// AttrRestore records a hidden element's prior inline display value
	// so Restore can put it back exactly.
	AttrRestore = "data-gifmask-restore"
)

// Ledger reads and writes filter state on document nodes. It holds no
// state of its own; everything lives on the tree.
type Ledger struct{}

// New creates a Ledger.
func New() *Ledger {
	return &Ledger{}
}

// MarkProcessed marks n as handled by the scan pipeline.
func (l *Ledger) MarkProcessed(n *html.Node) {
	dom.SetAttr(n, AttrProcessed, "true")
}

// Processed reports whether n was already handled.
func (l *Ledger) Processed(n *html.Node) bool {
	return dom.HasAttr(n, AttrProcessed)
}

// ClearProcessed removes the processed marker so a later scan can claim
// n again. Reveal uses this to make revealed media maskable on rescan.
func (l *Ledger) ClearProcessed(n *html.Node) {
	dom.RemoveAttr(n, AttrProcessed)
}

// MarkOwner claims the owner unit n for the masked item id.
func (l *Ledger) MarkOwner(n *html.Node, id string) {
	dom.SetAttr(n, AttrOwner, id)
}

// OwnerClaimed reports whether n already carries a placeholder.
func (l *Ledger) OwnerClaimed(n *html.Node) bool {
	return dom.HasAttr(n, AttrOwner)
}

// OwnerID returns the masked item ID n is claimed for, or "".
func (l *Ledger) OwnerID(n *html.Node) string {
	return dom.Attr(n, AttrOwner)
}

// ClearOwner releases the owner unit n.
func (l *Ledger) ClearOwner(n *html.Node) {
	dom.RemoveAttr(n, AttrOwner)
}

// BlockClicks suppresses pointer interaction on n and marks it. Used on
// picker tiles so a masked GIF cannot be sent by clicking through it.
func (l *Ledger) BlockClicks(n *html.Node) {
	if n == nil || l.ClickBlocked(n) {
		return
	}
	dom.SetAttr(n, AttrClickBlocked, "true")
	dom.SetStyleProperty(n, "pointer-events", "none")
}

// ClickBlocked reports whether n has its pointer interaction blocked.
func (l *Ledger) ClickBlocked(n *html.Node) bool {
	return dom.HasAttr(n, AttrClickBlocked)
}

// UnblockClicks restores pointer interaction on n. A node that was
// never blocked is left untouched.
func (l *Ledger) UnblockClicks(n *html.Node) {
	if n == nil || !l.ClickBlocked(n) {
		return
	}
	dom.RemoveStyleProperty(n, "pointer-events")
	dom.RemoveAttr(n, AttrClickBlocked)
}

// MarkEmbed marks n as the placeholder panel for the masked item id.
func (l *Ledger) MarkEmbed(n *html.Node, id string) {
	dom.SetAttr(n, AttrEmbed, id)
}

// IsEmbed reports whether n is a placeholder panel.
func (l *Ledger) IsEmbed(n *html.Node) bool {
	return dom.HasAttr(n, AttrEmbed)
}

// EmbedID returns the masked item ID of the placeholder n, or "".
func (l *Ledger) EmbedID(n *html.Node) string {
	return dom.Attr(n, AttrEmbed)
}

// Hide suppresses n's display, recording the prior inline value so
// Restore can put it back. Hiding an already hidden node keeps the
// original record.
func (l *Ledger) Hide(n *html.Node) {
	if n == nil || l.Hidden(n) {
		return
	}
	dom.SetAttr(n, AttrRestore, dom.StyleProperty(n, "display"))
	dom.SetStyleProperty(n, "display", "none")
}

// Restore puts back the display value recorded by Hide. Restoring a
// node that was never hidden is a no-op.
func (l *Ledger) Restore(n *html.Node) {
	if n == nil || !l.Hidden(n) {
		return
	}
	prev := dom.Attr(n, AttrRestore)
	if prev == "" {
		dom.RemoveStyleProperty(n, "display")
	} else {
		dom.SetStyleProperty(n, "display", prev)
	}
	dom.RemoveAttr(n, AttrRestore)
}

// Hidden reports whether n is currently hidden by the ledger.
func (l *Ledger) Hidden(n *html.Node) bool {
	return dom.HasAttr(n, AttrRestore)
}

// FindOwner returns the owner unit claimed for id in the subtree rooted
// at root, or nil.
func (l *Ledger) FindOwner(root *html.Node, id string) *html.Node {
	return l.findByAttr(root, AttrOwner, id)
}

// FindEmbed returns the placeholder panel for id in the subtree rooted
// at root, or nil.
func (l *Ledger) FindEmbed(root *html.Node, id string) *html.Node {
	return l.findByAttr(root, AttrEmbed, id)
}

// Embeds returns every placeholder panel under root, in document order.
func (l *Ledger) Embeds(root *html.Node) []*html.Node {
	var out []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if l.IsEmbed(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ClearAll removes every trace of the filter from the subtree rooted at
// root: placeholders are detached, hidden nodes restored, click blocks
// lifted, and all markers stripped.
func (l *Ledger) ClearAll(root *html.Node) {
	dom.Walk(root, func(n *html.Node) bool {
		if l.IsEmbed(n) {
			dom.Detach(n)
			return false
		}
		l.Restore(n)
		l.UnblockClicks(n)
		dom.RemoveAttr(n, AttrProcessed)
		dom.RemoveAttr(n, AttrOwner)
		return true
	})
}

func (l *Ledger) findByAttr(root *html.Node, key, value string) *html.Node {
	if value == "" {
		return nil
	}
	var found *html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if found == nil && dom.Attr(n, key) == value {
			found = n
		}
		return found == nil
	})
	return found
}
