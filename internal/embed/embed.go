package embed

import (
	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/ledger"
)

// Attributes and values carried by the reveal control. Hosts that
// translate user clicks into engine calls match on these.
const (
	// AttrAction names the action a control triggers.
	AttrAction = "data-gifmask-action"

	// ActionReveal is the action value of the reveal button.
	ActionReveal = "reveal"

	// AttrStopPropagation marks controls whose clicks must not bubble
	// further into the application.
	AttrStopPropagation = "data-gifmask-stop-propagation"
)

// BuildContext carries the placement decision for one placeholder.
type BuildContext struct {
	// Wrapper is the element to hide in place of the media.
	Wrapper *html.Node

	// Owner is the claimed owner unit the placeholder belongs to.
	Owner *html.Node

	// Container is the accessories container to insert the panel into,
	// or nil to insert it after the wrapper.
	Container *html.Node

	// Picker selects the compact overlay variant.
	Picker bool

	// ItemID ties the panel, the owner, and the report entry together.
	ItemID string
}

// Builder constructs placeholder panels and reveals them again.
type Builder struct {
	ledger      *ledger.Ledger
	title       string
	description string
	revealLabel string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTitle overrides the panel title.
func WithTitle(title string) BuilderOption {
	return func(b *Builder) {
		b.title = title
	}
}

// WithDescription overrides the panel description.
func WithDescription(description string) BuilderOption {
	return func(b *Builder) {
		b.description = description
	}
}

// WithRevealLabel overrides the reveal button label.
func WithRevealLabel(label string) BuilderOption {
	return func(b *Builder) {
		b.revealLabel = label
	}
}

// NewBuilder creates a Builder writing state through l.
func NewBuilder(l *ledger.Ledger, opts ...BuilderOption) *Builder {
	b := &Builder{
		ledger:      l,
		title:       "GIF blocked",
		description: "This GIF matched one of your blocked words.",
		revealLabel: "Show anyway",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build hides the wrapper and places a placeholder panel for it. The
// wrapper keeps its place in the tree with its display suppressed, so
// reveal can bring it back without relayout surprises.
func (b *Builder) Build(ctx BuildContext) *html.Node {
	b.ledger.Hide(ctx.Wrapper)
	if ctx.Picker {
		b.ledger.BlockClicks(ctx.Owner)
	}

	panel := b.panel(ctx)
	b.ledger.MarkEmbed(panel, ctx.ItemID)

	switch {
	case ctx.Picker:
		ctx.Owner.AppendChild(panel)
	case ctx.Container != nil:
		ctx.Container.AppendChild(panel)
	default:
		dom.InsertAfter(ctx.Wrapper.Parent, ctx.Wrapper, panel)
	}
	return panel
}

// Reveal undoes the masking the panel stands for: it restores the
// hidden wrapper and every node hidden under the owner, clears their
// processed markers so a rescan can claim them again, releases the
// owner, lifts the picker click block, and detaches the panel.
// Revealing an already revealed panel is a no-op.
func (b *Builder) Reveal(root, panel *html.Node) {
	if panel == nil {
		return
	}
	id := b.ledger.EmbedID(panel)
	if owner := b.ledger.FindOwner(root, id); owner != nil {
		dom.Walk(owner, func(n *html.Node) bool {
			if b.ledger.IsEmbed(n) {
				return false
			}
			b.ledger.Restore(n)
			b.ledger.UnblockClicks(n)
			b.ledger.ClearProcessed(n)
			return true
		})
		b.ledger.ClearOwner(owner)
	}
	dom.Detach(panel)
}

func (b *Builder) panel(ctx BuildContext) *html.Node {
	class := "gifmask-embed"
	if ctx.Picker {
		class += " gifmask-embed-picker"
	}
	panel := dom.CreateElement("div", html.Attribute{Key: "class", Val: class})

	icon := dom.CreateElement("span", html.Attribute{Key: "class", Val: "gifmask-embed-icon"})
	icon.AppendChild(dom.Text("⚠"))
	panel.AppendChild(icon)

	title := dom.CreateElement("strong", html.Attribute{Key: "class", Val: "gifmask-embed-title"})
	title.AppendChild(dom.Text(b.title))
	panel.AppendChild(title)

	if !ctx.Picker {
		desc := dom.CreateElement("p", html.Attribute{Key: "class", Val: "gifmask-embed-description"})
		desc.AppendChild(dom.Text(b.description))
		panel.AppendChild(desc)
	}

	button := dom.CreateElement("button",
		html.Attribute{Key: "class", Val: "gifmask-embed-reveal"},
		html.Attribute{Key: "type", Val: "button"},
		html.Attribute{Key: AttrAction, Val: ActionReveal},
		html.Attribute{Key: AttrStopPropagation, Val: "true"},
	)
	button.AppendChild(dom.Text(b.revealLabel))
	panel.AppendChild(button)

	return panel
}
