package engine

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/embed"
	"github.com/nao1215/gifmask/internal/model"
)

// scanSubtree runs the filter pipeline over every candidate in the
// subtree rooted at root. Non-element roots are ignored; mutation
// batches routinely deliver text nodes.
func (e *Engine) scanSubtree(root *html.Node) {
	if root == nil || root.Type != html.ElementNode {
		return
	}
	for _, candidate := range e.candidates.FindAll(root) {
		e.processCandidate(candidate)
	}
}

func (e *Engine) processCandidate(n *html.Node) {
	e.stats.Scanned++

	if e.ledger.Processed(n) {
		return
	}

	urls := e.collectURLs(n)
	if len(urls) == 0 {
		return
	}

	gifURL, pattern := "", ""
	for _, u := range urls {
		if p, ok := e.classifier.GIFPattern(u); ok {
			gifURL, pattern = u, p
			break
		}
	}
	if gifURL == "" {
		return
	}

	word := ""
	for _, u := range urls {
		if w, ok := e.classifier.BlockedWord(u, e.view.Words, e.view.CaseSensitive); ok {
			word = w
			break
		}
	}
	if word == "" {
		return
	}

	inPicker := e.detector.InPickerSurface(n)
	if inPicker && !e.view.BlockInPicker {
		// Deliberately unmarked: flipping blockInPicker later must be
		// able to pick this candidate up on the next scan.
		e.stats.PickerSkipped++
		return
	}

	e.ledger.MarkProcessed(n)

	owner := e.detector.OwnerUnit(n, inPicker)
	if owner == nil {
		return
	}

	if e.ledger.OwnerClaimed(owner) {
		e.ledger.Hide(e.detector.NearestWrapper(n))
		e.logger.Debug("hid secondary candidate", "url", gifURL, "owner", describeNode(owner))
		return
	}

	item := model.MaskedItem{
		ID:      uuid.New().String(),
		URL:     gifURL,
		Pattern: pattern,
		Word:    word,
		Picker:  inPicker,
		Owner:   describeNode(owner),
	}

	e.ledger.MarkOwner(owner, item.ID)

	var container *html.Node
	if !inPicker {
		container = e.detector.AccessoriesContainer(n)
	}
	e.builder.Build(embed.BuildContext{
		Wrapper:   e.detector.NearestWrapper(n),
		Owner:     owner,
		Container: container,
		Picker:    inPicker,
		ItemID:    item.ID,
	})

	if e.report != nil {
		e.report.AddItem(item)
	}
	e.stats.Masked++
	e.logger.Info("masked gif", "url", gifURL, "word", word, "picker", inPicker)
}

// collectURLs gathers the URLs associated with a candidate: its own
// src, its first source child's src, its href, its original-source
// attribute, and the href of an enclosing link, deduplicated in that
// order.
func (e *Engine) collectURLs(n *html.Node) []string {
	seen := make(map[string]bool, 4)
	urls := make([]string, 0, 4)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	add(dom.Attr(n, "src"))
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "source" {
			if src := dom.Attr(c, "src"); src != "" {
				add(src)
				break
			}
		}
	}
	add(dom.Attr(n, "href"))
	add(dom.Attr(n, "data-original-src"))
	if a := dom.Closest(n, e.anchors.Match); a != nil && a != n {
		add(dom.Attr(a, "href"))
	}
	return urls
}

// describeNode summarizes a node for reports and logs as
// "tag.firstClass".
func describeNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	class := dom.Attr(n, "class")
	if class == "" {
		return n.Data
	}
	if i := strings.IndexByte(class, ' '); i >= 0 {
		class = class[:i]
	}
	return n.Data + "." + class
}
