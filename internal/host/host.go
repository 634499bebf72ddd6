package host

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/engine"
)

// ErrReplayed is returned when a Replay script is played twice.
var ErrReplayed = errors.New("replay script was already played")

// Static serves a fixed document with no mutation stream.
type Static struct {
	doc *dom.Document
}

// NewStatic creates a host around an already parsed document.
func NewStatic(doc *dom.Document) *Static {
	return &Static{doc: doc}
}

// Document returns the hosted document.
func (h *Static) Document() *dom.Document {
	return h.doc
}

// Mutations returns nil; a static document never changes.
func (h *Static) Mutations() <-chan engine.Mutation {
	return nil
}

// Frame is one scripted insertion: an HTML fragment appended to the
// first element matching Target. An empty Target appends to the body.
type Frame struct {
	Target   string `json:"target" yaml:"target"`
	Fragment string `json:"fragment" yaml:"fragment"`
}

// Replay drives a document through scripted insertions and emits each
// inserted subtree as a mutation.
type Replay struct {
	doc     *dom.Document
	frames  []Frame
	targets []dom.Matcher
	ch      chan engine.Mutation
	played  bool
}

// NewReplay compiles the script's target selectors against the
// document. The returned host must be consumed by a running engine
// before Play is called.
func NewReplay(doc *dom.Document, frames []Frame) (*Replay, error) {
	h := &Replay{
		doc:     doc,
		frames:  frames,
		targets: make([]dom.Matcher, len(frames)),
		ch:      make(chan engine.Mutation),
	}
	for i, frame := range frames {
		if frame.Target == "" {
			continue
		}
		m, err := dom.Compile(frame.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to compile frame %d target: %w", i, err)
		}
		h.targets[i] = m
	}
	return h, nil
}

// Document returns the hosted document.
func (h *Replay) Document() *dom.Document {
	return h.doc
}

// Mutations returns the stream Play feeds. It is closed when the
// script ends.
func (h *Replay) Mutations() <-chan engine.Mutation {
	return h.ch
}

// Play appends each frame's fragment to its target and delivers the
// inserted subtrees in script order. It blocks until every mutation is
// consumed or ctx is canceled, then closes the stream. A script plays
// once.
func (h *Replay) Play(ctx context.Context) error {
	if h.played {
		return ErrReplayed
	}
	h.played = true
	defer close(h.ch)

	for i, frame := range h.frames {
		target, err := h.target(i)
		if err != nil {
			return err
		}
		nodes, err := dom.ParseFragment(frame.Fragment)
		if err != nil {
			return fmt.Errorf("failed to parse frame %d fragment: %w", i, err)
		}
		for _, n := range nodes {
			target.AppendChild(n)
		}
		for _, n := range nodes {
			if err := h.send(ctx, engine.Mutation{Added: n}); err != nil {
				return err
			}
		}
		// Settle before the next frame edits the tree: an empty
		// mutation is only accepted once the consumer is done with the
		// previous one.
		if err := h.send(ctx, engine.Mutation{}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Replay) target(i int) (*html.Node, error) {
	if h.frames[i].Target == "" {
		if body := h.doc.Body(); body != nil {
			return body, nil
		}
		return nil, fmt.Errorf("failed to resolve frame %d target: document has no body", i)
	}
	found := h.targets[i].FindAll(h.doc.Root())
	if len(found) == 0 {
		return nil, fmt.Errorf("failed to resolve frame %d target %q: no match", i, h.frames[i].Target)
	}
	return found[0], nil
}

func (h *Replay) send(ctx context.Context, m engine.Mutation) error {
	select {
	case h.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
