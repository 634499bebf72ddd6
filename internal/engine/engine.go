package engine

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/classify"
	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/embed"
	"github.com/nao1215/gifmask/internal/ledger"
	"github.com/nao1215/gifmask/internal/model"
	"github.com/nao1215/gifmask/internal/settings"
	"github.com/nao1215/gifmask/internal/styles"
	"github.com/nao1215/gifmask/internal/surface"
)

// candidateSelector matches the elements a scan considers: images,
// videos, and links with a target.
const candidateSelector = "img, video, a[href]"

// Mutation is one subtree insertion delivered by the host.
type Mutation struct {
	// Added is the root of the inserted subtree.
	Added *html.Node
}

// Host is the document environment the engine runs against. A nil
// mutation channel means the document is static.
type Host interface {
	// Document returns the document the engine operates on.
	Document() *dom.Document

	// Mutations returns the stream of subtree insertions, or nil.
	Mutations() <-chan Mutation
}

// Stats counts what the engine has done. Scanned and Revealed
// accumulate across rescans; Masked and PickerSkipped reflect the most
// recent full scan.
type Stats struct {
	Scanned       int `json:"scanned"`
	Masked        int `json:"masked"`
	PickerSkipped int `json:"picker_skipped"`
	Revealed      int `json:"revealed"`
}

// Engine masks blocked GIFs in a host's document and keeps up with its
// mutations. Drive it from one goroutine; the internal loop only ever
// owns mutation scans and dispatched commands.
type Engine struct {
	host       Host
	store      settings.Store
	logger     *slog.Logger
	classifier *classify.Classifier
	detector   *surface.Detector
	ledger     *ledger.Ledger
	builder    *embed.Builder
	styles     *styles.Registry

	candidates dom.Matcher
	anchors    dom.Matcher

	view   settings.View
	report *model.FilterReport
	stats  Stats

	mu      sync.Mutex
	running bool
	cmds    chan command
	quit    chan struct{}
	done    chan struct{}
}

// command is a function dispatched onto the loop goroutine; reply is
// closed when it has run.
type command struct {
	fn    func()
	reply chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClassifier replaces the URL classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithDetector replaces the surface detector.
func WithDetector(d *surface.Detector) Option {
	return func(e *Engine) {
		e.detector = d
	}
}

// WithBuilder replaces the placeholder builder.
func WithBuilder(b *embed.Builder) Option {
	return func(e *Engine) {
		e.builder = b
	}
}

// WithStyles replaces the stylesheet registry.
func WithStyles(r *styles.Registry) Option {
	return func(e *Engine) {
		e.styles = r
	}
}

// New creates an Engine for the host's document, reading settings from
// store. A nil store means defaults.
func New(host Host, store settings.Store, opts ...Option) *Engine {
	led := ledger.New()
	e := &Engine{
		host:       host,
		store:      store,
		logger:     slog.Default(),
		classifier: classify.NewClassifier(),
		detector:   surface.NewDetector(),
		ledger:     led,
		builder:    embed.NewBuilder(led),
		styles:     styles.NewRegistry(),
		candidates: dom.MustCompile(candidateSelector),
		anchors:    dom.MustCompile("a[href]"),
		view:       settings.DefaultView(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start loads settings, installs the stylesheet, scans the whole
// document once, and begins consuming host mutations. Starting a
// running engine is a no-op. Settings and stylesheet failures degrade
// to defaults; only a missing document is fatal.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	doc := e.host.Document()
	if doc == nil {
		return ErrNoDocument
	}

	view, err := settings.Load(ctx, e.store)
	if err != nil {
		e.logger.Warn("failed to load settings, using defaults", "error", err)
	}
	e.view = view

	hash, err := doc.Fingerprint()
	if err != nil {
		e.logger.Warn("failed to fingerprint document", "error", err)
	}
	e.report = model.NewFilterReport(doc.PageURL(), hash)
	e.stats = Stats{}

	if err := e.styles.Install(doc, styles.DefaultID, styles.Default()); err != nil {
		e.logger.Warn("failed to install stylesheet", "error", err)
	}

	e.fullScan()

	e.mu.Lock()
	e.running = true
	e.cmds = make(chan command)
	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.loop(e.host.Mutations())

	e.logger.Debug("engine started",
		"page", doc.PageURL(),
		"block_in_picker", e.view.BlockInPicker,
		"words", len(e.view.Words))
	return nil
}

// Stop drains the loop and removes every trace of the filter from the
// document: placeholders, markers, hidden displays, and the stylesheet.
// Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	quit, done := e.quit, e.done
	e.mu.Unlock()

	close(quit)
	<-done

	doc := e.host.Document()
	e.ledger.ClearAll(doc.Root())
	e.styles.Remove(doc, styles.DefaultID)
	e.logger.Debug("engine stopped")
}

// Rescan clears all filter state and scans the whole document again
// with freshly loaded settings. It is the way a settings change takes
// effect. On a stopped engine it scans the current document without
// starting the mutation loop.
func (e *Engine) Rescan(ctx context.Context) error {
	if e.host.Document() == nil {
		return ErrNoDocument
	}
	e.do(func() {
		e.rescan(ctx)
	})
	return nil
}

// Reveal undoes the masking of one item by ID, as if its reveal button
// had been clicked.
func (e *Engine) Reveal(id string) error {
	doc := e.host.Document()
	if doc == nil {
		return ErrNoDocument
	}
	var err error
	e.do(func() {
		panel := e.ledger.FindEmbed(doc.Root(), id)
		if panel == nil {
			err = ErrUnknownItem
			return
		}
		e.builder.Reveal(doc.Root(), panel)
		e.stats.Revealed++
		e.logger.Debug("revealed item", "id", id)
	})
	return err
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	var s Stats
	e.do(func() {
		s = e.stats
	})
	return s
}

// Snapshot renders the document in its current masked state.
func (e *Engine) Snapshot() (string, error) {
	var (
		out string
		err error
	)
	e.do(func() {
		out, err = e.host.Document().HTML()
	})
	return out, err
}

// Report stamps and returns the filter report for this run. Call it
// after the run has quiesced; the returned report is the engine's own.
func (e *Engine) Report() *model.FilterReport {
	var r *model.FilterReport
	e.do(func() {
		if e.report == nil {
			doc := e.host.Document()
			pageURL := ""
			if doc != nil {
				pageURL = doc.PageURL()
			}
			e.report = model.NewFilterReport(pageURL, "")
		}
		e.report.Scanned = e.stats.Scanned
		e.report.PickerSkipped = e.stats.PickerSkipped
		e.report.Settings = e.view
		e.report.Finish()
		r = e.report
	})
	return r
}

// rescan runs on the loop goroutine (or the caller's when stopped).
func (e *Engine) rescan(ctx context.Context) {
	doc := e.host.Document()
	e.ledger.ClearAll(doc.Root())

	view, err := settings.Load(ctx, e.store)
	if err != nil {
		e.logger.Warn("failed to reload settings, keeping previous", "error", err)
	} else {
		e.view = view
	}

	if e.report == nil {
		e.report = model.NewFilterReport(doc.PageURL(), "")
	}
	e.report.Items = e.report.Items[:0]
	e.stats.Masked = 0
	e.stats.PickerSkipped = 0

	e.fullScan()
	e.logger.Debug("rescan complete", "masked", e.stats.Masked)
}

// fullScan scans from the document's root element.
func (e *Engine) fullScan() {
	root := e.host.Document().Root()
	if root.Type == html.ElementNode {
		e.scanSubtree(root)
		return
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			e.scanSubtree(c)
			return
		}
	}
}

// do runs fn on the loop goroutine while running, inline when stopped.
func (e *Engine) do(fn func()) {
	e.mu.Lock()
	running := e.running
	cmds := e.cmds
	done := e.done
	e.mu.Unlock()

	if !running {
		fn()
		return
	}
	cmd := command{fn: fn, reply: make(chan struct{})}
	select {
	case cmds <- cmd:
		<-cmd.reply
	case <-done:
		fn()
	}
}

func (e *Engine) loop(mutations <-chan Mutation) {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		case m, ok := <-mutations:
			if !ok {
				mutations = nil
				continue
			}
			e.scanSubtree(m.Added)
		case cmd := <-e.cmds:
			cmd.fn()
			close(cmd.reply)
		}
	}
}
