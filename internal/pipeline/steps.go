package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/gifmask/internal/capture"
	"github.com/nao1215/gifmask/internal/classify"
	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/engine"
	"github.com/nao1215/gifmask/internal/host"
	"github.com/nao1215/gifmask/internal/settings"
)

// CaptureStep obtains the document for a job's input.
// Local files are read directly; everything else is treated as a URL and
// captured over HTTP or, when a renderer is configured, with a headless
// browser.
//
// Design decision: File handling lives here rather than in the capture
// package because "is this input a path or a URL" is CLI policy, not a
// transport concern.
type CaptureStep struct {
	// fetcher performs plain HTTP capture.
	fetcher *capture.Fetcher

	// renderer performs headless-browser capture when render is true.
	// The caller owns its lifetime; one renderer serves many jobs.
	renderer *capture.Renderer

	// render selects the renderer over the fetcher for URL inputs.
	render bool

	// logger for structured logging.
	logger *slog.Logger
}

// CaptureStepOption configures a CaptureStep.
type CaptureStepOption func(*CaptureStep)

// WithRenderer makes the step capture URLs with a headless browser.
func WithRenderer(r *capture.Renderer) CaptureStepOption {
	return func(s *CaptureStep) {
		s.renderer = r
		s.render = r != nil
	}
}

// WithCaptureLogger sets a custom logger for the capture step.
func WithCaptureLogger(logger *slog.Logger) CaptureStepOption {
	return func(s *CaptureStep) {
		s.logger = logger
	}
}

// NewCaptureStep creates a capture step backed by the given fetcher.
func NewCaptureStep(fetcher *capture.Fetcher, opts ...CaptureStepOption) *CaptureStep {
	s := &CaptureStep{
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CaptureStep) Name() string {
	return "capture"
}

// Do executes the capture step.
func (s *CaptureStep) Do(ctx context.Context, job *Job) error {
	// A readable local file wins over URL interpretation. This lets users
	// filter saved pages without a scheme prefix.
	if st, err := os.Stat(job.Input); err == nil && !st.IsDir() {
		doc, err := s.readFile(job.Input)
		if err != nil {
			return err
		}
		job.Document = doc
		return nil
	}

	var (
		doc *dom.Document
		err error
	)
	if s.render {
		doc, err = s.renderer.Snapshot(ctx, job.Input)
	} else {
		doc, err = s.fetcher.Fetch(ctx, job.Input)
	}
	if err != nil {
		return err
	}

	job.Document = doc
	return nil
}

// readFile parses a saved page from disk.
func (s *CaptureStep) readFile(path string) (*dom.Document, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	doc.SetPageURL(path)
	s.logger.Debug("read local page", "path", path)

	return doc, nil
}

// FilterStep runs the filter engine over a job's document and collects
// the report. When the job carries replay frames, they are played
// through the mutation stream so late-inserted GIFs go through the same
// path they would in a live page.
type FilterStep struct {
	// store supplies the filter settings (word list, picker behavior).
	store settings.Store

	// classifier overrides the default GIF URL patterns when non-nil.
	classifier *classify.Classifier

	// keepMasked captures the masked serialization into the job.
	keepMasked bool

	// logger for structured logging.
	logger *slog.Logger
}

// FilterStepOption configures a FilterStep.
type FilterStepOption func(*FilterStep)

// WithClassifier sets a custom URL classifier.
func WithClassifier(c *classify.Classifier) FilterStepOption {
	return func(s *FilterStep) {
		s.classifier = c
	}
}

// WithKeepMasked captures the masked document serialization into the job
// before the engine restores the tree.
func WithKeepMasked(keep bool) FilterStepOption {
	return func(s *FilterStep) {
		s.keepMasked = keep
	}
}

// WithFilterLogger sets a custom logger for the filter step.
func WithFilterLogger(logger *slog.Logger) FilterStepOption {
	return func(s *FilterStep) {
		s.logger = logger
	}
}

// NewFilterStep creates a filter step reading settings from store.
func NewFilterStep(store settings.Store, opts ...FilterStepOption) *FilterStep {
	s := &FilterStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do executes the filter step.
func (s *FilterStep) Do(ctx context.Context, job *Job) error {
	if job.Document == nil {
		return ErrNoDocument
	}

	// Static host for plain documents, replay host when the job carries
	// scripted mutations.
	var (
		h      engine.Host
		replay *host.Replay
	)
	if len(job.Frames) > 0 {
		r, err := host.NewReplay(job.Document, job.Frames)
		if err != nil {
			return fmt.Errorf("failed to prepare replay: %w", err)
		}
		h, replay = r, r
	} else {
		h = host.NewStatic(job.Document)
	}

	opts := []engine.Option{engine.WithLogger(s.logger)}
	if s.classifier != nil {
		opts = append(opts, engine.WithClassifier(s.classifier))
	}
	eng := engine.New(h, s.store, opts...)

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("failed to start filter engine: %w", err)
	}
	defer eng.Stop()

	if replay != nil {
		if err := replay.Play(ctx); err != nil {
			return fmt.Errorf("failed to replay frames: %w", err)
		}
	}

	job.Report = eng.Report()

	// Serialize while the placeholders are still in the tree; Stop will
	// restore the original document.
	if s.keepMasked {
		html, err := eng.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to serialize masked document: %w", err)
		}
		job.MaskedHTML = html
	}

	return nil
}

// SaveHTMLStep writes a job's masked serialization to a file in the
// configured directory, one file per input.
type SaveHTMLStep struct {
	// dir is the output directory. Created if missing.
	dir string

	// logger for structured logging.
	logger *slog.Logger
}

// SaveHTMLStepOption configures a SaveHTMLStep.
type SaveHTMLStepOption func(*SaveHTMLStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveHTMLStepOption {
	return func(s *SaveHTMLStep) {
		s.logger = logger
	}
}

// NewSaveHTMLStep creates a step that writes masked documents to dir.
func NewSaveHTMLStep(dir string, opts ...SaveHTMLStepOption) *SaveHTMLStep {
	s := &SaveHTMLStep{
		dir:    dir,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveHTMLStep) Name() string {
	return "save_html"
}

// Do executes the save step.
func (s *SaveHTMLStep) Do(_ context.Context, job *Job) error {
	if job.MaskedHTML == "" {
		s.logger.Debug("no masked document to save", "input", job.Input)
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, maskedFileName(job.Input))
	if err := os.WriteFile(path, []byte(job.MaskedHTML), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Debug("saved masked document", "input", job.Input, "path", path)
	return nil
}

// maskedFileName derives a file name from an input URL or path.
// "https://chat.example.com/channels/42" becomes
// "chat.example.com-channels-42.masked.html".
func maskedFileName(input string) string {
	name := input
	for _, prefix := range []string{"https://", "http://"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.Trim(name, "/")
	if name == "" {
		name = "page"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	return b.String() + ".masked.html"
}
