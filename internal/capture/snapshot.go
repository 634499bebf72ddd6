package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/gifmask/internal/dom"
)

// Renderer captures pages with a headless browser so GIFs inserted by
// client-side scripts are present in the snapshot.
//
// Design decision: Chat front ends build most of their tree at runtime,
// so a plain GET returns an app shell with no media in it. Rendering is a
// separate type rather than a Fetcher option because it needs a local
// Chrome or Chromium binary and has a very different cost profile.
type Renderer struct {
	// allocator is the shared browser allocator. Browser processes are
	// created lazily per Snapshot call and torn down afterwards.
	allocator context.Context

	// cancel releases the allocator and any remaining browser processes.
	cancel context.CancelFunc

	// timeout bounds a single render, navigation included.
	timeout time.Duration

	// userAgent overrides the browser User-Agent when non-empty.
	userAgent string

	// waitSelector is an optional CSS selector to wait for before the
	// snapshot is taken.
	waitSelector string

	// settle is an optional extra wait after the page is ready, for
	// lazy-loading media that arrives after the load event.
	settle time.Duration

	// logger receives debug records for each render.
	logger *slog.Logger
}

// SnapshotOption configures a Renderer.
type SnapshotOption func(*Renderer)

// WithWaitVisible waits until the given CSS selector is visible before
// taking the snapshot.
func WithWaitVisible(selector string) SnapshotOption {
	return func(r *Renderer) {
		r.waitSelector = selector
	}
}

// WithSettle waits an extra duration after the page is ready.
func WithSettle(d time.Duration) SnapshotOption {
	return func(r *Renderer) {
		r.settle = d
	}
}

// WithSnapshotTimeout sets the timeout for a single render.
func WithSnapshotTimeout(d time.Duration) SnapshotOption {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithSnapshotUserAgent overrides the browser User-Agent.
func WithSnapshotUserAgent(ua string) SnapshotOption {
	return func(r *Renderer) {
		r.userAgent = ua
	}
}

// WithSnapshotLogger sets the logger used for render debug records.
func WithSnapshotLogger(logger *slog.Logger) SnapshotOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer. No browser is started until the first
// Snapshot call. Callers must Close the Renderer when done.
func NewRenderer(opts ...SnapshotOption) *Renderer {
	r := &Renderer{
		timeout: 60 * time.Second,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
	)
	r.allocator, r.cancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return r
}

// Close releases the browser allocator.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Snapshot renders rawURL in a headless browser and parses the resulting
// tree. The returned document records the final location URL, which may
// differ from rawURL after client-side redirects.
func (r *Renderer) Snapshot(ctx context.Context, rawURL string) (*dom.Document, error) {
	pageURL, err := normalizePageURL(rawURL)
	if err != nil {
		return nil, err
	}

	taskCtx, cancelBrowser := chromedp.NewContext(r.allocator)
	defer cancelBrowser()

	// Bind to the caller context for cancellation.
	if ctx != nil {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithCancel(taskCtx)
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-taskCtx.Done():
			}
		}()
		defer cancel()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, r.timeout)
		defer cancel()
	}

	// Count request activity so slow or chatty pages show up in debug logs.
	var mu sync.Mutex
	var started, finished, failed int
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			mu.Lock()
			started++
			mu.Unlock()
		case *network.EventLoadingFinished:
			mu.Lock()
			finished++
			mu.Unlock()
		case *network.EventLoadingFailed:
			mu.Lock()
			failed++
			mu.Unlock()
		}
	})

	actions := []chromedp.Action{
		network.Enable(),
	}

	if r.userAgent != "" {
		ua := r.userAgent
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(ua).Do(ctx)
		}))
	}

	actions = append(actions,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)

	if sel := strings.TrimSpace(r.waitSelector); sel != "" {
		actions = append(actions, chromedp.WaitVisible(sel, chromedp.ByQuery))
	}

	if r.settle > 0 {
		actions = append(actions, chromedp.Sleep(r.settle))
	}

	var finalURL, htmlContent string
	actions = append(actions,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	if finalURL == "" {
		finalURL = pageURL
	}

	mu.Lock()
	r.logger.Debug("rendered page",
		"url", finalURL,
		"requests", started,
		"finished", finished,
		"failed", failed,
	)
	mu.Unlock()

	doc, err := dom.ParseString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page %s: %w", finalURL, err)
	}
	doc.SetPageURL(finalURL)

	return doc, nil
}

// Snapshot renders a single page with a one-shot Renderer and releases
// the browser afterwards.
func Snapshot(ctx context.Context, rawURL string, opts ...SnapshotOption) (*dom.Document, error) {
	r := NewRenderer(opts...)
	defer r.Close()
	return r.Snapshot(ctx, rawURL)
}
