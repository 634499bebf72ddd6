package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"golang.org/x/net/html"

	"github.com/nao1215/gifmask/internal/dom"
	"github.com/nao1215/gifmask/internal/ledger"
	"github.com/nao1215/gifmask/internal/settings"
	"github.com/nao1215/gifmask/internal/styles"
)

// staticHost serves a fixed document without a mutation stream.
type staticHost struct {
	doc *dom.Document
}

func (h *staticHost) Document() *dom.Document    { return h.doc }
func (h *staticHost) Mutations() <-chan Mutation { return nil }

// streamHost replays scripted subtree insertions.
type streamHost struct {
	doc *dom.Document
	ch  chan Mutation
}

func (h *streamHost) Document() *dom.Document    { return h.doc }
func (h *streamHost) Mutations() <-chan Mutation { return h.ch }

func mustParse(t *testing.T, s string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func seedStore(t *testing.T, view settings.View) *settings.MemoryStore {
	t.Helper()

	store := settings.NewMemoryStore()
	if err := settings.Save(context.Background(), store, view); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func findByClass(t *testing.T, root *html.Node, fragment string) *html.Node {
	t.Helper()

	var found *html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if found == nil && dom.ClassContains(n, fragment) {
			found = n
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("no element with class fragment %q", fragment)
	}
	return found
}

// markerCount counts every filter marker left in the subtree.
func markerCount(root *html.Node) int {
	count := 0
	dom.Walk(root, func(n *html.Node) bool {
		for _, key := range []string{
			ledger.AttrProcessed,
			ledger.AttrOwner,
			ledger.AttrClickBlocked,
			ledger.AttrEmbed,
			ledger.AttrRestore,
		} {
			if dom.HasAttr(n, key) {
				count++
			}
		}
		return true
	})
	return count
}

func messageDoc(src string) string {
	return fmt.Sprintf(`<html><head></head><body>
<article class="messageListItem-ZZ7v6g">
  <div class="contents-2MsGLg">benjammin posted</div>
  <div class="messageAccessories-1fjAdx">
    <div class="imageWrapper-2p5ogY">
      <img class="lazyImg-ewiNCh" src=%q>
    </div>
  </div>
</article>
</body></html>`, src)
}

const pickerDoc = `<html><head></head><body>
<div class="pickerContainer-1Yr9iN">
  <div class="content-3YMskv">
    <div class="result-3QkN7H"><img class="gif-2H6Y9o" src="https://media.tenor.com/zz/benjammin-party.gif"></div>
    <div class="result-0Hx2Pq"><img class="gif-9mNwci" src="https://media.giphy.com/media/plain-cat.gif"></div>
  </div>
</div>
</body></html>`

func TestEngineStartMasksBlockedGIF(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, messageDoc("https://media.tenor.com/abc/benjammin-dance.gif"))
	doc.SetPageURL("https://chat.example.com/channels/42")

	before, err := doc.HTML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	led := ledger.New()
	embeds := led.Embeds(doc.Root())
	if len(embeds) != 1 {
		t.Fatalf("want exactly one placeholder, got %d", len(embeds))
	}

	accessories := findByClass(t, doc.Root(), "messageAccessories")
	if embeds[0].Parent != accessories {
		t.Errorf("placeholder should sit in the accessories container, got parent %v", embeds[0].Parent.Data)
	}

	wrapper := findByClass(t, doc.Root(), "imageWrapper")
	if !led.Hidden(wrapper) {
		t.Error("image wrapper should be hidden")
	}
	if got := dom.StyleProperty(wrapper, "display"); got != "none" {
		t.Errorf("wrapper display = %q, want %q", got, "none")
	}
	if !led.OwnerClaimed(wrapper) {
		t.Error("image wrapper should be the claimed owner unit")
	}

	img := findByClass(t, doc.Root(), "lazyImg")
	if !led.Processed(img) {
		t.Error("candidate image should carry the processed marker")
	}

	if !styles.NewRegistry().Installed(doc, styles.DefaultID) {
		t.Error("engine stylesheet should be installed while running")
	}

	stats := eng.Stats()
	if stats.Scanned != 1 || stats.Masked != 1 || stats.PickerSkipped != 0 {
		t.Errorf("stats = %+v, want 1 scanned, 1 masked, 0 picker skipped", stats)
	}

	eng.Stop()

	if got := markerCount(doc.Root()); got != 0 {
		t.Errorf("markers remaining after stop = %d, want 0", got)
	}
	if got := len(led.Embeds(doc.Root())); got != 0 {
		t.Errorf("placeholders remaining after stop = %d, want 0", got)
	}
	if styles.NewRegistry().Installed(doc, styles.DefaultID) {
		t.Error("engine stylesheet should be removed on stop")
	}

	after, err := doc.HTML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after != before {
		t.Errorf("stop should restore the document\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestEngineStartWithoutDocument(t *testing.T) {
	t.Parallel()

	eng := New(&staticHost{}, nil, WithLogger(slog.New(slog.DiscardHandler)))
	if err := eng.Start(context.Background()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Start error = %v, want %v", err, ErrNoDocument)
	}
	if err := eng.Rescan(context.Background()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Rescan error = %v, want %v", err, ErrNoDocument)
	}
	if err := eng.Reveal("x"); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Reveal error = %v, want %v", err, ErrNoDocument)
	}
}

func TestEngineLifecycleIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, messageDoc("https://media.tenor.com/abc/benjammin-dance.gif"))
	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

	eng.Stop() // stop before start is a no-op

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	led := ledger.New()
	if got := len(led.Embeds(doc.Root())); got != 1 {
		t.Errorf("placeholders after double start = %d, want 1", got)
	}

	eng.Stop()
	eng.Stop()

	if got := markerCount(doc.Root()); got != 0 {
		t.Errorf("markers after double stop = %d, want 0", got)
	}

	// The engine must come back up after a stop.
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(led.Embeds(doc.Root())); got != 1 {
		t.Errorf("placeholders after restart = %d, want 1", got)
	}
	eng.Stop()
}

func TestEngineScanIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, messageDoc("https://media.tenor.com/abc/benjammin-dance.gif"))
	host := &streamHost{doc: doc, ch: make(chan Mutation)}
	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(host, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer eng.Stop()

	// Redelivering an already processed subtree must change nothing.
	article := findByClass(t, doc.Root(), "messageListItem")
	host.ch <- Mutation{Added: article}

	stats := eng.Stats()
	if stats.Masked != 1 {
		t.Errorf("masked after redelivery = %d, want 1", stats.Masked)
	}
	if got := len(ledger.New().Embeds(doc.Root())); got != 1 {
		t.Errorf("placeholders after redelivery = %d, want 1", got)
	}
}

func TestEngineOwnerDedup(t *testing.T) {
	t.Parallel()

	t.Run("anchor and image in one wrapper", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head></head><body>
<article class="messageListItem-A">
  <div class="messageAccessories-B">
    <div class="imageWrapper-C">
      <a class="originalLink-D" href="https://tenor.com/view/benjammin-dance-gif-123">
        <img class="lazyImg-E" src="https://media.tenor.com/abc/benjammin-dance.gif">
      </a>
    </div>
  </div>
</article>
</body></html>`)
		store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
		eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

		if err := eng.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer eng.Stop()

		led := ledger.New()
		if got := len(led.Embeds(doc.Root())); got != 1 {
			t.Errorf("placeholders = %d, want 1", got)
		}

		stats := eng.Stats()
		if stats.Scanned != 2 || stats.Masked != 1 {
			t.Errorf("stats = %+v, want 2 scanned, 1 masked", stats)
		}
	})

	t.Run("two images under one article", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head></head><body>
<article class="messageListItem-A">
  <div class="attachment-B"><img class="first-C" src="https://media.tenor.com/a/benjammin-dance.gif"></div>
  <div class="attachment-D"><img class="second-E" src="https://media.tenor.com/b/benjammin-wave.gif"></div>
</article>
</body></html>`)
		store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
		eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

		if err := eng.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer eng.Stop()

		led := ledger.New()
		if got := len(led.Embeds(doc.Root())); got != 1 {
			t.Errorf("placeholders = %d, want 1", got)
		}

		article := findByClass(t, doc.Root(), "messageListItem")
		if !led.OwnerClaimed(article) {
			t.Error("article should be the claimed owner unit")
		}

		// The second candidate hides itself without a second placeholder.
		second := findByClass(t, doc.Root(), "second")
		if !led.Hidden(second) {
			t.Error("second image should be hidden")
		}
	})
}

func TestEngineRevealRoundTrip(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, messageDoc("https://media.tenor.com/abc/benjammin-dance.gif"))
	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer eng.Stop()

	led := ledger.New()
	embeds := led.Embeds(doc.Root())
	if len(embeds) != 1 {
		t.Fatalf("want exactly one placeholder, got %d", len(embeds))
	}
	id := led.EmbedID(embeds[0])

	if err := eng.Reveal(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(led.Embeds(doc.Root())); got != 0 {
		t.Errorf("placeholders after reveal = %d, want 0", got)
	}
	wrapper := findByClass(t, doc.Root(), "imageWrapper")
	if led.Hidden(wrapper) {
		t.Error("wrapper should be visible after reveal")
	}
	if led.OwnerClaimed(wrapper) {
		t.Error("owner claim should be released after reveal")
	}
	img := findByClass(t, doc.Root(), "lazyImg")
	if led.Processed(img) {
		t.Error("revealed image should be maskable again")
	}
	if got := eng.Stats().Revealed; got != 1 {
		t.Errorf("revealed = %d, want 1", got)
	}

	// A second reveal is guarded by the placeholder's removal.
	if err := eng.Reveal(id); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("second Reveal error = %v, want %v", err, ErrUnknownItem)
	}

	// Still-blocked content is re-masked by the next rescan, exactly once.
	if err := eng.Rescan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(led.Embeds(doc.Root())); got != 1 {
		t.Errorf("placeholders after rescan = %d, want 1", got)
	}
	if !led.Hidden(wrapper) {
		t.Error("wrapper should be hidden again after rescan")
	}
}

func TestEngineCaseSensitivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		src           string
		caseSensitive bool
		wantMasked    int
	}{
		{
			name:          "case insensitive matches capitalized url",
			src:           "https://media.tenor.com/abc/Benjammin-dance.gif",
			caseSensitive: false,
			wantMasked:    1,
		},
		{
			name:          "case sensitive rejects capitalized url",
			src:           "https://media.tenor.com/abc/Benjammin-dance.gif",
			caseSensitive: true,
			wantMasked:    0,
		},
		{
			name:          "case sensitive matches exact url",
			src:           "https://media.tenor.com/abc/benjammin-dance.gif",
			caseSensitive: true,
			wantMasked:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := mustParse(t, messageDoc(tt.src))
			store := seedStore(t, settings.View{
				BlockInPicker: true,
				CaseSensitive: tt.caseSensitive,
				Words:         []string{"benjammin"},
			})
			eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

			if err := eng.Start(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer eng.Stop()

			if got := len(ledger.New().Embeds(doc.Root())); got != tt.wantMasked {
				t.Errorf("placeholders = %d, want %d", got, tt.wantMasked)
			}
		})
	}
}

func TestEnginePickerToggle(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, pickerDoc)
	store := seedStore(t, settings.View{BlockInPicker: false, Words: []string{"benjammin"}})
	eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer eng.Stop()

	led := ledger.New()
	if got := len(led.Embeds(doc.Root())); got != 0 {
		t.Fatalf("placeholders with picker blocking off = %d, want 0", got)
	}

	// The skipped tile stays fully interactive and unmarked so a later
	// rescan can pick it up.
	tile := findByClass(t, doc.Root(), "result-3QkN7H")
	if led.ClickBlocked(tile) {
		t.Error("tile should stay interactive while picker blocking is off")
	}
	blocked := findByClass(t, doc.Root(), "gif-2H6Y9o")
	if led.Processed(blocked) {
		t.Error("skipped picker candidate must stay unmarked")
	}

	stats := eng.Stats()
	if stats.Scanned != 2 || stats.Masked != 0 || stats.PickerSkipped != 1 {
		t.Errorf("stats = %+v, want 2 scanned, 0 masked, 1 picker skipped", stats)
	}

	// Flipping the setting takes effect through a rescan.
	view := settings.View{BlockInPicker: true, Words: []string{"benjammin"}}
	if err := settings.Save(context.Background(), store, view); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := eng.Rescan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	embeds := led.Embeds(doc.Root())
	if len(embeds) != 1 {
		t.Fatalf("placeholders after toggle = %d, want 1", len(embeds))
	}
	if embeds[0].Parent != tile {
		t.Error("picker placeholder should overlay the result tile")
	}
	if !dom.ClassContains(embeds[0], "gifmask-embed-picker") {
		t.Error("picker placeholder should use the compact overlay variant")
	}
	if !led.ClickBlocked(tile) {
		t.Error("masked tile should have its clicks blocked")
	}
	if got := dom.StyleProperty(tile, "pointer-events"); got != "none" {
		t.Errorf("tile pointer-events = %q, want %q", got, "none")
	}

	// The unrelated tile is untouched either way.
	plain := findByClass(t, doc.Root(), "gif-9mNwci")
	if led.Processed(plain) || led.Hidden(plain) {
		t.Error("unmatched picker candidate should be untouched")
	}

	stats = eng.Stats()
	if stats.Masked != 1 || stats.PickerSkipped != 0 {
		t.Errorf("stats after toggle = %+v, want 1 masked, 0 picker skipped", stats)
	}
}

func TestEngineMutationStream(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><head></head><body><div class="chat-log"></div></body></html>`)
	host := &streamHost{doc: doc, ch: make(chan Mutation)}
	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(host, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := eng.Stats().Masked; got != 0 {
		t.Fatalf("masked before any mutation = %d, want 0", got)
	}

	log := findByClass(t, doc.Root(), "chat-log")
	for i, src := range []string{
		"https://media.tenor.com/a/benjammin-dance.gif",
		"https://media.tenor.com/b/benjammin-wave.gif",
	} {
		nodes, err := dom.ParseFragment(fmt.Sprintf(
			`<article class="messageListItem-%d"><div class="messageAccessories-%d"><div class="imageWrapper-%d"><img src=%q></div></div></article>`,
			i, i, i, src,
		))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, n := range nodes {
			log.AppendChild(n)
			host.ch <- Mutation{Added: n}
		}

		if got := eng.Stats().Masked; got != i+1 {
			t.Errorf("masked after mutation %d = %d, want %d", i, got, i+1)
		}
	}

	if got := len(ledger.New().Embeds(doc.Root())); got != 2 {
		t.Errorf("placeholders = %d, want 2", got)
	}

	// A closed stream leaves the engine running for commands.
	close(host.ch)
	if got := eng.Stats().Masked; got != 2 {
		t.Errorf("masked after stream close = %d, want 2", got)
	}

	eng.Stop()
	if got := markerCount(doc.Root()); got != 0 {
		t.Errorf("markers after stop = %d, want 0", got)
	}
}

func TestEngineReport(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, messageDoc("https://media.tenor.com/abc/benjammin-dance.gif"))
	doc.SetPageURL("https://chat.example.com/channels/42")
	store := seedStore(t, settings.View{BlockInPicker: true, Words: []string{"benjammin"}})
	eng := New(&staticHost{doc: doc}, store, WithLogger(slog.New(slog.DiscardHandler)))

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer eng.Stop()

	report := eng.Report()
	if report.PageURL != "https://chat.example.com/channels/42" {
		t.Errorf("page url = %q, want the host page", report.PageURL)
	}
	if report.DocumentHash == "" {
		t.Error("document hash should be recorded")
	}
	if report.SessionID == "" {
		t.Error("session id should be assigned")
	}
	if report.Scanned != 1 {
		t.Errorf("scanned = %d, want 1", report.Scanned)
	}
	if got := report.MaskedCount(); got != 1 {
		t.Fatalf("masked count = %d, want 1", got)
	}

	item := report.Items[0]
	if item.URL != "https://media.tenor.com/abc/benjammin-dance.gif" {
		t.Errorf("item url = %q, want the image source", item.URL)
	}
	if item.Word != "benjammin" {
		t.Errorf("item word = %q, want %q", item.Word, "benjammin")
	}
	if item.Pattern != ".gif" {
		t.Errorf("item pattern = %q, want %q", item.Pattern, ".gif")
	}
	if item.Picker {
		t.Error("message item should not be flagged as picker")
	}
	if item.ID == "" {
		t.Error("item id should be assigned")
	}
	if item.Owner == "" {
		t.Error("item owner summary should be recorded")
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("report finish must not precede its start")
	}

	snapshot, err := eng.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot == "" {
		t.Error("snapshot should render the masked document")
	}
}
