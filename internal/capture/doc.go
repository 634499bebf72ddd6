// Package capture downloads chat pages so the filter engine can run over
// them outside a browser.
//
// # Components
//
//   - Fetcher: plain HTTP capture with optional SOCKS5 routing
//   - Renderer: headless-browser capture for script-built pages
//
// Design decision: Both capture paths return a dom.Document rather than raw
// bytes because every consumer in this program wants a parsed tree, and the
// final page URL (after redirects) belongs with it.
//
// # Usage
//
//	doc, err := capture.Fetch(ctx, "https://chat.example.com/channels/42",
//		capture.WithTimeout(10*time.Second))
//
// Pages that assemble their message list with JavaScript need the renderer:
//
//	doc, err := capture.Snapshot(ctx, "https://chat.example.com/channels/42",
//		capture.WithWaitVisible("div[class*='messageAccessories']"))
//
// The renderer requires a local Chrome or Chromium binary.
package capture
