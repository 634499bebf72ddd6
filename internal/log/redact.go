package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// wordListKeys contains attribute keys that carry the blocked word list
// itself. These attributes are always masked whole.
var wordListKeys = map[string]bool{
	"word":  true,
	"words": true,
}

// MaskValue is the string used to replace blocked words.
const MaskValue = "***"

// RedactHandler wraps an slog.Handler to mask blocked words.
// It intercepts log records and replaces every occurrence of a blocked
// word in attribute values before passing them to the underlying
// handler. The words the filter hides from the page should not end up
// spelled out in a log file.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. It composes with handlers from other slog-based libraries
type RedactHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler

	// pattern matches any blocked word, case-insensitively. nil when
	// the word list is empty.
	pattern *regexp.Regexp
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// Occurrences of the given words are masked in all attribute values.
// If handler is nil, the returned RedactHandler uses slog.Default().Handler().
func NewRedactHandler(handler slog.Handler, words []string) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{
		handler: handler,
		pattern: compileWords(words),
	}
}

// compileWords builds one case-insensitive alternation over the word
// list. Empty words are dropped; an empty list yields nil.
func compileWords(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it to the underlying handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, h.maskString(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are masked before being added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(maskedAttrs), pattern: h.pattern}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name), pattern: h.pattern}
}

// maskAttr masks a single attribute, recursively handling groups.
func (h *RedactHandler) maskAttr(a slog.Attr) slog.Attr {
	// Handle groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	// Attributes carrying the word list are masked whole
	if wordListKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	// Mask word occurrences inside string values
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.maskString(a.Value.String()))
	}

	return a
}

// maskString replaces every blocked word occurrence in s.
func (h *RedactHandler) maskString(s string) string {
	if h.pattern == nil {
		return s
	}
	return h.pattern.ReplaceAllString(s, MaskValue)
}

// NewRedactLogger creates a new slog.Logger that masks blocked words.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//   - words: The blocked words to mask in all output
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewRedactLogger(w io.Writer, verbose bool, words []string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	redactHandler := NewRedactHandler(textHandler, words)

	return slog.New(redactHandler)
}

// NewRedactJSONLogger creates a new slog.Logger that masks blocked words
// and outputs JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//   - words: The blocked words to mask in all output
//
// Returns a *slog.Logger configured for JSON output with masking.
func NewRedactJSONLogger(w io.Writer, verbose bool, words []string) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	redactHandler := NewRedactHandler(jsonHandler, words)

	return slog.New(redactHandler)
}
