package classify

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPatterns returns the built-in GIF URL fragments. A URL
// containing any of them (case-folded) is treated as GIF-like.
func DefaultPatterns() []string {
	return []string{
		".gif",
		".gifv",
		"tenor.com",
		"tenor.co",
		"giphy.com",
		"gfycat.com",
	}
}

// Classifier reports whether URLs look like animated GIF media and
// whether they contain blocked words. A Classifier is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	// patterns holds the GIF URL fragments, stored case-folded.
	patterns []string
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithPatterns replaces the default GIF URL patterns. Patterns are
// case-folded at construction; empty entries are dropped.
func WithPatterns(patterns []string) ClassifierOption {
	return func(c *Classifier) {
		c.patterns = c.patterns[:0]
		for _, p := range patterns {
			if p == "" {
				continue
			}
			c.patterns = append(c.patterns, fold(p))
		}
	}
}

// NewClassifier creates a Classifier with the default GIF patterns.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, p := range DefaultPatterns() {
		c.patterns = append(c.patterns, fold(p))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsGIFLike reports whether rawURL points at GIF-like media. The URL is
// case-folded before matching, so "TENOR.COM" and "tenor.com" classify
// identically. An empty URL is never GIF-like.
func (c *Classifier) IsGIFLike(rawURL string) bool {
	_, ok := c.GIFPattern(rawURL)
	return ok
}

// GIFPattern returns the first GIF pattern contained in rawURL, in
// pattern-list order, and whether any matched.
func (c *Classifier) GIFPattern(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	folded := fold(rawURL)
	for _, p := range c.patterns {
		if strings.Contains(folded, p) {
			return p, true
		}
	}
	return "", false
}

// IsBlocked reports whether rawURL contains any of the blocked words.
// When caseSensitive is false, both the URL and each word are
// case-folded before comparison. An empty URL or an empty word list
// never matches; empty words are skipped so they cannot match
// everything.
func (c *Classifier) IsBlocked(rawURL string, words []string, caseSensitive bool) bool {
	_, ok := c.BlockedWord(rawURL, words, caseSensitive)
	return ok
}

// BlockedWord returns the first word of words contained in rawURL,
// in its original spelling, and whether any matched.
func (c *Classifier) BlockedWord(rawURL string, words []string, caseSensitive bool) (string, bool) {
	if rawURL == "" || len(words) == 0 {
		return "", false
	}
	target := rawURL
	if !caseSensitive {
		target = fold(rawURL)
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		needle := w
		if !caseSensitive {
			needle = fold(w)
		}
		if strings.Contains(target, needle) {
			return w, true
		}
	}
	return "", false
}

// fold lowercases s using Unicode case folding. Folding keeps host
// names with non-ASCII case variants comparable; for the ASCII pattern
// list it behaves exactly like strings.ToLower.
func fold(s string) string {
	return cases.Fold().String(s)
}
