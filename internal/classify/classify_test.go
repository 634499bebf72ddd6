package classify

import "testing"

// TestIsGIFLike tests GIF URL detection against the default patterns.
func TestIsGIFLike(t *testing.T) {
	t.Parallel()

	c := NewClassifier()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "tenor media URL", url: "https://media.tenor.com/abc/benjammin-dance.gif", want: true},
		{name: "tenor short domain", url: "https://tenor.co/view/12345", want: true},
		{name: "giphy URL", url: "https://media.giphy.com/media/xyz/giphy.mp4", want: true},
		{name: "gfycat URL", url: "https://gfycat.com/merrywetangora", want: true},
		{name: "plain gif extension", url: "https://cdn.example.com/cat.gif", want: true},
		{name: "gifv extension", url: "https://i.example.com/cat.gifv", want: true},
		{name: "uppercase host", url: "https://MEDIA.TENOR.COM/ABC/DANCE.GIF", want: true},
		{name: "mixed case extension", url: "https://cdn.example.com/cat.GiF", want: true},
		{name: "gif in query string", url: "https://example.com/view?file=dance.gif&size=s", want: true},
		{name: "png image", url: "https://cdn.example.com/cat.png", want: false},
		{name: "mp4 video", url: "https://cdn.example.com/cat.mp4", want: false},
		{name: "unrelated page", url: "https://example.com/about", want: false},
		{name: "empty URL", url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.IsGIFLike(tt.url); got != tt.want {
				t.Errorf("IsGIFLike(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// TestIsBlocked tests blocked-word matching with and without case
// sensitivity.
func TestIsBlocked(t *testing.T) {
	t.Parallel()

	c := NewClassifier()

	tests := []struct {
		name          string
		url           string
		words         []string
		caseSensitive bool
		want          bool
	}{
		{
			name:  "exact word in URL",
			url:   "https://media.tenor.com/abc/benjammin-dance.gif",
			words: []string{"benjammin"},
			want:  true,
		},
		{
			name:  "case-insensitive hit with mixed-case URL",
			url:   "https://media.tenor.com/abc/Benjammin-Dance.gif",
			words: []string{"benjammin"},
			want:  true,
		},
		{
			name:          "case-sensitive miss on differing case",
			url:           "https://media.tenor.com/abc/Benjammin-dance.gif",
			words:         []string{"benjammin"},
			caseSensitive: true,
			want:          false,
		},
		{
			name:          "case-sensitive hit on exact case",
			url:           "https://media.tenor.com/abc/benjammin-dance.gif",
			words:         []string{"benjammin"},
			caseSensitive: true,
			want:          true,
		},
		{
			name:  "substring match inside larger word",
			url:   "https://tenor.com/concatenated.gif",
			words: []string{"cat"},
			want:  true,
		},
		{
			name:  "second word matches",
			url:   "https://media.giphy.com/media/dance-party.gif",
			words: []string{"benjammin", "party"},
			want:  true,
		},
		{
			name:  "no word matches",
			url:   "https://media.tenor.com/abc/dog.gif",
			words: []string{"benjammin", "party"},
			want:  false,
		},
		{
			name:  "empty URL",
			url:   "",
			words: []string{"benjammin"},
			want:  false,
		},
		{
			name:  "empty word list",
			url:   "https://media.tenor.com/abc/dance.gif",
			words: nil,
			want:  false,
		},
		{
			name:  "empty word is skipped",
			url:   "https://media.tenor.com/abc/dance.gif",
			words: []string{""},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.IsBlocked(tt.url, tt.words, tt.caseSensitive)
			if got != tt.want {
				t.Errorf("IsBlocked(%q, %v, caseSensitive=%v) = %v, want %v",
					tt.url, tt.words, tt.caseSensitive, got, tt.want)
			}
		})
	}
}

// TestGIFPattern tests that the matched pattern is reported.
func TestGIFPattern(t *testing.T) {
	t.Parallel()

	t.Run("returns first matching pattern", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier()
		pattern, ok := c.GIFPattern("https://media.tenor.com/abc/dance.gif")
		if !ok {
			t.Fatal("expected a pattern match")
		}
		// ".gif" precedes "tenor.com" in the default pattern order.
		if pattern != ".gif" {
			t.Errorf("expected pattern %q, got %q", ".gif", pattern)
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier()
		pattern, ok := c.GIFPattern("https://example.com/cat.png")
		if ok {
			t.Errorf("unexpected pattern match %q", pattern)
		}
	})
}

// TestBlockedWord tests that the matched word keeps its original
// spelling.
func TestBlockedWord(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	word, ok := c.BlockedWord("https://tenor.com/BENJAMMIN.gif", []string{"BenJammin"}, false)
	if !ok {
		t.Fatal("expected a word match")
	}
	if word != "BenJammin" {
		t.Errorf("expected original spelling %q, got %q", "BenJammin", word)
	}
}

// TestWithPatterns tests pattern list replacement.
func TestWithPatterns(t *testing.T) {
	t.Parallel()

	t.Run("custom patterns replace defaults", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier(WithPatterns([]string{"example.org/media"}))
		if c.IsGIFLike("https://media.tenor.com/abc/dance.gif") {
			t.Error("default pattern should be gone after replacement")
		}
		if !c.IsGIFLike("https://example.org/media/42") {
			t.Error("custom pattern should match")
		}
	})

	t.Run("custom patterns fold case", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier(WithPatterns([]string{"Example.ORG"}))
		if !c.IsGIFLike("https://EXAMPLE.org/a.bin") {
			t.Error("pattern matching should ignore case")
		}
	})

	t.Run("empty patterns are dropped", func(t *testing.T) {
		t.Parallel()

		c := NewClassifier(WithPatterns([]string{"", ".gif"}))
		if c.IsGIFLike("https://example.com/cat.png") {
			t.Error("empty pattern must not match everything")
		}
	})
}
