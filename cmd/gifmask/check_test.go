package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/gifmask/internal/classify"
)

// TestNewCheckCmd tests the check command creation.
func TestNewCheckCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCheckCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "check <url>..." {
			t.Errorf("expected use 'check <url>...', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has words flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("words")
		if flag == nil {
			t.Fatal("expected words flag")
		}
		if flag.Shorthand != "w" {
			t.Errorf("expected shorthand 'w', got %q", flag.Shorthand)
		}
	})

	t.Run("has case-sensitive flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("case-sensitive")
		if flag == nil {
			t.Fatal("expected case-sensitive flag")
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// TestCheckURLs tests URL classification.
func TestCheckURLs(t *testing.T) {
	t.Parallel()

	classifier := classify.NewClassifier()
	words := []string{"benjammin"}

	t.Run("masks a GIF with a blocked word", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://media.tenor.com/x/benjammin-dance.gif"}, words, false)
		if len(verdicts) != 1 {
			t.Fatalf("expected 1 verdict, got %d", len(verdicts))
		}

		v := verdicts[0]
		if !v.GIFLike {
			t.Error("expected GIF-like URL")
		}
		if v.Pattern == "" {
			t.Error("expected a matched pattern")
		}
		if !v.Blocked {
			t.Error("expected blocked URL")
		}
		if v.Word != "benjammin" {
			t.Errorf("expected word 'benjammin', got %q", v.Word)
		}
		if !v.Masked {
			t.Error("expected masked verdict")
		}
	})

	t.Run("leaves a GIF without a blocked word", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://media.tenor.com/x/cat-wave.gif"}, words, false)
		v := verdicts[0]
		if !v.GIFLike {
			t.Error("expected GIF-like URL")
		}
		if v.Blocked {
			t.Error("expected unblocked URL")
		}
		if v.Masked {
			t.Error("expected unmasked verdict")
		}
	})

	t.Run("leaves a non-GIF with a blocked word", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://example.com/benjammin-profile.jpg"}, words, false)
		v := verdicts[0]
		if v.GIFLike {
			t.Error("expected non-GIF URL")
		}
		if !v.Blocked {
			t.Error("expected blocked URL")
		}
		if v.Masked {
			t.Error("expected unmasked verdict")
		}
	})

	t.Run("matches case-insensitively by default", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://media.tenor.com/x/BenJammin-dance.gif"}, words, false)
		if !verdicts[0].Masked {
			t.Error("expected masked verdict with mixed-case URL")
		}
	})

	t.Run("respects case-sensitive matching", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://media.tenor.com/x/BenJammin-dance.gif"}, words, true)
		if verdicts[0].Blocked {
			t.Error("expected unblocked URL with case-sensitive matching")
		}
	})

	t.Run("classifies multiple URLs in order", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://media.tenor.com/x/benjammin-dance.gif",
			"https://example.com/photo.jpg",
		}
		verdicts := checkURLs(classifier, urls, words, false)
		if len(verdicts) != 2 {
			t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
		}
		if verdicts[0].URL != urls[0] || verdicts[1].URL != urls[1] {
			t.Error("expected verdicts in input order")
		}
	})

	t.Run("handles empty word list", func(t *testing.T) {
		t.Parallel()

		verdicts := checkURLs(classifier, []string{"https://media.tenor.com/x/benjammin-dance.gif"}, nil, false)
		if verdicts[0].Blocked {
			t.Error("expected unblocked URL with no words")
		}
		if verdicts[0].Masked {
			t.Error("expected unmasked verdict with no words")
		}
	})
}

// TestRunCheckCmdNoArgs tests runCheckCmd with no arguments.
func TestRunCheckCmdNoArgs(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"check"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for no arguments")
	}
	if !strings.Contains(err.Error(), "no URLs") {
		t.Errorf("expected 'no URLs' error, got: %v", err)
	}
}

// TestRunCheckCmdTextOutput tests the human-readable verdict output.
func TestRunCheckCmdTextOutput(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{
		"check",
		"--words", "benjammin",
		"https://media.tenor.com/x/benjammin-dance.gif",
		"https://example.com/photo.jpg",
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "GIF-like: yes (pattern: .gif)") {
		t.Errorf("expected pattern line in output, got:\n%s", output)
	}
	if !strings.Contains(output, "Blocked:  yes (word: benjammin)") {
		t.Errorf("expected word line in output, got:\n%s", output)
	}
	if !strings.Contains(output, "would be masked") {
		t.Errorf("expected masked verdict in output, got:\n%s", output)
	}
	if !strings.Contains(output, "would be left alone") {
		t.Errorf("expected left-alone verdict in output, got:\n%s", output)
	}
	if !strings.Contains(output, "1 of 2 URLs would be masked") {
		t.Errorf("expected closing count in output, got:\n%s", output)
	}
}

// TestRunCheckCmdJSONOutput tests the JSON verdict output.
func TestRunCheckCmdJSONOutput(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{
		"check",
		"--json",
		"--words", "benjammin",
		"https://media.tenor.com/x/benjammin-dance.gif",
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var verdicts []urlVerdict
	if err := json.Unmarshal(buf.Bytes(), &verdicts); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if len(verdicts) != 1 {
		t.Fatalf("expected 1 verdict, got %d", len(verdicts))
	}
	if !verdicts[0].Masked {
		t.Error("expected masked verdict")
	}
	if verdicts[0].Pattern != ".gif" {
		t.Errorf("expected pattern '.gif', got %q", verdicts[0].Pattern)
	}
	if verdicts[0].Word != "benjammin" {
		t.Errorf("expected word 'benjammin', got %q", verdicts[0].Word)
	}
}

// TestRunCheckCmdMissingConfigFile tests check with an explicit config
// path that does not exist.
func TestRunCheckCmdMissingConfigFile(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{
		"check",
		"--config", "/nonexistent/gifmask.yml",
		"https://media.tenor.com/x/benjammin-dance.gif",
	})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("expected 'configuration file not found' error, got: %v", err)
	}
}
