package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/gifmask/internal/classify"
	"github.com/nao1215/gifmask/internal/config"
	"github.com/nao1215/gifmask/internal/log"
)

// NewCheckCmd creates the check command.
// This command classifies URLs without capturing a document.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Classify URLs against the GIF patterns and blocked words",
		Long: `Check classifies each URL the way the filter engine would, without
capturing a page.

For every URL it reports:
- Whether the URL looks like GIF media and which pattern matched
- Whether the URL contains a blocked word and which one
- Whether the filter would mask it (both of the above)

The word list resolves the same way as 'gifmask run': --words, else the
configuration file, else the saved settings.

Examples:
  # Check a single URL against an inline word list
  gifmask check --words benjammin https://media.tenor.com/x/benjammin-dance.gif

  # Check several URLs against the saved settings
  gifmask check https://media.tenor.com/a.gif https://example.com/photo.jpg

  # Case-sensitive matching
  gifmask check --words Benjammin --case-sensitive https://media.tenor.com/x/benjammin.gif

  # Output verdicts in JSON format
  gifmask check --json https://media.tenor.com/a.gif`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Filter flags
	cmd.Flags().StringSliceP("words", "w", nil,
		"Blocked words (comma separated)")
	cmd.Flags().Bool("case-sensitive", config.DefaultCaseSensitive,
		"Match blocked words case-sensitively")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output verdicts in JSON format")

	return cmd
}

// urlVerdict is the classification result for one URL.
type urlVerdict struct {
	URL     string `json:"url"`
	GIFLike bool   `json:"gif_like"`
	Pattern string `json:"pattern,omitempty"`
	Blocked bool   `json:"blocked"`
	Word    string `json:"word,omitempty"`
	Masked  bool   `json:"masked"`
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	// Validate arguments before touching configuration or the settings
	// database
	if len(args) == 0 {
		return errors.New("no URLs provided (specify one or more URLs as arguments)")
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Load the configuration file with the same semantics as run
	configPath := getConfigFlag(cmd)
	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		if configPath != "" {
			return fmt.Errorf("configuration file not found: %s", configPath)
		}
		cfg = config.DefaultConfig()
	} else if err != nil {
		return err
	}

	if cmd.Flags().Changed("words") {
		cfg.Words, err = cmd.Flags().GetStringSlice("words")
		if err != nil {
			return err
		}
	}
	caseSensitive := cfg.CaseSensitive
	if cmd.Flags().Changed("case-sensitive") {
		caseSensitive, err = cmd.Flags().GetBool("case-sensitive")
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewRedactLogger(os.Stderr, getVerboseFlag(cmd), cfg.Words)

	// Fall back to the saved word list when none was given
	words := cfg.Words
	if len(words) == 0 {
		view := loadSavedView(context.Background(), cfg.Database, logger)
		words = view.Words
		if !cmd.Flags().Changed("case-sensitive") {
			caseSensitive = view.CaseSensitive
		}
	}
	if len(words) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no blocked words configured; nothing can match")
	}

	classifierOpts := []classify.ClassifierOption{}
	if len(cfg.Patterns) > 0 {
		classifierOpts = append(classifierOpts, classify.WithPatterns(cfg.Patterns))
	}
	classifier := classify.NewClassifier(classifierOpts...)

	verdicts := checkURLs(classifier, args, words, caseSensitive)

	if jsonOutput {
		return printVerdictsJSON(cmd, verdicts)
	}
	return printVerdicts(cmd, verdicts)
}

// checkURLs classifies each URL the way the engine does during a scan.
func checkURLs(classifier *classify.Classifier, urls, words []string, caseSensitive bool) []urlVerdict {
	verdicts := make([]urlVerdict, 0, len(urls))
	for _, rawURL := range urls {
		v := urlVerdict{URL: rawURL}
		v.Pattern, v.GIFLike = classifier.GIFPattern(rawURL)
		v.Word, v.Blocked = classifier.BlockedWord(rawURL, words, caseSensitive)
		v.Masked = v.GIFLike && v.Blocked
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// printVerdicts writes verdicts in human-readable form.
func printVerdicts(cmd *cobra.Command, verdicts []urlVerdict) error {
	out := cmd.OutOrStdout()

	masked := 0
	for _, v := range verdicts {
		fmt.Fprintln(out, v.URL)

		if v.GIFLike {
			fmt.Fprintf(out, "  GIF-like: yes (pattern: %s)\n", v.Pattern)
		} else {
			fmt.Fprintln(out, "  GIF-like: no")
		}

		if v.Blocked {
			fmt.Fprintf(out, "  Blocked:  yes (word: %s)\n", v.Word)
		} else {
			fmt.Fprintln(out, "  Blocked:  no")
		}

		if v.Masked {
			fmt.Fprintln(out, "  Verdict:  would be masked")
			masked++
		} else {
			fmt.Fprintln(out, "  Verdict:  would be left alone")
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d of %d URLs would be masked\n", masked, len(verdicts))
	return nil
}

// printVerdictsJSON writes verdicts as indented JSON.
func printVerdictsJSON(cmd *cobra.Command, verdicts []urlVerdict) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(verdicts)
}
