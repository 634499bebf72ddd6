package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/gifmask/internal/config"
	"github.com/nao1215/gifmask/internal/settings"
)

// NewSettingsCmd creates the settings command.
// This command manages the persistent settings database that runs fall
// back to when no word list is given.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the saved filter settings",
		Long: `Settings reads and writes the persistent filter settings.

Runs without --words and without a configured word list fall back to
these saved settings, so 'gifmask settings set words ...' is the way to
configure the filter once and use it everywhere.

Available keys:
  words          Blocked words, comma separated
  blockInPicker  Mask GIF picker tiles (true/false)
  caseSensitive  Match words case-sensitively (true/false)

Examples:
  # Show all saved settings
  gifmask settings get

  # Show one setting
  gifmask settings get words

  # Save a word list
  gifmask settings set words benjammin,dance

  # Clear the word list
  gifmask settings set words ""

  # Stop masking picker tiles
  gifmask settings set blockInPicker false`,
	}

	cmd.PersistentFlags().StringP("database", "d", "",
		"Settings database path (default: gifmask data directory)")

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

// newSettingsGetCmd creates the settings get subcommand.
func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print saved settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSettingsGetCmd,
	}
}

// newSettingsSetCmd creates the settings set subcommand.
func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save one setting",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSetCmd,
	}
}

// resolveSettingsPath decides which settings database to use.
// Priority: --database flag > configuration file > XDG default.
func resolveSettingsPath(cmd *cobra.Command) string {
	if path, err := cmd.Flags().GetString("database"); err == nil && path != "" {
		return path
	}
	if cfg, err := config.Load(getConfigFlag(cmd)); err == nil && cfg.Database != "" {
		return cfg.Database
	}
	return settings.DefaultPath()
}

// runSettingsGetCmd executes the settings get subcommand.
func runSettingsGetCmd(cmd *cobra.Command, args []string) error {
	db, err := settings.Open(resolveSettingsPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open settings database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-only use

	view, err := settings.Load(cmd.Context(), db)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintf(out, "%s: %s\n", settings.KeyWords, formatWords(view.Words))
		fmt.Fprintf(out, "%s: %t\n", settings.KeyBlockInPicker, view.BlockInPicker)
		fmt.Fprintf(out, "%s: %t\n", settings.KeyCaseSensitive, view.CaseSensitive)
		return nil
	}

	switch args[0] {
	case settings.KeyWords:
		fmt.Fprintln(out, formatWords(view.Words))
	case settings.KeyBlockInPicker:
		fmt.Fprintln(out, strconv.FormatBool(view.BlockInPicker))
	case settings.KeyCaseSensitive:
		fmt.Fprintln(out, strconv.FormatBool(view.CaseSensitive))
	default:
		return unknownSettingError(args[0])
	}
	return nil
}

// runSettingsSetCmd executes the settings set subcommand.
func runSettingsSetCmd(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	db, err := settings.Open(resolveSettingsPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open settings database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Save errors are returned below

	// Mutate the loaded view so a partial store never loses the other
	// keys
	view, err := settings.Load(cmd.Context(), db)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	switch key {
	case settings.KeyWords:
		view.Words = parseWords(value)
	case settings.KeyBlockInPicker:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s (expected true or false)", value, key)
		}
		view.BlockInPicker = v
	case settings.KeyCaseSensitive:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s (expected true or false)", value, key)
		}
		view.CaseSensitive = v
	default:
		return unknownSettingError(key)
	}

	if err := settings.Save(cmd.Context(), db, view); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	switch key {
	case settings.KeyWords:
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s\n", key, formatWords(view.Words))
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s\n", key, value)
	}
	return nil
}

// parseWords splits a comma separated word list, dropping empty
// entries. An empty value clears the list.
func parseWords(value string) []string {
	parts := strings.Split(value, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// formatWords renders a word list for display.
func formatWords(words []string) string {
	if len(words) == 0 {
		return "(none)"
	}
	return strings.Join(words, ", ")
}

// unknownSettingError lists the valid keys in the error message.
func unknownSettingError(key string) error {
	return fmt.Errorf("unknown setting %q (valid keys: %s, %s, %s)",
		key, settings.KeyWords, settings.KeyBlockInPicker, settings.KeyCaseSensitive)
}
