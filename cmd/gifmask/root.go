// Package main provides the entry point for the gifmask CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gifmask.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gifmask",
		Short: "Mask GIFs matching a blocked word list in captured pages",
		Long: `gifmask captures HTML pages, finds GIF media whose URL contains a
blocked word, and replaces each match with a revealable placeholder.

Masked documents stay intact: the original markup is preserved behind
restore state, duplicate candidates collapse into one placeholder per
container, and reports record every masked item.

Word lists live in flags, a .gifmask.yml configuration file, or the
saved settings database. Use 'gifmask settings' to manage saved words.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .gifmask.yml in current or XDG config directory)")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewSettingsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
