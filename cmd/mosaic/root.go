// Package main provides the entry point for the mosaic CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mosaic.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mosaic",
		Short: "Multi-platform OSINT profile collector",
		Long: `Mosaic collects public profile data for a username across multiple
platforms (GitHub, Stack Overflow, YouTube, Bluesky, Mastodon, Reddit,
Medium, Telegram) and derives a cross-platform exposure fingerprint.

All collection uses public, unauthenticated endpoints. Optional API keys
raise rate limits but are never required. See 'mosaic init' to generate
a configuration file for credentials and per-platform username overrides.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
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
