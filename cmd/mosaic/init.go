package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/mosaic.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".mosaic.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mosaic configuration file",
		Long: `Initialize creates a new .mosaic.yaml configuration file in the current directory.

The generated file includes:
- Commented examples for platform API credentials
- Per-platform username override examples
- LLM analysis backend settings

Examples:
  # Create .mosaic.yaml in current directory
  mosaic init

  # Create config file at a specific path
  mosaic init -o myconfig.yaml

  # Force overwrite existing file
  mosaic init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/mosaic.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file with owner-only permissions since it may
	// hold API keys
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure settings such as:")
	fmt.Println("  - Platform API keys (GitHub, Stack Exchange, YouTube)")
	fmt.Println("  - Per-platform username overrides")
	fmt.Println("  - LLM analysis backend (Ollama or Gemini)")

	return nil
}
