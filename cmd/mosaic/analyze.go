package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/or1un/mosaic/internal/analysis"
	"github.com/or1un/mosaic/internal/config"
	"github.com/or1un/mosaic/internal/database"
	"github.com/or1un/mosaic/internal/log"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [username]",
		Short: "Run LLM analysis over collected profile data",
		Long: `Analyze feeds collected profile data to an LLM backend and produces
a narrative assessment of the subject's public footprint.

By default the most recent collection run for the subject is loaded from
the history database. Use --data to analyze an exported JSON file instead.

Two backends are supported:
- ollama: local inference via an Ollama server (default, data stays local)
- gemini: Google Gemini API (requires llm.gemini_api_key in the config file)

Prompt templates select the analysis angle. Built-in prompts can be
overridden by placing .md files in the user prompt directory.

Examples:
  # Analyze the latest collection run for a subject
  mosaic analyze octocat

  # Use a specific prompt template
  mosaic analyze --prompt technical octocat

  # Analyze an exported JSON file
  mosaic analyze --data results/octocat_20260830_120000.json octocat

  # Use the Gemini backend with a specific model
  mosaic analyze --backend gemini --model gemini-2.0-flash octocat

  # List available prompts and installed Ollama models
  mosaic analyze --list-prompts
  mosaic analyze --list-models`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("prompt", "p", "behavioral",
		"Prompt template name (see --list-prompts)")
	cmd.Flags().StringP("data", "d", "",
		"Path to an exported JSON run file (default: latest run from the database)")
	cmd.Flags().StringP("backend", "b", "",
		"Analysis backend: ollama or gemini (default: from config file, then ollama)")
	cmd.Flags().StringP("model", "m", "",
		"Model name passed to the backend (default: from config file)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mosaic.yaml in current or home directory)")
	cmd.Flags().StringP("output", "o", "",
		"Write analysis to specified file path instead of the results directory")
	cmd.Flags().String("results-dir", config.DefaultResultsDir,
		"Directory where the analysis report is saved")
	cmd.Flags().Bool("list-prompts", false,
		"List available prompt templates and exit")
	cmd.Flags().Bool("list-models", false,
		"List models installed on the Ollama server and exit")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Load credentials; analysis settings live in the same config file
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	creds, err := loadCredentials(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	// Handle listing flags before requiring a subject
	listPrompts, err := cmd.Flags().GetBool("list-prompts")
	if err != nil {
		return err
	}
	if listPrompts {
		return printPromptList()
	}

	listModels, err := cmd.Flags().GetBool("list-models")
	if err != nil {
		return err
	}
	if listModels {
		return printOllamaModels(ctx, creds)
	}

	if len(args) == 0 {
		return errors.New("username is required (or use --list-prompts / --list-models)")
	}
	subject := args[0]

	promptName, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return err
	}
	dataFile, err := cmd.Flags().GetString("data")
	if err != nil {
		return err
	}
	backendName, err := cmd.Flags().GetString("backend")
	if err != nil {
		return err
	}
	modelName, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	resultsDir, err := cmd.Flags().GetString("results-dir")
	if err != nil {
		return err
	}

	return runAnalysis(ctx, analysisParams{
		subject:     subject,
		promptName:  promptName,
		dataFile:    dataFile,
		backendName: backendName,
		modelName:   modelName,
		outputPath:  outputPath,
		resultsDir:  resultsDir,
		creds:       creds,
		logger:      logger,
	})
}

// analysisParams bundles the resolved analyze command inputs.
type analysisParams struct {
	subject     string
	promptName  string
	dataFile    string
	backendName string
	modelName   string
	outputPath  string
	resultsDir  string
	creds       *config.File
	logger      *slog.Logger
}

// runAnalysis loads the data, runs the backend, and writes the report.
func runAnalysis(ctx context.Context, params analysisParams) error {
	// Resolve the backend first so misconfiguration fails before any
	// data is loaded
	backend, err := analysis.NewBackend(params.backendName, params.modelName, params.creds)
	if err != nil {
		return err
	}

	if err := backend.CheckAvailability(ctx); err != nil {
		return err
	}

	if backend.Name() == "gemini" {
		fmt.Fprintln(os.Stderr, "Note: the gemini backend uploads collected profile data to the Google Gemini API.")
	}

	// Load the collected data
	data, dataSource, err := loadAnalysisData(ctx, params.subject, params.dataFile)
	if err != nil {
		return err
	}

	// Load and render the prompt template
	promptText, err := analysis.LoadPrompt(params.promptName)
	if err != nil {
		return fmt.Errorf("failed to load prompt %q: %w (see --list-prompts)", params.promptName, err)
	}

	prompt, err := analysis.RenderPrompt(promptText, params.subject, data)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}

	// Templates that never reference the collected data hand it to the
	// backend separately, so a bare instruction prompt still sees it.
	analyzeData := ""
	if !analysis.UsesData(promptText) {
		analyzeData = data
	}

	fmt.Printf("Analyzing %s with %s (%s)...\n", params.subject, backend.Name(), backend.Model())
	startTime := time.Now()

	output, err := backend.Analyze(ctx, prompt, analyzeData)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

	meta := analysis.Metadata{
		Subject:    params.subject,
		PromptName: params.promptName,
		Backend:    backend.Name(),
		Model:      backend.Model(),
		DataFile:   dataSource,
		Timestamp:  time.Now(),
	}
	formatted := analysis.FormatReport(meta, output)

	// Write the analysis report
	path, err := writeAnalysisReport(params, formatted)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Printf("Analysis saved: %s\n", path)
	}

	// Record the analysis in the history database (best effort)
	saveAnalysisRecord(ctx, meta, output, params.logger)

	return nil
}

// loadAnalysisData returns the JSON data to analyze and a description of
// where it came from. If dataFile is empty, the latest collection run for
// the subject is loaded from the history database.
func loadAnalysisData(ctx context.Context, subject, dataFile string) (string, string, error) {
	if dataFile != "" {
		content, err := os.ReadFile(dataFile) //nolint:gosec // User-provided data path is intentional
		if err != nil {
			return "", "", fmt.Errorf("failed to read data file: %w", err)
		}
		return string(content), dataFile, nil
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return "", "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	run, err := db.GetLatestRun(ctx, subject)
	if err != nil {
		return "", "", fmt.Errorf("failed to load latest run: %w", err)
	}
	if run == nil {
		return "", "", fmt.Errorf("no collection runs found for %s (run 'mosaic collect %s' first)", subject, subject)
	}

	encoded, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode run: %w", err)
	}

	return string(encoded), fmt.Sprintf("database (latest run, %s)", run.DateCollected.Format("2006-01-02 15:04")), nil
}

// writeAnalysisReport writes the formatted analysis to the requested
// output path, or to the results directory when no path is given.
// Returns the path written, or empty string for stdout.
func writeAnalysisReport(params analysisParams, formatted string) (string, error) {
	path := params.outputPath

	if path == "" {
		if params.resultsDir == "" {
			fmt.Print(formatted)
			return "", nil
		}
		if err := os.MkdirAll(params.resultsDir, 0750); err != nil {
			return "", fmt.Errorf("failed to create results directory: %w", err)
		}
		filename := fmt.Sprintf("%s_analysis_%s.md",
			sanitizeFilename(params.subject),
			time.Now().Format("20060102_150405"),
		)
		path = filepath.Join(params.resultsDir, filename)
	} else {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return "", fmt.Errorf("failed to create output directory: %w", err)
			}
		}
	}

	if err := os.WriteFile(path, []byte(formatted), 0600); err != nil {
		return "", fmt.Errorf("failed to write analysis report: %w", err)
	}

	// Echo the analysis to stdout as well
	fmt.Print(formatted)
	fmt.Println()

	return path, nil
}

// saveAnalysisRecord records a completed analysis in the history database.
// Analysis output is useful to keep alongside collection runs, but failure
// to record it should not fail the command.
func saveAnalysisRecord(ctx context.Context, meta analysis.Metadata, output string, logger *slog.Logger) {
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open database for analysis record", "error", err)
		return
	}
	defer db.Close()

	record := &database.AnalysisRecord{
		Subject:    meta.Subject,
		PromptName: meta.PromptName,
		Backend:    meta.Backend,
		Model:      meta.Model,
		Output:     output,
		Timestamp:  meta.Timestamp,
	}
	if err := db.SaveAnalysis(ctx, record); err != nil {
		logger.Warn("failed to save analysis record", "error", err)
	}
}

// loadCredentials loads the config file using the same resolution rules
// as the collect command.
func loadCredentials(configPath string) (*config.File, error) {
	explicit := configPath != ""
	found := config.FindConfigFile(configPath)

	if found != "" {
		creds, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		return creds, nil
	}
	if explicit {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	return &config.File{
		Platforms: make(map[string]config.SubjectConfig),
	}, nil
}

// printPromptList lists the available prompt templates.
func printPromptList() error {
	prompts, err := analysis.ListPrompts()
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	fmt.Printf("Available prompts (%d):\n\n", len(prompts))
	for _, name := range prompts {
		fmt.Printf("  • %s\n", name)
	}
	fmt.Printf("\nUser prompts can be placed in %s\n", analysis.UserPromptDir())

	return nil
}

// printOllamaModels lists the models installed on the Ollama server.
func printOllamaModels(ctx context.Context, creds *config.File) error {
	backend := analysis.NewOllamaBackend(creds.OllamaURLOrDefault(), "")

	models, err := backend.ListModels(ctx)
	if err != nil {
		return err
	}

	if len(models) == 0 {
		fmt.Println("No models installed on the Ollama server.")
		fmt.Println("\nUse 'ollama pull <model>' to install one.")
		return nil
	}

	fmt.Printf("Installed Ollama models (%d):\n\n", len(models))
	for _, name := range models {
		fmt.Printf("  • %s\n", name)
	}

	return nil
}
