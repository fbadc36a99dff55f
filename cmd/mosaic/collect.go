package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/or1un/mosaic/internal/config"
	"github.com/or1un/mosaic/internal/database"
	"github.com/or1un/mosaic/internal/fingerprint"
	"github.com/or1un/mosaic/internal/log"
	"github.com/or1un/mosaic/internal/model"
	"github.com/or1un/mosaic/internal/pipeline"
	"github.com/or1un/mosaic/internal/report"
	"github.com/spf13/cobra"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect [username]",
		Short: "Collect public profile data for a username across platforms",
		Long: `Collect gathers public profile data for one or more usernames across
supported platforms and derives a cross-platform exposure fingerprint.

It queries public APIs and feeds for:
- Profile fields (display name, bio, location, website, employer)
- Public activity (posts, repositories, answers, videos, articles)
- Audience statistics (followers, reputation, views)

The fingerprint summarizes identity exposure: real name disclosure,
handle reuse, cross-platform links, and behavioral dimension scores.

Examples:
  # Collect a single username on all platforms
  mosaic collect octocat

  # Collect multiple usernames concurrently
  mosaic collect alice bob carol

  # Restrict to specific platforms
  mosaic collect --platforms github,reddit,mastodon octocat

  # Output JSON report
  mosaic collect --json octocat

  # Use a custom configuration file
  mosaic collect -c myconfig.yaml octocat

Configuration file (.mosaic.yaml) example:
  github:
    token: "ghp_..."
  mastodon:
    instance: "fosstodon.org"
  platforms:
    reddit:
      username: "different_handle"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCollectCmd,
	}

	// Platform selection flags
	cmd.Flags().StringP("platforms", "p", "",
		"Comma-separated list of platforms to collect (default: all)")

	// Collection behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Delay between paginated requests to one platform")
	cmd.Flags().IntP("max-items", "n", config.DefaultMaxItems,
		"Maximum number of items to collect per platform")

	// Batch collection flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent subject collections")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mosaic.yaml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("results-dir", config.DefaultResultsDir,
		"Directory for per-run JSON exports")

	return cmd
}

// runCollectCmd executes the collect command.
func runCollectCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential sanitization
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCollect(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	platformList, err := cmd.Flags().GetString("platforms")
	if err != nil {
		return nil, err
	}
	if platformList != "" {
		platforms, unknown := model.ParsePlatformList(platformList)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown platforms: %s (supported: %s)",
				strings.Join(unknown, ", "), platformNames())
		}
		for _, p := range platforms {
			cfg.Platforms = append(cfg.Platforms, p.String())
		}
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxItems, err = cmd.Flags().GetInt("max-items")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load credentials and overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Credentials, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Credentials = &config.File{
			Platforms: make(map[string]config.SubjectConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ResultsDir, err = cmd.Flags().GetString("results-dir")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (usernames)
	cfg.Subjects = args

	return cfg, nil
}

// platformNames returns the supported platform names as a comma-separated
// string for error messages.
func platformNames() string {
	names := make([]string, 0, len(model.AllPlatforms()))
	for _, p := range model.AllPlatforms() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

// selectedPlatforms resolves the platform selection from the config.
// An empty selection means all platforms.
func selectedPlatforms(cfg *config.Config) []model.Platform {
	if len(cfg.Platforms) == 0 {
		return model.AllPlatforms()
	}
	platforms := make([]model.Platform, 0, len(cfg.Platforms))
	for _, name := range cfg.Platforms {
		if p := model.ParsePlatform(name); p.IsValid() {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

// runCollect executes the collection.
func runCollect(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Subjects) == 0 {
		return errors.New("no subjects provided (specify one or more usernames as arguments)")
	}

	platforms := selectedPlatforms(cfg)

	logger.Info("starting collection",
		"subjects", cfg.Subjects,
		"platforms", len(platforms),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel collection if multiple subjects
	if len(cfg.Subjects) > 1 && cfg.BatchSize > 1 {
		return runBatchCollect(ctx, cfg, platforms, db, logger)
	}

	// Single subject or sequential collection
	return runSequentialCollect(ctx, cfg, platforms, db, logger)
}

// runSequentialCollect collects subjects one at a time.
func runSequentialCollect(ctx context.Context, cfg *config.Config, platforms []model.Platform, db *database.HistoryDB, logger *slog.Logger) error {
	for _, subject := range cfg.Subjects {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForRun(cfg, platforms, logger)

		profileReport := model.NewProfileReport(subject)

		fmt.Printf("Collecting %s (up to ~%s)...\n", subject, estimateDuration(platforms))
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, profileReport); err != nil {
			logger.Error("collection failed", "subject", subject, "error", err)
			fmt.Fprintf(os.Stderr, "Collection error for %s: %v\n", subject, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Collection completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, profileReport); err != nil {
			logger.Error("report failed", "subject", subject, "error", err)
		}

		// Export the raw JSON for analysis tooling
		if err := exportRunJSON(cfg, profileReport, logger); err != nil {
			logger.Error("failed to export run JSON", "subject", subject, "error", err)
		}

		// Save to database if enabled
		if err := saveRunReport(ctx, db, profileReport, logger); err != nil {
			logger.Error("failed to save collection run", "subject", subject, "error", err)
		}
	}

	return nil
}

// runBatchCollect collects multiple subjects concurrently using BatchProcessor.
func runBatchCollect(ctx context.Context, cfg *config.Config, platforms []model.Platform, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch collection of %d subjects (concurrency: %d)...\n\n",
		len(cfg.Subjects), cfg.BatchSize)

	startTime := time.Now()

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForRun(cfg, platforms, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Subjects, func(profileReport *model.ProfileReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Collection completed: %s\n", index+1, len(cfg.Subjects), profileReport.Subject)

		// Generate and output report
		if err := outputReport(cfg, profileReport); err != nil {
			logger.Error("report failed", "subject", profileReport.Subject, "error", err)
		}

		// Export the raw JSON for analysis tooling
		if err := exportRunJSON(cfg, profileReport, logger); err != nil {
			logger.Error("failed to export run JSON", "subject", profileReport.Subject, "error", err)
		}

		// Save to database if enabled
		if err := saveRunReport(ctx, db, profileReport, logger); err != nil {
			logger.Error("failed to save collection run", "subject", profileReport.Subject, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch collection completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// estimateDuration returns the rough worst-case collection time for a
// platform selection, for progress messages.
func estimateDuration(platforms []model.Platform) time.Duration {
	var total time.Duration
	for _, p := range platforms {
		total += p.EstimatedDuration()
	}
	return total.Round(time.Second)
}

// createPipelineForRun creates a pipeline with the given configuration.
func createPipelineForRun(cfg *config.Config, platforms []model.Platform, logger *slog.Logger) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
		pipeline.WithStepConcurrency(cfg.BatchSize),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTimeout(cfg.Timeout),
		pipeline.WithPipelineRequestDelay(cfg.RequestDelay),
		pipeline.WithPipelineMaxItems(cfg.MaxItems),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineUserAgent(cfg.UserAgent),
	}

	return pipeline.DefaultPipeline(platforms, cfg.Credentials, pipelineOpts, configOpts...)
}

// outputReport outputs the collection report in the requested format.
func outputReport(cfg *config.Config, profileReport *model.ProfileReport) error {
	// Derive the fingerprint if the pipeline didn't get that far
	if profileReport.Fingerprint == nil {
		profileReport.Fingerprint = fingerprint.NewAnalyzer().Analyze(profileReport)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may contain personal information that should only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(profileReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(profileReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(profileReport)
	return err
}

// exportRunJSON writes the full run report to the results directory.
// These files feed 'mosaic analyze' and external tooling.
func exportRunJSON(cfg *config.Config, profileReport *model.ProfileReport, logger *slog.Logger) error {
	if cfg.ResultsDir == "" {
		return nil
	}

	if err := os.MkdirAll(cfg.ResultsDir, 0750); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json",
		sanitizeFilename(profileReport.Subject),
		profileReport.DateCollected.Format("20060102_150405"),
	)
	path := filepath.Join(cfg.ResultsDir, filename)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	writer := report.NewFullJSONWriter(f, getVersion(), report.WithPrettyPrint())
	if _, err := writer.Write(profileReport); err != nil {
		return err
	}

	logger.Info("run exported", "path", path)
	return nil
}

// sanitizeFilename replaces path separators in a subject name so it is
// safe to use as a file name component.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return replacer.Replace(s)
}

// saveRunReport persists a collection run to the history database.
func saveRunReport(ctx context.Context, db *database.HistoryDB, profileReport *model.ProfileReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveRun(ctx, profileReport)
	if err != nil {
		return err
	}

	logger.Info("collection run saved",
		"subject", profileReport.Subject,
		"runID", id,
	)
	return nil
}
