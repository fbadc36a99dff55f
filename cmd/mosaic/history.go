package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/or1un/mosaic/internal/config"
	"github.com/or1un/mosaic/internal/database"
	"github.com/or1un/mosaic/internal/model"
	"github.com/spf13/cobra"
)

// Constants for exposure direction and summary messages.
const (
	exposureDirectionWorsened  = "worsened"
	exposureDirectionImproved  = "improved"
	exposureDirectionUnchanged = "unchanged"
	noSignalsMessage           = "No signals"
)

// NewHistoryCmd creates the history command.
// This command compares collection results with historical data stored in
// the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [username]",
		Short: "Compare collection results with historical data",
		Long: `History displays differences between the current and previous collection runs.

This command retrieves historical collection data from the database and shows:
- New exposure signals that appeared since the last run
- Resolved signals that are no longer present
- Platforms gained or lost
- Follower count changes per platform

The comparison requires at least two runs in the database for the specified
username. Use 'mosaic collect' to perform runs and save results.

Examples:
  # Compare latest two runs for a subject
  mosaic history octocat

  # List all collection history for a subject
  mosaic history --list octocat

  # Compare with a specific historical run by ID
  mosaic history --with-run-id 5 octocat

  # Compare runs since a specific date
  mosaic history --since "2026-01-01" octocat

  # Output comparison in JSON format
  mosaic history --json octocat

  # List all subjects in the database
  mosaic history --list-subjects`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List collection history for the specified username")
	cmd.Flags().BoolP("list-subjects", "L", false,
		"List all subjects in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-subjects flag first (requires database but no subject)
	listSubjects, err := cmd.Flags().GetBool("list-subjects")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-subjects)
	// This prevents database lock issues when validation fails
	var subject string
	if !listSubjects {
		if len(args) == 0 {
			return errors.New("username is required (use --list-subjects to see available subjects)")
		}
		subject = args[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-subjects flag
	if listSubjects {
		return listTrackedSubjects(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, subject)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, subject, withRunID, sinceDate, jsonOutput)
}

// listTrackedSubjects lists all subjects that have collection records in
// the database.
func listTrackedSubjects(ctx context.Context, db *database.HistoryDB) error {
	subjects, err := db.ListSubjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	if len(subjects) == 0 {
		fmt.Println("No subjects found in the database.")
		fmt.Println("\nUse 'mosaic collect <username>' to collect a subject.")
		return nil
	}

	fmt.Printf("Subjects (%d):\n\n", len(subjects))
	for _, s := range subjects {
		fmt.Printf("  • %s\n", s)
	}
	fmt.Println("\nUse 'mosaic history --list <username>' to see collection history for a subject.")

	return nil
}

// listRunHistory lists all collection records for a specific subject.
func listRunHistory(ctx context.Context, db *database.HistoryDB, subject string) error {
	runs, err := db.GetRunHistoryWithMetadata(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get collection history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No collection history found for %s\n", subject)
		fmt.Println("\nUse 'mosaic collect' to collect this subject.")
		return nil
	}

	fmt.Printf("Collection history for %s (%d runs):\n\n", subject, len(runs))
	fmt.Printf("  %-6s  %-20s  %-20s  %s\n", "ID", "Date", "Signal Summary", "Platforms")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, meta := range runs {
		fmt.Printf("  %-6d  %-20s  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatSignalSummary(meta.SeveritySummary),
			strings.Join(meta.Platforms, ","),
		)
	}

	fmt.Println("\nUse 'mosaic history <username>' to compare the latest two runs.")
	fmt.Println("Use 'mosaic history --with-run-id <id> <username>' to compare with a specific run.")

	return nil
}

// formatSignalSummary formats the severity summary map into a
// human-readable string.
func formatSignalSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noSignalsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between collection runs.
func runComparison(ctx context.Context, db *database.HistoryDB, subject string, withRunID int64, sinceDate string, jsonOutput bool) error {
	// Get the collection history
	runs, err := db.GetRunHistory(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to get collection history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no collection history found for %s", subject)
	}

	if len(runs) < 2 && withRunID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// Determine which runs to compare
	var currentRun, previousRun *model.ProfileReport

	// Latest run is always the current one
	currentRun = runs[0]

	if withRunID > 0 {
		// Find the run with the specified ID
		previousRun, err = db.GetRunByID(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if previousRun == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		// Validate that the run ID belongs to the same subject
		if previousRun.Subject != subject {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previousRun.Subject, subject)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) run at or after the
		// specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Runs are sorted by timestamp DESC (newest first), so iterate in
		// reverse to find the first (oldest) run at or after the date
		for i := len(runs) - 1; i >= 0; i-- {
			r := runs[i]
			if r.DateCollected.After(parsedDate) || r.DateCollected.Equal(parsedDate) {
				previousRun = r
				break
			}
		}
		if previousRun == nil {
			return fmt.Errorf("no runs found since %s", sinceDate)
		}
		// If only one run matches and it's the current run, we can't compare
		if previousRun == currentRun {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous run
		previousRun = runs[1]
	}

	// Generate comparison result
	comparison := compareRuns(previousRun, currentRun)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two collection runs.
type ComparisonResult struct {
	// Subject is the collected username.
	Subject string `json:"subject"`

	// PreviousRun contains metadata about the previous run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains metadata about the current run.
	CurrentRun RunSummary `json:"current_run"`

	// NewSignals contains signals that are new in the current run.
	NewSignals []model.Signal `json:"new_signals,omitempty"`

	// ResolvedSignals contains signals that were in the previous run but
	// not in the current one.
	ResolvedSignals []model.Signal `json:"resolved_signals,omitempty"`

	// UnchangedCount is the number of signals that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// PlatformsGained lists platforms found in the current run only.
	PlatformsGained []string `json:"platforms_gained,omitempty"`

	// PlatformsLost lists platforms found in the previous run only.
	PlatformsLost []string `json:"platforms_lost,omitempty"`

	// FollowerDeltas maps platform names to follower count changes.
	FollowerDeltas map[string]int `json:"follower_deltas,omitempty"`

	// ExposureChange describes the overall change in exposure level.
	ExposureChange ExposureChange `json:"exposure_change"`
}

// RunSummary contains metadata about a run for comparison display.
type RunSummary struct {
	// DateCollected is when the run was performed.
	DateCollected time.Time `json:"date_collected"`

	// TotalSignals is the total number of signals in this run.
	TotalSignals int `json:"total_signals"`

	// CriticalCount is the number of critical signals.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity signals.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity signals.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity signals.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational signals.
	InfoCount int `json:"info_count"`

	// Platforms lists the platforms where a profile was found.
	Platforms []string `json:"platforms,omitempty"`
}

// ExposureChange describes the change in exposure level between runs.
type ExposureChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical signal count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity signal count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity signal count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity signal count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational signal count.
	InfoDelta int `json:"info_delta"`
}

// compareRuns compares two collection runs and generates a comparison result.
func compareRuns(previous, current *model.ProfileReport) *ComparisonResult {
	result := &ComparisonResult{
		Subject: current.Subject,
	}

	result.PreviousRun = summarizeRun(previous)
	result.CurrentRun = summarizeRun(current)

	// Build signal maps for comparison
	previousSignals := make(map[string]model.Signal)
	currentSignals := make(map[string]model.Signal)

	if previous.Fingerprint != nil {
		for _, s := range previous.Fingerprint.Signals {
			previousSignals[signalKey(s)] = s
		}
	}
	if current.Fingerprint != nil {
		for _, s := range current.Fingerprint.Signals {
			currentSignals[signalKey(s)] = s
		}
	}

	// Find new signals (in current but not in previous)
	for key, signal := range currentSignals {
		if _, exists := previousSignals[key]; !exists {
			result.NewSignals = append(result.NewSignals, signal)
		}
	}

	// Find resolved signals (in previous but not in current)
	for key, signal := range previousSignals {
		if _, exists := currentSignals[key]; !exists {
			result.ResolvedSignals = append(result.ResolvedSignals, signal)
		} else {
			result.UnchangedCount++
		}
	}

	// Compare platform presence
	previousPlatforms := make(map[string]bool)
	for _, p := range result.PreviousRun.Platforms {
		previousPlatforms[p] = true
	}
	currentPlatforms := make(map[string]bool)
	for _, p := range result.CurrentRun.Platforms {
		currentPlatforms[p] = true
	}
	for _, p := range result.CurrentRun.Platforms {
		if !previousPlatforms[p] {
			result.PlatformsGained = append(result.PlatformsGained, p)
		}
	}
	for _, p := range result.PreviousRun.Platforms {
		if !currentPlatforms[p] {
			result.PlatformsLost = append(result.PlatformsLost, p)
		}
	}

	// Compare follower counts per platform present in both runs
	result.FollowerDeltas = followerDeltas(previous, current)

	// Calculate exposure change
	result.ExposureChange = calculateExposureChange(result.PreviousRun, result.CurrentRun)

	return result
}

// summarizeRun extracts comparison metadata from a run.
func summarizeRun(run *model.ProfileReport) RunSummary {
	summary := RunSummary{DateCollected: run.DateCollected}

	for _, p := range run.PlatformsFound() {
		summary.Platforms = append(summary.Platforms, p.String())
	}

	if run.Fingerprint != nil {
		summary.TotalSignals = run.Fingerprint.TotalSignals()
		summary.CriticalCount = run.Fingerprint.CriticalCount
		summary.HighCount = run.Fingerprint.HighCount
		summary.MediumCount = run.Fingerprint.MediumCount
		summary.LowCount = run.Fingerprint.LowCount
		summary.InfoCount = run.Fingerprint.InfoCount
	}

	return summary
}

// signalKey generates a unique key for a signal for comparison purposes.
func signalKey(s model.Signal) string {
	return s.Type + "|" + s.Value + "|" + s.Location
}

// followerDeltas computes follower count changes for platforms present
// in both runs.
func followerDeltas(previous, current *model.ProfileReport) map[string]int {
	deltas := make(map[string]int)
	for platform, currentProfile := range current.Profiles {
		previousProfile := previous.Profile(platform)
		if previousProfile == nil {
			continue
		}
		if delta := currentProfile.Followers - previousProfile.Followers; delta != 0 {
			deltas[platform.String()] = delta
		}
	}
	if len(deltas) == 0 {
		return nil
	}
	return deltas
}

// calculateExposureChange calculates the change in exposure between runs.
func calculateExposureChange(previous, current RunSummary) ExposureChange {
	change := ExposureChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		change.Direction = exposureDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = exposureDirectionWorsened
	} else {
		change.Direction = exposureDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.Subject)
	fmt.Println(strings.Repeat("=", 60))

	// Exposure change summary
	fmt.Printf("\nExposure Status: %s\n", formatExposureDirection(result.ExposureChange.Direction))

	// Run dates
	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.DateCollected.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.DateCollected.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nSignal Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousRun.CriticalCount, result.CurrentRun.CriticalCount,
		formatDelta(result.ExposureChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousRun.HighCount, result.CurrentRun.HighCount,
		formatDelta(result.ExposureChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousRun.MediumCount, result.CurrentRun.MediumCount,
		formatDelta(result.ExposureChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousRun.LowCount, result.CurrentRun.LowCount,
		formatDelta(result.ExposureChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousRun.InfoCount, result.CurrentRun.InfoCount,
		formatDelta(result.ExposureChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousRun.TotalSignals, result.CurrentRun.TotalSignals,
		formatDelta(result.CurrentRun.TotalSignals-result.PreviousRun.TotalSignals))

	// Platform presence changes
	if len(result.PlatformsGained) > 0 {
		fmt.Printf("\nPlatforms gained: %s\n", strings.Join(result.PlatformsGained, ", "))
	}
	if len(result.PlatformsLost) > 0 {
		fmt.Printf("Platforms lost:   %s\n", strings.Join(result.PlatformsLost, ", "))
	}

	// Follower changes
	if len(result.FollowerDeltas) > 0 {
		fmt.Println("\nFollower changes:")
		for platform, delta := range result.FollowerDeltas {
			fmt.Printf("  %-14s %s\n", platform, formatDelta(delta))
		}
	}

	// New signals
	if len(result.NewSignals) > 0 {
		fmt.Printf("\nNew Signals (%d):\n", len(result.NewSignals))
		for _, s := range result.NewSignals {
			fmt.Printf("  [+] [%s] %s: %s\n", s.SeverityText, s.Title, s.Value)
			if s.Location != "" {
				fmt.Printf("      Platform: %s\n", s.Location)
			}
		}
	}

	// Resolved signals
	if len(result.ResolvedSignals) > 0 {
		fmt.Printf("\nResolved Signals (%d):\n", len(result.ResolvedSignals))
		for _, s := range result.ResolvedSignals {
			fmt.Printf("  [-] [%s] %s: %s\n", s.SeverityText, s.Title, s.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d signals\n", result.UnchangedCount)
	}

	return nil
}

// formatExposureDirection formats the exposure change direction for display.
func formatExposureDirection(direction string) string {
	switch direction {
	case exposureDirectionImproved:
		return "IMPROVED (exposure decreased)"
	case exposureDirectionWorsened:
		return "WORSENED (exposure increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
