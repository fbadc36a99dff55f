package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/or1un/mosaic/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and severity-grouped signals.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no signals are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format, including the
// per-platform profile table.
func (w *SimpleWriter) Write(report *model.ProfileReport) (int, error) {
	fp := fingerprintOf(report)

	var sb strings.Builder
	w.writeHeader(&sb, fp)
	w.writePlatforms(&sb, report)
	w.writeScores(&sb, fp)
	w.writeSummary(&sb, fp)
	w.writeSignals(&sb, fp)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteFingerprint outputs only the fingerprint in human-readable format.
func (w *SimpleWriter) WriteFingerprint(fp *model.Fingerprint) (int, error) {
	var sb strings.Builder
	w.writeHeader(&sb, fp)
	w.writeScores(&sb, fp)
	w.writeSummary(&sb, fp)
	w.writeSignals(&sb, fp)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with collection information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, fp *model.Fingerprint) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          MOSAIC REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Subject:         %s\n", fp.Subject))
	sb.WriteString(fmt.Sprintf("Collection Date: %s\n", fp.DateCollected.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Platforms Found: %d\n", len(fp.PlatformsFound)))

	switch {
	case fp.TimedOut:
		sb.WriteString("Status:          TIMED OUT (partial results)\n")
	case fp.Error != "":
		sb.WriteString(fmt.Sprintf("Status:          ERROR - %s\n", fp.Error))
	default:
		sb.WriteString("Status:          Complete\n")
	}

	sb.WriteString("\n")
}

// writePlatforms writes the per-platform profile table.
func (w *SimpleWriter) writePlatforms(sb *strings.Builder, report *model.ProfileReport) {
	platforms := report.PlatformsFound()
	if len(platforms) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COLLECTED PROFILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(platforms) == 0 {
		sb.WriteString("  No profiles found\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  %-14s %-22s %10s %8s\n", "PLATFORM", "HANDLE", "FOLLOWERS", "ITEMS"))
	for _, platform := range platforms {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-14s %-22s %10d %8d\n",
			platform.String(),
			profile.Handle,
			profile.Followers,
			len(profile.Items),
		))
	}
	sb.WriteString("\n")
}

// writeScores writes the behavioral dimension scores.
func (w *SimpleWriter) writeScores(sb *strings.Builder, fp *model.Fingerprint) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DIMENSION SCORES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Technical: %3d/100  %s\n", fp.Scores.Technical, scoreBar(fp.Scores.Technical)))
	sb.WriteString(fmt.Sprintf("  Social:    %3d/100  %s\n", fp.Scores.Social, scoreBar(fp.Scores.Social)))
	sb.WriteString(fmt.Sprintf("  Influence: %3d/100  %s\n", fp.Scores.Influence, scoreBar(fp.Scores.Influence)))
	sb.WriteString("\n")
}

// scoreBar renders a 20-character bar for a 0..100 score.
func scoreBar(score int) string {
	filled := score / 5
	if filled > 20 {
		filled = 20
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, fp *model.Fingerprint) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", fp.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", fp.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", fp.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", fp.LowCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", fp.InfoCount))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d signals\n", fp.TotalSignals()))
	sb.WriteString("\n")
}

// writeSignals writes all signals grouped by severity.
func (w *SimpleWriter) writeSignals(sb *strings.Builder, fp *model.Fingerprint) {
	if !fp.HasSignals() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXPOSURE SIGNALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	// Write signals in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		signals := fp.SignalsBySeverity(severity)
		if len(signals) == 0 && !w.showEmpty {
			continue
		}

		w.writeSignalsForSeverity(sb, severity, signals)
	}
}

// writeSignalsForSeverity writes signals of a specific severity level.
func (w *SimpleWriter) writeSignalsForSeverity(sb *strings.Builder, severity model.Severity, signals []model.Signal) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(signals) == 0 {
		sb.WriteString("  No signals\n\n")
		return
	}

	for _, signal := range signals {
		sb.WriteString(fmt.Sprintf("  * %s\n", signal.Title))
		if signal.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", signal.Value))
		}
		if signal.Location != "" {
			sb.WriteString(fmt.Sprintf("    Platform: %s\n", signal.Location))
		}
		if w.verbose && signal.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", signal.Description))
		}
		if w.verbose && signal.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", signal.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by mosaic\n")
	sb.WriteString("https://github.com/or1un/mosaic\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
