package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/or1un/mosaic/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ProfileReport) (int, error) {
	fp := fingerprintOf(report)

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, fp)
	w.writePlatforms(md, report)
	w.writeScores(md, fp)
	w.writeSummary(md, fp)
	w.writeSignals(md, fp)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteFingerprint outputs only the fingerprint in Markdown format.
func (w *MarkdownWriter) WriteFingerprint(fp *model.Fingerprint) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, fp)
	w.writeScores(md, fp)
	w.writeSummary(md, fp)
	w.writeSignals(md, fp)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with collection information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, fp *model.Fingerprint) {
	md.H1("Mosaic Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", "`" + fp.Subject + "`"},
			{"Collection Date", fp.DateCollected.Format("2006-01-02 15:04:05 MST")},
			{"Platforms Found", strconv.Itoa(len(fp.PlatformsFound))},
			{"Status", w.getStatusText(fp)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on fingerprint state.
func (w *MarkdownWriter) getStatusText(fp *model.Fingerprint) string {
	if fp.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if fp.Error != "" {
		return "❌ Error - " + fp.Error
	}
	return "✅ Complete"
}

// writePlatforms writes the per-platform profile table.
func (w *MarkdownWriter) writePlatforms(md *markdown.Markdown, report *model.ProfileReport) {
	md.H2("Collected Profiles")
	md.PlainText("")

	platforms := report.PlatformsFound()
	if len(platforms) == 0 {
		md.PlainText("No profiles found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(platforms))
	for _, platform := range platforms {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		rows = append(rows, []string{
			platform.String(),
			"`" + profile.Handle + "`",
			strconv.Itoa(profile.Followers),
			strconv.Itoa(len(profile.Items)),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Handle", "Followers", "Items"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeScores writes the dimension scores table.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, fp *model.Fingerprint) {
	md.H2("Dimension Scores")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Dimension", "Score"},
		Rows: [][]string{
			{"Technical", strconv.Itoa(fp.Scores.Technical) + "/100"},
			{"Social", strconv.Itoa(fp.Scores.Social) + "/100"},
			{"Influence", strconv.Itoa(fp.Scores.Influence) + "/100"},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, fp *model.Fingerprint) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(fp.CriticalCount)},
			{"🟠 High", strconv.Itoa(fp.HighCount)},
			{"🟡 Medium", strconv.Itoa(fp.MediumCount)},
			{"🔵 Low", strconv.Itoa(fp.LowCount)},
			{"⚪ Info", strconv.Itoa(fp.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(fp.TotalSignals()) + "**"},
		},
	})
	md.PlainText("")

	// Activity distribution shows where the subject actually posts
	if len(fp.ActivityByPlatform) > 0 {
		w.writeActivityChart(md, fp)
	}

	w.writeAlert(md, fp)
}

// writeActivityChart writes a mermaid pie chart of per-platform activity.
func (w *MarkdownWriter) writeActivityChart(md *markdown.Markdown, fp *model.Fingerprint) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Activity by Platform"),
		piechart.WithShowData(true),
	)

	// Iterate in stable platform order
	for _, platform := range fp.PlatformsFound {
		if count := fp.ActivityByPlatform[platform]; count > 0 {
			chart.LabelAndIntValue(platform, uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, fp *model.Fingerprint) {
	switch {
	case fp.CriticalCount > 0:
		md.Cautionf(
			"Identity correlation detected! %d critical signal(s) tie this pseudonym to a person.",
			fp.CriticalCount,
		)
	case fp.HighCount > 0:
		md.Warningf(
			"High exposure signals detected. %d signal(s) provide strong cross-platform pivots.",
			fp.HighCount,
		)
	case fp.MediumCount > 0:
		md.Importantf(
			"Medium exposure signals found. %d signal(s) may combine into identification.",
			fp.MediumCount,
		)
	case fp.TotalSignals() > 0:
		md.Note("Only low severity and informational signals detected.")
	default:
		md.Tip("No significant exposure signals detected.")
	}
	md.PlainText("")
}

// writeSignals writes all signals grouped by severity.
func (w *MarkdownWriter) writeSignals(md *markdown.Markdown, fp *model.Fingerprint) {
	md.H2("Exposure Signals")
	md.PlainText("")

	if !fp.HasSignals() {
		md.PlainText("No exposure signals detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		signals := fp.SignalsBySeverity(sev.level)
		if len(signals) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeSignalsTable(md, signals)
	}
}

// writeSignalsTable writes a table of signals with details.
func (w *MarkdownWriter) writeSignalsTable(md *markdown.Markdown, signals []model.Signal) {
	headers := []string{"Title", "Value", "Platform", "Recommendation"}

	rows := make([][]string, len(signals))
	for i, s := range signals {
		value := s.Value
		if value == "" {
			value = "-"
		}
		location := s.Location
		if location == "" {
			location = "-"
		}
		rec := s.Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			s.Title,
			truncateString(value, 50),
			truncateString(location, 40),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add detailed descriptions for all signals
	for _, s := range signals {
		if s.Description != "" {
			md.Details(s.Title, s.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mosaic](https://github.com/or1un/mosaic)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
