package fingerprint

import (
	"github.com/or1un/mosaic/internal/model"
)

// SignalAnalyzer defines the interface for individual analyzers.
// Each analyzer focuses on a specific class of exposure signal.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new analyzers
//  2. Enables testing with mock analyzers
//  3. Supports different implementations for the same signal class
type SignalAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Analyze inspects the report and returns the signals it derives.
	Analyze(report *model.ProfileReport) []model.Signal
}

// Analyzer coordinates exposure analysis across multiple analyzers and
// assembles the final fingerprint: deduplicated signals, severity counts,
// per-platform activity, and dimension scores.
type Analyzer struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []SignalAnalyzer
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		analyzers: make([]SignalAnalyzer, 0),
	}

	a.Register(NewIdentityAnalyzer())
	a.Register(NewCorrelationAnalyzer())
	a.Register(NewActivityAnalyzer())

	return a
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer SignalAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Analyze runs all registered analyzers over the report and returns the
// assembled fingerprint. Duplicate signals are collapsed by the
// fingerprint's AddSignal.
func (a *Analyzer) Analyze(report *model.ProfileReport) *model.Fingerprint {
	fp := model.NewFingerprint(report.Subject, report.DateCollected)
	fp.TimedOut = report.TimedOut
	fp.Error = report.ErrorMessage

	for _, platform := range report.PlatformsFound() {
		fp.PlatformsFound = append(fp.PlatformsFound, platform.String())
		if profile := report.Profile(platform); profile != nil {
			fp.ActivityByPlatform[platform.String()] = len(profile.Items)
		}
	}

	for _, analyzer := range a.analyzers {
		for _, signal := range analyzer.Analyze(report) {
			fp.AddSignal(signal)
		}
	}

	fp.Scores = computeScores(report)

	return fp
}
