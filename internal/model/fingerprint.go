package model

import "time"

// Fingerprint is the summarized, human-readable view of a collection run.
// It aggregates exposure signals and behavioral dimension scores derived
// from the collected profiles.
//
// Design decision: We keep the fingerprint separate from the raw report
// because:
// 1. It provides a consistent, curated view of the most important signals
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates derived analysis from collected data
type Fingerprint struct {
	// Subject is the username the collection was started with.
	Subject string `json:"subject"`

	// DateCollected is when the collection was performed.
	DateCollected time.Time `json:"date_collected"`

	// === Severity Summary ===

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

	// === Platforms ===

	// PlatformsFound lists platforms where a profile was located.
	PlatformsFound []string `json:"platforms_found,omitempty"`

	// ActivityByPlatform maps platform names to collected item counts.
	ActivityByPlatform map[string]int `json:"activity_by_platform,omitempty"`

	// === Dimension Scores ===

	// Scores contains the behavioral dimension scores.
	Scores DimensionScores `json:"scores"`

	// === Signals ===

	// Signals contains all derived exposure signals.
	Signals []Signal `json:"signals,omitempty"`

	// TimedOut indicates if the collection was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the collection failed.
	Error string `json:"error,omitempty"`
}

// DimensionScores holds the behavioral dimension scores, each on a
// 0 to 100 scale.
type DimensionScores struct {
	// Technical reflects code and Q&A output: repositories, answers,
	// accepted-answer ratio, language spread.
	Technical int `json:"technical"`

	// Social reflects conversational activity: posting cadence, replies,
	// platform spread.
	Social int `json:"social"`

	// Influence reflects audience reach: followers, stars, karma, views.
	Influence int `json:"influence"`
}

// Signal represents a single exposure signal in the fingerprint.
type Signal struct {
	// Type is the signal type identifier.
	// This maps to signalInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the exposure level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the signal.
	Title string `json:"title"`

	// Description provides more detail about the signal.
	Description string `json:"description,omitempty"`

	// Impact explains the exposure implications of this signal.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this signal.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (name, handle, URL, etc.).
	Value string `json:"value,omitempty"`

	// Location is the platform where the signal was discovered.
	Location string `json:"location,omitempty"`
}

// NewFingerprint creates an empty fingerprint for a subject.
func NewFingerprint(subject string, dateCollected time.Time) *Fingerprint {
	return &Fingerprint{
		Subject:            subject,
		DateCollected:      dateCollected,
		ActivityByPlatform: make(map[string]int),
	}
}

// NewSignal builds a signal of the given type, filling severity, impact
// and recommendation from the central mapping.
func NewSignal(signalType, title, description, value, location string) Signal {
	info := GetSignalInfo(signalType)
	return Signal{
		Type:           signalType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}

// AddSignal appends a signal and updates the severity counts.
// Duplicate signals (same type, value and location) are ignored.
func (f *Fingerprint) AddSignal(signal Signal) {
	for _, s := range f.Signals {
		if s.Type == signal.Type && s.Value == signal.Value && s.Location == signal.Location {
			return
		}
	}

	f.Signals = append(f.Signals, signal)

	switch signal.Severity {
	case SeverityCritical:
		f.CriticalCount++
	case SeverityHigh:
		f.HighCount++
	case SeverityMedium:
		f.MediumCount++
	case SeverityLow:
		f.LowCount++
	case SeverityInfo:
		f.InfoCount++
	}
}

// TotalSignals returns the total number of signals.
func (f *Fingerprint) TotalSignals() int {
	return len(f.Signals)
}

// HasSignals returns true if there are any signals.
func (f *Fingerprint) HasSignals() bool {
	return len(f.Signals) > 0
}

// SignalsBySeverity returns signals filtered by severity.
func (f *Fingerprint) SignalsBySeverity(severity Severity) []Signal {
	var result []Signal
	for _, s := range f.Signals {
		if s.Severity == severity {
			result = append(result, s)
		}
	}
	return result
}
