package model

// Severity represents the exposure level of a fingerprint signal.
// This allows categorizing signals by how much identifying information
// they reveal about the subject.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational signals with no direct exposure.
	// Examples: high public engagement, long-inactive accounts.
	// These may still be useful for behavioral analysis but don't expose identity.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor exposure with limited impact.
	// Examples: pseudonymous presence on a privacy-leaning platform.
	// These could potentially be used for correlation but require additional data.
	SeverityLow

	// SeverityMedium indicates moderate exposure that warrants attention.
	// Examples: disclosed location, bio links to other platforms.
	// These provide identity clues that could be combined with other data.
	SeverityMedium

	// SeverityHigh indicates serious exposure that significantly narrows identity.
	// Examples: personal website in a profile, the same handle reused everywhere.
	// These typically let an observer pivot from one platform to the rest.
	SeverityHigh

	// SeverityCritical indicates exposure that likely identifies the subject.
	// Examples: real name plus employer disclosed together on public profiles.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// SignalInfo contains metadata about a signal type including severity,
// impact description, and remediation recommendation.
type SignalInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// signalInfoMapping maps signal types to their metadata.
// This centralized mapping ensures consistent exposure assessment across
// the application.
//
// Design decision: We use a map rather than embedding severity in each
// signal type because:
// 1. It allows updating exposure assessments without modifying type definitions
// 2. It provides a single source of truth for severity levels
// 3. It makes it easy to generate severity documentation
var signalInfoMapping = map[string]SignalInfo{
	// CRITICAL - Subject is likely identifiable
	"identity_correlation": {
		Severity:       SeverityCritical,
		Impact:         "The same real name is disclosed on multiple platforms, tying the pseudonym to a single identifiable person.",
		Recommendation: "Remove real names from public profiles or separate identities per platform.",
	},

	// HIGH - Strong pivot from one platform to the rest
	"real_name_disclosed": {
		Severity:       SeverityHigh,
		Impact:         "A profile discloses what appears to be a real name, directly narrowing the subject's identity.",
		Recommendation: "Use a display name that does not match legal identity on pseudonymous accounts.",
	},
	"personal_website": {
		Severity:       SeverityHigh,
		Impact:         "A personal website links the profile to domain registration records and hosted content.",
		Recommendation: "Check WHOIS privacy on the linked domain and what the site itself discloses.",
	},
	"employer_disclosed": {
		Severity:       SeverityHigh,
		Impact:         "Employer information combined with other profile data can identify the subject within a small group.",
		Recommendation: "Remove employer details from profiles that should stay pseudonymous.",
	},
	"handle_reuse": {
		Severity:       SeverityHigh,
		Impact:         "The same handle is used across platforms, letting an observer aggregate activity from all of them.",
		Recommendation: "Use distinct handles per platform when compartmentalization matters.",
	},

	// MEDIUM - Identity clues that combine with other data
	"email_disclosed": {
		Severity:       SeverityMedium,
		Impact:         "A public email address enables correlation with breaches, mailing lists, and commit history.",
		Recommendation: "Use a platform-provided noreply address or a dedicated alias.",
	},
	"location_disclosed": {
		Severity:       SeverityMedium,
		Impact:         "A disclosed location narrows the subject geographically and can confirm other clues.",
		Recommendation: "Remove or generalize the location field on public profiles.",
	},
	"cross_platform_link": {
		Severity:       SeverityMedium,
		Impact:         "A profile links to another platform, explicitly tying the two presences together.",
		Recommendation: "Audit bio links; remove those that bridge identities meant to stay separate.",
	},

	// INFO - Behavioral observations, no direct exposure
	"high_engagement": {
		Severity:       SeverityInfo,
		Impact:         "The account has high public engagement, producing a large behavioral surface to analyze.",
		Recommendation: "No action needed; noted for behavioral analysis context.",
	},
	"stale_account": {
		Severity:       SeverityInfo,
		Impact:         "The account has been inactive for a long period; data may describe past behavior only.",
		Recommendation: "Treat collected activity as historical when interpreting results.",
	},
}

// GetSeverity returns the severity level for a signal type.
// Returns SeverityInfo if the signal type is not in the mapping.
func GetSeverity(signalType string) Severity {
	if info, ok := signalInfoMapping[signalType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetSignalInfo returns the full signal information for a signal type.
// Returns a default SignalInfo with SeverityInfo if the type is not in the mapping.
func GetSignalInfo(signalType string) SignalInfo {
	if info, ok := signalInfoMapping[signalType]; ok {
		return info
	}
	return SignalInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown signal type. Review manually.",
		Recommendation: "Investigate the signal and assess exposure.",
	}
}
