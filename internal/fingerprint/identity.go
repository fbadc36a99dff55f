package fingerprint

import (
	"fmt"
	"strings"

	"github.com/or1un/mosaic/internal/model"
)

// IdentityAnalyzer flags identity information disclosed on a single
// profile: email addresses, apparent real names, locations, personal
// websites, and employer details.
type IdentityAnalyzer struct{}

// NewIdentityAnalyzer creates a new IdentityAnalyzer.
func NewIdentityAnalyzer() *IdentityAnalyzer {
	return &IdentityAnalyzer{}
}

// Name returns the analyzer name.
func (a *IdentityAnalyzer) Name() string {
	return "identity"
}

// Analyze inspects each collected profile for identity disclosures.
func (a *IdentityAnalyzer) Analyze(report *model.ProfileReport) []model.Signal {
	signals := make([]model.Signal, 0)

	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		location := platform.String()

		if profile.Email != "" {
			signals = append(signals, model.NewSignal(
				"email_disclosed",
				"Email Address Disclosed",
				fmt.Sprintf("The %s profile publishes an email address.", platform),
				strings.ToLower(profile.Email),
				location,
			))
		}

		if looksLikeRealName(profile.DisplayName, profile.Handle) {
			signal := model.NewSignal(
				"real_name_disclosed",
				"Possible Real Name Disclosed",
				fmt.Sprintf("The %s display name looks like a legal name rather than a handle.", platform),
				profile.DisplayName,
				location,
			)
			// A legal name on a typically pseudonymous platform breaks
			// the pseudonym outright.
			if platform.DefaultSeverity() <= model.SeverityLow {
				signal.Severity = model.SeverityCritical
				signal.SeverityText = model.SeverityCritical.String()
			}
			signals = append(signals, signal)
		}

		if profile.Location != "" {
			signals = append(signals, model.NewSignal(
				"location_disclosed",
				"Location Disclosed",
				fmt.Sprintf("The %s profile publishes a location.", platform),
				profile.Location,
				location,
			))
		}

		if profile.Website != "" && !isPlatformURL(profile.Website) {
			signals = append(signals, model.NewSignal(
				"personal_website",
				"Personal Website Linked",
				fmt.Sprintf("The %s profile links to a personal website.", platform),
				profile.Website,
				location,
			))
		}

		if profile.Company != "" {
			signals = append(signals, model.NewSignal(
				"employer_disclosed",
				"Employer Disclosed",
				fmt.Sprintf("The %s profile names an employer or organization.", platform),
				profile.Company,
				location,
			))
		}
	}

	return signals
}

// looksLikeRealName reports whether a display name plausibly discloses a
// legal name: multiple capitalized words that are not just a restyled
// version of the handle.
func looksLikeRealName(displayName, handle string) bool {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return false
	}

	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	// "john doe" for handle "johndoe" is the handle, not a disclosure.
	collapsed := NormalizeHandle(strings.ReplaceAll(name, " ", ""))
	if collapsed == NormalizeHandle(handle) {
		return false
	}

	for _, word := range words {
		runes := []rune(word)
		if len(runes) < 2 {
			return false
		}
		if !isUpperLetter(runes[0]) {
			return false
		}
	}
	return true
}

func isUpperLetter(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= 'À' && r <= 'Þ'
}
