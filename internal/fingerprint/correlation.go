package fingerprint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/or1un/mosaic/internal/model"
)

// platformDomains maps well-known profile hosting domains to the platform
// they belong to. Used to spot bios that link one presence to another.
var platformDomains = map[string]model.Platform{
	"github.com":        model.PlatformGitHub,
	"stackoverflow.com": model.PlatformStackOverflow,
	"youtube.com":       model.PlatformYouTube,
	"bsky.app":          model.PlatformBluesky,
	"reddit.com":        model.PlatformReddit,
	"medium.com":        model.PlatformMedium,
	"t.me":              model.PlatformTelegram,
	"mastodon.social":   model.PlatformMastodon,
}

// CorrelationAnalyzer flags signals that tie platform presences together:
// handle reuse, explicit cross-platform links, and the same apparent real
// name appearing on several platforms.
type CorrelationAnalyzer struct{}

// NewCorrelationAnalyzer creates a new CorrelationAnalyzer.
func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{}
}

// Name returns the analyzer name.
func (a *CorrelationAnalyzer) Name() string {
	return "correlation"
}

// Analyze inspects the report for cross-platform correlations.
func (a *CorrelationAnalyzer) Analyze(report *model.ProfileReport) []model.Signal {
	signals := make([]model.Signal, 0)
	signals = append(signals, a.handleReuse(report)...)
	signals = append(signals, a.realNameCorrelation(report)...)
	signals = append(signals, a.crossPlatformLinks(report)...)
	return signals
}

// handleReuse flags a normalized handle that appears on two or more
// platforms. Visually equal handles compare equal after normalization.
func (a *CorrelationAnalyzer) handleReuse(report *model.ProfileReport) []model.Signal {
	byHandle := make(map[string][]string)
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil || profile.Handle == "" {
			continue
		}
		// Federated handles like user@instance and user.bsky.social
		// reduce to their local part for comparison. A leading '@'
		// sigil (YouTube custom URLs) is not part of the handle.
		local := strings.TrimPrefix(profile.Handle, "@")
		if at := strings.IndexByte(local, '@'); at > 0 {
			local = local[:at]
		}
		if dot := strings.IndexByte(local, '.'); dot > 0 {
			local = local[:dot]
		}
		normalized := NormalizeHandle(local)
		if normalized == "" {
			continue
		}
		byHandle[normalized] = append(byHandle[normalized], platform.String())
	}

	signals := make([]model.Signal, 0)
	for handle, platforms := range byHandle {
		if len(platforms) < 2 {
			continue
		}
		sort.Strings(platforms)
		signals = append(signals, model.NewSignal(
			"handle_reuse",
			"Handle Reused Across Platforms",
			fmt.Sprintf("The handle %q is used on %d platforms.", handle, len(platforms)),
			handle,
			strings.Join(platforms, ", "),
		))
	}
	return signals
}

// realNameCorrelation flags the same apparent real name on two or more
// platforms. This is the strongest correlation vector we derive.
func (a *CorrelationAnalyzer) realNameCorrelation(report *model.ProfileReport) []model.Signal {
	byName := make(map[string][]string)
	displayed := make(map[string]string)
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil || !looksLikeRealName(profile.DisplayName, profile.Handle) {
			continue
		}
		normalized := NormalizeHandle(strings.ReplaceAll(profile.DisplayName, " ", ""))
		byName[normalized] = append(byName[normalized], platform.String())
		displayed[normalized] = profile.DisplayName
	}

	signals := make([]model.Signal, 0)
	for name, platforms := range byName {
		if len(platforms) < 2 {
			continue
		}
		sort.Strings(platforms)
		signals = append(signals, model.NewSignal(
			"identity_correlation",
			"Real Name Correlated Across Platforms",
			fmt.Sprintf("The name %q appears on %d platforms.", displayed[name], len(platforms)),
			displayed[name],
			strings.Join(platforms, ", "),
		))
	}
	return signals
}

// crossPlatformLinks flags bios and website fields that point at another
// platform's profile URL.
func (a *CorrelationAnalyzer) crossPlatformLinks(report *model.ProfileReport) []model.Signal {
	signals := make([]model.Signal, 0)
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}

		haystack := strings.ToLower(profile.Bio + " " + profile.Website)
		for _, field := range profile.Metadata {
			haystack += " " + strings.ToLower(field)
		}

		for domain, target := range platformDomains {
			if target == platform {
				continue
			}
			if strings.Contains(haystack, domain) {
				signals = append(signals, model.NewSignal(
					"cross_platform_link",
					"Cross-Platform Link in Profile",
					fmt.Sprintf("The %s profile links to %s.", platform, target),
					domain,
					platform.String(),
				))
			}
		}
	}
	return signals
}

// isPlatformURL reports whether a URL points at one of the collected
// platforms rather than an independent personal site.
func isPlatformURL(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for domain := range platformDomains {
		if strings.Contains(lowered, domain) {
			return true
		}
	}
	return false
}
