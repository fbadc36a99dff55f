package fingerprint

import (
	"fmt"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// Activity thresholds.
const (
	// highEngagementFollowers marks an audience large enough to make the
	// account's public behavior widely observed.
	highEngagementFollowers = 1000

	// staleAfter marks an account as stale when its newest item is older
	// than this relative to collection time.
	staleAfter = 365 * 24 * time.Hour
)

// ActivityAnalyzer produces informational observations about account
// activity: high engagement and staleness. These carry no direct exposure
// but shape how the rest of the fingerprint should be read.
type ActivityAnalyzer struct{}

// NewActivityAnalyzer creates a new ActivityAnalyzer.
func NewActivityAnalyzer() *ActivityAnalyzer {
	return &ActivityAnalyzer{}
}

// Name returns the analyzer name.
func (a *ActivityAnalyzer) Name() string {
	return "activity"
}

// Analyze inspects each profile's audience size and recency.
func (a *ActivityAnalyzer) Analyze(report *model.ProfileReport) []model.Signal {
	signals := make([]model.Signal, 0)

	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}

		if profile.Followers >= highEngagementFollowers {
			signals = append(signals, model.NewSignal(
				"high_engagement",
				"High-Engagement Account",
				fmt.Sprintf("The %s account has %d followers.", platform, profile.Followers),
				fmt.Sprintf("%d followers", profile.Followers),
				platform.String(),
			))
		}

		if newest := newestItemTime(profile); !newest.IsZero() && report.DateCollected.Sub(newest) > staleAfter {
			signals = append(signals, model.NewSignal(
				"stale_account",
				"Stale Account",
				fmt.Sprintf("The newest %s item is from %s.", platform, newest.Format("2006-01-02")),
				newest.Format(time.RFC3339),
				platform.String(),
			))
		}
	}

	return signals
}

// newestItemTime returns the most recent item timestamp on a profile,
// or the zero time when no item carries one.
func newestItemTime(profile *model.PlatformProfile) time.Time {
	var newest time.Time
	for _, item := range profile.Items {
		if item.CreatedAt.After(newest) {
			newest = item.CreatedAt
		}
	}
	return newest
}
