package fingerprint

import (
	"math"
	"strconv"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// Score scaling caps. A raw value at or above the cap maps to 100; the
// curve below it is logarithmic, so early activity moves the score much
// faster than marginal activity on an already large account.
const (
	technicalCap = 500.0
	socialCap    = 300.0
	influenceCap = 500_000.0
)

// computeScores derives the three behavioral dimension scores from the
// collected profiles.
func computeScores(report *model.ProfileReport) model.DimensionScores {
	return model.DimensionScores{
		Technical: logScale(technicalRaw(report), technicalCap),
		Social:    logScale(socialRaw(report), socialCap),
		Influence: logScale(influenceRaw(report), influenceCap),
	}
}

// technicalRaw counts code and Q&A output: repositories, questions,
// answers (accepted ones doubled), and distinct languages.
func technicalRaw(report *model.ProfileReport) float64 {
	var raw float64
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}

		languages := make(map[string]bool)
		for _, item := range profile.Items {
			switch item.Kind {
			case model.ItemKindRepository:
				raw += 2
			case model.ItemKindQuestion:
				raw++
			case model.ItemKindAnswer:
				raw += 2
			}
			if item.Language != "" {
				languages[item.Language] = true
			}
		}
		raw += float64(len(languages)) * 5

		if accepted, err := strconv.Atoi(profile.Metadata["accepted_answers"]); err == nil {
			raw += float64(accepted) * 2
		}
	}
	return raw
}

// socialRaw measures conversational activity: posting cadence over the
// last year, items that drew replies, and platform spread.
func socialRaw(report *model.ProfileReport) float64 {
	var raw float64
	recentCutoff := report.DateCollected.Add(-365 * 24 * time.Hour)

	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		raw += 10 // platform spread

		for _, item := range profile.Items {
			switch item.Kind {
			case model.ItemKindPost, model.ItemKindComment, model.ItemKindSubmission:
				if item.CreatedAt.After(recentCutoff) {
					raw++
				}
				if item.Replies > 0 {
					raw += 0.5
				}
			}
		}
	}
	return raw
}

// influenceRaw sums audience metrics: followers, item scores (stars,
// upvotes, likes), karma, and views.
func influenceRaw(report *model.ProfileReport) float64 {
	var raw float64
	for _, platform := range report.PlatformsFound() {
		profile := report.Profile(platform)
		if profile == nil {
			continue
		}
		raw += float64(profile.Followers)
		raw += float64(profile.Reputation)
		for _, item := range profile.Items {
			raw += float64(item.Score)
			raw += float64(item.Views) / 100
		}
	}
	return raw
}

// logScale maps a raw value to 0..100 on a logarithmic curve that
// reaches 100 at limit.
func logScale(raw, limit float64) int {
	if raw <= 0 {
		return 0
	}
	score := 100 * math.Log1p(raw) / math.Log1p(limit)
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}
