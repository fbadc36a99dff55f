package model

import (
	"sort"
	"strings"
	"time"
)

// platformUnknownStr is the string representation for unknown platform values.
const platformUnknownStr = "unknown"

// Platform represents a social or publishing platform that can be collected.
type Platform string

// Platform constants.
const (
	// PlatformUnknown represents an unknown platform.
	PlatformUnknown Platform = ""
	// PlatformStackOverflow represents Stack Overflow (Stack Exchange network).
	PlatformStackOverflow Platform = "stackoverflow"
	// PlatformYouTube represents YouTube.
	PlatformYouTube Platform = "youtube"
	// PlatformGitHub represents GitHub.
	PlatformGitHub Platform = "github"
	// PlatformBluesky represents Bluesky (AT Protocol).
	PlatformBluesky Platform = "bluesky"
	// PlatformMastodon represents Mastodon (any federated instance).
	PlatformMastodon Platform = "mastodon"
	// PlatformReddit represents Reddit.
	PlatformReddit Platform = "reddit"
	// PlatformMedium represents Medium.
	PlatformMedium Platform = "medium"
	// PlatformTelegram represents Telegram public channels.
	PlatformTelegram Platform = "telegram"
)

// AllPlatforms returns every collectable platform in stable order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformStackOverflow,
		PlatformYouTube,
		PlatformGitHub,
		PlatformBluesky,
		PlatformMastodon,
		PlatformReddit,
		PlatformMedium,
		PlatformTelegram,
	}
}

// String returns the string representation of the Platform.
func (p Platform) String() string {
	if p == PlatformUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known platform.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformStackOverflow, PlatformYouTube, PlatformGitHub,
		PlatformBluesky, PlatformMastodon, PlatformReddit,
		PlatformMedium, PlatformTelegram:
		return true
	default:
		return false
	}
}

// DefaultSeverity returns the default severity for exposure signals tied
// to a presence on this platform.
func (p Platform) DefaultSeverity() Severity {
	switch p {
	case PlatformGitHub, PlatformStackOverflow:
		// Professional platforms commonly carry real names and employers
		return SeverityHigh
	case PlatformYouTube, PlatformMedium:
		// Publishing platforms often link back to a public persona
		return SeverityMedium
	case PlatformBluesky, PlatformMastodon, PlatformReddit, PlatformTelegram:
		// Typically pseudonymous
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// EstimatedDuration returns a rough collection time estimate for progress
// reporting. The values reflect observed API latency and pagination depth.
func (p Platform) EstimatedDuration() time.Duration {
	switch p {
	case PlatformStackOverflow:
		return 10 * time.Second
	case PlatformYouTube:
		return 15 * time.Second
	case PlatformGitHub:
		return 8 * time.Second
	case PlatformBluesky:
		return 12 * time.Second
	case PlatformMastodon:
		return 12 * time.Second
	case PlatformReddit:
		return 8 * time.Second
	case PlatformMedium:
		return 5 * time.Second
	case PlatformTelegram:
		return 20 * time.Second
	default:
		return 10 * time.Second
	}
}

// ParsePlatform converts a string to Platform.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stackoverflow", "so":
		return PlatformStackOverflow
	case "youtube", "yt":
		return PlatformYouTube
	case "github", "gh":
		return PlatformGitHub
	case "bluesky", "bsky":
		return PlatformBluesky
	case "mastodon":
		return PlatformMastodon
	case "reddit":
		return PlatformReddit
	case "medium":
		return PlatformMedium
	case "telegram", "tg":
		return PlatformTelegram
	default:
		return PlatformUnknown
	}
}

// ParsePlatformList parses a comma-separated platform list such as
// "github,reddit,medium". The special value "all" selects every platform.
// Unknown names are returned so the caller can report them.
func ParsePlatformList(s string) (platforms []Platform, unknown []string) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return AllPlatforms(), nil
	}

	seen := make(map[Platform]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := ParsePlatform(part)
		if p == PlatformUnknown {
			unknown = append(unknown, part)
			continue
		}
		if !seen[p] {
			seen[p] = true
			platforms = append(platforms, p)
		}
	}

	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms, unknown
}
