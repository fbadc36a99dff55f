package model

import (
	"testing"
	"time"
)

// TestPlatformString tests the String method of Platform.
func TestPlatformString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		platform Platform
		expected string
	}{
		{PlatformGitHub, "github"},
		{PlatformStackOverflow, "stackoverflow"},
		{PlatformTelegram, "telegram"},
		{PlatformUnknown, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.platform.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.platform.String(), tc.expected)
			}
		})
	}
}

// TestPlatformIsValid tests the IsValid method of Platform.
func TestPlatformIsValid(t *testing.T) {
	t.Parallel()

	for _, p := range AllPlatforms() {
		if !p.IsValid() {
			t.Errorf("expected %q to be valid", p)
		}
	}

	if PlatformUnknown.IsValid() {
		t.Error("expected PlatformUnknown to be invalid")
	}
	if Platform("myspace").IsValid() {
		t.Error("expected unrecognized platform to be invalid")
	}
}

// TestParsePlatform tests the ParsePlatform function.
func TestParsePlatform(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Platform
	}{
		{"github", PlatformGitHub},
		{"gh", PlatformGitHub},
		{"GitHub", PlatformGitHub},
		{" reddit ", PlatformReddit},
		{"so", PlatformStackOverflow},
		{"bsky", PlatformBluesky},
		{"yt", PlatformYouTube},
		{"tg", PlatformTelegram},
		{"mastodon", PlatformMastodon},
		{"medium", PlatformMedium},
		{"friendster", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			result := ParsePlatform(tc.input)
			if result != tc.expected {
				t.Errorf("ParsePlatform(%q) = %v, expected %v", tc.input, result, tc.expected)
			}
		})
	}
}

// TestParsePlatformList tests comma-separated platform list parsing.
func TestParsePlatformList(t *testing.T) {
	t.Parallel()

	t.Run("all selects every platform", func(t *testing.T) {
		t.Parallel()

		platforms, unknown := ParsePlatformList("all")
		if len(unknown) != 0 {
			t.Errorf("expected no unknown entries, got %v", unknown)
		}
		if len(platforms) != len(AllPlatforms()) {
			t.Errorf("expected %d platforms, got %d", len(AllPlatforms()), len(platforms))
		}
	})

	t.Run("parses comma separated list with duplicates", func(t *testing.T) {
		t.Parallel()

		platforms, unknown := ParsePlatformList("github, reddit,github")
		if len(unknown) != 0 {
			t.Errorf("expected no unknown entries, got %v", unknown)
		}
		if len(platforms) != 2 {
			t.Fatalf("expected 2 platforms, got %d: %v", len(platforms), platforms)
		}
	})

	t.Run("reports unknown names", func(t *testing.T) {
		t.Parallel()

		platforms, unknown := ParsePlatformList("github,orkut")
		if len(platforms) != 1 || platforms[0] != PlatformGitHub {
			t.Errorf("expected only github, got %v", platforms)
		}
		if len(unknown) != 1 || unknown[0] != "orkut" {
			t.Errorf("expected unknown [orkut], got %v", unknown)
		}
	})

	t.Run("ignores empty entries", func(t *testing.T) {
		t.Parallel()

		platforms, unknown := ParsePlatformList("github,,reddit,")
		if len(unknown) != 0 {
			t.Errorf("expected no unknown entries, got %v", unknown)
		}
		if len(platforms) != 2 {
			t.Errorf("expected 2 platforms, got %d", len(platforms))
		}
	})
}

// TestPlatformDefaultSeverity tests per-platform default severities.
func TestPlatformDefaultSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		platform Platform
		expected Severity
	}{
		{PlatformGitHub, SeverityHigh},
		{PlatformStackOverflow, SeverityHigh},
		{PlatformYouTube, SeverityMedium},
		{PlatformMedium, SeverityMedium},
		{PlatformReddit, SeverityLow},
		{PlatformTelegram, SeverityLow},
		{PlatformUnknown, SeverityMedium},
	}

	for _, tc := range testCases {
		t.Run(tc.platform.String(), func(t *testing.T) {
			t.Parallel()
			if got := tc.platform.DefaultSeverity(); got != tc.expected {
				t.Errorf("DefaultSeverity() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestPlatformEstimatedDuration tests that every platform has a positive estimate.
func TestPlatformEstimatedDuration(t *testing.T) {
	t.Parallel()

	for _, p := range AllPlatforms() {
		if p.EstimatedDuration() <= 0 {
			t.Errorf("expected positive estimate for %q", p)
		}
	}
	if PlatformUnknown.EstimatedDuration() != 10*time.Second {
		t.Error("expected fallback estimate for unknown platform")
	}
}
