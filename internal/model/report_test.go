package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNewProfileReport tests report construction.
func TestNewProfileReport(t *testing.T) {
	t.Parallel()

	report := NewProfileReport("janedoe")

	if report.Subject != "janedoe" {
		t.Errorf("expected subject janedoe, got %q", report.Subject)
	}
	if report.DateCollected.IsZero() {
		t.Error("expected DateCollected to be set")
	}
	if report.Profiles == nil {
		t.Error("expected Profiles map to be initialized")
	}
}

// TestProfileReportAddProfile tests adding and retrieving platform profiles.
func TestProfileReportAddProfile(t *testing.T) {
	t.Parallel()

	t.Run("adds and retrieves profile", func(t *testing.T) {
		t.Parallel()

		report := NewProfileReport("janedoe")
		report.AddProfile(&PlatformProfile{
			Platform:  PlatformGitHub,
			Handle:    "janedoe",
			Followers: 42,
		})

		got := report.Profile(PlatformGitHub)
		if got == nil {
			t.Fatal("expected github profile")
		}
		if got.Followers != 42 {
			t.Errorf("expected 42 followers, got %d", got.Followers)
		}
	})

	t.Run("nil profile is ignored", func(t *testing.T) {
		t.Parallel()

		report := NewProfileReport("janedoe")
		report.AddProfile(nil)

		if len(report.Profiles) != 0 {
			t.Errorf("expected no profiles, got %d", len(report.Profiles))
		}
	})

	t.Run("missing platform returns nil", func(t *testing.T) {
		t.Parallel()

		report := NewProfileReport("janedoe")
		if report.Profile(PlatformReddit) != nil {
			t.Error("expected nil for uncollected platform")
		}
	})
}

// TestProfileReportPlatformsFound tests stable ordering of found platforms.
func TestProfileReportPlatformsFound(t *testing.T) {
	t.Parallel()

	report := NewProfileReport("janedoe")
	report.AddProfile(&PlatformProfile{Platform: PlatformReddit, Handle: "janedoe"})
	report.AddProfile(&PlatformProfile{Platform: PlatformGitHub, Handle: "janedoe"})
	report.AddProfile(&PlatformProfile{Platform: PlatformBluesky, Handle: "janedoe.bsky.social"})

	found := report.PlatformsFound()
	expected := []Platform{PlatformBluesky, PlatformGitHub, PlatformReddit}
	if len(found) != len(expected) {
		t.Fatalf("expected %d platforms, got %d", len(expected), len(found))
	}
	for i, p := range expected {
		if found[i] != p {
			t.Errorf("position %d: expected %q, got %q", i, p, found[i])
		}
	}
}

// TestProfileReportAddSignal tests signal aggregation on the report.
func TestProfileReportAddSignal(t *testing.T) {
	t.Parallel()

	t.Run("initializes fingerprint on first signal", func(t *testing.T) {
		t.Parallel()

		report := NewProfileReport("janedoe")
		report.AddSignal(NewSignal("email_disclosed", "Email Address Found",
			"Public email on profile", "jane@example.com", "github"))

		if report.Fingerprint == nil {
			t.Fatal("expected fingerprint to be initialized")
		}
		if report.Fingerprint.MediumCount != 1 {
			t.Errorf("expected 1 medium signal, got %d", report.Fingerprint.MediumCount)
		}
		if report.Fingerprint.Subject != "janedoe" {
			t.Errorf("expected subject janedoe, got %q", report.Fingerprint.Subject)
		}
	})

	t.Run("deduplicates identical signals", func(t *testing.T) {
		t.Parallel()

		report := NewProfileReport("janedoe")
		signal := NewSignal("handle_reuse", "Handle Reuse",
			"Same handle on multiple platforms", "janedoe", "github")
		report.AddSignal(signal)
		report.AddSignal(signal)

		if got := report.Fingerprint.TotalSignals(); got != 1 {
			t.Errorf("expected 1 signal after dedup, got %d", got)
		}
		if report.Fingerprint.HighCount != 1 {
			t.Errorf("expected HighCount 1, got %d", report.Fingerprint.HighCount)
		}
	})
}

// TestNewSignal tests that signal metadata comes from the central mapping.
func TestNewSignal(t *testing.T) {
	t.Parallel()

	signal := NewSignal("real_name_disclosed", "Real Name", "desc", "Jane Doe", "github")

	if signal.Severity != SeverityHigh {
		t.Errorf("expected SeverityHigh, got %v", signal.Severity)
	}
	if signal.SeverityText != "HIGH" {
		t.Errorf("expected HIGH, got %q", signal.SeverityText)
	}
	if signal.Impact == "" {
		t.Error("expected Impact from mapping")
	}
	if signal.Recommendation == "" {
		t.Error("expected Recommendation from mapping")
	}
}

// TestFingerprintSeverityCounts tests per-severity counting and filtering.
func TestFingerprintSeverityCounts(t *testing.T) {
	t.Parallel()

	fp := NewFingerprint("janedoe", time.Now())
	fp.AddSignal(NewSignal("identity_correlation", "t", "d", "Jane Doe", ""))
	fp.AddSignal(NewSignal("real_name_disclosed", "t", "d", "Jane Doe", "github"))
	fp.AddSignal(NewSignal("real_name_disclosed", "t", "d", "Jane Doe", "mastodon"))
	fp.AddSignal(NewSignal("location_disclosed", "t", "d", "Lyon", "github"))
	fp.AddSignal(NewSignal("stale_account", "t", "d", "", "medium"))

	if fp.CriticalCount != 1 {
		t.Errorf("expected CriticalCount 1, got %d", fp.CriticalCount)
	}
	if fp.HighCount != 2 {
		t.Errorf("expected HighCount 2, got %d", fp.HighCount)
	}
	if fp.MediumCount != 1 {
		t.Errorf("expected MediumCount 1, got %d", fp.MediumCount)
	}
	if fp.InfoCount != 1 {
		t.Errorf("expected InfoCount 1, got %d", fp.InfoCount)
	}
	if fp.TotalSignals() != 5 {
		t.Errorf("expected 5 signals total, got %d", fp.TotalSignals())
	}
	if !fp.HasSignals() {
		t.Error("expected HasSignals true")
	}

	high := fp.SignalsBySeverity(SeverityHigh)
	if len(high) != 2 {
		t.Errorf("expected 2 high signals, got %d", len(high))
	}
	if got := fp.SignalsBySeverity(SeverityLow); got != nil {
		t.Errorf("expected no low signals, got %v", got)
	}
}

// TestProfileReportJSONRoundTrip ensures errors stay out of serialized output.
func TestProfileReportJSONRoundTrip(t *testing.T) {
	t.Parallel()

	report := NewProfileReport("janedoe")
	report.AddProfile(&PlatformProfile{
		Platform: PlatformMedium,
		Handle:   "janedoe",
		Items: []Item{
			{Kind: ItemKindArticle, Title: "On Pipelines", URL: "https://medium.com/p/1"},
		},
	})
	report.ErrorMessage = "partial: telegram unreachable"

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded ProfileReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Subject != "janedoe" {
		t.Errorf("expected subject janedoe, got %q", decoded.Subject)
	}
	if decoded.ErrorMessage != "partial: telegram unreachable" {
		t.Errorf("unexpected error message %q", decoded.ErrorMessage)
	}
	profile := decoded.Profile(PlatformMedium)
	if profile == nil || len(profile.Items) != 1 {
		t.Fatal("expected medium profile with one item")
	}
	if profile.Items[0].Kind != ItemKindArticle {
		t.Errorf("expected article item, got %q", profile.Items[0].Kind)
	}
}
