package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/or1un/mosaic/internal/collector"
	"github.com/or1un/mosaic/internal/config"
	"github.com/or1un/mosaic/internal/model"
)

// mockCollector is a configurable Collector implementation for testing.
type mockCollector struct {
	platform model.Platform
	profile  *model.PlatformProfile
	err      error
	gotName  string
}

func (m *mockCollector) Collect(_ context.Context, username string) (*model.PlatformProfile, error) {
	m.gotName = username
	return m.profile, m.err
}

func (m *mockCollector) Platform() model.Platform {
	return m.platform
}

// TestCollectStepName tests the per-platform step naming.
func TestCollectStepName(t *testing.T) {
	t.Parallel()

	step := NewCollectStep(&mockCollector{platform: model.PlatformGitHub})
	if step.Name() != "collect_github" {
		t.Errorf("expected 'collect_github', got %q", step.Name())
	}
}

// TestCollectStepDo tests the error tolerance policy of collection.
func TestCollectStepDo(t *testing.T) {
	t.Parallel()

	t.Run("stores the collected profile", func(t *testing.T) {
		t.Parallel()
		profile := &model.PlatformProfile{Platform: model.PlatformGitHub, Handle: "octocat"}
		step := NewCollectStep(
			&mockCollector{platform: model.PlatformGitHub, profile: profile},
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Profile(model.PlatformGitHub) == nil {
			t.Error("expected profile stored in report")
		}
	})

	t.Run("profile not found is not a failure", func(t *testing.T) {
		t.Parallel()
		step := NewCollectStep(
			&mockCollector{platform: model.PlatformReddit, err: collector.ErrProfileNotFound},
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Errorf("expected nil for missing profile, got %v", err)
		}
		if len(report.Profiles) != 0 {
			t.Error("expected no profile stored")
		}
	})

	t.Run("missing credentials skip the platform", func(t *testing.T) {
		t.Parallel()
		step := NewCollectStep(
			&mockCollector{platform: model.PlatformYouTube, err: collector.ErrMissingCredentials},
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Errorf("expected nil for missing credentials, got %v", err)
		}
	})

	t.Run("partial profile is kept on error", func(t *testing.T) {
		t.Parallel()
		partial := &model.PlatformProfile{Platform: model.PlatformBluesky, Handle: "octocat"}
		step := NewCollectStep(
			&mockCollector{platform: model.PlatformBluesky, profile: partial, err: errors.New("feed fetch failed")},
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Errorf("expected partial result to be tolerated, got %v", err)
		}
		if report.Profile(model.PlatformBluesky) == nil {
			t.Error("expected partial profile stored")
		}
	})

	t.Run("hard failure with no profile propagates", func(t *testing.T) {
		t.Parallel()
		step := NewCollectStep(
			&mockCollector{platform: model.PlatformGitHub, err: errors.New("connection refused")},
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err == nil {
			t.Error("expected error for a failed collection")
		}
	})

	t.Run("username override is resolved from credentials", func(t *testing.T) {
		t.Parallel()
		mock := &mockCollector{
			platform: model.PlatformReddit,
			profile:  &model.PlatformProfile{Platform: model.PlatformReddit},
		}
		credentials := &config.File{
			Platforms: map[string]config.SubjectConfig{
				"reddit": {Username: "other_name"},
			},
		}
		step := NewCollectStep(mock,
			WithCollectCredentials(credentials),
			WithCollectLogger(testLogger()),
		)

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.gotName != "other_name" {
			t.Errorf("expected override username, got %q", mock.gotName)
		}
	})
}

// TestFingerprintStep tests the analysis step.
func TestFingerprintStep(t *testing.T) {
	t.Parallel()

	t.Run("derives a fingerprint from profiles", func(t *testing.T) {
		t.Parallel()
		step := NewFingerprintStep(WithFingerprintLogger(testLogger()))

		report := model.NewProfileReport("octocat")
		report.AddProfile(&model.PlatformProfile{
			Platform: model.PlatformGitHub,
			Handle:   "octocat",
			Email:    "octocat@example.com",
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Fingerprint == nil {
			t.Fatal("expected fingerprint on report")
		}
		if len(report.Fingerprint.PlatformsFound) != 1 {
			t.Errorf("expected 1 platform in fingerprint, got %v", report.Fingerprint.PlatformsFound)
		}
	})

	t.Run("skips analysis without profiles", func(t *testing.T) {
		t.Parallel()
		step := NewFingerprintStep(WithFingerprintLogger(testLogger()))

		report := model.NewProfileReport("octocat")
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Fingerprint != nil {
			t.Error("expected no fingerprint for an empty report")
		}
	})

	t.Run("name is stable", func(t *testing.T) {
		t.Parallel()
		if got := NewFingerprintStep().Name(); got != "fingerprint" {
			t.Errorf("expected 'fingerprint', got %q", got)
		}
	})
}

// TestDefaultPipeline tests the standard collection pipeline layout.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("one collect step per platform plus fingerprint", func(t *testing.T) {
		t.Parallel()
		platforms := []model.Platform{model.PlatformGitHub, model.PlatformReddit}
		p := DefaultPipeline(platforms, nil, []Option{WithLogger(testLogger())})

		if p.StepCount() != 3 {
			t.Fatalf("expected 3 steps, got %d", p.StepCount())
		}
		names := p.StepNames()
		if names[0] != "collect_github" || names[1] != "collect_reddit" {
			t.Errorf("unexpected collect steps: %v", names)
		}
		if names[len(names)-1] != "fingerprint" {
			t.Errorf("expected fingerprint step last, got %v", names)
		}
	})

	t.Run("all platforms", func(t *testing.T) {
		t.Parallel()
		p := DefaultPipeline(model.AllPlatforms(), nil, []Option{WithLogger(testLogger())})
		if p.StepCount() != len(model.AllPlatforms())+1 {
			t.Errorf("expected %d steps, got %d", len(model.AllPlatforms())+1, p.StepCount())
		}
	})
}
