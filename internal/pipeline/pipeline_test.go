package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// mockStep is a configurable Step implementation for testing.
type mockStep struct {
	name     string
	err      error
	executed bool
	onDo     func(report *model.ProfileReport)
}

func (m *mockStep) Do(_ context.Context, report *model.ProfileReport) error {
	m.executed = true
	if m.onDo != nil {
		m.onDo(report)
	}
	return m.err
}

func (m *mockStep) Name() string {
	return m.name
}

// parallelStep is a mockStep that opts into stage concurrency.
type parallelStep struct {
	mockStep
}

func (p *parallelStep) Concurrent() bool {
	return true
}

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNew tests pipeline construction with options.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("default pipeline has no steps", func(t *testing.T) {
		t.Parallel()
		p := New(WithLogger(testLogger()))
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()
		p := New()
		if p.logger == nil {
			t.Error("expected a default logger")
		}
	})
}

// TestAddStep tests step registration and ordering.
func TestAddStep(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(testLogger()))
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("step %d: expected %q, got %q", i, name, names[i])
		}
	}
}

// TestExecute tests sequential execution and error policies.
func TestExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()
		var order []string
		p := New(WithLogger(testLogger()))
		for _, name := range []string{"a", "b", "c"} {
			p.AddStep(&mockStep{name: name, onDo: func(*model.ProfileReport) {
				order = append(order, name)
			}})
		}

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 3 || order[0] != "a" || order[2] != "c" {
			t.Errorf("unexpected execution order: %v", order)
		}
		if len(report.PerformedCollections) != 3 {
			t.Errorf("expected 3 performed steps, got %v", report.PerformedCollections)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()
		stepErr := errors.New("step failed")
		second := &mockStep{name: "second"}
		p := New(WithLogger(testLogger()))
		p.AddStep(&mockStep{name: "first", err: stepErr})
		p.AddStep(second)

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if second.executed {
			t.Error("expected second step to be skipped after failure")
		}
		if report.ErrorMessage != "step failed" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("continues past errors when configured", func(t *testing.T) {
		t.Parallel()
		second := &mockStep{name: "second"}
		p := New(WithLogger(testLogger()), WithContinueOnError(true))
		p.AddStep(&mockStep{name: "first", err: errors.New("step failed")})
		p.AddStep(second)

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !second.executed {
			t.Error("expected second step to run despite earlier failure")
		}
		if report.ErrorMessage == "" {
			t.Error("expected error recorded in report")
		}
	})

	t.Run("adjacent concurrent steps run in parallel", func(t *testing.T) {
		t.Parallel()
		var active, peak atomic.Int32
		p := New(WithLogger(testLogger()), WithStepConcurrency(3))
		for _, name := range []string{"a", "b", "c"} {
			p.AddStep(&parallelStep{mockStep{name: name, onDo: func(*model.ProfileReport) {
				n := active.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				active.Add(-1)
			}}})
		}

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() < 2 {
			t.Errorf("expected overlapping step execution, peak was %d", peak.Load())
		}
	})

	t.Run("bookkeeping keeps declared step order under concurrency", func(t *testing.T) {
		t.Parallel()
		p := New(WithLogger(testLogger()), WithStepConcurrency(4))
		names := []string{"collect_github", "collect_reddit", "collect_medium"}
		for _, name := range names {
			p.AddStep(&parallelStep{mockStep{name: name}})
		}
		p.AddStep(&mockStep{name: "fingerprint"})

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := append(names, "fingerprint")
		if len(report.PerformedCollections) != len(want) {
			t.Fatalf("expected %d performed steps, got %v", len(want), report.PerformedCollections)
		}
		for i, name := range want {
			if report.PerformedCollections[i] != name {
				t.Errorf("step %d: expected %q, got %q", i, name, report.PerformedCollections[i])
			}
		}
	})

	t.Run("sequential step runs only after the stage completes", func(t *testing.T) {
		t.Parallel()
		var done atomic.Int32
		p := New(WithLogger(testLogger()), WithStepConcurrency(2))
		for _, name := range []string{"a", "b"} {
			p.AddStep(&parallelStep{mockStep{name: name, onDo: func(*model.ProfileReport) {
				time.Sleep(10 * time.Millisecond)
				done.Add(1)
			}}})
		}
		var sawStage int32
		p.AddStep(&mockStep{name: "after", onDo: func(*model.ProfileReport) {
			sawStage = done.Load()
		}})

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sawStage != 2 {
			t.Errorf("expected both stage steps finished before the next step, saw %d", sawStage)
		}
	})

	t.Run("stage failure stops the pipeline by default", func(t *testing.T) {
		t.Parallel()
		stepErr := errors.New("step failed")
		after := &mockStep{name: "after"}
		p := New(WithLogger(testLogger()), WithStepConcurrency(2))
		p.AddStep(&parallelStep{mockStep{name: "a", err: stepErr}})
		p.AddStep(&parallelStep{mockStep{name: "b"}})
		p.AddStep(after)

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if after.executed {
			t.Error("expected follow-up step to be skipped after stage failure")
		}
		if report.ErrorMessage != "step failed" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("concurrent profile writes are all recorded", func(t *testing.T) {
		t.Parallel()
		platforms := []model.Platform{model.PlatformGitHub, model.PlatformReddit, model.PlatformMedium, model.PlatformBluesky}
		p := New(WithLogger(testLogger()), WithStepConcurrency(len(platforms)))
		for _, platform := range platforms {
			p.AddStep(&parallelStep{mockStep{name: "collect_" + platform.String(), onDo: func(report *model.ProfileReport) {
				report.AddProfile(&model.PlatformProfile{Platform: platform, Handle: "octocat"})
			}}})
		}

		report := model.NewProfileReport("octocat")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Profiles) != len(platforms) {
			t.Errorf("expected %d profiles, got %d", len(platforms), len(report.Profiles))
		}
	})

	t.Run("canceled context stops execution and marks the report", func(t *testing.T) {
		t.Parallel()
		step := &mockStep{name: "never"}
		p := New(WithLogger(testLogger()))
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewProfileReport("octocat")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.executed {
			t.Error("expected step to be skipped after cancellation")
		}
		if !report.TimedOut {
			t.Error("expected report marked as timed out")
		}
	})
}
