package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/or1un/mosaic/internal/collector"
	"github.com/or1un/mosaic/internal/config"
	"github.com/or1un/mosaic/internal/fingerprint"
	"github.com/or1un/mosaic/internal/model"
)

// CollectStep runs one platform collector against the report's subject.
// Each selected platform gets its own step instance so the pipeline log
// shows per-platform progress and failures stay isolated.
type CollectStep struct {
	// collector fetches the platform profile.
	collector collector.Collector

	// credentials resolves per-platform username overrides.
	credentials *config.File

	// logger for structured logging.
	logger *slog.Logger
}

// CollectStepOption configures a CollectStep.
type CollectStepOption func(*CollectStep)

// WithCollectLogger sets a custom logger for the collect step.
func WithCollectLogger(logger *slog.Logger) CollectStepOption {
	return func(s *CollectStep) {
		s.logger = logger
	}
}

// WithCollectCredentials sets the credentials file used to resolve
// per-platform username overrides.
func WithCollectCredentials(credentials *config.File) CollectStepOption {
	return func(s *CollectStep) {
		s.credentials = credentials
	}
}

// NewCollectStep creates a collection step for one platform.
func NewCollectStep(c collector.Collector, opts ...CollectStepOption) *CollectStep {
	s := &CollectStep{
		collector: c,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect_" + s.collector.Platform().String()
}

// Concurrent reports that collection steps may run in parallel.
// Each step writes only its own platform's profile to the report.
func (s *CollectStep) Concurrent() bool {
	return true
}

// Do executes the collection step.
//
// A missing profile is not a failure: most subjects exist on a few
// platforms only. Missing credentials skip the platform with a warning.
// Partial profiles (pagination died mid-way) are still recorded.
func (s *CollectStep) Do(ctx context.Context, report *model.ProfileReport) error {
	platform := s.collector.Platform()
	username := s.credentials.UsernameFor(platform.String(), report.Subject)

	profile, err := s.collector.Collect(ctx, username)
	if profile != nil {
		report.AddProfile(profile)
	}

	switch {
	case err == nil:
		s.logger.Info("profile collected",
			"platform", platform,
			"username", username,
			"items", len(profile.Items),
		)
		return nil
	case errors.Is(err, collector.ErrProfileNotFound):
		s.logger.Debug("profile not found",
			"platform", platform,
			"username", username,
		)
		return nil
	case errors.Is(err, collector.ErrMissingCredentials):
		s.logger.Warn("platform skipped, credentials not configured",
			"platform", platform,
		)
		return nil
	case profile != nil:
		// Partial result already stored; report but keep going.
		s.logger.Warn("collection incomplete",
			"platform", platform,
			"username", username,
			"items", len(profile.Items),
			"error", err,
		)
		return nil
	default:
		return fmt.Errorf("%s collection failed: %w", platform, err)
	}
}

// FingerprintStep derives exposure signals and dimension scores from the
// collected profiles. It runs after all collect steps.
type FingerprintStep struct {
	// analyzer derives signals from the report.
	analyzer *fingerprint.Analyzer

	// logger for structured logging.
	logger *slog.Logger
}

// FingerprintStepOption configures a FingerprintStep.
type FingerprintStepOption func(*FingerprintStep)

// WithFingerprintLogger sets a custom logger for the fingerprint step.
func WithFingerprintLogger(logger *slog.Logger) FingerprintStepOption {
	return func(s *FingerprintStep) {
		s.logger = logger
	}
}

// NewFingerprintStep creates a fingerprint analysis step.
func NewFingerprintStep(opts ...FingerprintStepOption) *FingerprintStep {
	s := &FingerprintStep{
		analyzer: fingerprint.NewAnalyzer(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FingerprintStep) Name() string {
	return "fingerprint"
}

// Do executes the fingerprint analysis step.
func (s *FingerprintStep) Do(_ context.Context, report *model.ProfileReport) error {
	if len(report.Profiles) == 0 {
		s.logger.Debug("skipping fingerprint, no profiles collected")
		return nil
	}

	result := s.analyzer.Analyze(report)
	report.Fingerprint = result

	s.logger.Info("fingerprint analysis completed",
		"subject", report.Subject,
		"signals", result.TotalSignals(),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestDelay is the politeness delay between paginated requests.
	RequestDelay time.Duration

	// MaxItems caps items collected per platform.
	MaxItems int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTimeout sets the per-request timeout.
func WithPipelineTimeout(timeout time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = timeout
	}
}

// WithPipelineRequestDelay sets the politeness delay between paginated
// requests.
func WithPipelineRequestDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RequestDelay = delay
	}
}

// WithPipelineMaxItems caps the number of items collected per platform.
func WithPipelineMaxItems(maxItems int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxItems = maxItems
	}
}

// WithPipelineMaxBodySize sets the maximum response body size in bytes.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineUserAgent sets the User-Agent header for HTTP requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// DefaultPipeline creates a pipeline that collects the given platforms and
// finishes with fingerprint analysis. This is the standard pipeline for a
// collection run.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want all selected platforms plus the fingerprint
// 2. Reduces boilerplate in CLI
// 3. Ensures the fingerprint step always runs last
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineTimeout, etc).
func DefaultPipeline(platforms []model.Platform, credentials *config.File, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Timeout:      config.DefaultTimeout,
		RequestDelay: config.DefaultRequestDelay,
		MaxItems:     config.DefaultMaxItems,
		MaxBodySize:  config.DefaultMaxBodySize,
		UserAgent:    config.DefaultUserAgent,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	collectorOpts := []collector.Option{
		collector.WithHTTPClient(client),
		collector.WithRequestDelay(cfg.RequestDelay),
		collector.WithMaxItems(cfg.MaxItems),
		collector.WithMaxBodySize(cfg.MaxBodySize),
		collector.WithUserAgent(cfg.UserAgent),
	}

	for _, platform := range platforms {
		p.AddStep(NewCollectStep(
			newCollector(platform, credentials, collectorOpts...),
			WithCollectCredentials(credentials),
			WithCollectLogger(p.logger),
		))
	}

	p.AddStep(NewFingerprintStep(WithFingerprintLogger(p.logger)))

	return p
}

// newCollector constructs the collector for a platform, wiring in the
// credentials it needs from the config file.
func newCollector(platform model.Platform, credentials *config.File, opts ...collector.Option) collector.Collector {
	switch platform {
	case model.PlatformGitHub:
		return collector.NewGitHubCollector(credentials.GitHubToken(), opts...)
	case model.PlatformStackOverflow:
		return collector.NewStackOverflowCollector(credentials.StackOverflowKey(), opts...)
	case model.PlatformYouTube:
		return collector.NewYouTubeCollector(credentials.YouTubeKey(), opts...)
	case model.PlatformBluesky:
		return collector.NewBlueskyCollector(opts...)
	case model.PlatformMastodon:
		return collector.NewMastodonCollector(credentials.MastodonInstance(), opts...)
	case model.PlatformReddit:
		return collector.NewRedditCollector(opts...)
	case model.PlatformMedium:
		return collector.NewMediumCollector(opts...)
	case model.PlatformTelegram:
		return collector.NewTelegramCollector(opts...)
	default:
		return collector.NewGitHubCollector("", opts...)
	}
}
