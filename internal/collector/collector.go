package collector

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// Collector defines the interface for platform-specific collectors.
// Each platform implementation must provide this interface to be used
// in the collection pipeline.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. Different platforms require vastly different implementations
//  2. Allows for easy mocking in tests
//  3. Enables platform plugins in the future
//  4. Pipeline can treat all platforms uniformly
type Collector interface {
	// Collect fetches the public profile and recent activity for a username.
	// It returns a normalized PlatformProfile, or ErrProfileNotFound when
	// the platform has no such user.
	//
	// The context should be used for cancellation and timeouts.
	// Implementations must respect context cancellation.
	Collect(ctx context.Context, username string) (*model.PlatformProfile, error)

	// Platform returns the platform this collector serves.
	Platform() model.Platform
}

// Collection errors shared by all collectors.
var (
	// ErrProfileNotFound is returned when the platform has no profile for
	// the requested username.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrMissingCredentials is returned when a platform requires an API
	// key that was not configured.
	ErrMissingCredentials = errors.New("missing credentials: set the API key in the config file")

	// ErrRateLimited is returned when the platform rejects requests due
	// to rate limiting.
	ErrRateLimited = errors.New("rate limited by platform")
)

// settings holds the shared configuration applied to every collector.
// Platform constructors start from defaultSettings and apply options.
type settings struct {
	// client performs all HTTP requests. Tests substitute a client whose
	// transport points at an httptest server.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxItems bounds pagination per platform.
	maxItems int

	// requestDelay is the politeness delay between paginated requests.
	requestDelay time.Duration

	// maxBodySize limits response body reads.
	maxBodySize int64

	// baseURL overrides the platform API base URL. Used by tests.
	baseURL string
}

// defaultSettings returns the settings every collector starts from.
func defaultSettings() settings {
	return settings{
		client:       &http.Client{Timeout: 15 * time.Second},
		userAgent:    "mosaic/1.0 (+https://github.com/or1un/mosaic)",
		maxItems:     200,
		requestDelay: 500 * time.Millisecond,
		maxBodySize:  5 * 1024 * 1024,
	}
}

// Option configures a collector.
//
// Design decision: One option type shared by all collectors keeps the
// construction sites uniform; platform-specific knobs (tokens, instance
// URLs) are constructor arguments instead because they are not optional
// tuning but part of the collector's identity.
type Option func(*settings)

// WithHTTPClient sets the HTTP client used for all requests.
// The client's timeout applies per request.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.client = client
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithMaxItems bounds the number of items collected through pagination.
func WithMaxItems(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithRequestDelay sets the politeness delay between paginated requests.
func WithRequestDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.requestDelay = d
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(s *settings) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithBaseURL overrides the platform API base URL.
// Intended for tests that point collectors at an httptest server.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = u
	}
}
