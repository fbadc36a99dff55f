package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on the public API rate limits of the
// collected platforms and typical collection run sizes.
const (
	// DefaultTimeout is set to 15 seconds per request. The collected APIs
	// are clearnet services with low latency; a generous single-request
	// timeout mostly matters for slow RSS and HTML endpoints.
	DefaultTimeout = 15 * time.Second

	// DefaultRequestDelay is the delay between paginated requests to the
	// same platform. This is a politeness setting that keeps collection
	// under anonymous rate limits (Reddit and Mastodon are the strictest).
	DefaultRequestDelay = 500 * time.Millisecond

	// DefaultMaxItems is the maximum number of items collected per platform.
	// Pagination stops once this many posts/toots/messages are fetched.
	// This bounds collection time and keeps exported JSON reviewable.
	DefaultMaxItems = 200

	// DefaultBatchSize of 4 concurrent platform collections balances
	// throughput with rate-limit headroom. All platforms are independent
	// services, so moderate parallelism is safe.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "mosaic"

	// DefaultResultsDir is where collection and analysis output is written.
	// Relative to the working directory so results stay with the project.
	DefaultResultsDir = "results"

	// DefaultUserAgent identifies mosaic in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify collector traffic in their logs.
	DefaultUserAgent = "mosaic/1.0 (+https://github.com/or1un/mosaic)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB covers the largest paginated API responses while preventing
	// memory exhaustion from unexpected payloads.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOllamaURL is the standard local Ollama server address.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultLLMBackend selects local inference unless configured otherwise.
	DefaultLLMBackend = "ollama"

	// DefaultLLMModel is a small model that runs on typical workstations.
	DefaultLLMModel = "llama3.2"
)

// Config holds all configuration options for mosaic.
// This struct is designed to be populated from CLI flags and the YAML
// credentials file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CollectConfig, AnalyzeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the timeout for each HTTP request to a platform API.
	// This applies to individual requests, not the overall collection run.
	Timeout time.Duration

	// RequestDelay is the delay between paginated requests to one platform.
	// Lower values may trigger anonymous rate limiting.
	RequestDelay time.Duration

	// MaxItems is the maximum number of items to collect per platform.
	// A value of 0 means use the default (DefaultMaxItems).
	MaxItems int

	// BatchSize is the number of concurrent platform collections.
	// Higher values increase throughput but eat into rate-limit headroom.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the credentials file.
	// If empty, the tool searches for .mosaic.yaml in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Credentials holds platform credentials and per-platform username
	// overrides loaded from the config file.
	Credentials *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Subjects is the list of usernames to collect.
	// Must contain at least one entry.
	Subjects []string

	// Platforms is the list of platform names selected for collection.
	// Empty means all platforms.
	Platforms []string

	// ResultsDir is the directory where per-run JSON exports and analysis
	// reports are written. Created on demand.
	ResultsDir string

	// DBDir is the directory path for storing the SQLite history database.
	// When set, collection results are saved for historical comparison.
	// When empty, results are not persisted.
	// Defaults to XDG data directory (~/.local/share/mosaic on Linux).
	DBDir string

	// SaveToDB indicates whether to save collection results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	// Some platforms (Reddit) require a realistic User-Agent; the
	// collectors may override this per platform.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delays).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		RequestDelay: DefaultRequestDelay,
		MaxItems:     DefaultMaxItems,
		BatchSize:    DefaultBatchSize,
		ResultsDir:   DefaultResultsDir,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for mosaic.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/mosaic
// On macOS: ~/Library/Application Support/mosaic
// On Windows: %LOCALAPPDATA%\mosaic
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mosaic.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/mosaic
// On macOS: ~/Library/Application Support/mosaic
// On Windows: %APPDATA%\mosaic
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for mosaic.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/mosaic
// On macOS: ~/Library/Caches/mosaic
// On Windows: %LOCALAPPDATA%\mosaic\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any collection begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one subject to collect
	if len(c.Subjects) == 0 {
		return ErrNoSubject
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no collection
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// RequestDelay must be non-negative
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}

	// MaxItems must be non-negative; 0 means use the default
	if c.MaxItems < 0 {
		return ErrInvalidMaxItems
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
