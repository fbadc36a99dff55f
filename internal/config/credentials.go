package config

// PlatformCredentials holds the API credentials for platforms that accept
// or require them. All fields are optional: collectors fall back to
// anonymous access where the platform allows it.
type PlatformCredentials struct {
	// Token is a GitHub personal access token. Raises the anonymous rate
	// limit from 60 to 5000 requests per hour.
	Token string `yaml:"token,omitempty"`

	// APIKey is the Stack Exchange or YouTube Data API key, depending on
	// which platform block this appears under.
	APIKey string `yaml:"api_key,omitempty"` //nolint:tagliatelle // matches the documented config format
}

// MastodonConfig holds Mastodon-specific settings. Mastodon is federated,
// so the instance to query must be configured.
type MastodonConfig struct {
	// Instance is the base URL of the Mastodon instance the subject's
	// account lives on, e.g. "https://mastodon.social".
	Instance string `yaml:"instance,omitempty"`
}

// LLMConfig holds the analysis backend settings.
type LLMConfig struct {
	// Backend selects the analysis backend: "ollama" (local) or "gemini" (cloud).
	Backend string `yaml:"backend,omitempty"`

	// Model is the model name passed to the backend.
	Model string `yaml:"model,omitempty"`

	// OllamaURL is the base URL of the local Ollama server.
	// Defaults to http://localhost:11434 when empty.
	OllamaURL string `yaml:"ollama_url,omitempty"` //nolint:tagliatelle // matches the documented config format

	// GeminiAPIKey authenticates against the Gemini API when Backend is
	// "gemini". Sending collected data to a cloud model uploads it to a
	// third party; local analysis avoids that.
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"` //nolint:tagliatelle // matches the documented config format
}

// SubjectConfig holds per-platform subject overrides.
// This allows collecting a subject whose handle differs between platforms.
type SubjectConfig struct {
	// Username overrides the subject username on this platform.
	Username string `yaml:"username,omitempty"`
}

// File represents the structure of the .mosaic.yaml configuration file.
type File struct {
	// GitHub holds the GitHub credentials.
	GitHub PlatformCredentials `yaml:"github,omitempty"`

	// StackOverflow holds the Stack Exchange API key.
	StackOverflow PlatformCredentials `yaml:"stackoverflow,omitempty"`

	// YouTube holds the YouTube Data API key.
	YouTube PlatformCredentials `yaml:"youtube,omitempty"`

	// Mastodon holds the Mastodon instance configuration.
	Mastodon MastodonConfig `yaml:"mastodon,omitempty"`

	// LLM holds the analysis backend settings.
	LLM LLMConfig `yaml:"llm,omitempty"`

	// Defaults contains the default subject configuration applied to all
	// platforms unless overridden in the platform-specific configuration.
	Defaults SubjectConfig `yaml:"defaults,omitempty"`

	// Platforms maps platform names to their subject overrides.
	// Keys are platform names as accepted by --platforms (e.g. "github").
	Platforms map[string]SubjectConfig `yaml:"platforms,omitempty"`
}

// UsernameFor returns the username to use on a platform.
// Resolution order: platform override, file-level default, then the
// username the collection was started with.
func (cf *File) UsernameFor(platform, fallback string) string {
	if cf == nil {
		return fallback
	}
	if override, ok := cf.Platforms[platform]; ok && override.Username != "" {
		return override.Username
	}
	if cf.Defaults.Username != "" {
		return cf.Defaults.Username
	}
	return fallback
}

// GitHubToken returns the GitHub token, or "" when not configured.
func (cf *File) GitHubToken() string {
	if cf == nil {
		return ""
	}
	return cf.GitHub.Token
}

// StackOverflowKey returns the Stack Exchange API key, or "".
func (cf *File) StackOverflowKey() string {
	if cf == nil {
		return ""
	}
	return cf.StackOverflow.APIKey
}

// YouTubeKey returns the YouTube Data API key, or "".
func (cf *File) YouTubeKey() string {
	if cf == nil {
		return ""
	}
	return cf.YouTube.APIKey
}

// MastodonInstance returns the configured Mastodon instance host, or ""
// to let the collector fall back to its default.
func (cf *File) MastodonInstance() string {
	if cf == nil {
		return ""
	}
	return cf.Mastodon.Instance
}

// OllamaURLOrDefault returns the configured Ollama URL or the default.
func (cf *File) OllamaURLOrDefault() string {
	if cf == nil || cf.LLM.OllamaURL == "" {
		return DefaultOllamaURL
	}
	return cf.LLM.OllamaURL
}
