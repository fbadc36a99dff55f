package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"
)

// Generation parameters for analysis. Low temperature keeps the model
// close to the supplied data instead of inventing details.
const (
	ollamaTemperature = 0.1
	ollamaTopK        = 40
	ollamaTopP        = 0.9
)

// OllamaBackend runs analysis against a local Ollama server.
// Keeping inference local means the collected data never leaves the
// machine.
type OllamaBackend struct {
	// baseURL is the Ollama server base URL.
	baseURL string

	// model is the model name passed to /api/generate.
	model string

	// client is the HTTP client. Analysis calls can run for minutes on
	// large prompts, so the default has no timeout; the context bounds
	// the call instead.
	client *http.Client

	// numPredict caps generated tokens. Zero lets the model decide.
	numPredict int
}

// OllamaOption configures an OllamaBackend.
type OllamaOption func(*OllamaBackend)

// WithOllamaHTTPClient sets a custom HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(b *OllamaBackend) {
		b.client = client
	}
}

// WithOllamaNumPredict caps the number of generated tokens.
func WithOllamaNumPredict(n int) OllamaOption {
	return func(b *OllamaBackend) {
		b.numPredict = n
	}
}

// NewOllamaBackend creates an Ollama backend for the given server URL
// and model.
func NewOllamaBackend(baseURL, model string, opts ...OllamaOption) *OllamaBackend {
	b := &OllamaBackend{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the backend name.
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Model returns the configured model name.
func (b *OllamaBackend) Model() string {
	return b.model
}

// ollamaGenerateRequest is the /api/generate request body.
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaGenerateResponse is the non-streaming /api/generate response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Analyze sends the rendered prompt to /api/generate and returns the
// generated text.
func (b *OllamaBackend) Analyze(ctx context.Context, prompt, data string) (string, error) {
	fullPrompt := prompt
	if data != "" {
		fullPrompt = prompt + "\n\n" + data
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  b.model,
		Prompt: fullPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: ollamaTemperature,
			TopK:        ollamaTopK,
			TopP:        ollamaTopP,
			NumPredict:  b.numPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", b.describeConnError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(msg))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if result.Response == "" {
		return "", errors.New("ollama returned an empty response")
	}

	return result.Response, nil
}

// ollamaTagsResponse is the /api/tags response.
type ollamaTagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

// CheckAvailability verifies the server is reachable and the configured
// model is installed.
func (b *OllamaBackend) CheckAvailability(ctx context.Context) error {
	models, err := b.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, name := range models {
		if name == b.model || trimTag(name) == b.model {
			return nil
		}
	}
	return fmt.Errorf("%w: model %q is not installed (try `ollama pull %s`)",
		ErrBackendUnavailable, b.model, b.model)
}

// ListModels returns the models installed on the Ollama server.
func (b *OllamaBackend) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, b.describeConnError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned %d listing models", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// describeConnError turns transport errors into actionable messages.
func (b *OllamaBackend) describeConnError(err error) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: cannot reach %s (is `ollama serve` running?)",
			ErrBackendUnavailable, b.baseURL)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: request to %s timed out (large models can need a longer timeout)",
			ErrBackendUnavailable, b.baseURL)
	default:
		return fmt.Errorf("ollama request failed: %w", err)
	}
}

// trimTag strips the ":tag" suffix from an Ollama model name, so
// "llama3.2" matches "llama3.2:latest".
func trimTag(name string) string {
	for i, r := range name {
		if r == ':' {
			return name[:i]
		}
	}
	return name
}
