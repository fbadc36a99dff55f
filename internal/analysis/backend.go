package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/or1un/mosaic/internal/config"
)

// Backend abstracts an LLM inference endpoint.
type Backend interface {
	// Analyze sends the rendered prompt and the collected data to the
	// model and returns the generated analysis text.
	Analyze(ctx context.Context, prompt, data string) (string, error)

	// CheckAvailability verifies the backend is reachable and usable
	// before the (potentially long) analysis call.
	CheckAvailability(ctx context.Context) error

	// Name returns the backend name for logging and saved metadata.
	Name() string

	// Model returns the model name the backend sends requests to.
	Model() string
}

// Backend selection errors.
var (
	// ErrUnknownBackend is returned for a backend name that is neither
	// "ollama" nor "gemini".
	ErrUnknownBackend = errors.New("unknown analysis backend")

	// ErrBackendUnavailable is returned when the backend cannot be
	// reached or is missing its credentials.
	ErrBackendUnavailable = errors.New("analysis backend unavailable")
)

// NewBackend creates the backend named in the configuration.
// An empty name falls back to the configured or default backend.
func NewBackend(name, model string, creds *config.File) (Backend, error) {
	if name == "" {
		name = config.DefaultLLMBackend
		if creds != nil && creds.LLM.Backend != "" {
			name = creds.LLM.Backend
		}
	}
	if model == "" {
		model = config.DefaultLLMModel
		if creds != nil && creds.LLM.Model != "" {
			model = creds.LLM.Model
		}
	}

	switch name {
	case "ollama":
		return NewOllamaBackend(creds.OllamaURLOrDefault(), model), nil
	case "gemini":
		apiKey := ""
		if creds != nil {
			apiKey = creds.LLM.GeminiAPIKey
		}
		return NewGeminiBackend(apiKey, model), nil
	default:
		return nil, fmt.Errorf("%w: %q (want ollama or gemini)", ErrUnknownBackend, name)
	}
}
