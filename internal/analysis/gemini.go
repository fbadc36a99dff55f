package analysis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiBackend runs analysis against the Gemini API.
// Using a cloud model uploads the collected data to a third party; the
// CLI warns about this before sending anything.
type GeminiBackend struct {
	// apiKey authenticates against the Gemini API.
	apiKey string

	// model is the model name, e.g. "gemini-2.5-flash".
	model string

	// temperature keeps the model close to the supplied data.
	temperature float32
}

// NewGeminiBackend creates a Gemini backend.
func NewGeminiBackend(apiKey, model string) *GeminiBackend {
	return &GeminiBackend{
		apiKey:      apiKey,
		model:       model,
		temperature: ollamaTemperature,
	}
}

// Name returns the backend name.
func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (b *GeminiBackend) Model() string {
	return b.model
}

// CheckAvailability verifies credentials are configured and a client can
// be constructed.
func (b *GeminiBackend) CheckAvailability(ctx context.Context) error {
	if b.apiKey == "" {
		return fmt.Errorf("%w: llm.gemini_api_key is not set in the config file", ErrBackendUnavailable)
	}
	if _, err := b.newClient(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Analyze sends the rendered prompt and data to the Gemini API and
// returns the generated text.
func (b *GeminiBackend) Analyze(ctx context.Context, prompt, data string) (string, error) {
	if b.apiKey == "" {
		return "", fmt.Errorf("%w: llm.gemini_api_key is not set in the config file", ErrBackendUnavailable)
	}

	client, err := b.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	fullPrompt := prompt
	if data != "" {
		fullPrompt = prompt + "\n\n" + data
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(b.temperature),
	}

	result, err := client.Models.GenerateContent(ctx, b.model, genai.Text(fullPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}

	return sb.String(), nil
}

// newClient constructs a Gemini API client.
func (b *GeminiBackend) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  b.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}
