package analysis

import (
	"errors"
	"testing"

	"github.com/or1un/mosaic/internal/config"
)

// TestNewBackend tests backend selection from name and configuration.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	t.Run("ollama by name", func(t *testing.T) {
		t.Parallel()
		backend, err := NewBackend("ollama", "llama3.2", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backend.Name() != "ollama" {
			t.Errorf("expected ollama backend, got %q", backend.Name())
		}
	})

	t.Run("gemini by name", func(t *testing.T) {
		t.Parallel()
		backend, err := NewBackend("gemini", "gemini-2.5-flash", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backend.Name() != "gemini" {
			t.Errorf("expected gemini backend, got %q", backend.Name())
		}
	})

	t.Run("empty name uses the default backend", func(t *testing.T) {
		t.Parallel()
		backend, err := NewBackend("", "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backend.Name() != config.DefaultLLMBackend {
			t.Errorf("expected default backend, got %q", backend.Name())
		}
	})

	t.Run("empty name prefers the configured backend", func(t *testing.T) {
		t.Parallel()
		creds := &config.File{}
		creds.LLM.Backend = "gemini"
		creds.LLM.GeminiAPIKey = "key"

		backend, err := NewBackend("", "", creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if backend.Name() != "gemini" {
			t.Errorf("expected configured backend, got %q", backend.Name())
		}
	})

	t.Run("configured model is applied", func(t *testing.T) {
		t.Parallel()
		creds := &config.File{}
		creds.LLM.Model = "qwen2.5"

		backend, err := NewBackend("ollama", "", creds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ollama, ok := backend.(*OllamaBackend)
		if !ok {
			t.Fatalf("expected *OllamaBackend, got %T", backend)
		}
		if ollama.Model() != "qwen2.5" {
			t.Errorf("expected configured model, got %q", ollama.Model())
		}
	})

	t.Run("unknown backend returns ErrUnknownBackend", func(t *testing.T) {
		t.Parallel()
		_, err := NewBackend("chatgpt", "", nil)
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("expected ErrUnknownBackend, got %v", err)
		}
	})
}
