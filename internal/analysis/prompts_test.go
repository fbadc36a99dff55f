package analysis

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestListPrompts tests built-in prompt discovery.
func TestListPrompts(t *testing.T) {
	t.Parallel()

	prompts, err := ListPrompts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"behavioral", "influence", "technical"} {
		found := false
		for _, name := range prompts {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected built-in prompt %q in %v", want, prompts)
		}
	}

	// The list is sorted.
	for i := 1; i < len(prompts); i++ {
		if prompts[i-1] > prompts[i] {
			t.Errorf("expected sorted list, got %v", prompts)
			break
		}
	}
}

// TestLoadPrompt tests prompt template loading.
func TestLoadPrompt(t *testing.T) {
	t.Parallel()

	t.Run("built-in prompt", func(t *testing.T) {
		t.Parallel()
		text, err := LoadPrompt("behavioral")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text == "" {
			t.Error("expected non-empty template")
		}
	})

	t.Run("unknown prompt returns ErrPromptNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadPrompt("no-such-prompt")
		if !errors.Is(err, ErrPromptNotFound) {
			t.Errorf("expected ErrPromptNotFound, got %v", err)
		}
	})
}

// TestRenderPrompt tests template substitution.
func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	t.Run("substitutes subject and data", func(t *testing.T) {
		t.Parallel()
		out, err := RenderPrompt("Analyze {{.Subject}}:\n{{.Data}}", "octocat", `{"x":1}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "Analyze octocat:\n{\"x\":1}" {
			t.Errorf("unexpected render %q", out)
		}
	})

	t.Run("template without placeholders passes through", func(t *testing.T) {
		t.Parallel()
		out, err := RenderPrompt("Plain instructions.", "octocat", "data")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "Plain instructions." {
			t.Errorf("unexpected render %q", out)
		}
	})

	t.Run("invalid template returns an error", func(t *testing.T) {
		t.Parallel()
		if _, err := RenderPrompt("{{.Broken", "octocat", ""); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("built-in templates render", func(t *testing.T) {
		t.Parallel()
		prompts, err := ListPrompts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range prompts {
			text, err := LoadPrompt(name)
			if err != nil {
				t.Fatalf("LoadPrompt(%q): %v", name, err)
			}
			if _, err := RenderPrompt(text, "octocat", "{}"); err != nil {
				t.Errorf("RenderPrompt(%q): %v", name, err)
			}
		}
	})
}

// TestUsesData tests detection of templates referencing collected data.
func TestUsesData(t *testing.T) {
	t.Parallel()

	t.Run("built-in templates reference the data", func(t *testing.T) {
		t.Parallel()
		prompts, err := ListPrompts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range prompts {
			text, err := LoadPrompt(name)
			if err != nil {
				t.Fatalf("LoadPrompt(%q): %v", name, err)
			}
			if !UsesData(text) {
				t.Errorf("built-in prompt %q does not reference {{.Data}}", name)
			}
		}
	})

	t.Run("bare instruction template does not", func(t *testing.T) {
		t.Parallel()
		if UsesData("Summarize the exposure of {{.Subject}}.") {
			t.Error("expected UsesData to report false for a data-less template")
		}
	})
}

// TestFormatReport tests the saved analysis report layout.
func TestFormatReport(t *testing.T) {
	t.Parallel()

	meta := Metadata{
		Subject:    "octocat",
		PromptName: "behavioral",
		Backend:    "ollama",
		Model:      "llama3.2",
		DataFile:   "results/octocat_20260830_120000.json",
		Timestamp:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	out := FormatReport(meta, "The subject posts about Go.")

	for _, want := range []string{
		"# Mosaic Analysis",
		"- Subject: octocat",
		"- Prompt: behavioral",
		"- Backend: ollama",
		"- Model: llama3.2",
		"- Data: results/octocat_20260830_120000.json",
		"- Date: 2026-08-30T12:00:00Z",
		"---",
		"The subject posts about Go.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected trailing newline")
	}

	// The data line is omitted when no file was used.
	meta.DataFile = ""
	if strings.Contains(FormatReport(meta, "x\n"), "- Data:") {
		t.Error("expected data line omitted")
	}
}
