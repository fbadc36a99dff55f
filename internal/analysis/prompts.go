package analysis

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/or1un/mosaic/internal/config"
)

//go:embed prompts/*.md
var builtinPrompts embed.FS

// ErrPromptNotFound is returned when a prompt template does not exist,
// neither built-in nor in the user prompt directory.
var ErrPromptNotFound = errors.New("prompt template not found")

// UserPromptDir returns the directory for user-supplied prompt templates.
// Files named <name>.md there are available alongside the built-ins, and
// a user template shadows a built-in with the same name.
func UserPromptDir() string {
	return filepath.Join(config.XDGConfigDir(), "prompts")
}

// ListPrompts returns all available prompt template names, built-in and
// user-supplied, sorted and deduplicated.
func ListPrompts() ([]string, error) {
	names := make(map[string]bool)

	entries, err := builtinPrompts.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in prompts: %w", err)
	}
	for _, entry := range entries {
		names[strings.TrimSuffix(entry.Name(), ".md")] = true
	}

	userEntries, err := os.ReadDir(UserPromptDir())
	if err == nil {
		for _, entry := range userEntries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			names[strings.TrimSuffix(entry.Name(), ".md")] = true
		}
	}

	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)
	return list, nil
}

// LoadPrompt returns the template text for a prompt name.
// User templates take precedence over built-ins.
func LoadPrompt(name string) (string, error) {
	userPath := filepath.Join(UserPromptDir(), name+".md")
	if data, err := os.ReadFile(userPath); err == nil { //nolint:gosec // Path is under the user's own config dir
		return string(data), nil
	}

	data, err := builtinPrompts.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPromptNotFound, name)
	}
	return string(data), nil
}

// promptData is the data handed to prompt templates.
type promptData struct {
	// Subject is the collected username.
	Subject string

	// Data is the collected profile JSON.
	Data string
}

// UsesData reports whether a prompt template references the collected
// data itself. Callers hand the data to the backend separately when it
// does not, so a bare instruction template still sees the profile JSON.
func UsesData(templateText string) bool {
	return strings.Contains(templateText, ".Data")
}

// RenderPrompt renders a prompt template, substituting {{.Data}} with the
// collected JSON and {{.Subject}} with the subject name. Templates that
// reference neither get the data appended by the backend instead.
func RenderPrompt(templateText, subject, data string) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Subject: subject, Data: data}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return sb.String(), nil
}

// Metadata describes a completed analysis for the saved report header.
type Metadata struct {
	// Subject is the analyzed username.
	Subject string

	// PromptName is the template used.
	PromptName string

	// Backend is the backend name ("ollama" or "gemini").
	Backend string

	// Model is the model name.
	Model string

	// DataFile is the results file the analysis ran over.
	DataFile string

	// Timestamp is when the analysis completed.
	Timestamp time.Time
}

// FormatReport prepends the metadata header to the analysis output,
// producing the text saved into the results directory.
func FormatReport(meta Metadata, output string) string {
	var sb strings.Builder
	sb.WriteString("# Mosaic Analysis\n\n")
	sb.WriteString(fmt.Sprintf("- Subject: %s\n", meta.Subject))
	sb.WriteString(fmt.Sprintf("- Prompt: %s\n", meta.PromptName))
	sb.WriteString(fmt.Sprintf("- Backend: %s\n", meta.Backend))
	sb.WriteString(fmt.Sprintf("- Model: %s\n", meta.Model))
	if meta.DataFile != "" {
		sb.WriteString(fmt.Sprintf("- Data: %s\n", meta.DataFile))
	}
	sb.WriteString(fmt.Sprintf("- Date: %s\n", meta.Timestamp.Format(time.RFC3339)))
	sb.WriteString("\n---\n\n")
	sb.WriteString(output)
	if !strings.HasSuffix(output, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}
