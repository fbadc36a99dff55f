// Package analysis runs LLM analysis over collected profile data.
//
// A Backend abstracts the inference endpoint: OllamaBackend talks to a
// local Ollama server, GeminiBackend to the Gemini API. Prompt templates
// are Markdown files with a {{.Data}} placeholder; built-in templates are
// embedded and user templates are loaded from the XDG config directory.
//
// Design decision: Analysis is decoupled from collection. It operates on
// a results JSON file, so the expensive collection step never has to be
// repeated to try a different prompt or model.
package analysis
