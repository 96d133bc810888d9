// Package llm talks to hosted language models and returns JSON that has been
// checked against a schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a single response for a single prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string
	// Schema, when set, asks the provider for JSON matching it. The response
	// is validated before it is returned.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content      json.RawMessage
	Model        string
	InputTokens  int
	OutputTokens int
	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}

// resolveModel maps a short alias to a model id; unknown names pass through.
func resolveModel(name, fallback string, aliases map[string]string) string {
	if name == "" {
		name = fallback
	}
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
