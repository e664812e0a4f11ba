// Package llm provides the language-model collaborator used by the matching
// engine. The engine depends only on the Client interface: given a prompt and
// one function-call schema, a provider returns zero or one structured
// payload. Provider wire formats stay inside this package.
package llm

import (
	"context"
	"time"
)

// ToolDefinition describes the single function the model is required to call.
// InputSchema is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Usage captures token usage metrics from one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Client is the provider-tagged capability interface. CallFunction returns
// the function-call arguments as a generic map, or nil when the model
// produced no structured payload at all. A nil payload with a nil error is a
// valid outcome; the caller decides whether that is fatal.
type Client interface {
	Name() string
	CallFunction(ctx context.Context, prompt string, tool ToolDefinition) (map[string]any, Usage, error)
}

const (
	defaultTimeout     = 2 * time.Minute
	defaultMaxRetries  = 3
	defaultTemperature = 0.1
	defaultMaxTokens   = 8192
)

// backoff returns the retry delay for the given 1-based attempt: 1s, 2s, 4s.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}
