package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClaudeClient implements Client against the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// ClaudeConfig holds configuration for the Claude client.
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultClaudeConfig returns sensible defaults.
func DefaultClaudeConfig(apiKey string) ClaudeConfig {
	return ClaudeConfig{
		APIKey:    apiKey,
		BaseURL:   "https://api.anthropic.com/v1",
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: defaultMaxTokens,
		Timeout:   defaultTimeout,
	}
}

// NewClaudeClient creates a Claude client with default config.
func NewClaudeClient(apiKey string) *ClaudeClient {
	return NewClaudeClientWithConfig(DefaultClaudeConfig(apiKey))
}

// NewClaudeClientWithConfig creates a Claude client with custom config.
func NewClaudeClientWithConfig(config ClaudeConfig) *ClaudeClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &ClaudeClient{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		model:      config.Model,
		maxTokens:  config.MaxTokens,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type claudeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type claudeToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type claudeRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	Messages    []claudeMessage  `json:"messages"`
	Tools       []claudeTool     `json:"tools"`
	ToolChoice  claudeToolChoice `json:"tool_choice"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Name returns the provider tag.
func (c *ClaudeClient) Name() string { return "claude" }

// CallFunction asks the model to call the given tool and returns its
// arguments. tool_choice forces the named tool, so a response without a
// tool_use block yields a nil payload.
func (c *ClaudeClient) CallFunction(ctx context.Context, prompt string, tool ToolDefinition) (map[string]any, Usage, error) {
	if c.apiKey == "" {
		return nil, Usage{}, fmt.Errorf("API key not configured")
	}

	reqBody := claudeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: defaultTemperature,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
		Tools: []claudeTool{{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}},
		ToolChoice: claudeToolChoice{Type: "tool", Name: tool.Name},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for i := 0; i <= defaultMaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, Usage{}, ctx.Err()
			case <-time.After(backoff(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(jsonData))
		if err != nil {
			return nil, Usage{}, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API returned status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, Usage{}, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var apiResp claudeResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, Usage{}, fmt.Errorf("failed to parse response: %w", err)
		}
		if apiResp.Error != nil {
			return nil, Usage{}, fmt.Errorf("API error: %s", apiResp.Error.Message)
		}

		usage := Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
			TotalTokens:  apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		}

		for _, block := range apiResp.Content {
			if block.Type != "tool_use" || block.Name != tool.Name {
				continue
			}
			var args map[string]any
			if err := json.Unmarshal(block.Input, &args); err != nil {
				return nil, usage, fmt.Errorf("failed to parse tool input: %w", err)
			}
			return args, usage, nil
		}
		return nil, usage, nil
	}

	return nil, Usage{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}
