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

// OpenAIClient implements Client against the OpenAI Chat Completions API.
// Any OpenAI-compatible gateway works via BaseURL.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:    apiKey,
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o",
		MaxTokens: defaultMaxTokens,
		Timeout:   defaultTimeout,
	}
}

// NewOpenAIClient creates an OpenAI client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates an OpenAI client with custom config.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "gpt-4o"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &OpenAIClient{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		model:      config.Model,
		maxTokens:  config.MaxTokens,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type openAIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string           `json:"model"`
	Messages    []openAIMessage  `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
	Tools       []openAITool     `json:"tools"`
	ToolChoice  openAIToolChoice `json:"tool_choice"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Name returns the provider tag.
func (c *OpenAIClient) Name() string { return "openai" }

// CallFunction asks the model to call the given tool and returns its
// arguments parsed from the first tool call.
func (c *OpenAIClient) CallFunction(ctx context.Context, prompt string, tool ToolDefinition) (map[string]any, Usage, error) {
	if c.apiKey == "" {
		return nil, Usage{}, fmt.Errorf("API key not configured")
	}

	choice := openAIToolChoice{Type: "function"}
	choice.Function.Name = tool.Name
	reqBody := openAIRequest{
		Model:       c.model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: defaultTemperature,
		Tools: []openAITool{{
			Type: "function",
			Function: openAIFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		}},
		ToolChoice: choice,
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

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return nil, Usage{}, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

		var apiResp openAIResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, Usage{}, fmt.Errorf("failed to parse response: %w", err)
		}
		if apiResp.Error != nil {
			return nil, Usage{}, fmt.Errorf("API error: %s", apiResp.Error.Message)
		}

		usage := Usage{
			InputTokens:  apiResp.Usage.PromptTokens,
			OutputTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:  apiResp.Usage.TotalTokens,
		}

		if len(apiResp.Choices) == 0 {
			return nil, usage, nil
		}
		for _, call := range apiResp.Choices[0].Message.ToolCalls {
			if call.Function.Name != tool.Name {
				continue
			}
			var args map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, usage, fmt.Errorf("failed to parse tool arguments: %w", err)
			}
			return args, usage, nil
		}
		return nil, usage, nil
	}

	return nil, Usage{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}
