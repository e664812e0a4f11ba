package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client on top of the google.golang.org/genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiClient creates a Gemini client. The context is only used for
// client construction.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: config.Model}, nil
}

// Name returns the provider tag.
func (c *GeminiClient) Name() string { return "gemini" }

// CallFunction asks the model to call the given tool and returns its
// arguments. Function calling mode ANY restricts the model to the one
// declared function.
func (c *GeminiClient) CallFunction(ctx context.Context, prompt string, tool ToolDefinition) (map[string]any, Usage, error) {
	schema, err := schemaFromMap(tool.InputSchema)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("invalid tool schema: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  schema,
			}},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{tool.Name},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("generate content: %w", err)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	for _, call := range resp.FunctionCalls() {
		if call.Name != tool.Name {
			continue
		}
		return call.Args, usage, nil
	}
	return nil, usage, nil
}

// schemaFromMap converts a JSON Schema object into the SDK schema type.
// Only the subset used by the tool definitions is supported: type,
// description, enum, properties, items and required.
func schemaFromMap(m map[string]any) (*genai.Schema, error) {
	if m == nil {
		return nil, nil
	}
	s := &genai.Schema{}

	if t, ok := m["type"].(string); ok {
		switch strings.ToLower(t) {
		case "object":
			s.Type = genai.TypeObject
		case "array":
			s.Type = genai.TypeArray
		case "string":
			s.Type = genai.TypeString
		case "number":
			s.Type = genai.TypeNumber
		case "integer":
			s.Type = genai.TypeInteger
		case "boolean":
			s.Type = genai.TypeBoolean
		default:
			return nil, fmt.Errorf("unsupported schema type %q", t)
		}
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, v := range enum {
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("non-string enum value %v", v)
			}
			s.Enum = append(s.Enum, str)
		}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			pm, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %q is not an object", name)
			}
			ps, err := schemaFromMap(pm)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			s.Properties[name] = ps
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		is, err := schemaFromMap(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = is
	}
	if req, ok := m["required"].([]any); ok {
		for _, v := range req {
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("non-string required entry %v", v)
			}
			s.Required = append(s.Required, str)
		}
	}
	return s, nil
}
