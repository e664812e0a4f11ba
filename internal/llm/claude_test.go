package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTool() ToolDefinition {
	return ToolDefinition{
		Name:        "select_relevant_views",
		Description: "pick views",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"relevant_view_names": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"relevant_view_names"},
		},
	}
}

func TestClaudeCallFunctionParsesToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "key123", r.Header.Get("x-api-key"))
		require.NotEmpty(t, r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		require.Equal(t, "select_relevant_views", req.ToolChoice.Name)
		require.Equal(t, "tool", req.ToolChoice.Type)

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "name": "", "input": nil},
				{
					"type":  "tool_use",
					"name":  "select_relevant_views",
					"input": map[string]any{"relevant_view_names": []string{"I_SUPPLIER"}},
				},
			},
			"usage": map[string]any{"input_tokens": 100, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	c := NewClaudeClientWithConfig(ClaudeConfig{APIKey: "key123", BaseURL: srv.URL})
	payload, usage, err := c.CallFunction(context.Background(), "prompt", testTool())
	require.NoError(t, err)
	require.NotNil(t, payload)

	names, ok := payload["relevant_view_names"].([]any)
	require.True(t, ok)
	require.Equal(t, "I_SUPPLIER", names[0])
	require.Equal(t, Usage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120}, usage)
}

func TestClaudeCallFunctionRetriesOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{
				"type":  "tool_use",
				"name":  "select_relevant_views",
				"input": map[string]any{"relevant_view_names": []string{}},
			}},
			"usage": map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}))
	defer srv.Close()

	c := NewClaudeClientWithConfig(ClaudeConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 10 * time.Second})
	payload, _, err := c.CallFunction(context.Background(), "p", testTool())
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Equal(t, 2, calls)
}

func TestClaudeCallFunctionNoToolUseYieldsNilPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text"}},
			"usage":   map[string]any{"input_tokens": 5, "output_tokens": 2},
		})
	}))
	defer srv.Close()

	c := NewClaudeClientWithConfig(ClaudeConfig{APIKey: "k", BaseURL: srv.URL})
	payload, usage, err := c.CallFunction(context.Background(), "p", testTool())
	require.NoError(t, err)
	require.Nil(t, payload)
	require.Equal(t, 7, usage.TotalTokens)
}

func TestClaudeMissingAPIKey(t *testing.T) {
	c := NewClaudeClient("")
	_, _, err := c.CallFunction(context.Background(), "p", testTool())
	require.Error(t, err)
}
