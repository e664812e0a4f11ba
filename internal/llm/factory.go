package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cdsmatch/internal/config"
)

// Providers recognized by New.
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// detectionOrder is the fallback priority when no provider is configured.
var detectionOrder = []string{ProviderClaude, ProviderGemini, ProviderOpenAI}

// envKeys maps each provider to its conventional API-key variable.
var envKeys = map[string]string{
	ProviderClaude: "ANTHROPIC_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
}

// New builds a Client from config. An explicitly configured provider must
// have a key (from config or its environment variable) or construction
// fails; with no provider configured the first provider in detection order
// with an available key wins.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	timeout := defaultTimeout
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid llm timeout %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		detected, err := detectProvider(cfg.APIKey)
		if err != nil {
			return nil, err
		}
		provider = detected
	}
	if _, ok := envKeys[provider]; !ok {
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	key := keyOrEnv(cfg.APIKey, envKeys[provider])
	if key == "" {
		return nil, fmt.Errorf("no API key for provider %q: set llm.api_key or %s", provider, envKeys[provider])
	}

	switch provider {
	case ProviderClaude:
		return NewClaudeClientWithConfig(ClaudeConfig{
			APIKey:  key,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case ProviderOpenAI:
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  key,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	default:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey: key,
			Model:  cfg.Model,
		})
	}
}

// detectProvider returns the first provider in detection order with a key
// available. A configured key without a provider name selects the first
// provider outright.
func detectProvider(configKey string) (string, error) {
	if configKey != "" {
		return detectionOrder[0], nil
	}
	for _, p := range detectionOrder {
		if os.Getenv(envKeys[p]) != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("no llm provider configured and no API key found (checked %s, %s, %s)",
		envKeys[ProviderClaude], envKeys[ProviderGemini], envKeys[ProviderOpenAI])
}

func keyOrEnv(key, env string) string {
	if key != "" {
		return key
	}
	return os.Getenv(env)
}
