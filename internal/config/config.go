// Package config loads cdsmatch configuration from an optional YAML file
// with environment-variable overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all cdsmatch configuration.
type Config struct {
	// DataDir is the working directory holding input/output/archive/logs.
	DataDir string `yaml:"data_dir"`

	// Language selects the catalog content language ("en", "zh", "ja").
	Language string `yaml:"language"`

	Debug bool `yaml:"debug"`

	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Sheet     SheetConfig     `yaml:"sheet"`
	Match     MatchConfig     `yaml:"match"`
	Verify    VerifyConfig    `yaml:"verify"`
}

// LLMConfig configures the language-model collaborator.
type LLMConfig struct {
	Provider string `yaml:"provider"` // claude, gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding engine used for similarity search.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // genai or ollama
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
}

// CatalogConfig configures the local catalog store.
type CatalogConfig struct {
	Path string `yaml:"path"` // SQLite database path
}

// MatchConfig configures the matching engine.
type MatchConfig struct {
	BatchSize            int     `yaml:"batch_size"`
	MaxConcurrentBatches int     `yaml:"max_concurrent_batches"`
	MaxConcurrentFiles   int     `yaml:"max_concurrent_files"`
	CustomFieldThreshold float64 `yaml:"custom_field_threshold"`
}

// VerifyConfig configures the downstream record-existence check.
type VerifyConfig struct {
	Enabled          bool   `yaml:"enabled"`
	URL              string `yaml:"url"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	RejectionMessage string `yaml:"rejection_message"`
}

// Default returns the built-in configuration. Sheet geometry matches the
// standard interface definition workbook.
func Default() *Config {
	return &Config{
		DataDir:  "data",
		Language: "en",
		// Provider left empty: the llm factory auto-detects from the
		// available API keys unless one is configured.
		LLM: LLMConfig{},
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			Model:          "embeddinggemma",
		},
		Catalog: CatalogConfig{
			Path: "catalog.db",
		},
		Sheet: DefaultSheetConfig(),
		Match: MatchConfig{
			BatchSize:            30,
			MaxConcurrentBatches: 5,
			MaxConcurrentFiles:   2,
			CustomFieldThreshold: 0.75,
		},
		Verify: VerifyConfig{
			RejectionMessage: "Rejected by existence check",
		},
	}
}

// Load reads configuration from path (if it exists) over the defaults and
// applies environment overrides last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.LLM.Provider, "AI_PROVIDER")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Embedding.APIKey, "GEMINI_API_KEY")
	setString(&c.Catalog.Path, "CATALOG_DB")
	setString(&c.Language, "MATCH_LANGUAGE")
	setInt(&c.Match.BatchSize, "LLM_BATCH_SIZE")
	setInt(&c.Match.MaxConcurrentBatches, "LLM_MAX_WORKERS")
	setInt(&c.Match.MaxConcurrentFiles, "FILE_MAX_WORKERS")
	setFloat(&c.Match.CustomFieldThreshold, "CUSTOM_FIELD_THRESHOLD")
	setString(&c.Verify.URL, "ODATA_URL")
	setString(&c.Verify.User, "ODATA_USER")
	setString(&c.Verify.Password, "ODATA_PASSWORD")
	setString(&c.Verify.RejectionMessage, "ODATA_MESSAGE")
	if v := os.Getenv("VERIFY_FLAG"); v != "" {
		c.Verify.Enabled = v == "true"
	}
}

func (c *Config) validate() error {
	if c.Match.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.Match.BatchSize)
	}
	if c.Match.MaxConcurrentBatches <= 0 {
		return fmt.Errorf("max_concurrent_batches must be positive, got %d", c.Match.MaxConcurrentBatches)
	}
	if c.Match.MaxConcurrentFiles <= 0 {
		return fmt.Errorf("max_concurrent_files must be positive, got %d", c.Match.MaxConcurrentFiles)
	}
	if c.Match.CustomFieldThreshold < 0 || c.Match.CustomFieldThreshold > 1 {
		return fmt.Errorf("custom_field_threshold must be in [0,1], got %g", c.Match.CustomFieldThreshold)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
