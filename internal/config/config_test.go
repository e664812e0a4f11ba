package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Match.BatchSize != 30 || cfg.Match.MaxConcurrentBatches != 5 || cfg.Match.MaxConcurrentFiles != 2 {
		t.Fatalf("match defaults = %+v", cfg.Match)
	}
	if cfg.Match.CustomFieldThreshold != 0.75 {
		t.Fatalf("threshold = %g, want 0.75", cfg.Match.CustomFieldThreshold)
	}
	if cfg.LLM.Provider != "" {
		t.Fatalf("provider = %q, want empty for auto-detection", cfg.LLM.Provider)
	}
	if cfg.Sheet.SheetName == "" || cfg.Sheet.StartRow != 13 || cfg.Sheet.HeaderRow != 6 {
		t.Fatalf("sheet defaults = %+v", cfg.Sheet)
	}
}

func TestLoadYAMLOverlayAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
language: ja
match:
  batch_size: 10
llm:
  provider: gemini
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LLM_BATCH_SIZE", "20")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("VERIFY_FLAG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "ja" {
		t.Errorf("language = %q, want yaml value", cfg.Language)
	}
	// Environment wins over the file.
	if cfg.Match.BatchSize != 20 {
		t.Errorf("batch size = %d, want env override 20", cfg.Match.BatchSize)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("provider = %q, want env override openai", cfg.LLM.Provider)
	}
	if !cfg.Verify.Enabled {
		t.Error("verify should be enabled by VERIFY_FLAG")
	}
	// Untouched values keep their defaults.
	if cfg.Match.MaxConcurrentBatches != 5 {
		t.Errorf("workers = %d, want default 5", cfg.Match.MaxConcurrentBatches)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Match.BatchSize != 30 {
		t.Fatalf("batch size = %d, want default", cfg.Match.BatchSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Match.CustomFieldThreshold = 1.5
	if err := cfg.validate(); err == nil {
		t.Fatal("threshold > 1 must fail validation")
	}

	cfg = Default()
	cfg.Match.BatchSize = 0
	if err := cfg.validate(); err == nil {
		t.Fatal("zero batch size must fail validation")
	}
}
