package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/disfluent/internal/config"
	"github.com/MrWong99/disfluent/internal/disfluency"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: debug
analysis:
  pause_threshold_seconds: 0.8
  fuzzy_positions: true
  fuzzy_threshold: 0.9
  category_weights:
    filler_words: 0.5
    pauses: 2.0
providers:
  llm:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
telemetry:
  service_name: disfluent-staging
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q, want debug", cfg.LogLevel)
	}
	if cfg.Analysis.PauseThresholdSeconds != 0.8 {
		t.Errorf("pause_threshold_seconds: got %v, want 0.8", cfg.Analysis.PauseThresholdSeconds)
	}
	if !cfg.Analysis.FuzzyPositions || cfg.Analysis.FuzzyThreshold != 0.9 {
		t.Errorf("fuzzy settings: got %+v", cfg.Analysis)
	}
	if cfg.Providers.LLM.Name != "openai" || cfg.Providers.LLM.Model != "gpt-4o-mini" {
		t.Errorf("llm provider: got %+v", cfg.Providers.LLM)
	}
	if cfg.Telemetry.ServiceName != "disfluent-staging" {
		t.Errorf("service_name: got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: info
anallysis:
  pause_threshold_seconds: 0.8
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown top-level field, got nil")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: verbose
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_NegativePauseThreshold(t *testing.T) {
	t.Parallel()
	yaml := `
analysis:
  pause_threshold_seconds: -1.0
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative pause threshold, got nil")
	}
}

func TestValidate_FuzzyThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
analysis:
  fuzzy_positions: true
  fuzzy_threshold: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range fuzzy threshold, got nil")
	}
}

func TestValidate_NegativeCategoryWeight(t *testing.T) {
	t.Parallel()
	yaml := `
analysis:
  category_weights:
    filler_words: -0.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative category weight, got nil")
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: bananas
analysis:
  pause_threshold_seconds: -2
  fuzzy_threshold: 7
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected joined validation errors, got nil")
	}
	for _, want := range []string{"log_level", "pause_threshold_seconds", "fuzzy_threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q, got: %v", want, err)
		}
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("empty config should be valid, got: %v", err)
	}
	if cfg.Analysis.PauseThreshold() != disfluency.DefaultPauseThreshold {
		t.Errorf("default pause threshold: got %v, want %v",
			cfg.Analysis.PauseThreshold(), disfluency.DefaultPauseThreshold)
	}
}

func TestValidate_UnknownProviderNameAccepted(t *testing.T) {
	t.Parallel()
	// Unknown provider names only warn so custom registrations still work.
	yaml := `
providers:
  llm:
    name: homegrown
    model: local-7b
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.LLM.Name != "homegrown" {
		t.Errorf("llm name: got %q", cfg.Providers.LLM.Name)
	}
}
