package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/MrWong99/disfluent/internal/disfluency"
	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// knownCategories lists the disfluency categories the detectors produce.
// Weight overrides for other names are accepted (unknown categories score
// with weight 1 by default) but flagged as probable typos.
var knownCategories = []string{
	disfluency.CategoryFillerWords,
	disfluency.CategoryWordRepetitions,
	disfluency.CategorySoundRepetitions,
	disfluency.CategoryProlongations,
	disfluency.CategoryRevisions,
	disfluency.CategoryPartialWords,
	disfluency.CategoryPauses,
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Analysis
	if cfg.Analysis.PauseThresholdSeconds < 0 {
		errs = append(errs, fmt.Errorf("analysis.pause_threshold_seconds %.2f must not be negative", cfg.Analysis.PauseThresholdSeconds))
	}
	if cfg.Analysis.FuzzyThreshold < 0 || cfg.Analysis.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("analysis.fuzzy_threshold %.2f is out of range [0, 1]", cfg.Analysis.FuzzyThreshold))
	}
	if cfg.Analysis.FuzzyThreshold != 0 && !cfg.Analysis.FuzzyPositions {
		slog.Warn("analysis.fuzzy_threshold is set but analysis.fuzzy_positions is false; threshold will be ignored")
	}
	for category, weight := range cfg.Analysis.CategoryWeights {
		if weight < 0 {
			errs = append(errs, fmt.Errorf("analysis.category_weights[%q] %.2f must not be negative", category, weight))
		}
		if !slices.Contains(knownCategories, category) {
			slog.Warn("unknown disfluency category in weight overrides — may be a typo",
				"category", category,
				"known", knownCategories,
			)
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)

	// Provider availability warning.
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; only the pattern-based detector will run")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
