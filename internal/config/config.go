// Package config provides the configuration schema, loader, and provider
// registry for the disfluent analysis service.
package config

import "github.com/MrWong99/disfluent/internal/disfluency"

// LogLevel controls log verbosity for the disfluent service.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for disfluent.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Providers ProvidersConfig `yaml:"providers"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AnalysisConfig tunes the disfluency detectors.
type AnalysisConfig struct {
	// PauseThresholdSeconds is the minimum silence gap between two
	// consecutive timestamped words that counts as a pause.
	// Zero means use the built-in default of 1.0 seconds.
	PauseThresholdSeconds float64 `yaml:"pause_threshold_seconds"`

	// FuzzyPositions enables Jaro-Winkler similarity as a last-resort stage
	// when reconciling timestamped words with transcript text. Off by
	// default: exact and punctuation-stripped matching cover well-formed
	// transcripts, and fuzzy matching can mislocate very short words.
	FuzzyPositions bool `yaml:"fuzzy_positions"`

	// FuzzyThreshold is the minimum Jaro-Winkler similarity in [0, 1] for a
	// fuzzy position match. Zero means use the built-in default of 0.85.
	// Ignored unless FuzzyPositions is true.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// CategoryWeights overrides the severity weight of individual disfluency
	// categories. Categories not listed keep their built-in weight.
	CategoryWeights map[string]float64 `yaml:"category_weights"`
}

// PauseThreshold returns the configured pause threshold, falling back to the
// built-in default when unset.
func (a AnalysisConfig) PauseThreshold() float64 {
	if a.PauseThresholdSeconds > 0 {
		return a.PauseThresholdSeconds
	}
	return disfluency.DefaultPauseThreshold
}

// Weights returns the built-in category weight table with any configured
// overrides applied.
func (a AnalysisConfig) Weights() disfluency.Weights {
	weights := disfluency.DefaultWeights()
	for category, weight := range a.CategoryWeights {
		weights[category] = weight
	}
	return weights
}

// ProvidersConfig declares which provider implementation to use for the
// classification backend. The entry selects a named provider registered in
// the [Registry].
type ProvidersConfig struct {
	LLM ProviderEntry `yaml:"llm"`
}

// ProviderEntry is the common configuration block for a provider.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "anthropic").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// TelemetryConfig holds OpenTelemetry resource settings.
type TelemetryConfig struct {
	// ServiceName overrides the service.name resource attribute.
	// Empty means use the built-in default "disfluent".
	ServiceName string `yaml:"service_name"`
}
