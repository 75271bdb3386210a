package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked in detail;
// provider changes require a restart and are flagged as such.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AnalysisChanged is true if any detector tuning changed (pause
	// threshold, fuzzy position settings, or category weights). Detectors
	// are cheap to rebuild, so this is safe to apply between transcripts.
	AnalysisChanged bool

	// ProvidersChanged is true if the LLM provider entry changed. Providers
	// hold credentials and connections and are not rebuilt on reload.
	ProvidersChanged bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}

	if analysisChanged(old.Analysis, new.Analysis) {
		d.AnalysisChanged = true
	}

	if old.Providers.LLM.Name != new.Providers.LLM.Name ||
		old.Providers.LLM.APIKey != new.Providers.LLM.APIKey ||
		old.Providers.LLM.BaseURL != new.Providers.LLM.BaseURL ||
		old.Providers.LLM.Model != new.Providers.LLM.Model {
		d.ProvidersChanged = true
	}

	return d
}

// analysisChanged compares two analysis configs field by field, treating the
// weight maps as equal when they contain the same entries.
func analysisChanged(old, new AnalysisConfig) bool {
	if old.PauseThresholdSeconds != new.PauseThresholdSeconds ||
		old.FuzzyPositions != new.FuzzyPositions ||
		old.FuzzyThreshold != new.FuzzyThreshold {
		return true
	}
	if len(old.CategoryWeights) != len(new.CategoryWeights) {
		return true
	}
	for category, weight := range old.CategoryWeights {
		if newWeight, ok := new.CategoryWeights[category]; !ok || newWeight != weight {
			return true
		}
	}
	return false
}
