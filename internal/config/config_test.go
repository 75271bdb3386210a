package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/disfluent/internal/config"
	"github.com/MrWong99/disfluent/internal/disfluency"
	"github.com/MrWong99/disfluent/pkg/provider/llm"
)

// ── Analysis defaults ────────────────────────────────────────────────────────

func TestAnalysisConfig_PauseThresholdFallback(t *testing.T) {
	t.Parallel()
	var a config.AnalysisConfig
	if got := a.PauseThreshold(); got != disfluency.DefaultPauseThreshold {
		t.Errorf("zero config: got %v, want %v", got, disfluency.DefaultPauseThreshold)
	}

	a.PauseThresholdSeconds = 2.5
	if got := a.PauseThreshold(); got != 2.5 {
		t.Errorf("explicit threshold: got %v, want 2.5", got)
	}
}

func TestAnalysisConfig_WeightsMergeOverDefaults(t *testing.T) {
	t.Parallel()
	a := config.AnalysisConfig{
		CategoryWeights: map[string]float64{
			disfluency.CategoryFillerWords: 0.25,
		},
	}
	w := a.Weights()

	if got := w.Of(disfluency.CategoryFillerWords); got != 0.25 {
		t.Errorf("overridden weight: got %v, want 0.25", got)
	}
	defaults := disfluency.DefaultWeights()
	if got := w.Of(disfluency.CategoryPauses); got != defaults.Of(disfluency.CategoryPauses) {
		t.Errorf("untouched weight: got %v, want default %v", got, defaults.Of(disfluency.CategoryPauses))
	}
}

func TestAnalysisConfig_NilWeightsAreDefaults(t *testing.T) {
	t.Parallel()
	var a config.AnalysisConfig
	w := a.Weights()
	defaults := disfluency.DefaultWeights()
	for _, cat := range []string{
		disfluency.CategoryFillerWords,
		disfluency.CategoryWordRepetitions,
		disfluency.CategoryPauses,
	} {
		if w.Of(cat) != defaults.Of(cat) {
			t.Errorf("category %q: got %v, want %v", cat, w.Of(cat), defaults.Of(cat))
		}
	}
}

// ── Log levels ───────────────────────────────────────────────────────────────

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()
	valid := []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError}
	for _, lvl := range valid {
		if !lvl.IsValid() {
			t.Errorf("level %q should be valid", lvl)
		}
	}
	for _, lvl := range []config.LogLevel{"", "verbose", "trace"} {
		if lvl.IsValid() {
			t.Errorf("level %q should be invalid", lvl)
		}
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_UnknownLLM(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	_, err := reg.CreateLLM(config.ProviderEntry{Name: "nonexistent"})
	if err == nil {
		t.Fatal("expected error for unknown LLM provider")
	}
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("expected ErrProviderNotRegistered, got: %v", err)
	}
}

func TestRegistry_RegisteredLLM(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	want := &stubLLM{}
	reg.RegisterLLM("stub", func(e config.ProviderEntry) (llm.Provider, error) {
		return want, nil
	})
	got, err := reg.CreateLLM(config.ProviderEntry{Name: "stub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("returned provider is not the expected instance")
	}
}

func TestRegistry_FactoryReceivesEntry(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	var seen config.ProviderEntry
	reg.RegisterLLM("stub", func(e config.ProviderEntry) (llm.Provider, error) {
		seen = e
		return &stubLLM{}, nil
	})
	entry := config.ProviderEntry{Name: "stub", APIKey: "sk-test", Model: "gpt-4o-mini"}
	if _, err := reg.CreateLLM(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Name != entry.Name || seen.APIKey != entry.APIKey || seen.Model != entry.Model {
		t.Errorf("factory entry: got %+v, want %+v", seen, entry)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	wantErr := errors.New("factory boom")
	reg.RegisterLLM("broken", func(e config.ProviderEntry) (llm.Provider, error) {
		return nil, wantErr
	})
	_, err := reg.CreateLLM(config.ProviderEntry{Name: "broken"})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error %v, got %v", wantErr, err)
	}
}

// ── Stub implementation (satisfies the interface for the compiler) ───────────

type stubLLM struct{}

func (s *stubLLM) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{}, nil
}
func (s *stubLLM) Capabilities() llm.ModelCapabilities { return llm.ModelCapabilities{} }
