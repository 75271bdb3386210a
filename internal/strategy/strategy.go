// Package strategy combines the two disfluency detector paths into a single
// transcript analysis run.
//
// The pattern-based detector is always present; the classifier-based detector
// is optional since it needs a configured LLM provider. When both are present
// they run in parallel — the pattern pass is CPU-bound and cheap, the
// classifier pass blocks on one LLM round-trip per sentence.
package strategy

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/disfluent/internal/disfluency"
	"github.com/MrWong99/disfluent/internal/disfluency/classifier"
	"github.com/MrWong99/disfluent/internal/disfluency/pattern"
	"github.com/MrWong99/disfluent/internal/observe"
)

// Combined is the result of one full analysis run over a transcript.
type Combined struct {
	// Transcript is the analyzed input text, unmodified.
	Transcript string `json:"transcript"`

	// Words is the timestamped word list the analysis ran with, if any.
	Words []disfluency.Word `json:"words,omitempty"`

	// RegexAnalysis is the pattern-based detector's result. Always present.
	RegexAnalysis *pattern.Result `json:"regex_analysis"`

	// LLMAnalysis is the classifier-based detector's result. Nil when no LLM
	// provider is configured.
	LLMAnalysis *classifier.Result `json:"llm_analysis,omitempty"`
}

// Option configures a [Strategy].
type Option func(*Strategy)

// WithMetrics enables recording of analysis metrics. Default: no recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Strategy) {
		s.metrics = m
	}
}

// Strategy runs the configured detectors over transcripts.
type Strategy struct {
	pattern *pattern.Detector
	llm     *classifier.Detector
	metrics *observe.Metrics
}

// New creates a Strategy. patternDet must not be nil; llmDet may be nil to
// run pattern-based analysis only.
func New(patternDet *pattern.Detector, llmDet *classifier.Detector, opts ...Option) (*Strategy, error) {
	if patternDet == nil {
		return nil, fmt.Errorf("strategy: pattern detector must not be nil")
	}
	s := &Strategy{
		pattern: patternDet,
		llm:     llmDet,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze runs all configured detectors over the transcript and returns their
// combined results. The context bounds the classifier's LLM calls; the
// pattern pass does not block on I/O.
func (s *Strategy) Analyze(ctx context.Context, text string, words []disfluency.Word) (*Combined, error) {
	ctx, span := observe.StartSpan(ctx, "strategy.Analyze")
	defer span.End()

	combined := &Combined{
		Transcript: text,
		Words:      words,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		start := time.Now()
		combined.RegexAnalysis = s.pattern.Analyze(text, words)
		s.recordRun(egCtx, "pattern", time.Since(start),
			len(combined.RegexAnalysis.Sentences), combined.RegexAnalysis.Summary)
		return nil
	})

	if s.llm != nil {
		eg.Go(func() error {
			start := time.Now()
			combined.LLMAnalysis = s.llm.Analyze(egCtx, text, words)
			s.recordRun(egCtx, "llm", time.Since(start),
				len(combined.LLMAnalysis.Sentences), combined.LLMAnalysis.Summary)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("strategy: analyze: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPauses(ctx, len(combined.RegexAnalysis.Pauses))
	}

	return combined, nil
}

// recordRun records one detector pass when metrics are enabled. Pause counts
// are recorded once per analysis by the caller since both detectors see the
// same gaps.
func (s *Strategy) recordRun(ctx context.Context, detector string, elapsed time.Duration, sentences int, summary disfluency.Summary) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAnalysis(ctx, detector, elapsed.Seconds(), sentences)
	for category, stats := range summary.ByCategory {
		if category == disfluency.CategoryPauses {
			continue
		}
		s.metrics.RecordDisfluency(ctx, detector, category, stats.Count)
	}
}
