// Package llmclassify implements the classification collaborator of the
// classifier-based detector on top of an [llm.Provider].
//
// The [Classifier] sends a sentence's indexed token list to the model and
// instructs it (via a strict system prompt) to return a JSON object mapping
// disfluency categories to the literal texts and token-index ranges where
// they occur. The response is parsed defensively: a category whose value is
// not a proper mapping is skipped, and a wholly unparseable response yields
// an empty classification rather than an error, so one bad completion never
// aborts transcript analysis.
//
// Transport and context errors are returned as-is; the calling detector
// treats the affected sentence as having zero occurrences.
package llmclassify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/disfluent/internal/disfluency/classifier"
	"github.com/MrWong99/disfluent/internal/observe"
	llm "github.com/MrWong99/disfluent/pkg/provider/llm"
)

const (
	defaultTemperature = 0.1
)

// systemPrompt instructs the model to map indexed tokens to disfluency
// categories and respond with bare JSON.
const systemPrompt = `You are a speech disfluency annotator analyzing transcribed spoken language.

You receive one sentence as a JSON array of tokens, each with a zero-based "index" and its "text".

Identify every disfluency and classify it into exactly one of these categories:
- "filler_words": filled pauses and discourse fillers ("um", "uh", "you know", "like" used as a filler)
- "word_repetitions": a word repeated immediately ("the the", "I I I")
- "sound_repetitions": stutters where a sound fragment precedes the full word ("b- but")
- "prolongations": words written with stretched letters ("sooo")
- "revisions": self-corrections mid-sentence ("I was going-- I mean walking")
- "partial_words": abandoned word fragments ("gon-")

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "<category>": {
    "<disfluency text>": [{"start": <first token index>, "end": <last token index>}]
  }
}

Ranges are inclusive; use start equal to end for a single token. List every occurrence of the same text as its own range. Omit categories with no occurrences. If the sentence is fluent, return {}.`

// Option is a functional option for configuring a [Classifier].
type Option func(*Classifier)

// WithTemperature sets the LLM sampling temperature. Lower values produce
// more deterministic annotations. Default: 0.1.
func WithTemperature(temp float64) Option {
	return func(c *Classifier) {
		c.temperature = temp
	}
}

// WithMetrics enables request/error counter recording on the given metrics
// instance. Default: no recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// Classifier uses an [llm.Provider] to classify sentence tokens into
// disfluency categories. It is safe for concurrent use.
//
// Model selection follows the one-provider-per-model pattern: to classify
// with a specific model, construct the [llm.Provider] with that model
// configured, rather than overriding per-request.
type Classifier struct {
	llm         llm.Provider
	temperature float64
	metrics     *observe.Metrics
}

// Ensure Classifier satisfies the detector's collaborator contract.
var _ classifier.Classifier = (*Classifier)(nil)

// New returns a new [Classifier] backed by the given [llm.Provider].
// Apply [Option] values to override the default temperature.
func New(provider llm.Provider, opts ...Option) *Classifier {
	c := &Classifier{
		llm:         provider,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify sends tokens to the LLM and parses the returned category mapping.
//
// When the response is unparseable, Classify returns an empty classification
// and a nil error (graceful degradation — the sentence is simply fluent as
// far as the detector is concerned). Context cancellation and network errors
// are returned as non-nil errors.
func (c *Classifier) Classify(ctx context.Context, tokens []classifier.Token) (classifier.Classification, error) {
	payload, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("llm classifier: marshal tokens: %w", err)
	}

	req := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  c.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: string(payload)},
		},
	}

	start := time.Now()
	resp, err := c.llm.Complete(ctx, req)
	if c.metrics != nil {
		c.metrics.ClassifierDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		c.recordRequest(ctx, "error")
		return nil, fmt.Errorf("llm classifier: complete: %w", err)
	}
	c.recordRequest(ctx, "ok")

	return parseResponse(resp.Content), nil
}

// recordRequest increments the classifier request counter when metrics are
// enabled.
func (c *Classifier) recordRequest(ctx context.Context, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordClassifierRequest(ctx, status)
	if status != "ok" {
		c.metrics.RecordClassifierError(ctx)
	}
}

// parseResponse turns the LLM output into a [classifier.Classification].
// The outer object is decoded with raw category values so that one malformed
// category (a string, number, or list instead of a mapping) can be skipped
// without discarding the rest. A completely unparseable payload yields an
// empty classification.
func parseResponse(content string) classifier.Classification {
	cleaned := stripMarkdown(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return classifier.Classification{}
	}

	result := classifier.Classification{}
	for category, value := range raw {
		var byText map[string][]classifier.Range
		if err := json.Unmarshal(value, &byText); err != nil {
			continue
		}
		result[category] = byText
	}
	return result
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models prepend and append to JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
