package classifier

import (
	"context"
	"log/slog"
	"sort"

	"github.com/MrWong99/disfluent/internal/disfluency"
)

// Sentence is one annotated sentence of the classifier-based result. Unlike
// the pattern path, Text is always the original sentence: pause markers are
// never spliced in, because they would corrupt the token indices the
// classifier reported against.
type Sentence struct {
	Text          string       `json:"text"`
	Tokens        []Token      `json:"tokens"`
	Disfluencies  []Occurrence `json:"disfluencies"`
	StruggleScore float64      `json:"struggle_score"`
}

// Result is the full classifier-based analysis of one transcript. Pauses
// holds every detected pause, not only sentence-localized ones.
type Result struct {
	Sentences []Sentence         `json:"annotated_sentences"`
	Pauses    []disfluency.Pause `json:"pauses"`
	Summary   disfluency.Summary `json:"summary"`
}

// Option is a functional option for configuring a [Detector].
type Option func(*Detector)

// WithWeights overrides the default category weight table.
func WithWeights(w disfluency.Weights) Option {
	return func(d *Detector) {
		d.weights = w
	}
}

// WithPauseThreshold overrides the minimum pause gap in seconds.
// Default: [disfluency.DefaultPauseThreshold].
func WithPauseThreshold(seconds float64) Option {
	return func(d *Detector) {
		d.pauseThreshold = seconds
	}
}

// WithLogger sets the logger used to report per-sentence classification
// failures. Default: [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector is the classifier-based disfluency detector. It is stateless
// across calls; concurrency safety is that of the wrapped [Classifier].
type Detector struct {
	classifier     Classifier
	weights        disfluency.Weights
	pauseThreshold float64
	logger         *slog.Logger
}

// New returns a [Detector] delegating detection to c.
func New(c Classifier, opts ...Option) *Detector {
	d := &Detector{
		classifier:     c,
		weights:        disfluency.DefaultWeights(),
		pauseThreshold: disfluency.DefaultPauseThreshold,
		logger:         slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Analyze classifies every sentence of text and returns annotated sentences
// with per-sentence struggle scores plus a transcript-level summary.
//
// Analysis is best effort: a failed or malformed classification affects only
// its own sentence, which is reported with zero occurrences. Analyze always
// returns a well-formed result, including for empty text.
func (d *Detector) Analyze(ctx context.Context, text string, words []disfluency.Word) *Result {
	sentences := disfluency.SplitSentences(text)
	pauses := disfluency.DetectPauses(words, d.pauseThreshold)

	annotated := make([]Sentence, len(sentences))
	var summaryTallies []disfluency.Tally
	totalWords := 0

	for i, s := range sentences {
		tokens := Tokenize(s)
		totalWords += len(tokens)

		occurrences := d.classifySentence(ctx, tokens)
		sentenceTallies := tallies(occurrences)
		summaryTallies = append(summaryTallies, sentenceTallies...)

		annotated[i] = Sentence{
			Text:          s,
			Tokens:        tokens,
			Disfluencies:  occurrences,
			StruggleScore: disfluency.StruggleScore(d.weights, sentenceTallies, len(tokens)),
		}
	}

	if pauses == nil {
		pauses = []disfluency.Pause{}
	}
	return &Result{
		Sentences: annotated,
		Pauses:    pauses,
		Summary:   disfluency.BuildSummary(summaryTallies, totalWords, pauses),
	}
}

// classifySentence calls the collaborator and normalizes its response. Any
// error is logged and swallowed, leaving the sentence with zero occurrences.
func (d *Detector) classifySentence(ctx context.Context, tokens []Token) []Occurrence {
	if len(tokens) == 0 {
		return []Occurrence{}
	}
	classification, err := d.classifier.Classify(ctx, tokens)
	if err != nil {
		d.logger.WarnContext(ctx, "sentence classification failed, reporting no disfluencies",
			"error", err, "tokens", len(tokens))
		return []Occurrence{}
	}
	return Normalize(classification, tokens)
}

// Normalize flattens a classification into occurrence records. Every
// (category, text) pair becomes exactly one record keeping all its ranges
// together; ranges addressing tokens outside the sentence are dropped, and
// pairs left with no valid range are omitted entirely. A record whose
// reported text is empty gets its text reconstructed from the tokens of its
// first range. Output order is deterministic: categories, then texts, in
// lexicographic order.
func Normalize(classification Classification, tokens []Token) []Occurrence {
	occurrences := []Occurrence{}

	categories := make([]string, 0, len(classification))
	for category := range classification {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		byText := classification[category]

		texts := make([]string, 0, len(byText))
		for text := range byText {
			texts = append(texts, text)
		}
		sort.Strings(texts)

		for _, text := range texts {
			var ranges []Range
			for _, r := range byText[text] {
				if validRange(r, len(tokens)) {
					ranges = append(ranges, r)
				}
			}
			if len(ranges) == 0 {
				continue
			}
			if text == "" {
				text = rangeText(ranges[0], tokens)
			}
			occurrences = append(occurrences, Occurrence{
				Category: category,
				Text:     text,
				Ranges:   ranges,
			})
		}
	}
	return occurrences
}

// tallies flattens occurrences for the kernel's scoring and summary logic.
// The classifier path counts each record once per token range.
func tallies(occurrences []Occurrence) []disfluency.Tally {
	out := make([]disfluency.Tally, len(occurrences))
	for i, o := range occurrences {
		out[i] = disfluency.Tally{Category: o.Category, Text: o.Text, Count: len(o.Ranges)}
	}
	return out
}
