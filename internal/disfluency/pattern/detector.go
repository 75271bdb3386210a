package pattern

import (
	"sort"
	"strings"

	"github.com/MrWong99/disfluent/internal/disfluency"
)

// Sentence is one annotated sentence of the pattern-based result. Text
// includes any injected pause markers; Disfluencies locate each occurrence
// by character offset into Text.
type Sentence struct {
	Text          string             `json:"text"`
	Disfluencies  []disfluency.Match `json:"disfluencies"`
	StruggleScore float64            `json:"struggle_score"`
}

// Result is the full pattern-based analysis of one transcript. Pauses holds
// only the pauses that were localized to a sentence (and therefore injected
// as markers); gaps that could not be placed are dropped from this view.
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

// WithPositionOptions forwards options to the kernel's word-position
// reconciliation (e.g. [disfluency.WithFuzzyFallback]).
func WithPositionOptions(opts ...disfluency.PositionOption) Option {
	return func(d *Detector) {
		d.positionOpts = opts
	}
}

// Detector is the pattern-based disfluency detector. It is stateless across
// calls and safe for concurrent use — all configuration is read-only after
// construction.
type Detector struct {
	weights        disfluency.Weights
	pauseThreshold float64
	positionOpts   []disfluency.PositionOption
}

// New returns a [Detector] with the supplied options applied.
func New(opts ...Option) *Detector {
	d := &Detector{
		weights:        disfluency.DefaultWeights(),
		pauseThreshold: disfluency.DefaultPauseThreshold,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Analyze runs every category rule over each sentence of text, injects pause
// markers for gaps detected in words, and returns annotated sentences with
// per-sentence struggle scores plus a transcript-level summary.
//
// Analyze is a pure function of its inputs: it always returns a well-formed
// result, including for empty text (zero sentences, zero-valued summary).
func (d *Detector) Analyze(text string, words []disfluency.Word) *Result {
	sentences := disfluency.SplitSentences(text)
	pauses := disfluency.DetectPauses(words, d.pauseThreshold)

	matches := make([][]disfluency.Match, len(sentences))
	for i, s := range sentences {
		matches[i] = detectSentence(s)
	}

	// The summary aggregates pre-injection matches; pauses enter it through
	// their own channel so marker occurrences are never double counted.
	var summaryTallies []disfluency.Tally
	for _, ms := range matches {
		summaryTallies = append(summaryTallies, tallies(ms)...)
	}

	wordSpans := disfluency.WordSpans(text, words, d.positionOpts...)
	sentenceSpans := disfluency.SentenceSpans(text, sentences)
	injected, matches, localized := disfluency.InjectPauses(sentences, matches, pauses, wordSpans, sentenceSpans)

	annotated := make([]Sentence, len(sentences))
	for i := range sentences {
		// Word counts come from the pre-injection text so markers do not
		// dilute the score they contribute to.
		wordCount := len(strings.Fields(sentences[i]))
		ms := matches[i]
		if ms == nil {
			ms = []disfluency.Match{}
		}
		annotated[i] = Sentence{
			Text:          injected[i],
			Disfluencies:  ms,
			StruggleScore: disfluency.StruggleScore(d.weights, tallies(ms), wordCount),
		}
	}

	if localized == nil {
		localized = []disfluency.Pause{}
	}
	return &Result{
		Sentences: annotated,
		Pauses:    localized,
		Summary:   disfluency.BuildSummary(summaryTallies, len(strings.Fields(text)), localized),
	}
}

// detectSentence runs all category rules over one sentence and resolves
// overlaps.
func detectSentence(sentence string) []disfluency.Match {
	var all []disfluency.Match
	all = append(all, fillerMatches(sentence)...)
	all = append(all, repetitionMatches(sentence)...)
	all = append(all, soundRepetitionMatches(sentence)...)
	all = append(all, prolongationMatches(sentence)...)
	all = append(all, revisionMatches(sentence)...)
	all = append(all, partialWordMatches(sentence)...)
	return dedupe(all)
}

// dedupe sorts matches by position (stable, so earlier-detected rules win
// ties) and greedily keeps each match only when its character range does not
// overlap any already-kept range.
func dedupe(matches []disfluency.Match) []disfluency.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Position < matches[j].Position
	})

	var kept []disfluency.Match
	for _, m := range matches {
		if overlapsAny(m, kept) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func overlapsAny(m disfluency.Match, kept []disfluency.Match) bool {
	for _, k := range kept {
		if m.Position < k.Position+k.Length && k.Position < m.Position+m.Length {
			return true
		}
	}
	return false
}

// tallies flattens matches for the kernel's scoring and summary logic.
// The pattern path counts every record as exactly one occurrence.
func tallies(matches []disfluency.Match) []disfluency.Tally {
	out := make([]disfluency.Tally, len(matches))
	for i, m := range matches {
		out[i] = disfluency.Tally{Category: m.Category, Text: m.Text, Count: 1}
	}
	return out
}
