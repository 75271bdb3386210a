package disfluency

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// wordPunct is the punctuation stripped from a timestamped word when the
// exact form cannot be found in the transcript text.
const wordPunct = ".,!?;:\"'()[]-"

// Span is a character range [Start, End) within the transcript text.
// OK is false when the owning word or sentence could not be located.
type Span struct {
	Start int
	End   int
	OK    bool
}

type positionConfig struct {
	fuzzy          bool
	fuzzyThreshold float64
}

// PositionOption configures [WordSpans] and [SentenceSpans].
type PositionOption func(*positionConfig)

// WithFuzzyFallback enables a third word-location stage after the exact and
// punctuation-stripped lookups: the remaining transcript text is scanned
// token by token and the first token whose Jaro-Winkler similarity to the
// word reaches threshold is taken as the match. Disabled by default, where
// an unlocatable word simply yields a not-OK span.
func WithFuzzyFallback(threshold float64) PositionOption {
	return func(c *positionConfig) {
		c.fuzzy = true
		c.fuzzyThreshold = threshold
	}
}

// WordSpans locates each timestamped word's character span in text.
// The scan is monotonic: each lookup starts where the previous successful
// match ended and never backtracks, so repeated words resolve in order.
// Lookup is exact substring match first, then a fallback on the word with
// surrounding punctuation stripped; a word that cannot be located yields a
// not-OK span without advancing the scan position.
//
// This reconciliation exists because STT word strings and transcript
// substrings can diverge in punctuation.
func WordSpans(text string, words []Word, opts ...PositionOption) []Span {
	cfg := positionConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	spans := make([]Span, len(words))
	searchFrom := 0
	for i, w := range words {
		span := locate(text, w.Word, searchFrom, cfg)
		spans[i] = span
		if span.OK {
			searchFrom = span.End
		}
	}
	return spans
}

// SentenceSpans locates each sentence's character span in text using the
// same monotonic forward scan as [WordSpans].
func SentenceSpans(text string, sentences []string) []Span {
	spans := make([]Span, len(sentences))
	searchFrom := 0
	for i, s := range sentences {
		span := locate(text, s, searchFrom, positionConfig{})
		spans[i] = span
		if span.OK {
			searchFrom = span.End
		}
	}
	return spans
}

// locate finds needle in text at or after from.
func locate(text, needle string, from int, cfg positionConfig) Span {
	if needle == "" || from > len(text) {
		return Span{}
	}
	if idx := strings.Index(text[from:], needle); idx >= 0 {
		start := from + idx
		return Span{Start: start, End: start + len(needle), OK: true}
	}
	if stripped := strings.Trim(needle, wordPunct); stripped != "" && stripped != needle {
		if idx := strings.Index(text[from:], stripped); idx >= 0 {
			start := from + idx
			return Span{Start: start, End: start + len(stripped), OK: true}
		}
	}
	if cfg.fuzzy {
		return fuzzyLocate(text, needle, from, cfg.fuzzyThreshold)
	}
	return Span{}
}

// fuzzyLocate scans whitespace-delimited tokens of text[from:] and returns
// the first whose Jaro-Winkler similarity to needle (both lowercased and
// punctuation-stripped) reaches threshold.
func fuzzyLocate(text, needle string, from int, threshold float64) Span {
	want := strings.ToLower(strings.Trim(needle, wordPunct))
	if want == "" {
		return Span{}
	}

	i := from
	for i < len(text) {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		start := i
		for i < len(text) && !isSpace(text[i]) {
			i++
		}
		if start == i {
			break
		}
		token := strings.ToLower(strings.Trim(text[start:i], wordPunct))
		if token == "" {
			continue
		}
		if matchr.JaroWinkler(want, token, true) >= threshold {
			return Span{Start: start, End: i, OK: true}
		}
	}
	return Span{}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
