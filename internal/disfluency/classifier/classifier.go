// Package classifier implements the classifier-based disfluency detector: each
// sentence is tokenized into indexed words and handed to an external
// classification collaborator, whose hierarchical category->text->ranges
// response is normalized into occurrence records addressed by token-index
// ranges. Scoring and summary aggregation are delegated to the shared kernel
// in the parent package.
package classifier

import (
	"context"
	"strings"
)

// Token is one whitespace-delimited word of a sentence. Index is the token's
// zero-based position; punctuation stays part of the text. Token identity is
// what maps classification output back onto the sentence without trusting
// the classifier's verbatim text.
type Token struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Range is an inclusive token-index span. Start == End addresses a single
// token.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Classification is a classifier response: category -> disfluency text ->
// the token ranges where it occurs.
type Classification map[string]map[string][]Range

// Classifier is the external classification collaborator. Classify returns
// an empty (or nil) Classification when the sentence is fluent; an error
// means the call itself failed and the sentence is analyzed as having zero
// occurrences.
type Classifier interface {
	Classify(ctx context.Context, tokens []Token) (Classification, error)
}

// Occurrence is one normalized detection: all ranges of the same
// (category, text) pair within a sentence aggregated into a single record.
// The record counts as len(Ranges) occurrences for scoring and summaries.
type Occurrence struct {
	Category string  `json:"category"`
	Text     string  `json:"text"`
	Ranges   []Range `json:"ranges"`
}

// Tokenize splits a sentence on whitespace into indexed tokens.
func Tokenize(sentence string) []Token {
	fields := strings.Fields(sentence)
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token{Index: i, Text: f}
	}
	return tokens
}

// validRange reports whether r addresses existing tokens.
func validRange(r Range, tokenCount int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End < tokenCount
}

// rangeText reconstructs the sentence text a range covers.
func rangeText(r Range, tokens []Token) string {
	parts := make([]string, 0, r.End-r.Start+1)
	for i := r.Start; i <= r.End; i++ {
		parts = append(parts, tokens[i].Text)
	}
	return strings.Join(parts, " ")
}
