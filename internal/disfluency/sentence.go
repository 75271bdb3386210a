package disfluency

import "strings"

// isTerminator reports whether c ends a sentence.
func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

// SplitSentences splits text into sentences at boundaries immediately
// following '.', '!' or '?', consuming runs of trailing terminators
// (so "Wait!!!" is one sentence ending in "!!!"). Results are trimmed of
// surrounding whitespace and empty results are discarded. Only ASCII
// punctuation is considered; there is no locale handling.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		if !isTerminator(text[i]) {
			i++
			continue
		}
		end := i + 1
		for end < len(text) && isTerminator(text[end]) {
			end++
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
