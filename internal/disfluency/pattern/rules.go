// Package pattern implements the pattern-based disfluency detector: a set of
// stateless per-category rules run independently over each sentence, with a
// greedy dedup pass resolving overlaps. Scoring, pause injection and summary
// aggregation are delegated to the shared kernel in the parent package.
//
// Go's regexp engine (RE2) has no backreferences or lookahead, so the word
// repetition and prolongation rules are token scans rather than single
// patterns; the matched spans are identical to what the backreference forms
// would produce.
package pattern

import (
	"regexp"
	"strings"

	"github.com/MrWong99/disfluent/internal/disfluency"
)

var (
	// Multi-word entries first so the alternation prefers the longer form.
	fillerRe = regexp.MustCompile(`(?i)\b(you know|i mean|sort of|kind of|um|uh|er|ah|hmm|basically|actually|literally)\b`)

	// "like"/"right" count as fillers only in these two positions.
	fillerStartRe = regexp.MustCompile(`(?i)^(like|right),`)
	fillerMidRe   = regexp.MustCompile(`(?i),\s*(like|right)\s*,`)

	wordRe = regexp.MustCompile(`[A-Za-z']+`)

	soundRepRe = regexp.MustCompile(`(?i)\b([A-Za-z]{1,2})-\s+([A-Za-z]+)`)

	revisionRe = regexp.MustCompile(`[A-Za-z']+\s*--\s*[A-Za-z']+`)

	// A word ending in a single hyphen before whitespace or end of sentence.
	// A second hyphen after the first fails the trailing class, so revision
	// markers ("went-- going") never match.
	partialRe = regexp.MustCompile(`\b([A-Za-z]+)-(?:\s|$)`)

	nextWordRe = regexp.MustCompile(`^\s*([A-Za-z]+)`)
)

// fillerMatches finds filler vocabulary words plus the conditional
// "like"/"right" forms.
func fillerMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	for _, m := range fillerRe.FindAllStringSubmatchIndex(sentence, -1) {
		matches = append(matches, matchAt(sentence, disfluency.CategoryFillerWords, m[2], m[3]))
	}
	for _, m := range fillerStartRe.FindAllStringSubmatchIndex(sentence, -1) {
		matches = append(matches, matchAt(sentence, disfluency.CategoryFillerWords, m[2], m[3]))
	}
	return append(matches, fillerMidMatches(sentence)...)
}

// fillerMidMatches scans for comma-surrounded "like"/"right". Chained fillers
// share the middle comma (", like, right,"), so each scan resumes at the
// previous match's trailing comma rather than after it.
func fillerMidMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	offset := 0
	for {
		m := fillerMidRe.FindStringSubmatchIndex(sentence[offset:])
		if m == nil {
			return matches
		}
		matches = append(matches, matchAt(sentence, disfluency.CategoryFillerWords, offset+m[2], offset+m[3]))
		offset += m[1] - 1
	}
}

// repetitionMatches finds runs of a word immediately repeated one or more
// times, case-insensitively, separated only by whitespace. The match spans
// the whole run.
func repetitionMatches(sentence string) []disfluency.Match {
	words := wordRe.FindAllStringIndex(sentence, -1)
	var matches []disfluency.Match

	for i := 0; i < len(words); {
		runEnd := i
		for runEnd+1 < len(words) &&
			sameWord(sentence, words[runEnd], words[runEnd+1]) &&
			whitespaceOnly(sentence, words[runEnd][1], words[runEnd+1][0]) {
			runEnd++
		}
		if runEnd > i {
			matches = append(matches, matchAt(sentence, disfluency.CategoryWordRepetitions, words[i][0], words[runEnd][1]))
		}
		i = runEnd + 1
	}
	return matches
}

func sameWord(sentence string, a, b []int) bool {
	return strings.EqualFold(sentence[a[0]:a[1]], sentence[b[0]:b[1]])
}

func whitespaceOnly(sentence string, from, to int) bool {
	between := sentence[from:to]
	return between != "" && strings.TrimSpace(between) == ""
}

// soundRepetitionMatches finds stutters: a 1–2 letter fragment, a hyphen,
// whitespace, then a word that starts with the fragment and is strictly
// longer ("b- but").
func soundRepetitionMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	for _, m := range soundRepRe.FindAllStringSubmatchIndex(sentence, -1) {
		fragment := sentence[m[2]:m[3]]
		next := sentence[m[4]:m[5]]
		if !isStutter(fragment, next) {
			continue
		}
		matches = append(matches, matchAt(sentence, disfluency.CategorySoundRepetitions, m[0], m[1]))
	}
	return matches
}

// isStutter reports whether next begins with fragment (case-insensitively)
// and is strictly longer.
func isStutter(fragment, next string) bool {
	return len(next) > len(fragment) &&
		strings.EqualFold(next[:len(fragment)], fragment)
}

// prolongationMatches finds words containing 3+ consecutive repeats of the
// same letter ("sooo"). Ordinary double letters do not match.
func prolongationMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	for _, w := range wordRe.FindAllStringIndex(sentence, -1) {
		if hasTripleLetter(sentence[w[0]:w[1]]) {
			matches = append(matches, matchAt(sentence, disfluency.CategoryProlongations, w[0], w[1]))
		}
	}
	return matches
}

func hasTripleLetter(word string) bool {
	lower := strings.ToLower(word)
	run := 1
	for i := 1; i < len(lower); i++ {
		if lower[i] == lower[i-1] && lower[i] != '\'' {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// revisionMatches finds self-corrections marked by a double hyphen between
// two words ("going-- I").
func revisionMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	for _, m := range revisionRe.FindAllStringIndex(sentence, -1) {
		matches = append(matches, matchAt(sentence, disfluency.CategoryRevisions, m[0], m[1]))
	}
	return matches
}

// partialWordMatches finds abandoned word fragments ending in a single
// hyphen ("gon-"). A fragment of up to 2 letters whose following word starts
// with it and is longer is a stutter, reported by soundRepetitionMatches
// instead — such candidates are skipped here to avoid double-reporting.
func partialWordMatches(sentence string) []disfluency.Match {
	var matches []disfluency.Match
	for _, m := range partialRe.FindAllStringSubmatchIndex(sentence, -1) {
		fragment := sentence[m[2]:m[3]]
		hyphenEnd := m[3] + 1

		if len(fragment) <= 2 {
			if next := nextWordRe.FindStringSubmatch(sentence[hyphenEnd:]); next != nil && isStutter(fragment, next[1]) {
				continue
			}
		}
		matches = append(matches, matchAt(sentence, disfluency.CategoryPartialWords, m[2], hyphenEnd))
	}
	return matches
}

// matchAt builds a Match covering sentence[start:end].
func matchAt(sentence, category string, start, end int) disfluency.Match {
	return disfluency.Match{
		Category: category,
		Text:     sentence[start:end],
		Position: start,
		Length:   end - start,
	}
}
