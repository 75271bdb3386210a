package disfluency

import "sort"

// PauseMarker renders the literal marker text spliced into a sentence for a
// pause of the given duration, without the trailing separator space.
func PauseMarker(duration float64) string {
	return "[Pause " + formatSeconds(duration) + "s]"
}

// insertion is one pause marker placement within a single sentence.
type insertion struct {
	offset   int
	duration float64
}

// InjectPauses localizes pauses to sentences and splices pause markers into
// the affected sentence texts. It is used only by the pattern-based detector
// path; the classifier path reports pauses out-of-band so that synthetic
// markers never pollute the token indices sent to the classifier.
//
// A pause is localized when its bounding words both resolved to spans and
// the gap between them falls strictly within exactly one sentence's
// character range. Per sentence, insertions are applied in descending offset
// order so earlier offsets stay valid while splicing. Each splice inserts
// "[Pause <duration>s] " at the gap position, shifts the Position of every
// match at or after the insertion point by the inserted length, and appends
// a synthetic match of category "pauses" covering the marker.
//
// Inputs are never mutated: new sentence texts and match slices are
// returned along with the localized ("within-sentence") pauses in original
// pause order. Pauses that cannot be localized are dropped from the
// per-sentence view.
func InjectPauses(
	sentences []string,
	matches [][]Match,
	pauses []Pause,
	wordSpans []Span,
	sentenceSpans []Span,
) (outSentences []string, outMatches [][]Match, localized []Pause) {
	outSentences = make([]string, len(sentences))
	copy(outSentences, sentences)
	outMatches = make([][]Match, len(matches))
	for i, ms := range matches {
		outMatches[i] = append([]Match(nil), ms...)
	}

	perSentence := make(map[int][]insertion)
	for _, p := range pauses {
		if p.AfterWordIndex >= len(wordSpans) || p.BeforeWordIndex >= len(wordSpans) {
			continue
		}
		after := wordSpans[p.AfterWordIndex]
		before := wordSpans[p.BeforeWordIndex]
		if !after.OK || !before.OK {
			continue
		}
		idx, ok := containingSentence(after.End, before.Start, sentenceSpans)
		if !ok {
			continue
		}
		perSentence[idx] = append(perSentence[idx], insertion{
			offset:   before.Start - sentenceSpans[idx].Start,
			duration: p.Duration,
		})
		localized = append(localized, p)
	}

	for idx, insertions := range perSentence {
		// Descending offset order keeps earlier offsets valid.
		sort.Slice(insertions, func(i, j int) bool {
			return insertions[i].offset > insertions[j].offset
		})
		text := outSentences[idx]
		ms := outMatches[idx]
		for _, ins := range insertions {
			if ins.offset < 0 || ins.offset > len(text) {
				continue
			}
			marker := PauseMarker(ins.duration)
			inserted := marker + " "
			text = text[:ins.offset] + inserted + text[ins.offset:]
			for i := range ms {
				if ms[i].Position >= ins.offset {
					ms[i].Position += len(inserted)
				}
			}
			ms = append(ms, Match{
				Category: CategoryPauses,
				Text:     marker,
				Position: ins.offset,
				Length:   len(marker),
			})
		}
		outSentences[idx] = text
		outMatches[idx] = ms
	}

	return outSentences, outMatches, localized
}

// containingSentence returns the index of the single sentence whose
// character range contains [gapStart, gapEnd].
func containingSentence(gapStart, gapEnd int, sentenceSpans []Span) (int, bool) {
	for i, s := range sentenceSpans {
		if !s.OK {
			continue
		}
		if gapStart >= s.Start && gapEnd <= s.End {
			return i, true
		}
	}
	return 0, false
}
