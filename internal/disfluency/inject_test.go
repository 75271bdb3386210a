package disfluency_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/disfluent/internal/disfluency"
)

// pauseFixture builds the aligned inputs InjectPauses needs for a transcript
// with one qualifying pause between words afterIdx and afterIdx+1.
func pauseFixture(t *testing.T, text string, wordTexts []string, afterIdx int, duration float64) ([]string, []disfluency.Span, []disfluency.Span, []disfluency.Pause) {
	t.Helper()
	sentences := disfluency.SplitSentences(text)
	wordSpans := disfluency.WordSpans(text, plainWords(wordTexts...))
	sentSpans := disfluency.SentenceSpans(text, sentences)
	pauses := []disfluency.Pause{{
		AfterWord:       wordTexts[afterIdx],
		BeforeWord:      wordTexts[afterIdx+1],
		AfterWordIndex:  afterIdx,
		BeforeWordIndex: afterIdx + 1,
		Duration:        duration,
	}}
	return sentences, wordSpans, sentSpans, pauses
}

func TestInjectPauses_SplicesMarkerAndShiftsMatches(t *testing.T) {
	t.Parallel()

	text := "I was thinking about it."
	sentences, wordSpans, sentSpans, pauses := pauseFixture(t,
		text, []string{"I", "was", "thinking", "about", "it"}, 1, 1.5)

	matches := [][]disfluency.Match{{
		{Category: disfluency.CategoryFillerWords, Text: "thinking", Position: 6, Length: 8},
	}}

	outSentences, outMatches, localized := disfluency.InjectPauses(sentences, matches, pauses, wordSpans, sentSpans)

	want := "I was [Pause 1.5s] thinking about it."
	if outSentences[0] != want {
		t.Fatalf("injected sentence = %q, want %q", outSentences[0], want)
	}
	if len(localized) != 1 {
		t.Fatalf("localized = %d pauses, want 1", len(localized))
	}

	// The original match must keep its text, shifted by the marker length.
	var shifted, pauseMatch *disfluency.Match
	for i := range outMatches[0] {
		switch outMatches[0][i].Category {
		case disfluency.CategoryFillerWords:
			shifted = &outMatches[0][i]
		case disfluency.CategoryPauses:
			pauseMatch = &outMatches[0][i]
		}
	}
	if shifted == nil || pauseMatch == nil {
		t.Fatalf("matches after injection = %+v, want filler and pause", outMatches[0])
	}
	if got := outSentences[0][shifted.Position : shifted.Position+shifted.Length]; got != "thinking" {
		t.Errorf("shifted match covers %q, want %q", got, "thinking")
	}
	if got := outSentences[0][pauseMatch.Position : pauseMatch.Position+pauseMatch.Length]; got != "[Pause 1.5s]" {
		t.Errorf("pause match covers %q, want %q", got, "[Pause 1.5s]")
	}

	// Inputs must not be mutated.
	if sentences[0] != "I was thinking about it." {
		t.Error("input sentence was mutated")
	}
	if matches[0][0].Position != 6 {
		t.Error("input match was mutated")
	}
}

func TestInjectPauses_RoundTrip(t *testing.T) {
	t.Parallel()

	text := "So I was thinking about the problem."
	sentences, wordSpans, sentSpans, pauses := pauseFixture(t,
		text, []string{"So", "I", "was", "thinking", "about", "the", "problem"}, 3, 2)

	matches := [][]disfluency.Match{{
		{Category: disfluency.CategoryFillerWords, Text: "So", Position: 0, Length: 2},
		{Category: disfluency.CategoryFillerWords, Text: "thinking", Position: 9, Length: 8},
	}}

	outSentences, outMatches, _ := disfluency.InjectPauses(sentences, matches, pauses, wordSpans, sentSpans)

	// Removing every injected marker must reconstruct the original sentence.
	restored := strings.ReplaceAll(outSentences[0], "[Pause 2s] ", "")
	if restored != sentences[0] {
		t.Errorf("marker removal restored %q, want %q", restored, sentences[0])
	}

	// Every non-pause match must still cover its original text.
	for _, m := range outMatches[0] {
		if m.Category == disfluency.CategoryPauses {
			continue
		}
		if got := outSentences[0][m.Position : m.Position+m.Length]; got != m.Text {
			t.Errorf("match %q now covers %q", m.Text, got)
		}
	}
}

func TestInjectPauses_UnresolvedWordDropsPause(t *testing.T) {
	t.Parallel()

	text := "Alpha beta. Gamma delta."
	sentences := disfluency.SplitSentences(text)
	sentSpans := disfluency.SentenceSpans(text, sentences)
	// The second word never resolves.
	wordSpans := []disfluency.Span{
		{Start: 0, End: 5, OK: true},
		{},
	}
	pauses := []disfluency.Pause{{AfterWordIndex: 0, BeforeWordIndex: 1, Duration: 3}}

	outSentences, _, localized := disfluency.InjectPauses(sentences, nil, pauses, wordSpans, sentSpans)
	if len(localized) != 0 {
		t.Errorf("localized = %d pauses, want 0", len(localized))
	}
	if outSentences[0] != sentences[0] {
		t.Errorf("sentence changed to %q despite dropped pause", outSentences[0])
	}
}

func TestInjectPauses_GapSpanningSentencesIsDropped(t *testing.T) {
	t.Parallel()

	// The pause gap sits between two sentences, inside neither.
	text := "I stopped. Then continued."
	sentences, wordSpans, sentSpans, pauses := pauseFixture(t,
		text, []string{"I", "stopped", "Then", "continued"}, 1, 4)

	_, _, localized := disfluency.InjectPauses(sentences, nil, pauses, wordSpans, sentSpans)
	if len(localized) != 0 {
		t.Errorf("cross-sentence pause localized, want dropped (got %d)", len(localized))
	}
}

func TestInjectPauses_MultipleInsertionsDescendingOrder(t *testing.T) {
	t.Parallel()

	text := "One two three four five."
	sentences := disfluency.SplitSentences(text)
	words := []string{"One", "two", "three", "four", "five"}
	wordSpans := disfluency.WordSpans(text, plainWords(words...))
	sentSpans := disfluency.SentenceSpans(text, sentences)

	pauses := []disfluency.Pause{
		{AfterWordIndex: 0, BeforeWordIndex: 1, Duration: 1},
		{AfterWordIndex: 3, BeforeWordIndex: 4, Duration: 2},
	}

	outSentences, outMatches, localized := disfluency.InjectPauses(sentences, [][]disfluency.Match{nil}, pauses, wordSpans, sentSpans)
	if len(localized) != 2 {
		t.Fatalf("localized = %d pauses, want 2", len(localized))
	}

	want := "One [Pause 1s] two three four [Pause 2s] five."
	if outSentences[0] != want {
		t.Fatalf("injected = %q, want %q", outSentences[0], want)
	}

	// Both synthetic matches must cover their marker exactly.
	for _, m := range outMatches[0] {
		if got := outSentences[0][m.Position : m.Position+m.Length]; got != m.Text {
			t.Errorf("pause match %q covers %q", m.Text, got)
		}
	}
}
