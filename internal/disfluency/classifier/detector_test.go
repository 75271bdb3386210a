package classifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/disfluent/internal/disfluency"
	"github.com/MrWong99/disfluent/internal/disfluency/classifier"
)

// classifierFunc adapts a function to the Classifier interface.
type classifierFunc func(ctx context.Context, tokens []classifier.Token) (classifier.Classification, error)

func (f classifierFunc) Classify(ctx context.Context, tokens []classifier.Token) (classifier.Classification, error) {
	return f(ctx, tokens)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := classifier.Tokenize("Um, I was  thinking.")
	want := []classifier.Token{
		{Index: 0, Text: "Um,"},
		{Index: 1, Text: "I"},
		{Index: 2, Text: "was"},
		{Index: 3, Text: "thinking."},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], want[i])
		}
	}

	if got := classifier.Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %+v, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tokens := classifier.Tokenize("um I was um not not ready")

	classification := classifier.Classification{
		"filler_words": {
			"um": {{Start: 0, End: 0}, {Start: 3, End: 3}},
		},
		"word_repetitions": {
			"not not": {{Start: 4, End: 5}},
		},
	}

	occurrences := classifier.Normalize(classification, tokens)
	if len(occurrences) != 2 {
		t.Fatalf("got %d occurrences, want 2: %+v", len(occurrences), occurrences)
	}
	// Categories come back in lexicographic order.
	if occurrences[0].Category != "filler_words" || occurrences[1].Category != "word_repetitions" {
		t.Errorf("category order = %q, %q", occurrences[0].Category, occurrences[1].Category)
	}
	// All ranges of a (category, text) pair stay in one record.
	if got := len(occurrences[0].Ranges); got != 2 {
		t.Errorf(`"um" has %d ranges, want 2`, got)
	}
	if occurrences[1].Text != "not not" {
		t.Errorf("repetition text = %q, want %q", occurrences[1].Text, "not not")
	}
}

func TestNormalize_DropsInvalidRanges(t *testing.T) {
	t.Parallel()

	tokens := classifier.Tokenize("just three words")

	classification := classifier.Classification{
		"filler_words": {
			"just":    {{Start: 0, End: 0}, {Start: 5, End: 5}},
			"phantom": {{Start: 10, End: 12}},
			"empty":   {},
		},
		"revisions": {
			"backwards": {{Start: 2, End: 1}},
		},
	}

	occurrences := classifier.Normalize(classification, tokens)
	if len(occurrences) != 1 {
		t.Fatalf("got %d occurrences, want 1: %+v", len(occurrences), occurrences)
	}
	if occurrences[0].Text != "just" || len(occurrences[0].Ranges) != 1 {
		t.Errorf("survivor = %+v, want text %q with 1 range", occurrences[0], "just")
	}
}

func TestNormalize_ReconstructsEmptyText(t *testing.T) {
	t.Parallel()

	tokens := classifier.Tokenize("I was sort of done")

	classification := classifier.Classification{
		"filler_words": {
			"": {{Start: 2, End: 3}},
		},
	}

	occurrences := classifier.Normalize(classification, tokens)
	if len(occurrences) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occurrences))
	}
	if occurrences[0].Text != "sort of" {
		t.Errorf("reconstructed text = %q, want %q", occurrences[0].Text, "sort of")
	}
}

func TestDetector_OccurrenceCountIsRangeCount(t *testing.T) {
	t.Parallel()

	c := classifierFunc(func(_ context.Context, tokens []classifier.Token) (classifier.Classification, error) {
		return classifier.Classification{
			"filler_words": {
				"um": {{Start: 0, End: 0}, {Start: 3, End: 3}},
			},
		}, nil
	})

	result := classifier.New(c).Analyze(context.Background(), "Um I was um thinking.", nil)
	if len(result.Sentences) != 1 {
		t.Fatalf("got %d sentences, want 1", len(result.Sentences))
	}
	s := result.Sentences[0]
	if len(s.Disfluencies) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(s.Disfluencies), s.Disfluencies)
	}
	// One record, two ranges: weight 1 x count 2 over 5 tokens.
	if s.StruggleScore != 40.0 {
		t.Errorf("score = %v, want 40.0", s.StruggleScore)
	}
	if result.Summary.TotalDisfluencies != 2 {
		t.Errorf("total disfluencies = %d, want 2", result.Summary.TotalDisfluencies)
	}
	if got := result.Summary.MostCommonFillers["um"]; got != 2 {
		t.Errorf(`most_common_fillers["um"] = %d, want 2`, got)
	}
}

func TestDetector_FailOpenPerSentence(t *testing.T) {
	t.Parallel()

	calls := 0
	c := classifierFunc(func(_ context.Context, tokens []classifier.Token) (classifier.Classification, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream unavailable")
		}
		return classifier.Classification{
			"filler_words": {"uh": {{Start: 0, End: 0}}},
		}, nil
	})

	result := classifier.New(c).Analyze(context.Background(), "Um first one. Uh second one.", nil)
	if calls != 2 {
		t.Fatalf("classifier called %d times, want 2", calls)
	}
	if len(result.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(result.Sentences))
	}

	first, second := result.Sentences[0], result.Sentences[1]
	if len(first.Disfluencies) != 0 || first.StruggleScore != 0 {
		t.Errorf("failed sentence = %+v, want zero occurrences and score 0", first)
	}
	if first.Disfluencies == nil {
		t.Error("failed sentence must carry an empty, non-nil occurrence list")
	}
	if len(second.Disfluencies) != 1 {
		t.Errorf("second sentence = %+v, want 1 occurrence", second.Disfluencies)
	}
	if result.Summary.TotalDisfluencies != 1 {
		t.Errorf("total = %d, want 1", result.Summary.TotalDisfluencies)
	}
}

func TestDetector_PausesStayOutOfSentences(t *testing.T) {
	t.Parallel()

	c := classifierFunc(func(_ context.Context, _ []classifier.Token) (classifier.Classification, error) {
		return nil, nil
	})

	text := "I was thinking. It took a while."
	words := []disfluency.Word{
		{Word: "I", Start: disfluency.Seconds(0), End: disfluency.Seconds(0.2)},
		{Word: "was", Start: disfluency.Seconds(0.3), End: disfluency.Seconds(0.5)},
		{Word: "thinking", Start: disfluency.Seconds(2.0), End: disfluency.Seconds(2.6)},
		{Word: "It", Start: disfluency.Seconds(4.1), End: disfluency.Seconds(4.2)},
	}

	result := classifier.New(c).Analyze(context.Background(), text, words)

	// Both gaps qualify and are reported, including the between-sentence one.
	if len(result.Pauses) != 2 {
		t.Fatalf("got %d pauses, want 2: %+v", len(result.Pauses), result.Pauses)
	}
	for _, s := range result.Sentences {
		if s.Text != "I was thinking." && s.Text != "It took a while." {
			t.Errorf("sentence text mutated: %q", s.Text)
		}
	}
	pauseStats := result.Summary.ByCategory[disfluency.CategoryPauses]
	if pauseStats.Count != 2 {
		t.Errorf("summary pauses count = %d, want 2", pauseStats.Count)
	}
	if result.Summary.TotalDisfluencies != 2 {
		t.Errorf("total = %d, want 2 (pauses only)", result.Summary.TotalDisfluencies)
	}
}

func TestDetector_EmptyInput(t *testing.T) {
	t.Parallel()

	c := classifierFunc(func(_ context.Context, _ []classifier.Token) (classifier.Classification, error) {
		t.Error("classifier must not be called for empty text")
		return nil, nil
	})

	result := classifier.New(c).Analyze(context.Background(), "", nil)
	if len(result.Sentences) != 0 || len(result.Pauses) != 0 {
		t.Errorf("result = %+v, want empty sentences and pauses", result)
	}
	if result.Sentences == nil || result.Pauses == nil {
		t.Error("result slices must be non-nil for empty input")
	}
	if result.Summary.TotalDisfluencies != 0 || result.Summary.DisfluencyRate != 0 {
		t.Errorf("summary = %+v, want zero-valued", result.Summary)
	}
}
