// Package disfluency implements the shared analysis kernel used by both
// disfluency detector paths: sentence segmentation, pause detection from
// word-level timestamps, occurrence-weighted struggle scoring, summary
// aggregation, text/word position reconciliation, and pause-marker injection.
//
// The kernel is pure and stateless: every function is a deterministic
// transformation of its inputs and all returned structures are freshly
// allocated per call. Detectors (see the pattern and classifier subpackages)
// layer their category-detection logic on top of this package.
package disfluency

// Word is a single timestamped word from a speech-to-text result.
// Start and End are offsets in seconds from the beginning of the audio;
// either may be nil when the STT provider did not report timing for the word.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Seconds returns a pointer to v, for building [Word] literals.
func Seconds(v float64) *float64 {
	return &v
}

// Pause is a silence gap between two consecutive timestamped words that
// meets the detection threshold. Word indices refer to the full
// transcript-level word list, not to any single sentence.
type Pause struct {
	AfterWord       string  `json:"after_word"`
	BeforeWord      string  `json:"before_word"`
	AfterWordIndex  int     `json:"after_word_index"`
	BeforeWordIndex int     `json:"before_word_index"`
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	Duration        float64 `json:"duration"`
}

// Match is one detected disfluency located by character offset within its
// owning sentence. This is the occurrence shape of the pattern-based path;
// the classifier path addresses occurrences by token-index ranges instead.
//
// Invariant: within one analyzed sentence, no two matches'
// [Position, Position+Length) ranges overlap.
type Match struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
}

// Tally is one detector record flattened to the fields the kernel's scoring
// and summary logic needs. Count carries the record's occurrence
// multiplicity — the one behavioral seam between the two detector paths:
// the pattern detector always reports 1 per record, the classifier detector
// reports the number of token ranges a record aggregates.
type Tally struct {
	Category string
	Text     string
	Count    int
}

// CategoryStats is the per-category slice of a [Summary].
type CategoryStats struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// Summary aggregates all disfluencies of one analyzed transcript.
type Summary struct {
	TotalDisfluencies int                      `json:"total_disfluencies"`
	DisfluencyRate    float64                  `json:"disfluency_rate"`
	ByCategory        map[string]CategoryStats `json:"by_category"`
	MostCommonFillers map[string]int           `json:"most_common_fillers"`
}

// Disfluency category names shared by both detector paths.
const (
	CategoryFillerWords      = "filler_words"
	CategoryWordRepetitions  = "word_repetitions"
	CategorySoundRepetitions = "sound_repetitions"
	CategoryProlongations    = "prolongations"
	CategoryRevisions        = "revisions"
	CategoryPartialWords     = "partial_words"
	CategoryPauses           = "pauses"
)

// Weights maps a category name to its severity weight. Treat a Weights value
// as immutable configuration: build it once (usually via [DefaultWeights])
// and share it by reference.
type Weights map[string]float64

// DefaultWeights returns the standard category weight table.
func DefaultWeights() Weights {
	return Weights{
		CategoryFillerWords:      1,
		CategoryWordRepetitions:  1.5,
		CategoryRevisions:        1.5,
		CategoryProlongations:    1.5,
		CategoryPauses:           1.5,
		CategorySoundRepetitions: 2,
		CategoryPartialWords:     2,
	}
}

// Of returns the weight for category. Unrecognized categories weigh 1, which
// leaves headroom for categories a classifier model may invent.
func (w Weights) Of(category string) float64 {
	if v, ok := w[category]; ok {
		return v
	}
	return 1
}

// DefaultPauseThreshold is the minimum gap, in seconds, between the end of
// one word and the start of the next for the gap to count as a pause.
// A gap of exactly the threshold qualifies.
const DefaultPauseThreshold = 1.0
