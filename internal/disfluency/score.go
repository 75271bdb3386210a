package disfluency

import "math"

// StruggleScore computes the weighted disfluency density of one sentence as
// a value in [0, 100]:
//
//	min(100, round₁(100 × Σ weight(category)×count / wordCount))
//
// It returns 0.0 when wordCount is zero or tallies is empty.
func StruggleScore(weights Weights, tallies []Tally, wordCount int) float64 {
	if wordCount == 0 || len(tallies) == 0 {
		return 0.0
	}
	var weighted float64
	for _, t := range tallies {
		weighted += weights.Of(t.Category) * float64(t.Count)
	}
	return math.Min(100, round1(100*weighted/float64(wordCount)))
}
