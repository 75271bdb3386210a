package disfluency

import "math"

// round2 rounds v to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds v to 1 decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DetectPauses scans consecutive word-timestamp pairs and returns every gap
// of at least threshold seconds as a [Pause], in word order. A pair only
// qualifies when the first word's End and the second word's Start are both
// present. Reported times are rounded to 2 decimals; the threshold
// comparison uses the raw gap, so a gap of exactly threshold qualifies.
//
// Returns nil when words has fewer than two entries or no gap qualifies.
func DetectPauses(words []Word, threshold float64) []Pause {
	if len(words) < 2 {
		return nil
	}
	var pauses []Pause
	for i := 0; i < len(words)-1; i++ {
		end := words[i].End
		start := words[i+1].Start
		if end == nil || start == nil {
			continue
		}
		gap := *start - *end
		if gap < threshold {
			continue
		}
		pauses = append(pauses, Pause{
			AfterWord:       words[i].Word,
			BeforeWord:      words[i+1].Word,
			AfterWordIndex:  i,
			BeforeWordIndex: i + 1,
			Start:           round2(*end),
			End:             round2(*start),
			Duration:        round2(gap),
		})
	}
	return pauses
}
