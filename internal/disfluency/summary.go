package disfluency

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	maxCategoryExamples = 5
	maxCommonFillers    = 10
)

// formatSeconds renders a rounded seconds value without trailing zeros,
// e.g. 1.5 → "1.5", 2 → "2".
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildSummary aggregates tallies and pauses into a transcript-level
// [Summary]:
//
//   - TotalDisfluencies = Σ tally counts + |pauses|.
//   - DisfluencyRate is per 100 words, rounded to 1 decimal (0 when
//     totalWords is 0).
//   - ByCategory groups tallies by category with up to 5 distinct lowercase
//     example texts in first-seen order. When pauses exist, a "pauses" entry
//     is synthesized with count |pauses| and the first 5 pause durations
//     formatted as "<duration>s" (merged into any classifier-reported
//     pauses entry so the count invariant holds).
//   - MostCommonFillers sums filler-category tally counts per distinct
//     lowercase text and keeps the top 10 by count descending, ties broken
//     by first-seen order.
func BuildSummary(tallies []Tally, totalWords int, pauses []Pause) Summary {
	total := len(pauses)
	for _, t := range tallies {
		total += t.Count
	}

	rate := 0.0
	if totalWords > 0 {
		rate = round1(float64(total) / float64(totalWords) * 100)
	}

	byCategory := make(map[string]CategoryStats)
	for _, t := range tallies {
		stats := byCategory[t.Category]
		stats.Count += t.Count
		example := strings.ToLower(t.Text)
		if len(stats.Examples) < maxCategoryExamples && !slices.Contains(stats.Examples, example) {
			stats.Examples = append(stats.Examples, example)
		}
		byCategory[t.Category] = stats
	}

	if len(pauses) > 0 {
		stats := byCategory[CategoryPauses]
		stats.Count += len(pauses)
		for _, p := range pauses {
			if len(stats.Examples) >= maxCategoryExamples {
				break
			}
			stats.Examples = append(stats.Examples, formatSeconds(p.Duration)+"s")
		}
		byCategory[CategoryPauses] = stats
	}

	return Summary{
		TotalDisfluencies: total,
		DisfluencyRate:    rate,
		ByCategory:        byCategory,
		MostCommonFillers: commonFillers(tallies),
	}
}

// commonFillers returns the top filler texts by summed occurrence count.
func commonFillers(tallies []Tally) map[string]int {
	counts := make(map[string]int)
	var firstSeen []string
	for _, t := range tallies {
		if t.Category != CategoryFillerWords {
			continue
		}
		text := strings.ToLower(t.Text)
		if _, seen := counts[text]; !seen {
			firstSeen = append(firstSeen, text)
		}
		counts[text] += t.Count
	}

	// Stable sort over first-seen order keeps ties deterministic.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	if len(firstSeen) > maxCommonFillers {
		firstSeen = firstSeen[:maxCommonFillers]
	}

	top := make(map[string]int, len(firstSeen))
	for _, text := range firstSeen {
		top[text] = counts[text]
	}
	return top
}
