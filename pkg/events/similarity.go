package events

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

const (
	// WholeMatchThreshold is the minimum whole-string score for a match.
	WholeMatchThreshold = 0.6
	// WordThreshold is the score a query word must exceed to count in PartialScore.
	WordThreshold = 0.7
	// PartialAcceptThreshold is the minimum PartialScore for a partial name match.
	PartialAcceptThreshold = WholeMatchThreshold + 0.1
)

// Similarity returns the Jaro-Winkler similarity of two normalized strings in
// [0,1]. The metric is not symmetric; always pass the catalog side first.
func Similarity(candidate, query string) float64 {
	if candidate == "" || query == "" {
		return 0
	}
	if candidate == query {
		return 1
	}
	s := float64(edlib.JaroWinklerSimilarity(candidate, query))
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// PartialScore aligns the words of query with the words of candidate. Every
// query word whose best Similarity against a candidate word exceeds
// WordThreshold contributes that score; the sum is divided by the number of
// query words. Both arguments must be normalized.
func PartialScore(candidate, query string) float64 {
	qWords := strings.Fields(query)
	cWords := strings.Fields(candidate)
	if len(qWords) == 0 || len(cWords) == 0 {
		return 0
	}
	var sum float64
	matched := 0
	for _, qw := range qWords {
		best := 0.0
		for _, cw := range cWords {
			if s := Similarity(cw, qw); s > best {
				best = s
			}
		}
		if best > WordThreshold {
			sum += best
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(len(qWords))
}
