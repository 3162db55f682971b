// Package scoring computes deterministic match scores from keyword analysis.
package scoring

import "math"

// Weights for the match score components. They sum to 1.0 so the raw
// score stays within [0, 1] before scaling.
const (
	weightMatching = 0.6
	weightKeywords = 0.2
	weightPenalty  = 0.2
)

// saturationCount is the keyword count at which the additional-keyword
// bonus and the missing-keyword penalty saturate.
const saturationCount = 10.0

// MatchScore computes an integer score in [0, 100] from the three keyword
// sets produced by an ATS analysis. Inputs are deduplicated first so
// repeated keywords do not inflate any component.
func MatchScore(matching, missing, additional []string) int {
	nMatching := len(dedupe(matching))
	nMissing := len(dedupe(missing))
	nAdditional := len(dedupe(additional))

	var matchingRatio float64
	if nMatching+nMissing > 0 {
		matchingRatio = float64(nMatching) / float64(nMatching+nMissing)
	}

	keywordRatio := math.Min(float64(nAdditional)/saturationCount, 1.0)
	missingPenalty := 1.0 - math.Min(float64(nMissing)/saturationCount, 1.0)

	raw := weightMatching*matchingRatio + weightKeywords*keywordRatio + weightPenalty*missingPenalty
	score := int(math.Round(raw * 100))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// dedupe returns the distinct elements of keywords, preserving order.
func dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
