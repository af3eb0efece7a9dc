package classify

import "strings"

// RelevanceThreshold is the minimum score for an item to be kept.
// An agency mention (+5) plus jurisdiction context (+5) is enough; a single
// financial-noise hit (-20) buries most positive evidence.
const RelevanceThreshold = 10

// RelevanceScore computes the weighted signal score for combined item text.
// Positive increments are small and penalties severe: the filter prefers
// missing a borderline story over admitting market-report noise.
func (r *Rules) RelevanceScore(text string, govSource bool) int {
	score := 0
	lower := strings.ToLower(text)

	if govSource {
		score += 15
	}

	// strong regulatory signals, +10 each; for non-government sources the
	// accumulation stops once the running total passes 30, so keyword-dense
	// boilerplate can't stack unbounded
	for _, sig := range r.strongSignals {
		if strings.Contains(lower, sig) {
			score += 10
			if score > 30 && !govSource {
				break
			}
		}
	}

	for _, a := range r.agencies {
		if strings.Contains(lower, strings.ToLower(a.code)) {
			score += 5
			break
		}
	}

	for _, kw := range r.contextWords {
		if strings.Contains(lower, kw) {
			score += 5
			break
		}
	}

	for _, sig := range r.impactSignals {
		if strings.Contains(lower, sig) {
			score += 5
			break
		}
	}

	// each distinct noise keyword penalizes again
	for _, noise := range r.financialNoise {
		if strings.Contains(lower, noise) {
			score -= 20
		}
	}

	if r.hasForeignContext(lower) && !r.hasCrossBorderQualifier(lower) {
		score -= 10
	}

	return score
}

// IsRelevant gates the score against the acceptance threshold
func (r *Rules) IsRelevant(text string, govSource bool) bool {
	return r.RelevanceScore(text, govSource) >= RelevanceThreshold
}

func (r *Rules) hasForeignContext(lower string) bool {
	for _, c := range r.foreignContext {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func (r *Rules) hasCrossBorderQualifier(lower string) bool {
	for _, q := range r.crossBorder {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}
