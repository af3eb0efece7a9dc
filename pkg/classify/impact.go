package classify

import (
	"strings"

	"github.com/regwatch/regwatch/pkg/domain"
)

// AnalyzeImpact classifies a story into High/Medium/Low impact. Specific
// pattern overrides run before the general tier scan because naive keyword
// tiers misclassify these known cases.
func (r *Rules) AnalyzeImpact(title, summary string) domain.Impact {
	text := strings.ToLower(title + " " + summary)

	// cross-border taxi stories trip the High-tier "quota"/"permit" words
	// but are routine transport policy
	if strings.Contains(text, "cross-border taxi") || strings.Contains(text, "cross border taxi") {
		return domain.ImpactMedium
	}

	// investment-scale announcements without legislative terms
	if strings.Contains(text, "invest") && strings.Contains(text, "billion") &&
		!strings.Contains(text, "act") && !strings.Contains(text, "law") {
		return domain.ImpactMedium
	}

	// consumer-watchdog enforcement against a single company
	if (strings.Contains(text, "watchdog") || strings.Contains(text, "consumer") || strings.Contains(text, "cccs")) &&
		(strings.Contains(text, "unfair") || strings.Contains(text, "misleading") || strings.Contains(text, "warns")) {
		return domain.ImpactLow
	}

	// tier order encodes precedence: enforcement language dominates softer
	// policy language
	for _, kw := range r.impactTiers.high {
		if kw.MatchString(text) {
			return domain.ImpactHigh
		}
	}
	for _, kw := range r.impactTiers.medium {
		if kw.MatchString(text) {
			return domain.ImpactMedium
		}
	}
	for _, kw := range r.impactTiers.low {
		if kw.MatchString(text) {
			return domain.ImpactLow
		}
	}

	return domain.ImpactMedium
}
