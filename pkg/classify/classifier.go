package classify

import (
	"strings"

	"github.com/regwatch/regwatch/pkg/domain"
)

// Classifier runs the full per-item classification pass: relevance gate,
// agency extraction, sector and impact tagging
type Classifier struct {
	rules      *Rules
	normalizer *Normalizer
}

// NewClassifier creates a classifier with the given rule set
func NewClassifier(rules *Rules) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules, normalizer: NewNormalizer()}
}

// Rules exposes the underlying rule set for direct scoring calls
func (c *Classifier) Rules() *Rules { return c.rules }

// Normalizer exposes the text normalizer used for summaries
func (c *Classifier) Normalizer() *Normalizer { return c.normalizer }

// Relevant reports whether the candidate passes the relevance filter
func (c *Classifier) Relevant(cand domain.Candidate) bool {
	return c.rules.IsRelevant(cand.Title+" "+cand.Summary, cand.GovSource)
}

// Classify derives agency, sector, impact and the circular flag for a
// candidate. Never fails: ambiguous input classifies to defaults.
func (c *Classifier) Classify(cand domain.Candidate) domain.ClassifiedItem {
	text := cand.Title + " " + cand.Summary

	agencies := c.rules.ExtractAgencies(text)

	return domain.ClassifiedItem{
		Candidate:  cand,
		Agency:     JoinAgencies(agencies),
		Sector:     c.rules.ClassifySector(text, agencies),
		Impact:     c.rules.AnalyzeImpact(cand.Title, cand.Summary),
		IsCircular: strings.Contains(strings.ToLower(text), "circular"),
	}
}
