package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/classify"
	"github.com/regwatch/regwatch/pkg/domain"
)

// Provider runs a prepared query against the external retrieval collaborator
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// Searcher implements the smart-search fallback chain: a restricted
// allow-listed pass always runs; complex queries additionally get a
// restricted and an unrestricted entity pass, with jurisdiction filtering on
// the unrestricted results.
type Searcher struct {
	provider     Provider
	expander     *Expander
	ranker       Ranker
	classifier   *classify.Classifier
	jurisdiction string
}

// Result is a ranked search response with a synthesized summary
type Result struct {
	Summary string                  `json:"summary"`
	Items   []domain.ClassifiedItem `json:"items"`
}

// NewSearcher creates a searcher; jurisdiction empty defaults to Singapore
func NewSearcher(provider Provider, expander *Expander, ranker Ranker, classifier *classify.Classifier, jurisdiction string) *Searcher {
	if jurisdiction == "" {
		jurisdiction = "Singapore"
	}
	return &Searcher{
		provider:     provider,
		expander:     expander,
		ranker:       ranker,
		classifier:   classifier,
		jurisdiction: jurisdiction,
	}
}

// Search executes the full chain for a free-text query. Provider failures
// degrade to a partial or empty result, never an error for the caller.
func (s *Searcher) Search(ctx context.Context, query string) Result {
	exp := s.expander.Expand(query)

	var items []domain.ClassifiedItem

	candidates, err := s.provider.Search(ctx, exp.Restricted, 20)
	if err != nil {
		lgr.Printf("[WARN] restricted search failed: %v", err)
	}
	for _, c := range candidates {
		items = append(items, s.classifier.Classify(c))
	}

	if exp.Smart {
		lgr.Printf("[DEBUG] smart entity query: %s", exp.SmartQuery)

		// restricted entity pass: high precision, misses deep links
		items = s.appendSmart(ctx, items, exp.SmartSites, 10, false)

		// unrestricted pass catches deep official links the restricted pass
		// ranks too low, at the cost of foreign noise
		items = s.appendSmart(ctx, items, exp.SmartQuery, 15, true)
	}

	ranked := s.ranker.Rank(items, exp.EntityTokens)

	return Result{Summary: s.summarize(ranked, query), Items: ranked}
}

// appendSmart runs one smart pass and appends deduplicated results.
// With jurisdictionOnly set, results not clearly tied to the jurisdiction
// are dropped.
func (s *Searcher) appendSmart(ctx context.Context, items []domain.ClassifiedItem, query string, limit int, jurisdictionOnly bool) []domain.ClassifiedItem {
	candidates, err := s.provider.Search(ctx, query, limit)
	if err != nil {
		lgr.Printf("[WARN] smart search failed: %v", err)
		return items
	}

	for _, c := range candidates {
		if genericTitles[strings.TrimSpace(c.Title)] {
			continue
		}
		if jurisdictionOnly && !s.jurisdictionLikely(c) {
			continue
		}
		if containsResult(items, c) {
			continue
		}
		items = append(items, s.classifier.Classify(c))
	}
	return items
}

// jurisdictionLikely filters unrestricted results: aggregator redirect URLs
// hide the real domain, so the source name and title carry the signal
func (s *Searcher) jurisdictionLikely(c domain.Candidate) bool {
	if IsInstitutional(c.Source) {
		return true
	}
	return strings.Contains(c.Title, s.jurisdiction) || strings.Contains(c.Source, s.jurisdiction)
}

// containsResult reports whether the candidate duplicates a collected item
// by URL or by title substring containment
func containsResult(items []domain.ClassifiedItem, c domain.Candidate) bool {
	titleLower := strings.ToLower(c.Title)
	for _, it := range items {
		if it.URL == c.URL {
			return true
		}
		existing := strings.ToLower(it.Title)
		if strings.Contains(existing, titleLower) || strings.Contains(titleLower, existing) {
			return true
		}
	}
	return false
}

// themeWords are recurring regulatory themes surfaced in the summary line
var themeWords = []string{
	"launch", "grant", "fine", "ban", "framework", "roadmap",
	"safety", "standard", "license", "permit",
}

// summarize synthesizes a short overview of the result set
func (s *Searcher) summarize(items []domain.ClassifiedItem, query string) string {
	if len(items) == 0 {
		return fmt.Sprintf("No specific regulatory updates found for %q.", query)
	}

	agencies := map[string]bool{}
	var titles []string
	for _, it := range items {
		if it.Agency != "" && it.Agency != domain.AgencyUnknown {
			for _, code := range classify.SplitAgencies(it.Agency) {
				agencies[code] = true
			}
		}
		titles = append(titles, it.Title)
	}

	allText := strings.ToLower(strings.Join(titles, " "))
	var themes []string
	for _, theme := range themeWords {
		if strings.Contains(allText, theme) {
			themes = append(themes, strings.ToUpper(theme[:1])+theme[1:])
		}
	}

	summary := fmt.Sprintf("Found %d articles relevant to %q.", len(items), query)

	if len(agencies) > 0 {
		codes := make([]string, 0, len(agencies))
		for code := range agencies {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		if len(codes) > 3 {
			codes = codes[:3]
		}
		summary += fmt.Sprintf(" Key updates involve %s.", strings.Join(codes, ", "))
	}

	if len(themes) > 0 {
		if len(themes) > 3 {
			themes = themes[:3]
		}
		summary += fmt.Sprintf(" Major themes include %s.", strings.Join(themes, ", "))
	}

	return summary
}
