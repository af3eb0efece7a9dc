package search

import (
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/domain"
)

// Ranker orders search candidates by relevance to the query tokens.
// Keyword overlap is the always-available baseline; richer backends
// (full-text search, vector similarity) plug in behind the same interface
// and fall back to the baseline when unavailable.
type Ranker interface {
	Rank(items []domain.ClassifiedItem, tokens []string) []domain.ClassifiedItem
	Name() string
}

// NewRanker selects a ranking backend by name, degrading to the keyword
// baseline for unknown or unavailable backends
func NewRanker(name string) Ranker {
	switch name {
	case "", "keyword":
		return KeywordRanker{}
	default:
		lgr.Printf("[WARN] ranking backend %q unavailable, using keyword baseline", name)
		return KeywordRanker{}
	}
}

// genericTitles are navigation-page placeholders the provider sometimes
// returns instead of articles
var genericTitles = map[string]bool{
	"Newsroom": true, "Home": true, "Media Releases": true, "Press Releases": true,
}

// institutionalMarkers suggest an official or established news source
var institutionalMarkers = []string{
	"ministry", "authority", "board", "council", "agency", "commission",
	"straits times", "cna", "business times", "today", "edge singapore", "gov.sg",
}

// KeywordRanker is the token-overlap baseline ranker
type KeywordRanker struct{}

// Name implements Ranker
func (KeywordRanker) Name() string { return "keyword" }

// Rank orders items by descending score; ties keep arrival order
func (KeywordRanker) Rank(items []domain.ClassifiedItem, tokens []string) []domain.ClassifiedItem {
	ranked := make([]domain.ClassifiedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return searchRank(ranked[i], tokens) > searchRank(ranked[j], tokens)
	})
	return ranked
}

// searchRank scores one result: full token coverage in the title dominates,
// institutional sources get a boost, generic placeholder titles are buried
func searchRank(item domain.ClassifiedItem, tokens []string) int {
	score := 0
	titleLower := strings.ToLower(item.Title)

	if len(tokens) > 0 {
		matches := 0
		for _, t := range tokens {
			if strings.Contains(titleLower, strings.ToLower(t)) {
				matches++
			}
		}
		if matches == len(tokens) {
			score += 50
		} else {
			score += 10 * matches
		}
	}

	if IsInstitutional(item.Source) || strings.Contains(item.URL, "gov.sg") {
		score += 30
	}

	if genericTitles[strings.TrimSpace(item.Title)] {
		score -= 100
	}

	return score
}

// IsInstitutional reports whether a source name looks like an official body
// or an established outlet
func IsInstitutional(source string) bool {
	lower := strings.ToLower(source)
	for _, m := range institutionalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
