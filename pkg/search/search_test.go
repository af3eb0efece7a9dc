package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regwatch/regwatch/pkg/classify"
	"github.com/regwatch/regwatch/pkg/domain"
)

// scriptedProvider returns canned candidates keyed by received query order
type scriptedProvider struct {
	queries []string
	limits  []int
	results [][]domain.Candidate
	errs    []error
}

func (p *scriptedProvider) Search(_ context.Context, query string, limit int) ([]domain.Candidate, error) {
	call := len(p.queries)
	p.queries = append(p.queries, query)
	p.limits = append(p.limits, limit)
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	if call < len(p.results) {
		return p.results[call], nil
	}
	return nil, nil
}

func newTestSearcher(p Provider) *Searcher {
	return NewSearcher(p, NewExpander(nil, ""), NewRanker("keyword"), classify.NewClassifier(nil), "")
}

func TestSearcherSimpleQuery(t *testing.T) {
	p := &scriptedProvider{results: [][]domain.Candidate{{
		{Title: "MAS tightens crypto rules", URL: "https://example.com/a", Source: "The Straits Times"},
	}}}

	s := newTestSearcher(p)
	res := s.Search(context.Background(), "crypto rules")

	// short query runs only the restricted pass
	require.Len(t, p.queries, 1)
	assert.Equal(t, 20, p.limits[0])
	assert.Contains(t, p.queries[0], "site:.gov.sg")

	require.Len(t, res.Items, 1)
	assert.Equal(t, "MAS tightens crypto rules", res.Items[0].Title)
	assert.Contains(t, res.Summary, "Found 1 articles")
	assert.Contains(t, res.Summary, "MAS")
}

func TestSearcherSmartQueryPasses(t *testing.T) {
	p := &scriptedProvider{results: [][]domain.Candidate{
		{{Title: "Halal certification fees revised", URL: "https://example.com/a", Source: "The Straits Times"}},
		{{Title: "MUIS updates halal certification process", URL: "https://example.com/b", Source: "Today"}},
		{
			{Title: "Halal food rules in Singapore explained", URL: "https://example.com/c", Source: "Random Blog"},
			{Title: "Foreign halal market report", URL: "https://example.com/d", Source: "Overseas Wire"},
		},
	}}

	s := newTestSearcher(p)
	res := s.Search(context.Background(), "new regulations for halal certification of food establishments")

	// restricted, smart restricted, smart global
	require.Len(t, p.queries, 3)
	assert.Equal(t, []int{20, 10, 15}, p.limits)
	assert.Contains(t, p.queries[1], "site:")
	assert.NotContains(t, p.queries[2], "site:")

	// the foreign result fails the jurisdiction filter on the global pass
	titles := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		titles = append(titles, it.Title)
	}
	assert.NotContains(t, titles, "Foreign halal market report")
	assert.Contains(t, titles, "Halal food rules in Singapore explained")
	assert.Len(t, res.Items, 3)
}

func TestSearcherDedupAcrossPasses(t *testing.T) {
	p := &scriptedProvider{results: [][]domain.Candidate{
		{{Title: "Halal certification fees revised", URL: "https://example.com/a", Source: "The Straits Times"}},
		// same URL and a title contained in an already collected one
		{
			{Title: "Halal certification fees revised", URL: "https://example.com/a", Source: "The Straits Times"},
			{Title: "Halal certification fees", URL: "https://example.com/other", Source: "Today"},
		},
		{},
	}}

	s := newTestSearcher(p)
	res := s.Search(context.Background(), "new regulations for halal certification of food establishments")

	assert.Len(t, res.Items, 1)
}

func TestSearcherProviderFailure(t *testing.T) {
	p := &scriptedProvider{errs: []error{fmt.Errorf("upstream down")}}

	s := newTestSearcher(p)
	res := s.Search(context.Background(), "crypto rules")

	assert.Empty(t, res.Items)
	assert.Contains(t, res.Summary, "No specific regulatory updates found")
}

func TestSearcherSkipsGenericTitles(t *testing.T) {
	p := &scriptedProvider{results: [][]domain.Candidate{
		{},
		{{Title: "Newsroom", URL: "https://example.com/nav", Source: "The Straits Times"}},
		{},
	}}

	s := newTestSearcher(p)
	res := s.Search(context.Background(), "new regulations for halal certification of food establishments")

	assert.Empty(t, res.Items)
}
