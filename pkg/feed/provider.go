package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/regwatch/regwatch/pkg/domain"
)

// DateScanner resolves publication dates for entries whose feed carried
// none, by inspecting the article page itself
type DateScanner interface {
	PublishedDate(ctx context.Context, link string) (time.Time, error)
}

// Summarizer cleans raw entry summaries into plain-text snippets
type Summarizer interface {
	Snippet(raw string, max int) string
}

// Provider queries a news-search RSS endpoint and converts results to
// candidates. Aggregator entries carry "Title - Source" composite titles
// which are split apart here.
type Provider struct {
	parser    *Parser
	allowlist *Allowlist
	dateScan  DateScanner
	summarize Summarizer
	baseURL   string
	locale    string
	now       func() time.Time
}

// NewProvider creates a search provider; baseURL empty uses the Google News
// search endpoint with a Singapore locale
func NewProvider(parser *Parser, allowlist *Allowlist, dateScan DateScanner, summarize Summarizer, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://news.google.com/rss/search"
	}
	return &Provider{
		parser:    parser,
		allowlist: allowlist,
		dateScan:  dateScan,
		summarize: summarize,
		baseURL:   baseURL,
		locale:    "hl=en-SG&gl=SG&ceid=SG:en",
		now:       time.Now,
	}
}

// Search runs a query against the provider and returns up to limit
// candidates. Entries without a feed date fall back to a page deep-scan and
// finally to the current time; missing dates never reject an entry.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	searchURL := fmt.Sprintf("%s?q=%s&%s", p.baseURL, url.QueryEscape(query), p.locale)

	entries, err := p.parser.Parse(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search query %q: %w", query, err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		title, source := SplitAggregatorTitle(e.Title)

		published := e.Published
		if published.IsZero() && p.dateScan != nil {
			if t, scanErr := p.dateScan.PublishedDate(ctx, e.Link); scanErr == nil && !t.IsZero() {
				published = t
			} else if scanErr != nil {
				lgr.Printf("[DEBUG] date scan failed for %s: %v", e.Link, scanErr)
			}
		}
		if published.IsZero() {
			published = p.now()
		}

		summary := e.Summary
		if p.summarize != nil {
			summary = p.summarize.Snippet(summary, 300)
		}

		candidates = append(candidates, domain.Candidate{
			Title:     title,
			Summary:   summary,
			URL:       e.Link,
			Source:    source,
			Published: published,
			GovSource: p.allowlist.GovSource(e.Link, source),
		})
	}

	return candidates, nil
}

// SplitAggregatorTitle splits "Headline - Publisher" composite titles,
// returning the bare headline and a source guess
func SplitAggregatorTitle(title string) (headline, source string) {
	source = "Google News"
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return title[:idx], title[idx+3:]
	}
	return title, source
}
