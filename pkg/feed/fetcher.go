package feed

import (
	"context"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/regwatch/regwatch/pkg/domain"
)

// Source names one configured RSS feed
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Fetcher pulls entries from the configured feed sources and converts them
// to candidates. Fetches run concurrently but results are fully materialized
// and returned in source order before any classification happens.
type Fetcher struct {
	parser    *Parser
	allowlist *Allowlist
	summarize Summarizer
	sources   []Source
	maxAge    time.Duration
	perFeed   int
	now       func() time.Time
}

// FetcherConfig holds fetcher settings
type FetcherConfig struct {
	Sources []Source
	MaxAge  time.Duration // entries older than this are skipped
	PerFeed int           // max entries taken per feed
}

// NewFetcher creates a fetcher over the configured sources
func NewFetcher(parser *Parser, allowlist *Allowlist, summarize Summarizer, cfg FetcherConfig) *Fetcher {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}
	if cfg.PerFeed == 0 {
		cfg.PerFeed = 10
	}
	return &Fetcher{
		parser:    parser,
		allowlist: allowlist,
		summarize: summarize,
		sources:   cfg.Sources,
		maxAge:    cfg.MaxAge,
		perFeed:   cfg.PerFeed,
		now:       time.Now,
	}
}

// Fetch retrieves candidates from all sources. A failing source is logged
// and skipped, never fatal to the batch.
func (f *Fetcher) Fetch(ctx context.Context) []domain.Candidate {
	results := make([][]domain.Candidate, len(f.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range f.sources {
		g.Go(func() error {
			candidates, err := f.fetchSource(gctx, src)
			if err != nil {
				lgr.Printf("[WARN] fetch %s failed: %v", src.Name, err)
				return nil // skip the source, keep the batch
			}
			results[i] = candidates
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	var all []domain.Candidate
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source) ([]domain.Candidate, error) {
	entries, err := f.parser.Parse(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if len(entries) > f.perFeed {
		entries = entries[:f.perFeed]
	}

	cutoff := f.now().Add(-f.maxAge)

	var candidates []domain.Candidate
	for _, e := range entries {
		published := e.Published
		if published.IsZero() {
			published = f.now()
		}
		if published.Before(cutoff) {
			continue
		}

		// job-board noise shows up in news feeds occasionally
		if strings.Contains(src.Name, "MyCareersFuture") || strings.Contains(e.Title, "MyCareersFuture") {
			continue
		}

		if !f.allowlist.Allowed(e.Link, src.Name) {
			continue
		}

		summary := e.Summary
		if f.summarize != nil {
			summary = f.summarize.Snippet(summary, 300)
		}

		candidates = append(candidates, domain.Candidate{
			Title:     e.Title,
			Summary:   summary,
			URL:       e.Link,
			Source:    src.Name,
			Published: published,
			GovSource: f.allowlist.GovSource(e.Link, src.Name),
		})
	}

	return candidates, nil
}
