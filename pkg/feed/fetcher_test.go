package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedBody(items ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>`
	for _, it := range items {
		body += it
	}
	return body + `</channel></rss>`
}

func feedItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>d</description><pubDate>%s</pubDate></item>`,
		title, link, published.Format(time.RFC1123Z))
}

func TestFetcherFetch(t *testing.T) {
	now := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody(
			feedItem("Fresh allowed story", "https://www.straitstimes.com/fresh", now.Add(-time.Hour)),
			feedItem("Stale story", "https://www.straitstimes.com/stale", now.Add(-60*24*time.Hour)),
			feedItem("Off-list domain", "https://random.example.com/x", now.Add(-time.Hour)),
			feedItem("MyCareersFuture job alert", "https://www.straitstimes.com/job", now.Add(-time.Hour)),
		))
	}))
	defer srv.Close()

	f := NewFetcher(NewParser(5*time.Second, "test-agent"), NewAllowlist(nil, ""), nil, FetcherConfig{
		Sources: []Source{{Name: "The Straits Times", URL: srv.URL}},
	})

	candidates := f.Fetch(context.Background())
	require.Len(t, candidates, 1)
	assert.Equal(t, "Fresh allowed story", candidates[0].Title)
	assert.Equal(t, "The Straits Times", candidates[0].Source)
	assert.False(t, candidates[0].GovSource)
}

func TestFetcherPerFeedCap(t *testing.T) {
	now := time.Now()

	var items []string
	for i := 0; i < 5; i++ {
		items = append(items, feedItem(fmt.Sprintf("Story %d", i),
			fmt.Sprintf("https://www.straitstimes.com/%d", i), now.Add(-time.Hour)))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody(items...))
	}))
	defer srv.Close()

	f := NewFetcher(NewParser(5*time.Second, "test-agent"), NewAllowlist(nil, ""), nil, FetcherConfig{
		Sources: []Source{{Name: "The Straits Times", URL: srv.URL}},
		PerFeed: 2,
	})

	candidates := f.Fetch(context.Background())
	assert.Len(t, candidates, 2)
}

func TestFetcherFailingSourceSkipped(t *testing.T) {
	now := time.Now()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedBody(feedItem("Good story", "https://www.straitstimes.com/good", now.Add(-time.Hour))))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	f := NewFetcher(NewParser(5*time.Second, "test-agent"), NewAllowlist(nil, ""), nil, FetcherConfig{
		Sources: []Source{
			{Name: "Broken", URL: bad.URL},
			{Name: "The Straits Times", URL: good.URL},
		},
	})

	candidates := f.Fetch(context.Background())
	require.Len(t, candidates, 1)
	assert.Equal(t, "Good story", candidates[0].Title)
}
