package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/markusmobius/go-trafilatura"
)

// DateScanner fetches an article page and extracts its publication date
// from document metadata. Used as a fallback when a feed entry carries no
// parseable timestamp.
type DateScanner struct {
	client    *http.Client
	userAgent string
}

// NewDateScanner creates a scanner with the given timeout and user agent
func NewDateScanner(timeout time.Duration, userAgent string) *DateScanner {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; RegWatch/1.0)"
	}
	return &DateScanner{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// PublishedDate retrieves the page at link and returns the publication date
// found in its metadata
func (s *DateScanner) PublishedDate(ctx context.Context, link string) (time.Time, error) {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return time.Time{}, fmt.Errorf("invalid URL: %s", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return time.Time{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, link)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil {
		return time.Time{}, fmt.Errorf("extract metadata from %s: %w", link, err)
	}
	if result == nil || result.Metadata.Date.IsZero() {
		return time.Time{}, fmt.Errorf("no publication date found at %s", link)
	}

	return result.Metadata.Date, nil
}
