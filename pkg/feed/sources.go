package feed

import "strings"

// Allowlist restricts ingestion to trusted source domains. Aggregator
// redirect links hide the real domain, so the source display name is checked
// against a separate name map.
type Allowlist struct {
	domains        []string
	aggregatorHost string
	nameMarkers    []string
	govMarker      string
}

// NewAllowlist builds the allow-list; empty slices fall back to the default
// Singapore news domains
func NewAllowlist(domains []string, govMarker string) *Allowlist {
	if len(domains) == 0 {
		domains = []string{
			"straitstimes.com",
			"channelnewsasia.com",
			"businesstimes.com.sg",
			"theedgesingapore.com",
			"sbr.com.sg",
			"todayonline.com",
		}
	}
	if govMarker == "" {
		govMarker = ".gov.sg"
	}
	return &Allowlist{
		domains:        domains,
		aggregatorHost: "news.google.com",
		nameMarkers: []string{
			"straits times", "channel newsasia", "cna", "business times",
			"edge singapore", "business review", "sbr", "today",
		},
		govMarker: govMarker,
	}
}

// Allowed reports whether a URL/source pair passes the allow-list
func (a *Allowlist) Allowed(url, sourceName string) bool {
	urlLower := strings.ToLower(url)
	nameLower := strings.ToLower(sourceName)

	// aggregator redirects mask the target domain; trust the source name
	if strings.Contains(urlLower, a.aggregatorHost) {
		for _, marker := range a.nameMarkers {
			if strings.Contains(nameLower, marker) {
				return true
			}
		}
		return false
	}

	for _, d := range a.domains {
		if strings.Contains(urlLower, d) || strings.Contains(nameLower, d) {
			return true
		}
	}
	return false
}

// GovSource reports whether the URL or source name points at a government
// domain
func (a *Allowlist) GovSource(url, sourceName string) bool {
	return strings.Contains(strings.ToLower(url), a.govMarker) ||
		strings.Contains(strings.ToLower(sourceName), strings.TrimPrefix(a.govMarker, "."))
}
