package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Test Feed</title>
	<item>
		<title>MAS issues new licensing framework</title>
		<link>https://example.com/mas-framework</link>
		<description>Payment firms face tighter rules</description>
		<pubDate>Mon, 02 Jun 2025 08:30:00 +0800</pubDate>
	</item>
	<item>
		<title>Dateless entry</title>
		<link>https://example.com/dateless</link>
		<description>No date supplied</description>
	</item>
</channel>
</rss>`

func TestParserParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewParser(5*time.Second, "test-agent")
	entries, err := p.Parse(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "MAS issues new licensing framework", entries[0].Title)
	assert.Equal(t, "https://example.com/mas-framework", entries[0].Link)
	assert.Equal(t, "Payment firms face tighter rules", entries[0].Summary)
	assert.Equal(t, 2025, entries[0].Published.Year())

	assert.True(t, entries[1].Published.IsZero(), "missing date keeps entry with zero time")
}

func TestParserParseErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := NewParser(5*time.Second, "test-agent")
		_, err := p.Parse(context.Background(), srv.URL)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code")
	})

	t.Run("invalid feed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not a feed")) //nolint:errcheck
		}))
		defer srv.Close()

		p := NewParser(5*time.Second, "test-agent")
		_, err := p.Parse(context.Background(), srv.URL)
		assert.Error(t, err)
	})
}

func TestParseLooseTime(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"Mon, 02 Jun 2025 08:30:00 +0800", false},
		{"2025-06-02T08:30:00Z", false},
		{"2025-06-02", false},
		{"not a date", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseLooseTime(tt.in).IsZero())
		})
	}
}
