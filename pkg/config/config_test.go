package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "regwatch.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - name: The Straits Times
    url: https://www.straitstimes.com/news/rss
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "file:regwatch.db?cache=shared&mode=rwc&_txlock=immediate", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30, cfg.Schedule.ScanInterval)
	assert.Equal(t, 5, cfg.Schedule.InterestQueries)
	assert.Equal(t, 30, cfg.Fetch.MaxAgeDays)
	assert.Equal(t, 10, cfg.Fetch.PerFeed)
	assert.Equal(t, "RegWatch/1.0", cfg.Fetch.UserAgent)
	assert.InDelta(t, 0.65, cfg.Dedup.Threshold, 0.001)
	assert.Equal(t, 45, cfg.Dedup.WindowDays)
	assert.Equal(t, ".gov.sg", cfg.Search.GovSite)
	assert.Equal(t, "keyword", cfg.Search.Ranker)
	assert.Equal(t, "Singapore", cfg.Search.Jurisdiction)
	assert.False(t, cfg.LLM.Enabled)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "The Straits Times", cfg.Feeds[0].Name)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s
schedule:
  scan_interval: 15
  backfill_queries:
    - mas enforcement action
dedup:
  threshold: 0.8
  window_days: 14
search:
  domains:
    - straitstimes.com
    - channelnewsasia.com
llm:
  enabled: true
  endpoint: http://localhost:11434/v1
  model: llama3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 15, cfg.Schedule.ScanInterval)
	assert.Equal(t, []string{"mas enforcement action"}, cfg.Schedule.BackfillQueries)
	assert.InDelta(t, 0.8, cfg.Dedup.Threshold, 0.001)
	assert.Equal(t, 14, cfg.Dedup.WindowDays)
	assert.Equal(t, []string{"straitstimes.com", "channelnewsasia.com"}, cfg.Search.Domains)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "llama3", cfg.LLM.Model)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-secret")

	path := writeConfig(t, `
llm:
  enabled: true
  endpoint: http://localhost:11434/v1
  model: llama3
  api_key: ${TEST_LLM_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "short server timeout",
			content: "server:\n  timeout: 100ms\n",
			errMsg:  "server timeout",
		},
		{
			name:    "feed without url",
			content: "feeds:\n  - name: Broken\n",
			errMsg:  "feeds[0].url",
		},
		{
			name:    "feed without name",
			content: "feeds:\n  - url: https://example.com/rss\n",
			errMsg:  "feeds[0].name",
		},
		{
			name:    "threshold above one",
			content: "dedup:\n  threshold: 1.5\n",
			errMsg:  "dedup.threshold",
		},
		{
			name:    "llm enabled without model",
			content: "llm:\n  enabled: true\n  endpoint: http://localhost:11434/v1\n",
			errMsg:  "llm.model",
		},
		{
			name:    "llm enabled without endpoint",
			content: "llm:\n  enabled: true\n  model: llama3\n",
			errMsg:  "llm.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestGetServerConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  listen: \":7070\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":7070", listen)
	assert.Equal(t, 30*time.Second, timeout)
}
