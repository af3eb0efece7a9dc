package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regwatch/regwatch/pkg/config"
	"github.com/regwatch/regwatch/pkg/domain"
)

func briefRecords() []*domain.Record {
	return []*domain.Record{
		{Title: "MAS fines payment firm", Agency: "MAS", Sector: "Financial Services", Impact: domain.ImpactHigh},
		{Title: "Consultation on digital banking", Agency: "MAS", Sector: "Financial Services", Impact: domain.ImpactMedium},
		{Title: "New bus lanes announced", Agency: "LTA", Sector: "Land Transport", Impact: domain.ImpactLow},
	}
}

func TestGenerateEmpty(t *testing.T) {
	g := NewGenerator(config.LLMConfig{})
	assert.Equal(t, "No regulatory updates to report.", g.Generate(context.Background(), nil))
}

func TestGenerateFallbackSynthesis(t *testing.T) {
	g := NewGenerator(config.LLMConfig{}) // disabled, no client
	brief := g.Generate(context.Background(), briefRecords())

	assert.True(t, strings.HasPrefix(brief, "# Regulatory Brief"))
	assert.Contains(t, brief, "3 regulatory updates across 2 sectors, 1 high impact.")

	// busiest sector leads, high impact first within it
	finIdx := strings.Index(brief, "## Financial Services")
	transportIdx := strings.Index(brief, "## Land Transport")
	require.GreaterOrEqual(t, finIdx, 0)
	require.GreaterOrEqual(t, transportIdx, 0)
	assert.Less(t, finIdx, transportIdx)

	fineIdx := strings.Index(brief, "MAS fines payment firm")
	consultIdx := strings.Index(brief, "Consultation on digital banking")
	assert.Less(t, fineIdx, consultIdx)
	assert.Contains(t, brief, "- **[High]** MAS fines payment firm (MAS)")
}

func TestGenerateLLMPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "[High] MAS fines payment firm (MAS, Financial Services)")

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Narrative brief."}}]}`)
	}))
	defer srv.Close()

	g := NewGenerator(config.LLMConfig{
		Enabled:  true,
		Endpoint: srv.URL,
		Model:    "test-model",
	})

	brief := g.Generate(context.Background(), briefRecords())
	assert.Equal(t, "Narrative brief.", brief)
}

func TestGenerateLLMFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(config.LLMConfig{
		Enabled:  true,
		Endpoint: srv.URL,
		Model:    "test-model",
	})

	brief := g.Generate(context.Background(), briefRecords())
	assert.True(t, strings.HasPrefix(brief, "# Regulatory Brief"))
}

func TestGenerateLLMEmptyContentFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`)
	}))
	defer srv.Close()

	g := NewGenerator(config.LLMConfig{
		Enabled:  true,
		Endpoint: srv.URL,
		Model:    "test-model",
	})

	brief := g.Generate(context.Background(), briefRecords())
	assert.True(t, strings.HasPrefix(brief, "# Regulatory Brief"))
}
