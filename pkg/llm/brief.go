package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/regwatch/regwatch/pkg/config"
	"github.com/regwatch/regwatch/pkg/domain"
)

// Generator produces an executive brief over a set of records. An
// OpenAI-compatible backend writes the narrative when configured; otherwise
// the brief is synthesized deterministically from the records themselves.
type Generator struct {
	client *openai.Client
	cfg    config.LLMConfig
}

// NewGenerator creates a brief generator; the LLM client is only built when
// the config enables it
func NewGenerator(cfg config.LLMConfig) *Generator {
	g := &Generator{cfg: cfg}
	if cfg.Enabled {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			clientConfig.BaseURL = cfg.Endpoint
		}
		g.client = openai.NewClientWithConfig(clientConfig)
	}
	return g
}

const briefSystemPrompt = `You are a regulatory affairs analyst writing an executive brief for business leaders in Singapore.
Given a list of recent regulatory news records, write a concise markdown brief:
- open with a one-paragraph overview of the regulatory climate
- group the rest by sector, one section per sector, most affected sector first
- within a section, lead with high-impact items and state the concrete business consequence in one sentence each
- cite the issuing agency for every item
- keep the whole brief under 500 words, no preamble and no closing remarks`

// Generate writes an executive brief for the given records. LLM failures are
// logged and fall back to deterministic synthesis, never returned.
func (g *Generator) Generate(ctx context.Context, records []*domain.Record) string {
	if len(records) == 0 {
		return "No regulatory updates to report."
	}

	if g.client != nil {
		brief, err := g.generateLLM(ctx, records)
		if err == nil {
			return brief
		}
		lgr.Printf("[WARN] llm brief failed, using fallback: %v", err)
	}

	return g.synthesize(records)
}

func (g *Generator) generateLLM(ctx context.Context, records []*domain.Record) (string, error) {
	var sb strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&sb, "- [%s] %s (%s, %s): %s\n", rec.Impact, rec.Title, rec.Agency, rec.Sector, rec.Summary)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: float32(g.cfg.Temperature),
		MaxTokens:   g.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: briefSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	brief := strings.TrimSpace(resp.Choices[0].Message.Content)
	if brief == "" {
		return "", fmt.Errorf("empty response")
	}
	return brief, nil
}

// impactOrder ranks tiers for sorting within a sector
var impactOrder = map[domain.Impact]int{
	domain.ImpactHigh:   0,
	domain.ImpactMedium: 1,
	domain.ImpactLow:    2,
}

// synthesize builds the fallback brief: records grouped by sector, sectors
// ordered by item count, high impact first within each
func (g *Generator) synthesize(records []*domain.Record) string {
	bySector := make(map[string][]*domain.Record)
	for _, rec := range records {
		bySector[rec.Sector] = append(bySector[rec.Sector], rec)
	}

	sectors := make([]string, 0, len(bySector))
	for sector := range bySector {
		sectors = append(sectors, sector)
	}
	sort.Slice(sectors, func(i, j int) bool {
		if len(bySector[sectors[i]]) != len(bySector[sectors[j]]) {
			return len(bySector[sectors[i]]) > len(bySector[sectors[j]])
		}
		return sectors[i] < sectors[j]
	})

	highCount := 0
	for _, rec := range records {
		if rec.Impact == domain.ImpactHigh {
			highCount++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Regulatory Brief\n\n")
	fmt.Fprintf(&sb, "%d regulatory updates across %d sectors", len(records), len(sectors))
	if highCount > 0 {
		fmt.Fprintf(&sb, ", %d high impact", highCount)
	}
	sb.WriteString(".\n")

	for _, sector := range sectors {
		recs := bySector[sector]
		sort.SliceStable(recs, func(i, j int) bool {
			return impactOrder[recs[i].Impact] < impactOrder[recs[j].Impact]
		})

		fmt.Fprintf(&sb, "\n## %s\n\n", sector)
		for _, rec := range recs {
			fmt.Fprintf(&sb, "- **[%s]** %s (%s)\n", rec.Impact, rec.Title, rec.Agency)
		}
	}

	return sb.String()
}
