package search

import (
	"fmt"
	"strings"
)

// queryStopwords are stripped from the base query; search providers prefer
// bare keywords
var queryStopwords = []string{
	"at", "on", "in", "to", "for", "of", "the", "a", "an", "and", "or", "speech",
}

// entityStopwords is the aggressive set used when reducing a complex query
// to its informative entity tokens
var entityStopwords = []string{
	"at", "on", "in", "to", "for", "of", "the", "a", "an", "and", "or", "is", "are", "with", "by", "from",
	"speech", "statement", "press", "release", "news", "update", "report", "media",
	"minister", "ministry", "dpm", "pm", "secretary", "government", "govt",
	"regulations", "regulation", "act", "bill", "law", "policy", "guidelines", "framework", "rules",
	"singapore", "sg", "new", "latest", "today", "regarding", "concerning", "about",
}

type synonymRule struct {
	key      string
	synonyms []string
}

// synonymTable expands trigger keys found in the query into related terms
var synonymTable = []synonymRule{
	{"autonomous", []string{"self-driving", "driverless", "automated", "av"}},
	{"ev", []string{"electric vehicle", "charging", "clean energy"}},
	{"ai", []string{"artificial intelligence", "genai", "llm", "machine learning"}},
	{"green", []string{"sustainability", "carbon", "emission", "esg", "climate"}},
	{"cybersecurity", []string{"cyber", "data breach", "ransomware", "scam"}},
	{"fintech", []string{"digital bank", "payment", "crypto", "blockchain"}},
	{"manpower", []string{"labor", "workforce", "talent", "retrenchment", "hiring"}},
	{"sme", []string{"small business", "enterprise", "digitalisation", "grant"}},
	{"halal", []string{"muis", "muslim", "certification", "food safety"}},
	{"property", []string{"real estate", "housing", "ura", "hdb", "absd"}},
}

// Expansion is a query prepared for the two-pass search strategy
type Expansion struct {
	Base         string   // stopword-stripped query
	Final        string   // base plus synonym OR-group
	Restricted   string   // final query with site restriction
	EntityTokens []string // informative tokens surviving aggressive stripping
	Smart        bool     // whether the smart entity passes should run
	SmartQuery   string   // entity tokens joined, without site restriction
	SmartSites   string   // entity tokens joined, with site restriction
}

// Expander turns free-text queries into provider queries: stopword
// stripping, synonym OR-groups and site restriction
type Expander struct {
	stop       map[string]bool
	entityStop map[string]bool
	siteFilter string
}

// NewExpander builds an expander restricted to the given source domains;
// the government site suffix is always included
func NewExpander(domains []string, govSite string) *Expander {
	if govSite == "" {
		govSite = ".gov.sg"
	}
	sites := make([]string, 0, len(domains)+1)
	for _, d := range domains {
		sites = append(sites, "site:"+d)
	}
	sites = append(sites, "site:"+govSite)

	e := &Expander{
		stop:       make(map[string]bool, len(queryStopwords)),
		entityStop: make(map[string]bool, len(entityStopwords)),
		siteFilter: "(" + strings.Join(sites, " OR ") + ")",
	}
	for _, w := range queryStopwords {
		e.stop[w] = true
	}
	for _, w := range entityStopwords {
		e.entityStop[w] = true
	}
	return e
}

// Expand prepares a raw user query for searching
func (e *Expander) Expand(query string) Expansion {
	rawTokens := strings.Fields(query)

	var cleaned []string
	for _, t := range rawTokens {
		if !e.stop[strings.ToLower(t)] {
			cleaned = append(cleaned, t)
		}
	}
	base := query
	if len(cleaned) > 0 {
		base = strings.Join(cleaned, " ")
	}

	// synonym triggers are checked against the original query so context
	// words removed by stripping still count
	queryLower := strings.ToLower(query)
	var synonyms []string
	for _, rule := range synonymTable {
		if strings.Contains(queryLower, rule.key) {
			synonyms = append(synonyms, rule.synonyms...)
		}
	}

	final := base
	if len(synonyms) > 0 {
		if len(synonyms) > 3 {
			synonyms = synonyms[:3]
		}
		quoted := make([]string, len(synonyms))
		for i, s := range synonyms {
			quoted[i] = "'" + s + "'"
		}
		final = fmt.Sprintf("%s OR (%s)", base, strings.Join(quoted, " OR "))
	}

	exp := Expansion{
		Base:       base,
		Final:      final,
		Restricted: fmt.Sprintf("(%s) %s", final, e.siteFilter),
	}

	exp.EntityTokens = e.entityTokens(query)
	exp.Smart = len(exp.EntityTokens) >= 1 && len(rawTokens) > 4
	if exp.Smart {
		exp.SmartQuery = strings.Join(exp.EntityTokens, " ")
		exp.SmartSites = fmt.Sprintf("(%s) %s", exp.SmartQuery, e.siteFilter)
	}

	return exp
}

// entityTokens reduces a query to informative tokens: lowercased, punctuation
// trimmed, aggressive stopwords removed, single characters dropped
func (e *Expander) entityTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		t = strings.Trim(t, ".,()[]{}'\"")
		if len(t) > 1 && !e.entityStop[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
