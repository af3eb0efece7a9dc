package classify

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Normalizer strips markup and entities from raw entry text so the
// downstream matchers operate on plain words
type Normalizer struct {
	policy *bluemonday.Policy
}

// NewNormalizer creates a normalizer with a strict strip-everything policy
func NewNormalizer() *Normalizer {
	return &Normalizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes HTML tags and entity escapes and collapses whitespace.
// Feed summaries arrive double-escaped often enough that we unescape before
// sanitizing and once more after.
func (n *Normalizer) Clean(raw string) string {
	text := html.UnescapeString(raw)
	text = n.policy.Sanitize(text)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Snippet cleans raw text and truncates it to max runes, appending an
// ellipsis when truncated
func (n *Normalizer) Snippet(raw string, max int) string {
	text := n.Clean(raw)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
