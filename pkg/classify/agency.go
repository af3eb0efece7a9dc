package classify

import (
	"sort"
	"strings"

	"github.com/regwatch/regwatch/pkg/domain"
)

// ExtractAgencies returns the ordered, deduplicated set of agency codes
// found in text, or nil when nothing matched. Matching is additive across
// all three passes: one article frequently cites several agencies.
func (r *Rules) ExtractAgencies(text string) []string {
	found := map[string]bool{}
	lower := strings.ToLower(text)

	// acronyms are matched case-sensitively as whole words so that common
	// lowercase words don't trigger them; full names are case-insensitive
	for _, a := range r.agencies {
		if a.acronymRe.MatchString(text) {
			found[a.code] = true
			continue
		}
		for _, alias := range a.aliases {
			if alias.MatchString(text) {
				found[a.code] = true
				break
			}
		}
	}

	// "Minister (of State) (for|of) <role>" phrases map to their ministry
	if m := r.ministerRe.FindStringSubmatch(text); m != nil {
		role := strings.ToLower(m[1])
		for _, rr := range r.ministerRoles {
			if strings.Contains(role, strings.ToLower(rr.role)) {
				found[rr.agency] = true
			}
		}
	}

	// inferred topical keywords cover articles that never name the agency
	for _, inf := range r.inferred {
		for _, kw := range inf.keywords {
			if kw.MatchString(lower) {
				found[inf.agency] = true
				break
			}
		}
	}

	if len(found) == 0 {
		return nil
	}

	codes := make([]string, 0, len(found))
	for code := range found {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ExtractAgency returns the comma-joined sorted agency codes, or the
// unknown sentinel when no agency matched
func (r *Rules) ExtractAgency(text string) string {
	return JoinAgencies(r.ExtractAgencies(text))
}

// JoinAgencies renders an agency code set in its canonical string form
func JoinAgencies(codes []string) string {
	if len(codes) == 0 {
		return domain.AgencyUnknown
	}
	return strings.Join(codes, ", ")
}

// SplitAgencies parses the canonical comma-joined form back into a code set
func SplitAgencies(agency string) []string {
	if agency == "" || agency == domain.AgencyUnknown {
		return nil
	}
	parts := strings.Split(agency, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}
