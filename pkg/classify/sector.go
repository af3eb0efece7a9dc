package classify

import (
	"strings"

	"github.com/regwatch/regwatch/pkg/domain"
)

// ClassifySector picks a single sector label from keyword evidence and the
// extracted agency set. Narrow-agency defaults override keyword scores
// outright; broad agencies prefer keyword evidence when any exists.
func (r *Rules) ClassifySector(text string, agencies []string) string {
	lower := strings.ToLower(text)

	bestSector := ""
	bestScore := 0
	anyScore := false
	for _, s := range r.sectors {
		score := 0
		for _, kw := range s.keywords {
			if kw.MatchString(lower) {
				score++
			}
		}
		// strict > keeps enumeration order as the tie-break
		if score > 0 && score > bestScore {
			bestSector, bestScore = s.name, score
			anyScore = true
		}
	}
	if bestSector == "" {
		bestSector = domain.SectorGeneral
	}

	if len(agencies) > 0 {
		assigned := ""
		for _, ag := range agencies {
			sector, ok := r.agencySector[ag]
			if !ok {
				continue
			}
			if r.broadAgencies[ag] {
				if anyScore {
					assigned = bestSector
				} else {
					assigned = sector
				}
				continue
			}
			// narrow agency is unambiguous proof of sector
			return sector
		}
		if assigned != "" {
			return assigned
		}
		if sector, ok := r.agencySector[agencies[0]]; ok {
			return sector
		}
	}

	if anyScore {
		return bestSector
	}
	return domain.SectorGeneral
}
