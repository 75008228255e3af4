// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/pdiddy/smishguard/internal/evidence"
	"github.com/pdiddy/smishguard/pkg/types"
)

// maxLookalikeDistance is the largest edit distance between registrable
// labels still reported as a look-alike.
const maxLookalikeDistance = 2

// Lookalike is a URL domain that differs from a brand's search result
// domain by a small edit distance.
type Lookalike struct {
	BrandIndex   int
	URLDomain    string
	BrandDomain  string
	EditDistance int
}

// CrossReference compares the registrable domain of ev's final URL with the
// domains a brand search returned. It returns, per brand index, the result
// links on the same registrable domain, plus any look-alike domains.
func CrossReference(ev *types.URLEvidence, result types.BrandSearchResult) (map[int][]string, []Lookalike) {
	urlDomain, err := evidence.RegistrableDomain(ev.FinalURL)
	if err != nil {
		urlDomain = ""
	}
	urlLabel := label(urlDomain)

	matches := make(map[int][]string, len(result))
	var lookalikes []Lookalike
	for _, idx := range result.Indices() {
		matches[idx] = []string{}
		seen := make(map[string]bool)
		for _, link := range result[idx].Domains {
			d, err := evidence.RegistrableDomain(link)
			if err != nil {
				continue
			}
			if urlDomain != "" && d == urlDomain {
				matches[idx] = append(matches[idx], link)
				continue
			}
			if urlLabel == "" || seen[d] {
				continue
			}
			seen[d] = true
			dist := fuzzy.LevenshteinDistance(urlLabel, label(d))
			if dist >= 1 && dist <= maxLookalikeDistance {
				lookalikes = append(lookalikes, Lookalike{
					BrandIndex:   idx,
					URLDomain:    urlDomain,
					BrandDomain:  d,
					EditDistance: dist,
				})
			}
		}
	}
	return matches, lookalikes
}

// CrossReferenceAll fills BrandDomainMatches on every URL that carries a
// brand search result and logs look-alike domains.
func CrossReferenceAll(m types.EvidenceMap, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, i := range m.Indices() {
		ev := m[i]
		if len(ev.BrandSearch) == 0 {
			continue
		}
		matches, lookalikes := CrossReference(ev, ev.BrandSearch)
		ev.BrandDomainMatches = matches
		for _, l := range lookalikes {
			log.Warn("look-alike domain",
				zap.Int("url_index", i),
				zap.Int("brand_index", l.BrandIndex),
				zap.String("url_domain", l.URLDomain),
				zap.String("brand_domain", l.BrandDomain),
				zap.Int("edit_distance", l.EditDistance),
			)
		}
	}
}

// label strips the public suffix from a registrable domain: "usps.com" → "usps".
func label(domain string) string {
	if domain == "" {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(domain)
	l := strings.TrimSuffix(domain, suffix)
	return strings.TrimSuffix(l, ".")
}
