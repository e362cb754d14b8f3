// internal/core/usecases/site_probe.go
package usecases

import (
	"context"
	"net/url"
	"strings"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
)

// DefaultProbeTopResults es cuántos resultados orgánicos inspecciona un probe.
const DefaultProbeTopResults = 5

// SiteProbe convierte un par (query, sitio) en como mucho una URL candidata.
// No muta estado compartido; cualquier fallo se reporta como ausencia.
type SiteProbe struct {
	search ports.SearchProvider
	policy *policy.Policy
	topN   int
	logger logx.Logger
}

// NewSiteProbe crea un probe. topN <= 0 usa DefaultProbeTopResults.
func NewSiteProbe(search ports.SearchProvider, pol *policy.Policy, topN int, logger logx.Logger) *SiteProbe {
	if topN <= 0 {
		topN = DefaultProbeTopResults
	}
	if pol == nil {
		pol = policy.Default()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &SiteProbe{
		search: search,
		policy: pol,
		topN:   topN,
		logger: logger.With("component", "site_probe"),
	}
}

// Probe busca "<query> site:<domain>" y elige el mejor resultado.
func (p *SiteProbe) Probe(ctx context.Context, query string, site domain.CandidateSite) (domain.CandidateURL, bool) {
	q := query + " site:" + site.Domain

	hits, err := p.search.Search(ctx, q)
	if err != nil {
		p.logger.Warn("search failed", "site", site.Domain, "error", err.Error())
		return domain.CandidateURL{}, false
	}
	if len(hits) == 0 {
		p.logger.Debug("no organic results", "site", site.Domain)
		return domain.CandidateURL{}, false
	}
	if strings.TrimSpace(hits[0].URL) == "" {
		p.logger.Debug("top result has no link", "site", site.Domain)
		return domain.CandidateURL{}, false
	}

	best, bestScore := -1, -1
	for i, hit := range hits {
		if i >= p.topN {
			break
		}
		if strings.TrimSpace(hit.URL) == "" {
			continue
		}
		// Empates: gana el orden del buscador (estrictamente mayor)
		if s := p.score(hit); s > bestScore {
			best, bestScore = i, s
		}
	}

	chosen := hits[best]
	p.logger.Debug("candidate url selected",
		"site", site.Domain,
		"url", chosen.URL,
		"score", bestScore,
		"rank", best+1,
	)
	return domain.CandidateURL{Domain: site.Domain, URL: strings.TrimSpace(chosen.URL)}, true
}

// score: +2 si el path tiene un segmento de producto, +1 si el título
// menciona una marca conocida.
func (p *SiteProbe) score(hit domain.SearchHit) int {
	score := 0
	if u, err := url.Parse(strings.TrimSpace(hit.URL)); err == nil && p.policy.IsProductPath(u.Path) {
		score += 2
	}
	if p.policy.HasBrand(hit.Title) {
		score++
	}
	return score
}
