// internal/core/domain/site.go
package domain

import (
	"fmt"

	"pricescout/internal/platform/validator"
)

// CandidateSite es un dominio de retail donde buscar ofertas.
// Se identifica por Domain.
type CandidateSite struct {
	Domain  string `json:"domain" yaml:"domain"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// NewCandidateSite normaliza el dominio y completa BaseURL si falta.
func NewCandidateSite(domain, baseURL string) (CandidateSite, error) {
	d := validator.NormalizeDomain(domain)
	if !validator.IsRegistrable(d) {
		return CandidateSite{}, fmt.Errorf("%w: %q", ErrInvalidSite, domain)
	}
	if baseURL == "" || !validator.IsHTTPURL(baseURL) {
		baseURL = "https://www." + d
	}
	return CandidateSite{Domain: d, BaseURL: baseURL}, nil
}

// NormalizeSites normaliza una lista de sitios: descarta inválidos y colapsa
// dominios repetidos conservando la primera aparición. Retorna también los
// descartados para poder loguearlos.
func NormalizeSites(sites []CandidateSite) (kept []CandidateSite, dropped []string) {
	seen := make(map[string]struct{}, len(sites))
	kept = make([]CandidateSite, 0, len(sites))

	for _, s := range sites {
		site, err := NewCandidateSite(s.Domain, s.BaseURL)
		if err != nil {
			dropped = append(dropped, s.Domain)
			continue
		}
		if _, dup := seen[site.Domain]; dup {
			continue
		}
		seen[site.Domain] = struct{}{}
		kept = append(kept, site)
	}
	return kept, dropped
}
