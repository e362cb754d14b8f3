// internal/core/usecases/consolidator.go
package usecases

import (
	"sort"

	"pricescout/internal/core/domain"
)

// Consolidator deduplica resultados y los ordena por precio.
type Consolidator struct{}

// NewConsolidator crea una nueva instancia del servicio.
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// Consolidate elimina duplicados (nombre normalizado + sitio), conservando la
// primera aparición, y ordena de forma estable por precio ascendente.
// Es idempotente y no modifica la entrada.
func (c *Consolidator) Consolidate(results []domain.ExtractionResult) []domain.ExtractionResult {
	out := make([]domain.ExtractionResult, 0, len(results))
	seen := make(map[string]struct{}, len(results))

	for _, r := range results {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	// Empates de precio: se conserva el orden de entrada (orden de descubrimiento)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price < out[j].Price
	})

	return out
}

// Truncate limita la lista a max elementos (max <= 0 = sin límite).
func (c *Consolidator) Truncate(results []domain.ExtractionResult, max int) []domain.ExtractionResult {
	if max <= 0 || len(results) <= max {
		return results
	}
	return results[:max]
}
