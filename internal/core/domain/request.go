// internal/core/domain/request.go
package domain

import (
	"fmt"
	"strings"

	"pricescout/internal/platform/validator"
)

const (
	MinQueryLength = 3
	MaxQueryLength = 200

	// MaxResultsLimit es el tope de MaxResults; 0 significa "todos".
	MaxResultsLimit = 20
)

// SearchRequest representa una búsqueda de precios.
type SearchRequest struct {
	// Country mercado objetivo
	Country CountryCode `json:"country"`

	// Query texto libre del usuario
	Query string `json:"query"`

	// MaxResults trunca la respuesta consolidada (0 = sin límite)
	MaxResults int `json:"max_results,omitempty"`
}

// NewSearchRequest crea un request sin límite de resultados.
func NewSearchRequest(country CountryCode, query string) SearchRequest {
	return SearchRequest{Country: country, Query: query}
}

// Validate normaliza y verifica el request. Todos los errores envuelven
// ErrInvalidRequest.
func (r *SearchRequest) Validate() error {
	country, err := ParseCountry(string(r.Country))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	r.Country = country

	r.Query = strings.Join(strings.Fields(r.Query), " ")
	if !validator.LengthBetween(r.Query, MinQueryLength, MaxQueryLength) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidQuery)
	}

	if r.MaxResults < 0 || r.MaxResults > MaxResultsLimit {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidRequest, ErrInvalidMaxCount, r.MaxResults)
	}

	return nil
}

// String retorna una representación legible del request.
func (r SearchRequest) String() string {
	return fmt.Sprintf("SearchRequest{country=%s, query=%q, max=%d}", r.Country, r.Query, r.MaxResults)
}
