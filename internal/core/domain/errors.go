// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Request errors
	ErrInvalidRequest  = errors.New("invalid search request")
	ErrInvalidCountry  = errors.New("unsupported country code")
	ErrInvalidQuery    = errors.New("query must be between 3 and 200 characters")
	ErrInvalidMaxCount = errors.New("max_results must be between 0 and 20")

	// Site errors
	ErrInvalidSite = errors.New("invalid candidate site")

	// Pipeline errors: solo estos dos abortan una búsqueda
	ErrSiteSelection    = errors.New("site selection failed")
	ErrQueryEnhancement = errors.New("query enhancement failed")

	// Extraction errors
	ErrInvalidResult = errors.New("invalid extraction result")
)
