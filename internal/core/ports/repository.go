// internal/core/ports/repository.go
package ports

import (
	"context"
	"time"

	"pricescout/internal/core/domain"
)

// SiteCache es el port para persistir listas de sitios por país.
// Las entradas expiran tras el TTL configurado en la implementación.
type SiteCache interface {
	// Get retorna los sitios cacheados; ok=false si no hay entrada o expiró
	Get(ctx context.Context, country domain.CountryCode) (sites []domain.CandidateSite, ok bool, err error)

	// Put guarda (o reemplaza) la lista de un país
	Put(ctx context.Context, country domain.CountryCode, sites []domain.CandidateSite) error

	// Close cierra la conexión con el almacenamiento
	Close() error
}

// SiteCacheEntry es una fila del almacenamiento, usada para listar el estado
// de la caché.
type SiteCacheEntry struct {
	Country     domain.CountryCode
	Sites       []domain.CandidateSite
	LastUpdated time.Time
}

// SiteCacheLister es implementado opcionalmente por cachés que pueden listar
// sus entradas.
type SiteCacheLister interface {
	List(ctx context.Context) ([]SiteCacheEntry, error)
}
