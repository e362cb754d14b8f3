// internal/core/ports/collaborators.go
package ports

import (
	"context"
	"time"

	"pricescout/internal/core/domain"
)

// SiteSelector decide en qué sitios buscar para un país.
// Puede estar respaldado por una tabla estática, una caché o un LLM; llamadas
// repetidas para el mismo país deben devolver una lista utilizable.
type SiteSelector interface {
	Select(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, error)
}

// QueryEnhancer reescribe la consulta del usuario para el buscador.
// Ante un fallo interno debe devolver la consulta original.
type QueryEnhancer interface {
	Enhance(ctx context.Context, query string, country domain.CountryCode) (string, error)
}

// SearchProvider ejecuta una búsqueda web; resultados ordenados, mejor primero.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]domain.SearchHit, error)
}

// ExtractionService convierte el contenido de una página en datos de producto.
// (nil, nil) significa que la página no contiene un producto.
type ExtractionService interface {
	Extract(ctx context.Context, pageContent, siteName, query string) (*domain.ProductInfo, error)
}

// PageFetcher descarga una página siguiendo redirects con timeout acotado.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*domain.Page, error)
}

// PageScraper extrae datos de producto con selectores CSS conocidos.
// Supports indica si hay un perfil de selectores para el sitio.
type PageScraper interface {
	Supports(site string) bool
	Scrape(ctx context.Context, page *domain.Page, site string) (*domain.ProductInfo, error)
}

// HealthChecker es implementado opcionalmente por colaboradores que pueden
// verificar su disponibilidad (usado por /health).
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}
