// internal/core/ports/exporter.go
package ports

import (
	"io"

	"pricescout/internal/core/domain"
)

// Exporter es el port para escribir una respuesta en un formato concreto.
type Exporter interface {
	// Name retorna el nombre del formato (ej: "json", "table")
	Name() string

	// Export escribe la respuesta en w
	Export(resp *domain.SearchResponse, w io.Writer) error
}

// ExportOptions configura las opciones de exportación.
type ExportOptions struct {
	// Pretty indenta la salida (json)
	Pretty bool

	// IncludeMetadata incluye metadata y estadísticas
	IncludeMetadata bool

	// MinConfidence confianza mínima para incluir resultados (0.0-1.0)
	MinConfidence float64
}

// DefaultExportOptions retorna opciones por defecto.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Pretty:          true,
		IncludeMetadata: true,
		MinConfidence:   0.0,
	}
}
