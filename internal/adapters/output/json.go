// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
)

// JSONExporter escribe la respuesta completa con el formato de la API.
type JSONExporter struct {
	opts ports.ExportOptions
}

// NewJSONExporter crea un exporter JSON.
func NewJSONExporter(opts ports.ExportOptions) *JSONExporter {
	return &JSONExporter{opts: opts}
}

// Name implementa ports.Exporter.
func (e *JSONExporter) Name() string { return "json" }

// Export implementa ports.Exporter.
func (e *JSONExporter) Export(resp *domain.SearchResponse, w io.Writer) error {
	out := filterResponse(resp, e.opts)

	enc := json.NewEncoder(w)
	if e.opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if !e.opts.IncludeMetadata {
		// sin metadata se omite el bloque entero, no solo se vacía
		return enc.Encode(struct {
			Success      bool                      `json:"success"`
			TotalResults int                       `json:"total_results"`
			SearchTimeMs int64                     `json:"search_time_ms"`
			Results      []domain.ExtractionResult `json:"results"`
			Errors       []string                  `json:"errors"`
		}{out.Success, out.TotalResults, out.SearchTimeMs, out.Results, out.Errors})
	}
	return enc.Encode(out)
}

// filterResponse aplica MinConfidence sin modificar resp.
func filterResponse(resp *domain.SearchResponse, opts ports.ExportOptions) *domain.SearchResponse {
	if opts.MinConfidence <= 0 {
		return resp
	}
	out := *resp
	out.Results = make([]domain.ExtractionResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.ConfidenceScore >= opts.MinConfidence {
			out.Results = append(out.Results, r)
		}
	}
	out.TotalResults = len(out.Results)
	return &out
}

// sanitizeName convierte texto libre en un fragmento válido de nombre de archivo.
// Ejemplo: "iPhone 16 Pro" -> "iphone_16_pro"
func sanitizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if len(s) > 60 {
		s = s[:60]
	}
	if s == "" {
		s = "search"
	}
	return s
}

// Filename genera el nombre del archivo de una respuesta:
// pricescout_{country}_{query}_{timestamp}.json
func Filename(resp *domain.SearchResponse, at time.Time) string {
	return fmt.Sprintf("pricescout_%s_%s_%s.json",
		strings.ToLower(resp.Metadata.Country),
		sanitizeName(resp.Metadata.Query),
		at.Format("20060102_150405"),
	)
}

// WriteFile guarda la respuesta con exp dentro de dir y retorna la ruta.
func WriteFile(dir string, resp *domain.SearchResponse, exp ports.Exporter) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(resp, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := exp.Export(resp, f); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", exp.Name(), err)
	}
	return path, nil
}
