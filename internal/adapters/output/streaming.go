// internal/adapters/output/streaming.go
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
)

// NDJSONExporter escribe una oferta por línea, en orden de precio, para
// consumirla con herramientas de línea de comandos (jq, grep). Si hay
// metadata la última línea es un resumen con "type":"summary".
type NDJSONExporter struct {
	opts ports.ExportOptions
}

// NewNDJSONExporter crea un exporter NDJSON. Pretty se ignora.
func NewNDJSONExporter(opts ports.ExportOptions) *NDJSONExporter {
	return &NDJSONExporter{opts: opts}
}

// Name implementa ports.Exporter.
func (e *NDJSONExporter) Name() string { return "ndjson" }

// summaryLine cierra el stream.
type summaryLine struct {
	Type         string                  `json:"type"`
	TotalResults int                     `json:"total_results"`
	SearchTimeMs int64                   `json:"search_time_ms"`
	Errors       []string                `json:"errors"`
	Metadata     domain.ResponseMetadata `json:"metadata"`
}

// Export implementa ports.Exporter.
func (e *NDJSONExporter) Export(resp *domain.SearchResponse, w io.Writer) error {
	out := filterResponse(resp, e.opts)
	enc := json.NewEncoder(w)

	for i := range out.Results {
		if err := enc.Encode(out.Results[i]); err != nil {
			return fmt.Errorf("failed to encode result %d: %w", i, err)
		}
	}

	if !e.opts.IncludeMetadata {
		return nil
	}
	return enc.Encode(summaryLine{
		Type:         "summary",
		TotalResults: out.TotalResults,
		SearchTimeMs: out.SearchTimeMs,
		Errors:       out.Errors,
		Metadata:     out.Metadata,
	})
}
