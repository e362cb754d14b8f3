// internal/adapters/output/output.go

// Package output implementa ports.Exporter para la CLI.
package output

import (
	"fmt"
	"strings"

	"pricescout/internal/core/ports"
)

// New retorna el exporter del formato pedido: table, json o ndjson.
func New(format string, opts ports.ExportOptions) (ports.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return NewTableExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "ndjson":
		return NewNDJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
