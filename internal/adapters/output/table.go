// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
)

// TableExporter imprime las ofertas como tabla de terminal.
type TableExporter struct {
	opts ports.ExportOptions
}

// NewTableExporter crea un exporter de tabla.
func NewTableExporter(opts ports.ExportOptions) *TableExporter {
	return &TableExporter{opts: opts}
}

// Name implementa ports.Exporter.
func (e *TableExporter) Name() string { return "table" }

// Export implementa ports.Exporter.
func (e *TableExporter) Export(resp *domain.SearchResponse, w io.Writer) error {
	out := filterResponse(resp, e.opts)

	if e.opts.IncludeMetadata {
		fmt.Fprintf(w, "\nQuery:     %s\n", out.Metadata.Query)
		if out.Metadata.EnhancedQuery != "" && out.Metadata.EnhancedQuery != out.Metadata.Query {
			fmt.Fprintf(w, "Enhanced:  %s\n", out.Metadata.EnhancedQuery)
		}
		fmt.Fprintf(w, "Country:   %s\n", out.Metadata.Country)
		fmt.Fprintf(w, "Sites:     %d checked, %d URLs found\n", len(out.Metadata.SitesChecked), out.Metadata.URLsDiscovered)
		fmt.Fprintf(w, "Duration:  %dms\n\n", out.SearchTimeMs)
	}

	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No offers found.")
	} else {
		data := pterm.TableData{{"#", "PRODUCT", "PRICE", "AVAILABILITY", "SITE", "RATING", "LINK"}}
		for i, r := range out.Results {
			data = append(data, []string{
				fmt.Sprintf("%d", i+1),
				truncate(r.ProductName, 60),
				formatPrice(r.Price, r.Currency),
				r.Availability,
				r.SiteName,
				formatRating(r.Rating),
				r.Link,
			})
		}
		rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
		fmt.Fprintln(w, rendered)
	}

	if len(out.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(out.Errors))
		for i, msg := range out.Errors {
			fmt.Fprintf(w, "  %d. %s\n", i+1, msg)
		}
	}

	if e.opts.IncludeMetadata {
		s := out.Metadata.Stats
		fmt.Fprintf(w, "\nExtractions: %d attempted, %d ok, %d failed, %d blocked, %d rate limited",
			out.Metadata.ExtractionsAttempted, s.Success, s.Failure, s.Blocked, s.RateLimited)
		if out.Metadata.BackfillUsed {
			fmt.Fprint(w, " (backfill)")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	return nil
}

func formatPrice(price float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.2f %s", price, currency)
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max-1]) + "…"
}
