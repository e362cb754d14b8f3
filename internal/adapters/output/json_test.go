// internal/adapters/output/json_test.go
package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/core/ports"
	"pricescout/internal/testutil"
)

var (
	_ ports.Exporter = (*JSONExporter)(nil)
	_ ports.Exporter = (*TableExporter)(nil)
	_ ports.Exporter = (*NDJSONExporter)(nil)
)

func sampleResponse() *domain.SearchResponse {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state := domain.NewPipelineState(domain.NewSearchRequest(domain.CountryUS, "iPhone 16 Pro"), start)
	state.EnhancedQuery = "Apple iPhone 16 Pro 128GB"
	state.Sites = []domain.CandidateSite{{Domain: "apple.com"}, {Domain: "bestbuy.com"}}
	rating := 4.5
	state.Results = []domain.ExtractionResult{
		{ProductName: "Apple iPhone 16 Pro 128GB", Price: 949.99, Currency: "USD", Availability: "In Stock", SiteName: "bestbuy.com", Link: "https://www.bestbuy.com/site/iphone-16-pro", Rating: &rating, ConfidenceScore: 0.9},
		{ProductName: "iPhone 16 Pro", Price: 999.00, Currency: "USD", Availability: "Unknown", SiteName: "apple.com", Link: "https://www.apple.com/shop/buy-iphone/iphone-16-pro", ConfidenceScore: 0.7},
	}
	state.Errors = []string{"target.com: no product URL"}
	state.Attempted = 2
	state.Counters = domain.Counters{Success: 2, Failure: 1}
	return domain.NewSearchResponse(state, start.Add(1500*time.Millisecond))
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONExporter(ports.DefaultExportOptions()).Export(sampleResponse(), &buf)
	testutil.RequireNoError(t, err, "export")

	var got domain.SearchResponse
	testutil.RequireNoError(t, json.Unmarshal(buf.Bytes(), &got), "decode")
	testutil.AssertEqual(t, got.TotalResults, 2, "total")
	testutil.AssertEqual(t, got.SearchTimeMs, int64(1500), "search time")
	testutil.AssertEqual(t, got.Metadata.EnhancedQuery, "Apple iPhone 16 Pro 128GB", "metadata kept")
	testutil.AssertEqual(t, got.Metadata.SitesChecked, []string{"apple.com", "bestbuy.com"}, "sites")
	testutil.AssertTrue(t, strings.Contains(buf.String(), "\n  "), "pretty printed")
}

func TestJSONExporter_Options(t *testing.T) {
	t.Run("compact without metadata", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewJSONExporter(ports.ExportOptions{}).Export(sampleResponse(), &buf)
		testutil.RequireNoError(t, err, "export")

		out := buf.String()
		testutil.AssertFalse(t, strings.Contains(out, "metadata"), "metadata omitted")
		testutil.AssertEqual(t, strings.Count(out, "\n"), 1, "single line")
	})

	t.Run("min confidence", func(t *testing.T) {
		resp := sampleResponse()
		var buf bytes.Buffer
		err := NewJSONExporter(ports.ExportOptions{IncludeMetadata: true, MinConfidence: 0.8}).Export(resp, &buf)
		testutil.RequireNoError(t, err, "export")

		var got domain.SearchResponse
		testutil.RequireNoError(t, json.Unmarshal(buf.Bytes(), &got), "decode")
		testutil.AssertEqual(t, got.TotalResults, 1, "filtered total")
		testutil.AssertEqual(t, got.Results[0].SiteName, "bestbuy.com", "kept result")
		testutil.AssertLen(t, resp.Results, 2, "input untouched")
	})
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	testutil.AssertEqual(t, Filename(sampleResponse(), at), "pricescout_us_iphone_16_pro_20240501_093000.json", "filename")

	tests := []struct {
		in, want string
	}{
		{"Samsung 65\" QLED", "samsung_65__qled"},
		{"   ", "search"},
		{"wi-fi router", "wi-fi_router"},
		{strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, sanitizeName(tt.in), tt.want, tt.in)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, sampleResponse(), NewJSONExporter(ports.DefaultExportOptions()))
	testutil.RequireNoError(t, err, "write")
	testutil.AssertTrue(t, strings.HasPrefix(filepath.Base(path), "pricescout_us_iphone_16_pro_"), "filename prefix")

	data, err := os.ReadFile(path)
	testutil.RequireNoError(t, err, "read back")

	var got domain.SearchResponse
	testutil.RequireNoError(t, json.Unmarshal(data, &got), "valid json")
	testutil.AssertEqual(t, got.TotalResults, 2, "content")
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "table", "JSON", "ndjson"} {
		exp, err := New(format, ports.DefaultExportOptions())
		testutil.RequireNoError(t, err, format)
		testutil.AssertNotNil(t, exp, format)
	}

	_, err := New("csv", ports.DefaultExportOptions())
	testutil.AssertError(t, err, "unknown format")
}
