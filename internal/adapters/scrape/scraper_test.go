package scrape

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
	"pricescout/internal/testutil"
)

func page(body string) *domain.Page {
	return &domain.Page{URL: "https://books.toscrape.com/x", Body: []byte(body)}
}

func TestScraper_ProductPage(t *testing.T) {
	s := New(DefaultProfiles(), nil)

	info, err := s.Scrape(context.Background(), page(testutil.BookPageHTML), "books.toscrape.com")
	testutil.RequireNoError(t, err, "scrape")

	testutil.AssertEqual(t, info.ProductName, "A Light in the Attic", "name")
	testutil.AssertEqual(t, info.Price, 51.77, "price")
	testutil.AssertEqual(t, info.Currency, "GBP", "currency from profile")
	testutil.AssertEqual(t, info.Availability, "In stock (22 available)", "availability")
	testutil.AssertNotNil(t, info.Rating, "rating")
	testutil.AssertEqual(t, *info.Rating, 3.0, "rating from class word")
}

func TestScraper_ListingFallback(t *testing.T) {
	s := New(DefaultProfiles(), nil)

	info, err := s.Scrape(context.Background(), page(testutil.BookCatalogueHTML), "www.books.toscrape.com")
	testutil.RequireNoError(t, err, "scrape")

	testutil.AssertEqual(t, info.ProductName, "A Light in the Attic", "full title from attribute")
	testutil.AssertEqual(t, info.Price, 51.77, "first item price")
	testutil.AssertNil(t, info.Rating, "no rating selector")
}

func TestScraper_Failures(t *testing.T) {
	s := New(DefaultProfiles(), nil)

	tests := []struct {
		name    string
		site    string
		page    *domain.Page
		wantErr error
	}{
		{name: "unknown site", site: "amazon.com", page: page(testutil.BookPageHTML), wantErr: errors.ErrNotFound},
		{name: "empty page", site: "books.toscrape.com", page: page(""), wantErr: errors.ErrInvalidInput},
		{name: "selectors missing", site: "books.toscrape.com", page: page(testutil.ProductPageHTML), wantErr: ErrSelectorsMissing},
		{
			name:    "price without digits",
			site:    "books.toscrape.com",
			page:    page(`<div class="product_main"><h1>Book</h1><p class="price_color">free</p></div>`),
			wantErr: errors.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := s.Scrape(context.Background(), tt.page, tt.site)
			testutil.AssertNil(t, info, "no info")
			testutil.AssertTrue(t, errors.Is(err, tt.wantErr), "error kind: "+errString(err))
		})
	}
}

func TestScraper_Supports(t *testing.T) {
	s := New(DefaultProfiles(), nil)
	testutil.AssertTrue(t, s.Supports("books.toscrape.com"), "known")
	testutil.AssertTrue(t, s.Supports("https://www.Books.toscrape.com/"), "normalized")
	testutil.AssertFalse(t, s.Supports("amazon.com"), "unknown")
	testutil.AssertLen(t, s.Domains(), 1, "domains")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$999.99", 999.99},
		{"£51.77", 51.77},
		{"₹1,29,900", 129900},
		{"USD 1,299.00", 1299},
		{"  42 ", 42},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		testutil.RequireNoError(t, err, tt.in)
		testutil.AssertEqual(t, got, tt.want, tt.in)
	}

	_, err := ParsePrice("call for price")
	testutil.AssertError(t, err, "no digits")
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`
profiles:
  - domain: https://www.example-shop.com
    name: Example Shop
    currency: USD
    product:
      title: h1.product-title
      price: span.price-current
  - domain: books.toscrape.com
    name: Books
    currency: EUR
    product:
      title: h1
      price: p.price_color
`)
	profiles, err := ParseProfiles(data)
	testutil.RequireNoError(t, err, "parse")
	testutil.AssertLen(t, profiles, 2, "override plus new")
	testutil.AssertEqual(t, profiles[0].Currency, "EUR", "override replaces default")
	testutil.AssertEqual(t, profiles[1].Domain, "example-shop.com", "normalized domain")

	s := New(profiles, nil)
	info, err := s.Scrape(context.Background(), page(testutil.ProductPageHTML), "example-shop.com")
	testutil.RequireNoError(t, err, "scrape with custom profile")
	testutil.AssertEqual(t, info.Price, 999.99, "price")

	_, err = ParseProfiles([]byte("profiles:\n  - domain: x.com\n"))
	testutil.AssertTrue(t, errors.IsInvalidInput(err), "missing selectors")

	_, err = ParseProfiles([]byte("profiles: [unterminated"))
	testutil.AssertTrue(t, errors.IsInvalidInput(err), "bad yaml")
}

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles("")
	testutil.RequireNoError(t, err, "defaults")
	testutil.AssertLen(t, profiles, 1, "built-in")

	path := filepath.Join(t.TempDir(), "sites.yaml")
	testutil.RequireNoError(t, os.WriteFile(path, []byte("countries: {}\n"), 0o600), "write")
	profiles, err = LoadProfiles(path)
	testutil.RequireNoError(t, err, "file without profiles")
	testutil.AssertLen(t, profiles, 1, "defaults kept")

	_, err = LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err, "missing file")
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
