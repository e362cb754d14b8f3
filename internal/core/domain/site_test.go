// internal/core/domain/site_test.go
package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pricescout/internal/testutil"
)

func TestNewCandidateSite(t *testing.T) {
	tests := []struct {
		name        string
		domain      string
		baseURL     string
		want        CandidateSite
		shouldError bool
	}{
		{
			name:   "plain domain gets base url",
			domain: "bestbuy.com",
			want:   CandidateSite{Domain: "bestbuy.com", BaseURL: "https://www.bestbuy.com"},
		},
		{
			name:    "url and www stripped",
			domain:  "https://www.Amazon.co.uk/",
			baseURL: "https://www.amazon.co.uk",
			want:    CandidateSite{Domain: "amazon.co.uk", BaseURL: "https://www.amazon.co.uk"},
		},
		{
			name:    "subdomain kept",
			domain:  "books.toscrape.com",
			baseURL: "https://books.toscrape.com",
			want:    CandidateSite{Domain: "books.toscrape.com", BaseURL: "https://books.toscrape.com"},
		},
		{name: "bare suffix", domain: "co.uk", shouldError: true},
		{name: "ip address", domain: "10.0.0.1", shouldError: true},
		{name: "empty", domain: "", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCandidateSite(tt.domain, tt.baseURL)
			if tt.shouldError {
				testutil.AssertError(t, err, "should fail")
				return
			}
			testutil.AssertNoError(t, err, "should succeed")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("site mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeSites(t *testing.T) {
	in := []CandidateSite{
		{Domain: "amazon.com"},
		{Domain: "www.amazon.com"},
		{Domain: "not a domain"},
		{Domain: "walmart.com", BaseURL: "https://www.walmart.com"},
	}

	kept, dropped := NormalizeSites(in)

	want := []CandidateSite{
		{Domain: "amazon.com", BaseURL: "https://www.amazon.com"},
		{Domain: "walmart.com", BaseURL: "https://www.walmart.com"},
	}
	if diff := cmp.Diff(want, kept); diff != "" {
		t.Errorf("kept mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, dropped, []string{"not a domain"}, "dropped")
}
