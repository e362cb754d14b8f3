// internal/core/usecases/site_probe_test.go
package usecases

import (
	"context"
	"errors"
	"testing"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
	"pricescout/internal/testutil"
)

func TestSiteProbe_Probe(t *testing.T) {
	site := domain.CandidateSite{Domain: "bestbuy.com", BaseURL: "https://www.bestbuy.com"}

	tests := []struct {
		name    string
		hits    []domain.SearchHit
		err     error
		topN    int
		wantURL string
		present bool
	}{
		{
			name:    "collaborator error is absent",
			err:     errors.New("quota exceeded"),
			present: false,
		},
		{
			name:    "no organic results is absent",
			hits:    nil,
			present: false,
		},
		{
			name:    "empty top link is absent",
			hits:    []domain.SearchHit{{URL: "", Title: "Apple iPhone"}, {URL: "https://www.bestbuy.com/product/1"}},
			present: false,
		},
		{
			name: "product path beats generic hit",
			hits: []domain.SearchHit{
				{URL: "https://www.bestbuy.com/site/searchpage", Title: "Search results"},
				{URL: "https://www.bestbuy.com/product/iphone-16-pro", Title: "iPhone 16 Pro"},
			},
			wantURL: "https://www.bestbuy.com/product/iphone-16-pro",
			present: true,
		},
		{
			name: "brand in title beats plain hit",
			hits: []domain.SearchHit{
				{URL: "https://www.bestbuy.com/deals", Title: "Weekly deals"},
				{URL: "https://www.bestbuy.com/phones", Title: "Samsung phones"},
			},
			wantURL: "https://www.bestbuy.com/phones",
			present: true,
		},
		{
			name: "ties resolved by collaborator order",
			hits: []domain.SearchHit{
				{URL: "https://www.bestbuy.com/dp/1", Title: "Sony headphones"},
				{URL: "https://www.bestbuy.com/dp/2", Title: "Sony headphones"},
			},
			wantURL: "https://www.bestbuy.com/dp/1",
			present: true,
		},
		{
			name: "only top N inspected",
			hits: []domain.SearchHit{
				{URL: "https://www.bestbuy.com/a", Title: "a"},
				{URL: "https://www.bestbuy.com/b", Title: "b"},
				{URL: "https://www.bestbuy.com/product/c", Title: "c"},
			},
			topN:    2,
			wantURL: "https://www.bestbuy.com/a",
			present: true,
		},
		{
			name: "path segment must match exactly",
			hits: []domain.SearchHit{
				{URL: "https://www.bestbuy.com/help", Title: "help"},
				{URL: "https://www.bestbuy.com/productivity-tools", Title: "tools"},
			},
			wantURL: "https://www.bestbuy.com/help",
			present: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearch{searchFunc: func(q string) ([]domain.SearchHit, error) {
				return tt.hits, tt.err
			}}
			probe := NewSiteProbe(search, policy.Default(), tt.topN, logx.Nop())

			got, ok := probe.Probe(context.Background(), "iphone 16 pro", site)

			testutil.AssertEqual(t, ok, tt.present, "presence")
			if tt.present {
				testutil.AssertEqual(t, got.URL, tt.wantURL, "url")
				testutil.AssertEqual(t, got.Domain, "bestbuy.com", "domain ties back to site")
			}
		})
	}
}

func TestSiteProbe_QueryIsSiteScoped(t *testing.T) {
	search := &fakeSearch{searchFunc: func(q string) ([]domain.SearchHit, error) { return nil, nil }}
	probe := NewSiteProbe(search, nil, 0, nil)

	probe.Probe(context.Background(), "kindle paperwhite", domain.CandidateSite{Domain: "amazon.in"})

	testutil.AssertEqual(t, search.queries, []string{"kindle paperwhite site:amazon.in"}, "query")
}
