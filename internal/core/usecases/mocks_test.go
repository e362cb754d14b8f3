// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pricescout/internal/core/domain"
)

// fakeSelector es un fake de ports.SiteSelector
type fakeSelector struct {
	sites []domain.CandidateSite
	err   error
	calls atomic.Int32
}

func (f *fakeSelector) Select(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, error) {
	f.calls.Add(1)
	return f.sites, f.err
}

// fakeEnhancer es un fake de ports.QueryEnhancer
type fakeEnhancer struct {
	enhanced string
	err      error
	calls    atomic.Int32
}

func (f *fakeEnhancer) Enhance(ctx context.Context, query string, country domain.CountryCode) (string, error) {
	f.calls.Add(1)
	return f.enhanced, f.err
}

// fakeSearch es un fake de ports.SearchProvider
type fakeSearch struct {
	searchFunc func(query string) ([]domain.SearchHit, error)

	mu      sync.Mutex
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]domain.SearchHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.searchFunc(query)
}

// fakeService es un fake de ports.ExtractionService
type fakeService struct {
	info  *domain.ProductInfo
	err   error
	calls atomic.Int32
}

func (f *fakeService) Extract(ctx context.Context, pageContent, siteName, query string) (*domain.ProductInfo, error) {
	f.calls.Add(1)
	return f.info, f.err
}

// fakeFetcher es un fake de ports.PageFetcher
type fakeFetcher struct {
	body string
	err  error

	mu      sync.Mutex
	timeout time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*domain.Page, error) {
	f.mu.Lock()
	f.timeout = timeout
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Page{URL: url, FinalURL: url, StatusCode: 200, Body: []byte(f.body)}, nil
}

// fakeScraper es un fake de ports.PageScraper
type fakeScraper struct {
	sites map[string]bool
	info  *domain.ProductInfo
	err   error
	calls atomic.Int32
}

func (f *fakeScraper) Supports(site string) bool { return f.sites[site] }

func (f *fakeScraper) Scrape(ctx context.Context, page *domain.Page, site string) (*domain.ProductInfo, error) {
	f.calls.Add(1)
	return f.info, f.err
}

// scriptedProber devuelve una URL fija por dominio; los dominios sin entrada
// son ausentes.
type scriptedProber struct {
	urls  map[string]string
	delay map[string]time.Duration

	mu      sync.Mutex
	queries []string
}

func (s *scriptedProber) Probe(ctx context.Context, query string, site domain.CandidateSite) (domain.CandidateURL, bool) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if d := s.delay[site.Domain]; d > 0 {
		time.Sleep(d)
	}
	u, ok := s.urls[site.Domain]
	if !ok {
		return domain.CandidateURL{}, false
	}
	return domain.CandidateURL{Domain: site.Domain, URL: u}, true
}

// scriptedExtractor resuelve cada URL con extractFunc y registra las llamadas.
type scriptedExtractor struct {
	extractFunc func(c domain.CandidateURL) Outcome

	mu       sync.Mutex
	attempts []string
}

func (s *scriptedExtractor) Extract(ctx context.Context, c domain.CandidateURL, query string) Outcome {
	s.mu.Lock()
	s.attempts = append(s.attempts, c.URL)
	s.mu.Unlock()
	return s.extractFunc(c)
}

func (s *scriptedExtractor) Attempts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attempts...)
}

// offer construye un outcome presente.
func offer(c domain.CandidateURL, name string, price float64) Outcome {
	return Outcome{Result: &domain.ExtractionResult{
		ProductName:     name,
		Price:           price,
		Currency:        "USD",
		Availability:    "in stock",
		SiteName:        c.Domain,
		Link:            c.URL,
		ConfidenceScore: domain.ConfidenceService,
	}}
}

// sitesN crea n sitios shop1.com..shopN.com con su URL de producto.
func sitesN(n int) ([]domain.CandidateSite, map[string]string) {
	sites := make([]domain.CandidateSite, 0, n)
	urls := make(map[string]string, n)
	for i := 1; i <= n; i++ {
		d := "shop" + strconv.Itoa(i) + ".com"
		sites = append(sites, domain.CandidateSite{Domain: d, BaseURL: "https://www." + d})
		urls[d] = "https://www." + d + "/product/" + strconv.Itoa(i)
	}
	return sites, urls
}
