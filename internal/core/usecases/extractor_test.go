// internal/core/usecases/extractor_test.go
package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricescout/internal/core/domain"
	perrors "pricescout/internal/platform/errors"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/policy"
	"pricescout/internal/platform/rate"
	"pricescout/internal/testutil"
)

var candidate = domain.CandidateURL{Domain: "amazon.com", URL: "https://www.amazon.com/dp/B0CHX1W1XY"}

func newTestExtractor(fetcher *fakeFetcher, svc *fakeService) *Extractor {
	strategy := NewServiceStrategy(svc, rate.New(100), 0, logx.Nop())
	return NewExtractor(fetcher, strategy, policy.Default(), 0, logx.Nop())
}

func TestExtractor_Validation(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		info       *domain.ProductInfo
		wantReason domain.AbsenceReason
	}{
		{
			name:       "valid product",
			query:      "iphone 16 pro",
			info:       &domain.ProductInfo{ProductName: "Apple iPhone 16 Pro 128GB", Price: 999, Currency: "USD", Availability: "In Stock"},
			wantReason: domain.ReasonNone,
		},
		{
			name:       "no product on page",
			query:      "iphone 16 pro",
			info:       nil,
			wantReason: domain.ReasonNoProduct,
		},
		{
			name:       "empty name",
			query:      "iphone",
			info:       &domain.ProductInfo{ProductName: "  ", Price: 10},
			wantReason: domain.ReasonInvalid,
		},
		{
			name:       "zero price",
			query:      "iphone",
			info:       &domain.ProductInfo{ProductName: "Apple iPhone 16", Price: 0},
			wantReason: domain.ReasonInvalid,
		},
		{
			name:       "blocked phrase",
			query:      "iphone",
			info:       &domain.ProductInfo{ProductName: "Customers also bought: iPhone case", Price: 9.99},
			wantReason: domain.ReasonInvalid,
		},
		{
			name:       "404 page",
			query:      "iphone",
			info:       &domain.ProductInfo{ProductName: "404 iPhone", Price: 9.99},
			wantReason: domain.ReasonInvalid,
		},
		{
			name:       "irrelevant short name",
			query:      "iphone 16 pro",
			info:       &domain.ProductInfo{ProductName: "Case", Price: 9.99},
			wantReason: domain.ReasonIrrelevant,
		},
		{
			name:       "irrelevant name with error phrase",
			query:      "iphone 16 pro",
			info:       &domain.ProductInfo{ProductName: "Oops, something went wrong", Price: 9.99},
			wantReason: domain.ReasonIrrelevant,
		},
		{
			name:       "plausible name without token match",
			query:      "iphone 16 pro",
			info:       &domain.ProductInfo{ProductName: "Smartphone 128GB Titanium", Price: 899},
			wantReason: domain.ReasonNone,
		},
		{
			name:       "query with only stop-words skips relevance",
			query:      "the best deal",
			info:       &domain.ProductInfo{ProductName: "Case", Price: 9.99},
			wantReason: domain.ReasonNone,
		},
		{
			name:       "captcha in name",
			query:      "kindle",
			info:       &domain.ProductInfo{ProductName: "Please verify you are human", Price: 1},
			wantReason: domain.ReasonBlocked,
		},
		{
			name:       "captcha in availability",
			query:      "kindle",
			info:       &domain.ProductInfo{ProductName: "Kindle Paperwhite", Price: 139, Availability: "Complete the security check"},
			wantReason: domain.ReasonBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := newTestExtractor(&fakeFetcher{body: "<html></html>"}, &fakeService{info: tt.info})

			out := ext.Extract(context.Background(), candidate, tt.query)

			testutil.AssertEqual(t, out.Reason, tt.wantReason, "reason")
			testutil.AssertEqual(t, out.Present(), tt.wantReason == domain.ReasonNone, "presence")
		})
	}
}

func TestExtractor_LinkOverwritten(t *testing.T) {
	ext := newTestExtractor(&fakeFetcher{body: "<html></html>"}, &fakeService{info: &domain.ProductInfo{
		ProductName: "Kindle Paperwhite",
		Price:       139.99,
		Currency:    "USD",
	}})

	out := ext.Extract(context.Background(), candidate, "kindle")

	testutil.AssertTrue(t, out.Present(), "present")
	testutil.AssertEqual(t, out.Result.Link, candidate.URL, "link is the candidate url")
	testutil.AssertEqual(t, out.Result.SiteName, "amazon.com", "site name")
	testutil.AssertEqual(t, out.Result.ConfidenceScore, domain.ConfidenceService, "service confidence")
	testutil.AssertEqual(t, out.Result.Availability, domain.DefaultAvailability, "availability default")
}

func TestExtractor_Failures(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		svc := &fakeService{info: &domain.ProductInfo{ProductName: "x", Price: 1}}
		ext := newTestExtractor(&fakeFetcher{err: errors.New("connection reset")}, svc)

		out := ext.Extract(context.Background(), candidate, "kindle")

		testutil.AssertEqual(t, out.Reason, domain.ReasonFetchFailed, "reason")
		testutil.AssertEqual(t, svc.calls.Load(), int32(0), "service not called")
	})

	t.Run("service failure", func(t *testing.T) {
		ext := newTestExtractor(&fakeFetcher{}, &fakeService{err: errors.New("bad json")})
		out := ext.Extract(context.Background(), candidate, "kindle")
		testutil.AssertEqual(t, out.Reason, domain.ReasonExtractionFailed, "reason")
		testutil.AssertFalse(t, out.Throttled, "not throttled")
	})

	t.Run("service rate limited", func(t *testing.T) {
		ext := newTestExtractor(&fakeFetcher{}, &fakeService{err: perrors.Wrap(perrors.ErrRateLimit, "HTTP 429")})
		out := ext.Extract(context.Background(), candidate, "kindle")
		testutil.AssertEqual(t, out.Reason, domain.ReasonExtractionFailed, "reason")
		testutil.AssertTrue(t, out.Throttled, "throttled")
	})
}

func TestExtractor_FetchTimeoutDefault(t *testing.T) {
	fetcher := &fakeFetcher{}
	ext := newTestExtractor(fetcher, &fakeService{})

	ext.Extract(context.Background(), candidate, "kindle")

	testutil.AssertEqual(t, fetcher.timeout, 15*time.Second, "default fetch timeout")
}

func TestServiceStrategy_RateLimiter(t *testing.T) {
	t.Run("every call passes the limiter", func(t *testing.T) {
		limiter := rate.New(5)
		s := NewServiceStrategy(&fakeService{}, limiter, 0, nil)

		for i := 0; i < 3; i++ {
			_, err := s.Extract(context.Background(), &domain.Page{}, "amazon.com", "kindle")
			testutil.AssertNoError(t, err, "extract")
		}
		testutil.AssertEqual(t, limiter.Len(), 3, "admissions recorded")
	})

	t.Run("spare capacity is not throttling", func(t *testing.T) {
		s := NewServiceStrategy(&fakeService{}, rate.New(1000), 0, nil)

		for i := 0; i < 100; i++ {
			res, err := s.Extract(context.Background(), &domain.Page{}, "amazon.com", "kindle")
			testutil.RequireNoError(t, err, "extract")
			if res.Throttled {
				t.Fatalf("call %d marked throttled with spare capacity", i)
			}
		}
	})

	t.Run("waiting marks throttled", func(t *testing.T) {
		now := time.Unix(0, 0)
		limiter := rate.New(1, rate.WithClock(
			func() time.Time { return now },
			func(ctx context.Context, d time.Duration) error { now = now.Add(d); return nil },
		))
		s := NewServiceStrategy(&fakeService{}, limiter, 0, nil)

		first, _ := s.Extract(context.Background(), &domain.Page{}, "a.com", "q")
		second, _ := s.Extract(context.Background(), &domain.Page{}, "a.com", "q")

		testutil.AssertFalse(t, first.Throttled, "first call admitted immediately")
		testutil.AssertTrue(t, second.Throttled, "second call waited")
	})

	t.Run("acquire timeout gives up", func(t *testing.T) {
		limiter := rate.New(1, rate.WithWindow(time.Hour))
		svc := &fakeService{}
		s := NewServiceStrategy(svc, limiter, 20*time.Millisecond, nil)

		_, err := s.Extract(context.Background(), &domain.Page{}, "a.com", "q")
		testutil.AssertNoError(t, err, "first call")

		res, err := s.Extract(context.Background(), &domain.Page{}, "a.com", "q")
		testutil.AssertError(t, err, "second call times out")
		testutil.AssertTrue(t, errors.Is(err, context.DeadlineExceeded), "deadline")
		testutil.AssertTrue(t, res.Throttled, "throttled")
		testutil.AssertEqual(t, svc.calls.Load(), int32(1), "service called once")
	})
}

func TestStructuredFirstStrategy(t *testing.T) {
	structured := &domain.ProductInfo{ProductName: "A Light in the Attic", Price: 51.77, Currency: "GBP"}
	serviced := &domain.ProductInfo{ProductName: "A Light in the Attic", Price: 51.77, Currency: "GBP"}

	tests := []struct {
		name           string
		scraper        *fakeScraper
		wantConfidence float64
		wantMethod     string
		wantSvcCalls   int32
	}{
		{
			name:           "profiled site uses scraper",
			scraper:        &fakeScraper{sites: map[string]bool{"books.toscrape.com": true}, info: structured},
			wantConfidence: domain.ConfidenceStructured,
			wantMethod:     "structured",
		},
		{
			name:           "unprofiled site falls back",
			scraper:        &fakeScraper{sites: map[string]bool{}},
			wantConfidence: domain.ConfidenceService,
			wantMethod:     StrategyService,
			wantSvcCalls:   1,
		},
		{
			name:           "scrape failure falls back",
			scraper:        &fakeScraper{sites: map[string]bool{"books.toscrape.com": true}, err: errors.New("price selector not found")},
			wantConfidence: domain.ConfidenceService,
			wantMethod:     StrategyService,
			wantSvcCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{info: serviced}
			s := NewStructuredFirstStrategy(tt.scraper, NewServiceStrategy(svc, rate.New(10), 0, nil), nil)

			res, err := s.Extract(context.Background(), &domain.Page{}, "books.toscrape.com", "attic")

			testutil.RequireNoError(t, err, "extract")
			testutil.AssertEqual(t, res.Confidence, tt.wantConfidence, "confidence")
			testutil.AssertEqual(t, res.Method, tt.wantMethod, "method")
			testutil.AssertEqual(t, svc.calls.Load(), tt.wantSvcCalls, "service calls")
		})
	}
}
