// internal/adapters/fetch/fetcher.go

// Package fetch downloads retail product pages for extraction.
package fetch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/httpclient"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/resilience"
	"pricescout/internal/platform/validator"
)

// ErrDisallowed is returned when robots.txt forbids the page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Config tunes the fetcher.
type Config struct {
	// MaxBodyBytes caps decoded bodies. Default: httpclient.DefaultMaxBodyBytes
	MaxBodyBytes int64

	// RespectRobots checks robots.txt before every page.
	RespectRobots bool

	// RobotsTTL is how long robots rules are cached per host. Default: 30m
	RobotsTTL time.Duration

	// UserAgent is matched against robots.txt groups.
	UserAgent string
}

// Fetcher implements ports.PageFetcher on top of the shared HTTP client.
// Hosts that keep failing are short-circuited by a per-host breaker.
type Fetcher struct {
	client   *httpclient.Client
	breakers *resilience.HostBreakers
	robots   *robotsAgent
	maxBody  int64
	logger   logx.Logger
}

// New creates a Fetcher. A nil breakers registry disables circuit breaking.
func New(client *httpclient.Client, breakers *resilience.HostBreakers, cfg Config, logger logx.Logger) *Fetcher {
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = httpclient.DefaultMaxBodyBytes
	}

	f := &Fetcher{
		client:   client,
		breakers: breakers,
		maxBody:  cfg.MaxBodyBytes,
		logger:   logger.With("component", "fetcher"),
	}
	if cfg.RespectRobots {
		f.robots = newRobotsAgent(client, cfg.UserAgent, cfg.RobotsTTL)
	}
	return f
}

// Fetch GETs rawURL following redirects, bounded by timeout. Non-2xx
// statuses, oversized bodies and open breakers are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*domain.Page, error) {
	if !validator.IsHTTPURL(rawURL) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "not an http url: %q", rawURL)
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	host := validator.HostOf(rawURL)

	var cb *resilience.CircuitBreaker
	if f.breakers != nil {
		cb = f.breakers.For(host)
		if !cb.Allow() {
			return nil, errors.Wrapf(resilience.ErrCircuitOpen, "host %s", host)
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if f.robots != nil && !f.robots.Allowed(ctx, u) {
		release(cb, true)
		f.logger.Debug("robots.txt disallows page", "url", rawURL)
		return nil, errors.Wrapf(ErrDisallowed, "%s", rawURL)
	}

	start := time.Now()
	resp, err := f.client.Get(ctx, u.String(), map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Encoding": httpclient.AcceptEncoding,
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		release(cb, false)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(errors.ErrTimeout, "fetch %s after %s", rawURL, timeout)
		}
		return nil, errors.Wrapf(err, "fetch %s", rawURL)
	}

	if err := httpclient.CheckStatus(resp); err != nil {
		_ = resp.Body.Close()
		// 4xx means the host answered; only overload counts against it
		release(cb, !errors.IsServiceUnavailable(err) && !errors.IsRateLimit(err))
		return nil, errors.Wrapf(err, "fetch %s", rawURL)
	}

	body, err := httpclient.ReadBodyLimit(resp, f.maxBody)
	if err != nil {
		release(cb, true)
		return nil, errors.Wrapf(err, "read %s", rawURL)
	}
	release(cb, true)

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("page fetched",
		"url", rawURL,
		"final_url", finalURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &domain.Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// OpenHosts lists hosts currently short-circuited.
func (f *Fetcher) OpenHosts() []string {
	if f.breakers == nil {
		return nil
	}
	return f.breakers.Open()
}

func release(cb *resilience.CircuitBreaker, ok bool) {
	if cb == nil {
		return
	}
	if ok {
		cb.RecordSuccess()
	} else {
		cb.RecordFailure()
	}
}

// statusOK is used by the robots agent, which reads bodies itself.
func statusOK(resp *http.Response) bool {
	return resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300
}
