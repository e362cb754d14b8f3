// Package httpclient provides an HTTP client with retry, per-host politeness
// limiting, redirect capping and timeout support.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/logx"
)

// Client is an HTTP client shared by the search, LLM and page-fetch adapters.
type Client struct {
	httpClient *http.Client
	hosts      *HostLimiter
	logger     logx.Logger
	config     Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout bounds a single attempt. Default: 30 seconds
	Timeout time.Duration

	// MaxRetries is the number of extra attempts on network errors and
	// retryable statuses. Zero disables retries.
	MaxRetries int

	// RetryBackoff is the initial backoff, doubled after every attempt.
	// Default: 1 second
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the backoff. Default: 30 seconds
	MaxRetryBackoff time.Duration

	// UserAgent is the User-Agent header value. Default: "Mozilla/5.0"
	UserAgent string

	// PerHostRPS limits requests per second to each host. 0 disables it.
	PerHostRPS float64

	// PerHostBurst is the burst allowed by the per-host limiter. Default: 1
	PerHostBurst int

	// MaxRedirects caps redirect chains. Default: 10
	MaxRedirects int

	// ProxyURL routes every request through an HTTP proxy when set.
	ProxyURL string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    1 * time.Second,
		MaxRetryBackoff: 30 * time.Second,
		UserAgent:       "Mozilla/5.0",
		PerHostBurst:    1,
		MaxRedirects:    10,
	}
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) (*Client, error) {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 1 * time.Second
	}
	if config.MaxRetryBackoff <= 0 {
		config.MaxRetryBackoff = 30 * time.Second
	}
	if strings.TrimSpace(config.UserAgent) == "" {
		config.UserAgent = "Mozilla/5.0"
	}
	if config.PerHostBurst <= 0 {
		config.PerHostBurst = 1
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = 10
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if strings.TrimSpace(config.ProxyURL) != "" {
		proxyURL, err := url.Parse(config.ProxyURL)
		if err != nil {
			return nil, errors.Wrap(err, "parse proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	maxRedirects := config.MaxRedirects
	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &Client{
		httpClient: httpClient,
		hosts:      NewHostLimiter(config.PerHostRPS, config.PerHostBurst),
		logger:     logger.With("component", "httpclient"),
		config:     config,
	}, nil
}

// Request performs an HTTP request with per-host limiting and retries.
// The body is a byte slice so it can be replayed on every attempt.
func (c *Client) Request(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*http.Response, error) {
	host := hostOf(rawURL)
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.hosts.Wait(ctx, host); err != nil {
			return nil, errors.Wrap(err, "host limiter wait")
		}

		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := newRequest(ctx, method, rawURL, reader)
		if err != nil {
			return nil, errors.Wrapf(err, "build request %s %s", method, rawURL)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Debug("http request failed",
				"method", method,
				"host", host,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", duration.Milliseconds(),
			)
			lastErr = err

			if ctx.Err() != nil || !c.shouldRetry(attempt, err, nil) {
				return nil, errors.Wrapf(err, "request failed after %d attempts", attempt+1)
			}
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, errors.Wrap(err, "backoff interrupted")
			}
			continue
		}

		c.logger.Debug("http response",
			"method", method,
			"host", host,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		_ = resp.Body.Close()
		lastErr = errors.Wrapf(CheckStatus(resp), "HTTP %d", resp.StatusCode)
		if !c.shouldRetry(attempt, nil, resp) {
			break
		}

		c.logger.Debug("http retryable status",
			"host", host,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)
		if err := c.backoff(ctx, attempt); err != nil {
			return nil, errors.Wrap(err, "backoff interrupted")
		}
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d attempts", c.config.MaxRetries+1)
}

// newRequest avoids handing a typed-nil reader to net/http.
func newRequest(ctx context.Context, method, rawURL string, body *bytes.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, rawURL, nil)
	}
	return http.NewRequestWithContext(ctx, method, rawURL, body)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, rawURL, nil, headers)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, body []byte, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, rawURL, body, headers)
}

// FetchJSON performs a GET expecting JSON and returns the body of a 2xx response.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	resp, err := c.Get(ctx, rawURL, h)
	if err != nil {
		return nil, err
	}
	return readChecked(resp, rawURL)
}

// PostJSON posts a JSON body and returns the body of a 2xx response.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body []byte, headers map[string]string) ([]byte, error) {
	h := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range headers {
		h[k] = v
	}
	resp, err := c.Post(ctx, rawURL, body, h)
	if err != nil {
		return nil, err
	}
	return readChecked(resp, rawURL)
}

func readChecked(resp *http.Response, rawURL string) ([]byte, error) {
	if err := CheckStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", redact(rawURL))
	}
	return ReadBody(resp)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusBadGateway:
		return true
	default:
		return false
	}
}

func (c *Client) shouldRetry(attempt int, err error, resp *http.Response) bool {
	if attempt >= c.config.MaxRetries {
		return false
	}
	if err != nil {
		return true
	}
	return resp != nil && isRetryableStatus(resp.StatusCode)
}

// backoff waits RetryBackoff * 2^attempt, capped at MaxRetryBackoff.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	wait := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
	if wait > c.config.MaxRetryBackoff {
		wait = c.config.MaxRetryBackoff
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckStatus maps non-2xx statuses onto the shared error sentinels.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case http.StatusNotFound, http.StatusGone:
		return errors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return errors.ErrServiceUnavailable
	default:
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, max_retries=%d, per_host_rps=%.1f}",
		c.config.Timeout,
		c.config.MaxRetries,
		c.config.PerHostRPS,
	)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// redact drops the query string, which may carry API keys.
func redact(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
