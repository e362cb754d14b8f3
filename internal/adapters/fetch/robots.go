// internal/adapters/fetch/robots.go
package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"

	"pricescout/internal/platform/cache"
	"pricescout/internal/platform/httpclient"
)

const maxRobotsBytes = 512 * 1024

// robotsAgent evaluates robots.txt rules with a per-host cache.
// Unreachable or broken robots files allow the page.
type robotsAgent struct {
	client    *httpclient.Client
	userAgent string
	ttl       time.Duration
	rules     *cache.MemoryCache[*robotstxt.RobotsData]
}

func newRobotsAgent(client *httpclient.Client, userAgent string, ttl time.Duration) *robotsAgent {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return &robotsAgent{
		client:    client,
		userAgent: userAgent,
		ttl:       ttl,
		rules:     cache.NewMemoryCache[*robotstxt.RobotsData](256),
	}
}

// Allowed reports whether target may be fetched.
func (a *robotsAgent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}

	rules, ok := a.load(ctx, target)
	if !ok {
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return group.Test(path)
}

func (a *robotsAgent) load(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, bool) {
	host := strings.ToLower(target.Host)
	if rules, ok := a.rules.Get(host); ok {
		return rules, true
	}

	resp, err := a.client.Get(ctx, target.Scheme+"://"+target.Host+"/robots.txt", nil)
	if err != nil {
		return nil, false
	}
	if !statusOK(resp) {
		_ = resp.Body.Close()
		return nil, false
	}
	body, err := httpclient.ReadBodyLimit(resp, maxRobotsBytes)
	if err != nil {
		return nil, false
	}

	rules, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, false
	}
	a.rules.Set(host, rules, a.ttl)
	return rules, true
}
