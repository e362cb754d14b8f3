// internal/adapters/llm/discovery.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"pricescout/internal/core/domain"
)

const discoverPrompt = `You are an e-commerce expert. Identify the top 3 most popular e-commerce websites for buying new consumer electronics in the country with code '%s'.
Also include 'books.toscrape.com'.
Return ONLY a JSON list of objects, each with a 'domain' and 'base_url' key. Example: [{"domain": "amazon.com", "base_url": "https://www.amazon.com"}]`

var listRe = regexp.MustCompile(`(?s)\[.*\]`)

// SiteDiscoverer asks the model which retail sites matter for a country.
type SiteDiscoverer struct {
	client *Client
}

// NewSiteDiscoverer creates a SiteDiscoverer.
func NewSiteDiscoverer(client *Client) *SiteDiscoverer {
	return &SiteDiscoverer{client: client}
}

// Discover returns the sites named by the model. An answer without a
// parseable JSON list yields an empty list, not an error.
func (d *SiteDiscoverer) Discover(ctx context.Context, country domain.CountryCode) ([]domain.CandidateSite, error) {
	out, err := d.client.Complete(ctx, fmt.Sprintf(discoverPrompt, country), false)
	if err != nil {
		return nil, err
	}

	match := listRe.FindString(out)
	if match == "" {
		d.client.logger.Warn("site discovery answer has no list", "country", country.String())
		return []domain.CandidateSite{}, nil
	}

	var sites []domain.CandidateSite
	if err := json.Unmarshal([]byte(match), &sites); err != nil {
		d.client.logger.Warn("site discovery answer is not valid json", "country", country.String(), "error", err.Error())
		return []domain.CandidateSite{}, nil
	}
	return sites, nil
}
