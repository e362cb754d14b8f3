// internal/adapters/llm/enhancer.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"pricescout/internal/core/domain"
)

const enhancePrompt = `You are a search optimization expert. Transform the user's query into an optimized search term for e-commerce sites.
Original query: %q
Target country: %s
Return ONLY the enhanced query string, no explanation.`

// Enhancer implements ports.QueryEnhancer. Any failure of the model falls
// back to the original query.
type Enhancer struct {
	client *Client
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(client *Client) *Enhancer {
	return &Enhancer{client: client}
}

// Enhance returns the rewritten query, or query itself when the model fails
// or answers with nothing usable.
func (e *Enhancer) Enhance(ctx context.Context, query string, country domain.CountryCode) (string, error) {
	out, err := e.client.Complete(ctx, fmt.Sprintf(enhancePrompt, query, country), false)
	if err != nil {
		e.client.logger.Warn("query enhancement failed, keeping original", "query", query, "error", err.Error())
		return query, nil
	}

	enhanced := cleanEnhanced(out)
	if enhanced == "" {
		return query, nil
	}
	return enhanced, nil
}

// cleanEnhanced keeps the first non-empty line without surrounding quotes.
func cleanEnhanced(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`+"`")
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
