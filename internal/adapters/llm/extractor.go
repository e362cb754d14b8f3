// internal/adapters/llm/extractor.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pricescout/internal/adapters/htmlclean"
	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
)

const extractPrompt = `From this HTML of %s, find the most relevant product and extract its details.
The shopper searched for: %q
Answer with a JSON object with the keys "found" (boolean), "product_name" (string), "price" (number), "currency" (ISO code or symbol), "availability" (for example "in stock" or "out of stock") and "rating" (number or null).
If the page does not show a single product with a price, answer {"found": false}.
HTML:

%s`

// productJSON is the object the model is asked for. Price is decoded
// leniently because models sometimes quote numbers.
type productJSON struct {
	Found        *bool           `json:"found"`
	ProductName  string          `json:"product_name"`
	Price        json.RawMessage `json:"price"`
	Currency     string          `json:"currency"`
	Availability string          `json:"availability"`
	Rating       *float64        `json:"rating"`
}

// ExtractionService implements ports.ExtractionService. Pages are reduced
// with htmlclean before being sent.
type ExtractionService struct {
	client  *Client
	cleaner *htmlclean.Cleaner
}

// NewExtractionService creates the service.
func NewExtractionService(client *Client) *ExtractionService {
	return &ExtractionService{
		client:  client,
		cleaner: htmlclean.New(client.cfg.MaxContentChars),
	}
}

// Extract returns (nil, nil) when the page has no product.
func (s *ExtractionService) Extract(ctx context.Context, pageContent, siteName, query string) (*domain.ProductInfo, error) {
	cleaned, err := s.cleaner.Clean([]byte(pageContent))
	if err != nil {
		return nil, errors.Wrap(err, "clean page")
	}
	if cleaned == "" {
		return nil, nil
	}

	out, err := s.client.Complete(ctx, fmt.Sprintf(extractPrompt, siteName, query, cleaned), true)
	if err != nil {
		return nil, err
	}
	return parseProduct(out)
}

func parseProduct(out string) (*domain.ProductInfo, error) {
	var p productJSON
	if err := json.Unmarshal([]byte(jsonObject(out)), &p); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "product json: %v", err)
	}
	if p.Found != nil && !*p.Found {
		return nil, nil
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return nil, nil
	}

	price, ok := parsePrice(p.Price)
	if !ok {
		return nil, nil
	}

	return &domain.ProductInfo{
		ProductName:  strings.TrimSpace(p.ProductName),
		Price:        price,
		Currency:     strings.TrimSpace(p.Currency),
		Availability: strings.TrimSpace(p.Availability),
		Rating:       p.Rating,
	}, nil
}

// parsePrice accepts 12.5, "12.5", "$1,299.00" and "1.299,00 €".
func parsePrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	num := priceNumber.FindString(s)
	if num == "" {
		return 0, false
	}
	num = strings.NewReplacer(" ", "", "'", "", "\u00a0", "").Replace(num)
	v, err := strconv.ParseFloat(decimalPoint(num), 64)
	return v, err == nil
}

var priceNumber = regexp.MustCompile(`\d[\d.,' \x{00a0}]*\d|\d`)

// decimalPoint rewrites a grouped number to plain "1299.00" form. With both
// separators the last one is the decimal mark. A lone separator followed by
// exactly three digits groups thousands unless the integer part is 0; any
// other lone comma is a decimal comma.
func decimalPoint(num string) string {
	lastDot := strings.LastIndex(num, ".")
	lastComma := strings.LastIndex(num, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(num, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(num, ",", "")
	case lastComma >= 0:
		if strings.Count(num, ",") == 1 {
			if frac := len(num) - lastComma - 1; frac != 3 || num[0] == '0' {
				return strings.Replace(num, ",", ".", 1)
			}
		}
		return strings.ReplaceAll(num, ",", "")
	case lastDot >= 0:
		if strings.Count(num, ".") > 1 || (len(num)-lastDot-1 == 3 && num[0] != '0') {
			return strings.ReplaceAll(num, ".", "")
		}
	}
	return num
}

// jsonObject trims anything around the outermost braces (code fences).
func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
