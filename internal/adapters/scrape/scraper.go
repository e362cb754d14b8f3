// internal/adapters/scrape/scraper.go

// Package scrape reads product data from pages of known sites with CSS
// selector profiles.
package scrape

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/logx"
	"pricescout/internal/platform/validator"
)

var priceRe = regexp.MustCompile(`\d+(\.\d+)?`)

var ratingWords = map[string]float64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

// ErrSelectorsMissing is returned when the title or price selector matches
// nothing on the page.
var ErrSelectorsMissing = errors.New("title or price selector not found")

// Scraper implements ports.PageScraper over a fixed set of profiles.
type Scraper struct {
	profiles map[string]Profile
	logger   logx.Logger
}

// New builds a scraper. Profiles are keyed by normalized domain; later
// entries replace earlier ones.
func New(profiles []Profile, logger logx.Logger) *Scraper {
	if logger == nil {
		logger = logx.Nop()
	}
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		m[validator.NormalizeDomain(p.Domain)] = p
	}
	return &Scraper{profiles: m, logger: logger.With("component", "scraper")}
}

// Supports reports whether a profile exists for site.
func (s *Scraper) Supports(site string) bool {
	_, ok := s.profiles[validator.NormalizeDomain(site)]
	return ok
}

// Domains lists the sites with a profile.
func (s *Scraper) Domains() []string {
	out := make([]string, 0, len(s.profiles))
	for d := range s.profiles {
		out = append(out, d)
	}
	return out
}

// Scrape applies the product selectors, then the listing selectors.
// A page where neither finds a title and a price fails with ErrSelectorsMissing.
func (s *Scraper) Scrape(ctx context.Context, page *domain.Page, site string) (*domain.ProductInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := s.profiles[validator.NormalizeDomain(site)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no profile for %s", site)
	}
	if page == nil || len(page.Body) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}

	info, err := apply(doc, p.Product, p.Currency)
	if errors.Is(err, ErrSelectorsMissing) && p.Listing.Title != "" {
		s.logger.Debug("product selectors missed, trying listing", "site", p.Domain, "url", page.URL)
		info, err = apply(doc, p.Listing, p.Currency)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scrape %s", p.Domain)
	}
	return info, nil
}

func apply(doc *goquery.Document, sel Selectors, currency string) (*domain.ProductInfo, error) {
	scope := doc.Selection
	if sel.Container != "" {
		if c := doc.Find(sel.Container).First(); c.Length() > 0 {
			scope = c
		}
	}

	titleSel := scope.Find(sel.Title).First()
	priceSel := scope.Find(sel.Price).First()
	if titleSel.Length() == 0 || priceSel.Length() == 0 {
		return nil, ErrSelectorsMissing
	}

	// listing links carry the full title in the attribute, text is cut
	title := strings.TrimSpace(titleSel.AttrOr("title", ""))
	if title == "" {
		title = collapse(titleSel.Text())
	}

	price, err := ParsePrice(priceSel.Text())
	if err != nil {
		return nil, err
	}

	info := &domain.ProductInfo{
		ProductName: title,
		Price:       price,
		Currency:    currency,
	}
	if sel.Availability != "" {
		info.Availability = collapse(scope.Find(sel.Availability).First().Text())
	}
	if sel.Rating != "" {
		if r, ok := parseRating(scope.Find(sel.Rating).First()); ok {
			info.Rating = &r
		}
	}
	return info, nil
}

// ParsePrice reads the first number in text, ignoring thousands commas.
func ParsePrice(text string) (float64, error) {
	m := priceRe.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return 0, errors.Wrapf(errors.ErrInvalidResponse, "no price in %q", strings.TrimSpace(text))
	}
	return strconv.ParseFloat(m, 64)
}

// parseRating understands class words ("star-rating Three") and numeric text.
func parseRating(s *goquery.Selection) (float64, bool) {
	if s.Length() == 0 {
		return 0, false
	}
	for _, cls := range strings.Fields(strings.ToLower(s.AttrOr("class", ""))) {
		if v, ok := ratingWords[cls]; ok {
			return v, true
		}
	}
	if m := priceRe.FindString(s.Text()); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		return v, err == nil
	}
	return 0, false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
