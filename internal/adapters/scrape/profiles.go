// internal/adapters/scrape/profiles.go
package scrape

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/validator"
)

// Selectors locate product fields inside a page. Container scopes the other
// selectors; an empty or unmatched container means the whole document.
type Selectors struct {
	Container    string `yaml:"container"`
	Title        string `yaml:"title"`
	Price        string `yaml:"price"`
	Availability string `yaml:"availability,omitempty"`
	Rating       string `yaml:"rating,omitempty"`
	Link         string `yaml:"link,omitempty"`
}

// Profile describes how to read one retail site.
type Profile struct {
	Domain   string `yaml:"domain"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`

	// Product applies to a product detail page.
	Product Selectors `yaml:"product"`

	// Listing applies to a search or catalogue page; the first item wins.
	Listing Selectors `yaml:"listing,omitempty"`
}

// DefaultProfiles are the built-in site profiles.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Domain:   "books.toscrape.com",
			Name:     "Books To Scrape",
			Currency: "GBP",
			Product: Selectors{
				Container:    "div.product_main",
				Title:        "h1",
				Price:        "p.price_color",
				Availability: "p.availability",
				Rating:       "p.star-rating",
			},
			Listing: Selectors{
				Container:    "article.product_pod",
				Title:        "h3 a",
				Price:        "p.price_color",
				Availability: "p.availability",
				Link:         "h3 a",
			},
		},
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads the "profiles" list of a YAML file. Profiles in the file
// replace built-in ones with the same domain. An empty path or a file without
// profiles returns the defaults.
func LoadProfiles(path string) ([]Profile, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultProfiles(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profiles %s", path)
	}
	return ParseProfiles(data)
}

// ParseProfiles merges the YAML profiles over the defaults.
func ParseProfiles(data []byte) ([]Profile, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse profiles: %v", err)
	}

	out := DefaultProfiles()
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Domain] = i
	}

	for _, p := range f.Profiles {
		p.Domain = validator.NormalizeDomain(p.Domain)
		if p.Domain == "" || p.Product.Title == "" || p.Product.Price == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "profile %q needs domain, title and price selectors", p.Domain)
		}
		if i, ok := index[p.Domain]; ok {
			out[i] = p
			continue
		}
		index[p.Domain] = len(out)
		out = append(out, p)
	}
	return out, nil
}
