// internal/adapters/sites/table.go

// Package sites decides which retail sites are searched for a country.
package sites

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"pricescout/internal/core/domain"
	"pricescout/internal/platform/errors"
)

// Table maps a country to its ordered site list.
type Table map[domain.CountryCode][]domain.CandidateSite

// fallbackCountry is used when a country has no entry.
const fallbackCountry = domain.CountryUS

func site(d string) domain.CandidateSite {
	return domain.CandidateSite{Domain: d, BaseURL: "https://www." + d}
}

// DefaultTable returns the built-in table, eight sites per supported country.
func DefaultTable() Table {
	return Table{
		domain.CountryUS: {
			site("amazon.com"), site("bestbuy.com"), site("target.com"), site("walmart.com"),
			site("apple.com"), site("verizon.com"), site("att.com"), site("costco.com"),
		},
		domain.CountryGB: {
			site("amazon.co.uk"), site("johnlewis.com"), site("argos.co.uk"), site("currys.co.uk"),
			site("very.co.uk"), site("ebay.co.uk"), site("apple.com"), site("carphonewarehouse.com"),
		},
		domain.CountryIN: {
			site("amazon.in"), site("flipkart.com"), site("reliancedigital.in"), site("croma.com"),
			site("vijaysales.com"), site("tatacliq.com"), site("apple.com"), site("snapdeal.com"),
		},
		domain.CountryCA: {
			site("amazon.ca"), site("bestbuy.ca"), site("costco.ca"), site("canadiantire.ca"),
			site("apple.com"), site("rogers.com"), site("bell.ca"), site("telus.com"),
		},
		domain.CountryAU: {
			site("amazon.com.au"), site("jbhifi.com.au"), site("harveynorman.com.au"), site("officeworks.com.au"),
			site("apple.com"), site("telstra.com.au"), site("optus.com.au"), site("bigw.com.au"),
		},
		domain.CountryDE: {
			site("amazon.de"), site("mediamarkt.de"), site("saturn.de"), site("otto.de"),
			site("apple.com"), site("telekom.de"), site("vodafone.de"), site("notebooksbilliger.de"),
		},
	}
}

// Lookup returns a copy of the country's list, falling back to US.
func (t Table) Lookup(country domain.CountryCode) []domain.CandidateSite {
	list, ok := t[country]
	if !ok {
		list = t[fallbackCountry]
	}
	out := make([]domain.CandidateSite, len(list))
	copy(out, list)
	return out
}

// Countries returns the countries present in the table, sorted.
func (t Table) Countries() []domain.CountryCode {
	out := make([]domain.CountryCode, 0, len(t))
	for c := range t {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type tableFile struct {
	Countries map[string][]domain.CandidateSite `yaml:"countries"`
}

// LoadTable reads the countries section of a sites file and merges it over
// the defaults. An empty path returns the defaults.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sites file %s", path)
	}
	return ParseTable(data)
}

// ParseTable parses YAML of the form:
//
//	countries:
//	  DE:
//	    - domain: amazon.de
//	      base_url: https://www.amazon.de
//
// Each listed country replaces the built-in list. Sites are normalized and
// duplicates collapsed.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse sites file")
	}

	table := DefaultTable()
	for code, list := range f.Countries {
		country, err := domain.ParseCountry(code)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "sites file: %v", err)
		}
		kept, dropped := domain.NormalizeSites(list)
		if len(dropped) > 0 {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "sites file: invalid domains for %s: %v", country, dropped)
		}
		table[country] = kept
	}
	return table, nil
}
