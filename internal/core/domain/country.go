// internal/core/domain/country.go
package domain

import (
	"fmt"
	"strings"
)

// CountryCode identifica el mercado sobre el que se busca (ISO 3166-1 alpha-2).
type CountryCode string

const (
	CountryUS CountryCode = "US"
	CountryIN CountryCode = "IN"
	CountryGB CountryCode = "GB"
	CountryCA CountryCode = "CA"
	CountryAU CountryCode = "AU"
	CountryDE CountryCode = "DE"
)

// SupportedCountries en el orden en que se listan en la ayuda y en la API.
var SupportedCountries = []CountryCode{
	CountryUS, CountryIN, CountryGB, CountryCA, CountryAU, CountryDE,
}

// IsValid verifica si el código está soportado.
func (c CountryCode) IsValid() bool {
	for _, s := range SupportedCountries {
		if c == s {
			return true
		}
	}
	return false
}

// String implementa fmt.Stringer.
func (c CountryCode) String() string {
	return string(c)
}

// ParseCountry normaliza (trim + upper) y valida un código de país.
// "UK" se acepta como alias de GB.
func ParseCountry(s string) (CountryCode, error) {
	c := CountryCode(strings.ToUpper(strings.TrimSpace(s)))
	if c == "UK" {
		c = CountryGB
	}
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCountry, s)
	}
	return c, nil
}
