// internal/platform/validator/validator.go
package validator

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

var domainRegex = regexp.MustCompile(`^([a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?\.)+[a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?$`)

// Domain validators

// IsDomain reports whether s is a syntactically valid, dotted host name that
// is not an IP address.
func IsDomain(s string) bool {
	s = strings.ToLower(s)
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	if net.ParseIP(s) != nil {
		return false
	}
	return domainRegex.MatchString(s)
}

// NormalizeDomain reduces a domain or URL to its canonical host form:
// lowercase, no scheme, no path or port, no trailing dot, no leading "www.".
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimPrefix(s, "www.")
	return s
}

// IsRegistrable reports whether the domain has a public suffix known to the
// public suffix list and at least one label in front of it.
func IsRegistrable(domain string) bool {
	if !IsDomain(domain) {
		return false
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(domain)
	return etld1 != "" && icann && suffix != domain
}

// RegistrableDomain returns eTLD+1 for host, or host itself when it cannot
// be computed.
func RegistrableDomain(host string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(NormalizeDomain(host))
	if err != nil {
		return NormalizeDomain(host)
	}
	return etld1
}

// SameSite reports whether two hosts share a registrable domain.
func SameSite(a, b string) bool {
	return RegistrableDomain(a) == RegistrableDomain(b)
}

// URL validators

// IsHTTPURL reports whether s is an absolute http(s) URL with a host.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HostOf returns the normalized host of an http(s) URL, or "".
func HostOf(s string) string {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return ""
	}
	return NormalizeDomain(u.Hostname())
}

// String validators

// IsEmpty reports whether s is empty after trimming.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// LengthBetween reports whether the trimmed rune length of s is in [min, max].
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// IsOneOf reports whether s is one of the allowed values, ignoring case.
func IsOneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}
