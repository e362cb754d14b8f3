// Package policy holds the phrase and token tables used to validate extracted
// products, detect bot challenges and recognise product-looking URLs.
// Built-in defaults can be overridden by a YAML file.
package policy

import (
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"pricescout/internal/platform/errors"
)

// Policy is immutable after Load/Default and safe for concurrent use.
type Policy struct {
	BlockedPhrases      []string `yaml:"blocked_phrases"`
	ErrorPhrases        []string `yaml:"error_phrases"`
	CaptchaIndicators   []string `yaml:"captcha_indicators"`
	StopWords           []string `yaml:"stop_words"`
	Brands              []string `yaml:"brands"`
	QualifierWords      []string `yaml:"qualifier_words"`
	QualifierPatterns   []string `yaml:"qualifier_patterns"`
	ProductPathSegments []string `yaml:"product_path_segments"`

	stop       map[string]struct{}
	segments   map[string]struct{}
	qualifiers []*regexp.Regexp
}

// Default returns the built-in policy.
func Default() *Policy {
	p := &Policy{
		BlockedPhrases:      clone(defaultBlockedPhrases),
		ErrorPhrases:        clone(defaultErrorPhrases),
		CaptchaIndicators:   clone(defaultCaptchaIndicators),
		StopWords:           clone(defaultStopWords),
		Brands:              clone(defaultBrands),
		QualifierWords:      clone(defaultQualifierWords),
		QualifierPatterns:   clone(defaultQualifierPatterns),
		ProductPathSegments: clone(defaultProductPathSegments),
	}
	// built-in patterns are known to compile
	_ = p.compile()
	return p
}

// LoadFile reads a YAML policy. Lists present in the file replace the
// built-in table of the same name; absent lists keep the default.
// An empty path returns Default().
func LoadFile(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read policy %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML policy document on top of the defaults.
func Parse(data []byte) (*Policy, error) {
	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse policy: %v", err)
	}

	p := Default()
	replace(&p.BlockedPhrases, override.BlockedPhrases)
	replace(&p.ErrorPhrases, override.ErrorPhrases)
	replace(&p.CaptchaIndicators, override.CaptchaIndicators)
	replace(&p.StopWords, override.StopWords)
	replace(&p.Brands, override.Brands)
	replace(&p.QualifierWords, override.QualifierWords)
	replace(&p.QualifierPatterns, override.QualifierPatterns)
	replace(&p.ProductPathSegments, override.ProductPathSegments)

	if err := p.compile(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) compile() error {
	p.stop = toSet(p.StopWords)
	p.segments = toSet(p.ProductPathSegments)
	p.qualifiers = p.qualifiers[:0]
	for _, expr := range p.QualifierPatterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "qualifier pattern %q: %v", expr, err)
		}
		p.qualifiers = append(p.qualifiers, re)
	}
	return nil
}

// ContainsBlockedPhrase reports whether name looks like a non-product page
// fragment ("customers also bought", "404", ...).
func (p *Policy) ContainsBlockedPhrase(name string) bool {
	return containsAny(strings.ToLower(name), p.BlockedPhrases)
}

// ContainsErrorPhrase reports whether text carries an error wording.
func (p *Policy) ContainsErrorPhrase(text string) bool {
	return containsAny(strings.ToLower(text), p.ErrorPhrases)
}

// IsBotChallenge reports whether text carries a CAPTCHA or anti-bot indicator.
func (p *Policy) IsBotChallenge(text string) bool {
	return containsAny(strings.ToLower(text), p.CaptchaIndicators)
}

// SignificantTokens lowercases and splits query into words, dropping
// stop-words and tokens of two characters or fewer.
func (p *Policy) SignificantTokens(query string) []string {
	var out []string
	for _, tok := range Tokenize(query) {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, stop := p.stop[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// HasBrand reports whether text mentions a known brand as a whole word.
func (p *Policy) HasBrand(text string) bool {
	padded := " " + strings.Join(Tokenize(text), " ") + " "
	for _, b := range p.Brands {
		phrase := strings.Join(Tokenize(b), " ")
		if phrase != "" && strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// HasQualifier reports whether text carries a capacity or variant marker such
// as "128gb", "65\"", "15-inch" or "pro".
func (p *Policy) HasQualifier(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range p.qualifiers {
		if re.MatchString(lower) {
			return true
		}
	}
	tokens := Tokenize(lower)
	for _, w := range p.QualifierWords {
		for _, tok := range tokens {
			if tok == strings.ToLower(w) {
				return true
			}
		}
	}
	return false
}

// IsProductPath reports whether any segment of a URL path is a known
// product segment (/dp/, /product/, /ip/, ...).
func (p *Policy) IsProductPath(path string) bool {
	for _, seg := range strings.Split(strings.ToLower(path), "/") {
		if _, ok := p.segments[seg]; ok && seg != "" {
			return true
		}
	}
	return false
}

// Tokenize lowercases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(lower string, phrases []string) bool {
	for _, ph := range phrases {
		if ph != "" && strings.Contains(lower, strings.ToLower(ph)) {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimSpace(it))] = struct{}{}
	}
	return set
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = clone(src)
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
