// internal/adapters/htmlclean/cleaner.go

// Package htmlclean reduces a retail product page to a short list of text
// lines annotated with hints, ready to be sent to the extraction service.
package htmlclean

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pricescout/internal/platform/errors"
)

// DefaultMaxChars caps the cleaned text.
const DefaultMaxChars = 8000

var (
	// blocks that list other products and confuse extraction
	noiseRe = regexp.MustCompile(`(?i)recommend|related|similar|also-bought|customers-also|suggestions|carousel`)

	mainIDRe    = regexp.MustCompile(`(?i)main|content|body|product`)
	mainClassRe = regexp.MustCompile(`(?i)product-detail|pdp|product-info|main-content`)
	digitRe     = regexp.MustCompile(`\d`)
)

const (
	dropTags     = "script,style,svg,iframe,noscript,nav,footer"
	contentTags  = "h1,h2,h3,span,div,p,li,b,strong"
	hintTitle    = "[MAIN PRODUCT TITLE]: "
	hintPrice    = "[PRICE HINT]: "
	hintProduct  = "[PRODUCT TITLE]: "
	hintAvail    = "[AVAILABILITY HINT]: "
	minTextRunes = 3
)

var (
	priceKeywords = []string{"price", "cost", "amount", "offer", "money", "dollar"}
	titleKeywords = []string{"title", "name", "heading", "brand", "product"}
	availKeywords = []string{"stock", "availability", "available", "inventory"}
	itemKeywords  = []string{"product", "item", "buy", "add", "cart"}
)

// Cleaner turns raw HTML into hinted text. Safe for concurrent use.
type Cleaner struct {
	maxChars int
}

// New returns a Cleaner capping output at maxChars characters.
// A non-positive maxChars uses DefaultMaxChars.
func New(maxChars int) *Cleaner {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Cleaner{maxChars: maxChars}
}

// Clean strips noise, focuses on the main content area and emits one line
// per meaningful element. An empty page or one without a body yields "".
func (c *Cleaner) Clean(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find(dropTags).Remove()
	doc.Find("[class],[id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if noiseRe.MatchString(class) || noiseRe.MatchString(id) {
			s.Remove()
		}
	})

	main := mainContent(doc)
	if main.Length() == 0 {
		return "", nil
	}

	var lines []string
	title := main.Find("h1").First()
	var titleNode *html.Node
	if title.Length() > 0 {
		titleNode = title.Get(0)
		if t := nodeText(titleNode); t != "" {
			lines = append(lines, hintTitle+t)
		}
	}

	main.Find(contentTags).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if n == titleNode {
			return
		}
		text := nodeText(n)
		if utf8.RuneCountInString(text) < minTextRunes {
			return
		}
		if line, ok := hintLine(n, text); ok {
			lines = append(lines, line)
		}
	})

	return truncateRunes(strings.Join(lines, "\n"), c.maxChars), nil
}

// mainContent picks the first of: <main>, an element whose id looks like
// content, an element whose class looks like a product block, <body>.
func mainContent(doc *goquery.Document) *goquery.Selection {
	if s := doc.Find("main").First(); s.Length() > 0 {
		return s
	}
	byID := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return mainIDRe.MatchString(id)
	}).First()
	if byID.Length() > 0 {
		return byID
	}
	byClass := doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return mainClassRe.MatchString(class)
	}).First()
	if byClass.Length() > 0 {
		return byClass
	}
	return doc.Find("body").First()
}

func hintLine(n *html.Node, text string) (string, bool) {
	attrs := strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
	tag := n.Data

	switch {
	case containsAny(attrs, priceKeywords):
		return hintPrice + text, true
	case containsAny(attrs, titleKeywords) && (tag == "h1" || tag == "h2"):
		return hintProduct + text, true
	case (tag == "h2" || tag == "h3") && utf8.RuneCountInString(text) > 10:
		return "[HEADER " + strings.ToUpper(tag) + "]: " + text, true
	case containsAny(attrs, availKeywords):
		return hintAvail + text, true
	}

	n2 := utf8.RuneCountInString(text)
	if n2 < 5 || n2 > 200 {
		return "", false
	}
	if digitRe.MatchString(text) || containsAny(strings.ToLower(text), itemKeywords) {
		return text, true
	}
	return "", false
}

// nodeText joins the trimmed text nodes under n with single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
