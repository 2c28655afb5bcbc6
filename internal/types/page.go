package types

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed product page handed over by the host environment
type Page struct {
	URL string
	Doc *goquery.Document
}

// NewPage parses raw HTML into a Page
func NewPage(pageURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{URL: strings.TrimSpace(pageURL), Doc: doc}, nil
}

// Usable reports whether the page can be extracted from
func (p *Page) Usable() bool {
	return p != nil && p.Doc != nil && p.Doc.Selection != nil
}

// Host returns the lower-cased host of the page URL, without a leading www.
func (p *Page) Host() string {
	if p == nil {
		return ""
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
