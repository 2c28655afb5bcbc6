package adapters

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/utils"
)

// AmazonAdapter extracts Amazon product pages across all country storefronts
type AmazonAdapter struct {
	*BaseAdapter
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(deps Deps) *AmazonAdapter {
	base := NewBaseAdapter(types.PlatformAmazon, deps)
	base.marketplace = true
	return &AmazonAdapter{BaseAdapter: base}
}

// Extract extracts the canonical product from an Amazon page
func (a *AmazonAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return a.extract(ctx, page, a)
}

func (a *AmazonAdapter) structured(page *types.Page) *types.Product {
	return jsonLDProduct(page)
}

var reReviewedIn = regexp.MustCompile(`(?i)^reviewed in (.+?) on (.+)$`)

func (a *AmazonAdapter) scrape(page *types.Page, draft *types.Product) {
	// the landing image carries every resolution as {"url": [w, h]}
	if raw, ok := page.Doc.Find("#landingImage, #imgBlkFront").First().Attr("data-a-dynamic-image"); ok {
		if best := largestDynamicImage(raw); best != "" {
			draft.Images = append([]string{best}, draft.Images...)
		}
	}

	for i := range draft.Reviews {
		r := &draft.Reviews[i]
		if m := reReviewedIn.FindStringSubmatch(utils.CleanText(r.Date)); m != nil {
			if r.Country == "" {
				r.Country = strings.TrimPrefix(m[1], "the ")
			}
			r.Date = m[2]
		}
	}
}

var reASIN = regexp.MustCompile(`/(?:dp|gp/product|gp/aw/d|product-reviews)/([A-Z0-9]{10})(?:[/?]|$)`)

func (a *AmazonAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		if m := reASIN.FindStringSubmatch(page.URL); m != nil {
			p.SKU = m[1]
		}
	}
	applyHostCurrency(page, p, "USD")
	if p.Condition == "" {
		p.Condition = types.ConditionNew
		if strings.Contains(strings.ToLower(p.Title), "renewed") {
			p.Condition = types.ConditionUsed
		}
	}
	if p.Seller == "" && len(p.Offers) > 0 {
		p.Seller = p.Offers[0].Seller
	}
}

// largestDynamicImage picks the widest entry of a data-a-dynamic-image map
func largestDynamicImage(raw string) string {
	var sizes map[string][]int
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return ""
	}
	best, bestWidth := "", -1
	for u, dims := range sizes {
		if len(dims) == 0 {
			continue
		}
		if dims[0] > bestWidth || (dims[0] == bestWidth && u < best) {
			best, bestWidth = u, dims[0]
		}
	}
	return best
}
