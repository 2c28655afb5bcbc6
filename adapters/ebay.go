package adapters

import (
	"context"
	"regexp"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// EbayAdapter extracts eBay item pages
type EbayAdapter struct {
	*BaseAdapter
}

// NewEbayAdapter creates a new eBay adapter
func NewEbayAdapter(deps Deps) *EbayAdapter {
	return &EbayAdapter{BaseAdapter: NewBaseAdapter(types.PlatformEbay, deps)}
}

// Extract extracts the canonical product from an eBay item page
func (e *EbayAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return e.extract(ctx, page, e)
}

func (e *EbayAdapter) structured(page *types.Page) *types.Product {
	return jsonLDProduct(page)
}

var reEbayItemID = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d{9,})`)

func (e *EbayAdapter) scrape(page *types.Page, draft *types.Product) {
	// item specifics hold the brand on listings without a brand row
	if draft.Brand == "" {
		page.Doc.Find(".ux-labels-values").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			label := strings.ToLower(utils.CleanText(row.Find(".ux-labels-values__labels").Text()))
			if strings.HasPrefix(label, "brand") || strings.HasPrefix(label, "marque") || strings.HasPrefix(label, "marke") {
				draft.Brand = utils.CleanText(row.Find(".ux-labels-values__values").Text())
				return false
			}
			return true
		})
	}
}

func (e *EbayAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		if m := reEbayItemID.FindStringSubmatch(page.URL); m != nil {
			p.SKU = m[1]
		} else {
			p.SKU = utils.LastNumericSegment(page.URL, 9)
		}
	}
	applyHostCurrency(page, p, "USD")
}
