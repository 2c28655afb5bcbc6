package adapters

import (
	"context"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// RakutenAdapter extracts Rakuten (formerly PriceMinister) marketplace pages.
// A listing lists several sellers; each one becomes an Offer.
type RakutenAdapter struct {
	*BaseAdapter
}

// NewRakutenAdapter creates a new Rakuten adapter
func NewRakutenAdapter(deps Deps) *RakutenAdapter {
	base := NewBaseAdapter(types.PlatformRakuten, deps)
	base.marketplace = true
	return &RakutenAdapter{BaseAdapter: base}
}

// Extract extracts the canonical product from a Rakuten page
func (r *RakutenAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return r.extract(ctx, page, r)
}

func (r *RakutenAdapter) structured(page *types.Page) *types.Product {
	return jsonLDProduct(page)
}

func (r *RakutenAdapter) scrape(page *types.Page, draft *types.Product) {
	// lazy-loaded thumbnails keep a placeholder in src
	page.Doc.Find(".thumbnails img[data-src], #prdMainPhoto img[data-src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("data-src"); ok {
			draft.Images = append(draft.Images, src)
		}
	})
}

func (r *RakutenAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		p.SKU = utils.LastNumericSegment(page.URL, 6)
	}

	switch host := page.Host(); {
	case strings.HasSuffix(host, ".co.jp"):
		applyHostCurrency(page, p, "JPY")
	case strings.HasSuffix(host, ".de"), strings.HasSuffix(host, ".fr"), strings.HasSuffix(host, ".es"):
		applyHostCurrency(page, p, "EUR")
	default:
		// rakuten.com is the US store; fr.shopping.rakuten.com the former PriceMinister
		if p.Currency == "" {
			p.Currency = "EUR"
			if !strings.Contains(host, "shopping.rakuten") {
				p.Currency = "USD"
			}
		}
	}

	// the buy box belongs to the cheapest listing
	if len(p.Offers) > 0 {
		best := p.Offers[0]
		for _, o := range p.Offers[1:] {
			if o.Price > 0 && (best.Price <= 0 || o.Price < best.Price) {
				best = o
			}
		}
		if p.Seller == "" {
			p.Seller = best.Seller
		}
		if p.Condition == "" {
			p.Condition = utils.ParseCondition(best.Condition)
		}
		if p.Price <= 0 {
			p.Price = best.Price
		}
	}
}
