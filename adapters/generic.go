package adapters

import (
	"context"

	"product-extractor/internal/types"
	"product-extractor/utils"
)

// GenericAdapter extracts any other storefront from JSON-LD, OpenGraph and
// microdata. It is the fallback for unrecognised hosts.
type GenericAdapter struct {
	*BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter(deps Deps) *GenericAdapter {
	return &GenericAdapter{BaseAdapter: NewBaseAdapter(types.PlatformGeneric, deps)}
}

// Extract extracts the canonical product from an arbitrary product page
func (g *GenericAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return g.extract(ctx, page, g)
}

func (g *GenericAdapter) structured(page *types.Page) *types.Product {
	return jsonLDProduct(page)
}

func (g *GenericAdapter) scrape(page *types.Page, draft *types.Product) {
	// og:title usually carries the " | Shop Name" suffix
	if draft.Title != "" {
		if site, ok := page.Doc.Find("meta[property='og:site_name']").Attr("content"); ok && site != "" {
			draft.Title = trimSiteSuffix(draft.Title, site)
		}
	}
}

func (g *GenericAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		p.SKU = utils.LastNumericSegment(page.URL, 4)
	}
	if p.Currency == "" {
		p.Currency = utils.DetectCurrency(page.Doc.Find("[itemprop=price], .price").First().Text(), "USD")
	}
}

func trimSiteSuffix(title, site string) string {
	for _, sep := range []string{" | ", " - ", " – ", " — "} {
		if suffix := sep + site; len(title) > len(suffix) && title[len(title)-len(suffix):] == suffix {
			return title[:len(title)-len(suffix)]
		}
	}
	return title
}
