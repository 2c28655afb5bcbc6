package adapters

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/normalize"
	"product-extractor/structured"
	"product-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// ShopifyAdapter extracts Shopify storefront product pages. Themes embed the
// product as JSON (prices in cents); ShopifyAnalytics.meta and JSON-LD back it up.
type ShopifyAdapter struct {
	*BaseAdapter
}

// NewShopifyAdapter creates a new Shopify adapter
func NewShopifyAdapter(deps Deps) *ShopifyAdapter {
	return &ShopifyAdapter{BaseAdapter: NewBaseAdapter(types.PlatformShopify, deps)}
}

// Extract extracts the canonical product from a Shopify product page
func (s *ShopifyAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return s.extract(ctx, page, s)
}

var productJSONSelectors = []string{
	"script[data-product-json]",
	"script#ProductJson-product-template",
	"script[id^=ProductJson-]",
	"script[type='application/json'][data-product]",
}

var (
	analyticsMetaBlob = structured.Blob{Signature: "var meta", Anchor: "="}
	currencyBlob      = structured.Blob{Signature: "Shopify.currency", Anchor: "="}
)

func (s *ShopifyAdapter) structured(page *types.Page) *types.Product {
	var theme *types.Product
	for _, sel := range productJSONSelectors {
		if node := structured.ReadJSONScript(page.Doc, sel); node != nil {
			if nested := structured.Map(node, "product"); nested != nil {
				node = nested
			}
			theme = shopifyFromProductJSON(node)
			break
		}
	}

	var meta *types.Product
	if data := structured.ReadBlob(page.Doc, analyticsMetaBlob); data != nil {
		meta = shopifyFromMeta(structured.Map(data, "product"))
	}

	p := normalize.Merge(normalize.Merge(theme, meta), jsonLDProduct(page))
	if currency := structured.ReadBlob(page.Doc, currencyBlob); currency != nil {
		if active := structured.String(currency, "active"); active != "" {
			p.Currency = active
		}
	}
	return p
}

// shopifyFromProductJSON maps the theme's product object (/products/<handle>.js shape)
func shopifyFromProductJSON(node map[string]any) *types.Product {
	p := &types.Product{
		Title:       structured.String(node, "title"),
		Description: htmlText(structured.FirstString(node, "description", "body_html")),
		Brand:       structured.String(node, "vendor"),
		Category:    structured.String(node, "type"),
	}

	for _, img := range structured.Slice(node, "images") {
		if u := structured.FirstString(img, "", "src"); u != "" {
			p.Images = append(p.Images, u)
		}
	}
	if len(p.Images) == 0 {
		if u := structured.FirstString(node, "featured_image", "featured_image.src"); u != "" {
			p.Images = append(p.Images, u)
		}
	}

	variants := structured.Slice(node, "variants")
	p.Price = centsAt(node, "price")
	if p.Price <= 0 {
		p.Price = cheapestVariant(variants)
	}
	if compare := centsAt(node, "compare_at_price"); compare > p.Price {
		p.OriginalPrice = &compare
	}

	if available, ok := structured.Bool(node, "available"); ok {
		p.Availability = types.OutOfStock
		if available {
			p.Availability = types.InStock
		}
	}
	if len(variants) > 0 {
		p.SKU = structured.String(variants[0], "sku")
	}

	p.Variants = shopifyVariants(optionNames(node), variants)
	return p
}

// shopifyFromMeta maps ShopifyAnalytics.meta.product
func shopifyFromMeta(node map[string]any) *types.Product {
	if node == nil {
		return nil
	}
	variants := structured.Slice(node, "variants")
	p := &types.Product{
		Brand:    structured.String(node, "vendor"),
		Category: structured.String(node, "type"),
		Price:    cheapestVariant(variants),
	}
	if len(variants) > 0 {
		p.SKU = structured.String(variants[0], "sku")
		// "Lamp - Red" minus the public title leaves the product name
		name := structured.String(variants[0], "name")
		if public := structured.String(variants[0], "public_title"); public != "" {
			name = strings.TrimSuffix(name, " - "+public)
		}
		p.Title = name
	}
	return p
}

func centsAt(node any, path string) float64 {
	cents, ok := structured.Int(node, path)
	if !ok {
		return 0
	}
	return utils.CentsToAmount(cents)
}

func cheapestVariant(variants []any) float64 {
	best := 0.0
	for _, v := range variants {
		if price := centsAt(v, "price"); price > 0 && (best == 0 || price < best) {
			best = price
		}
	}
	return best
}

// optionNames accepts both ["Size","Color"] and [{"name":"Size"}, ...]
func optionNames(node map[string]any) []string {
	var names []string
	for _, opt := range structured.Slice(node, "options") {
		names = append(names, structured.FirstString(opt, "", "name"))
	}
	return names
}

// shopifyVariants flattens option1..option3 into one variant per (option, value).
// A value is available when any variant carrying it is.
func shopifyVariants(options []string, variants []any) []types.Variant {
	type key struct{ axis, value string }
	index := make(map[key]int)
	var out []types.Variant

	for _, v := range variants {
		available, ok := structured.Bool(v, "available")
		if !ok {
			available = true
		}
		image := structured.FirstString(v, "featured_image.src", "featured_image")
		for i := range options {
			value := structured.String(v, fmt.Sprintf("option%d", i+1))
			if value == "" || (value == "Default Title" && len(options) == 1) {
				continue
			}
			// variant images illustrate the first option (usually the colour)
			axisImage := ""
			if i == 0 {
				axisImage = image
			}
			k := key{options[i], value}
			if at, seen := index[k]; seen {
				out[at].Available = out[at].Available || available
				if out[at].Image == "" {
					out[at].Image = axisImage
				}
				continue
			}
			variant := types.Variant{Type: options[i], Value: value, Image: axisImage, Available: available}
			if len(options) == 1 {
				variant.ID = structured.String(v, "id")
			}
			index[k] = len(out)
			out = append(out, variant)
		}
	}
	return out
}

func (s *ShopifyAdapter) scrape(page *types.Page, draft *types.Product) {
	// sold-out themes disable the add-to-cart button instead of marking availability
	if draft.Availability == types.AvailabilityUnknown || draft.Availability == "" {
		if button := page.Doc.Find("button[name=add], .product-form__submit").First(); button.Length() > 0 {
			if _, disabled := button.Attr("disabled"); disabled {
				draft.Availability = types.OutOfStock
			}
		}
	}
}

func (s *ShopifyAdapter) fallback(page *types.Page, p *types.Product) {
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.SKU == "" {
		p.SKU = utils.LastPathSlug(page.URL)
	}
	if p.Condition == "" {
		p.Condition = types.ConditionNew
	}
}

var reCollectionProduct = regexp.MustCompile(`/collections/[^/]+(/products/.+)$`)

// ProductURLs lists the product pages linked from a collection or home page.
// Collection-scoped links are rewritten to their canonical /products/ form.
func (s *ShopifyAdapter) ProductURLs(page *types.Page) ([]string, error) {
	urls := s.links(page, "a[href*='/products/']", func(u *url.URL) bool {
		if m := reCollectionProduct.FindStringSubmatch(u.Path); m != nil {
			u.Path = m[1]
		}
		return strings.HasPrefix(u.Path, "/products/")
	})
	if len(urls) == 0 {
		return nil, fmt.Errorf("no product URLs found on %s", page.URL)
	}
	s.logger.Infof("Found %d product URLs on %s", len(urls), page.URL)
	return urls, nil
}

// CollectionURLs lists the collection pages linked from a storefront page
func (s *ShopifyAdapter) CollectionURLs(page *types.Page) ([]string, error) {
	urls := s.links(page, "a[href*='/collections/']", func(u *url.URL) bool {
		return !strings.Contains(u.Path, "/products/")
	})
	if len(urls) == 0 {
		return nil, fmt.Errorf("no collection URLs found on %s", page.URL)
	}
	return urls, nil
}

func (s *ShopifyAdapter) links(page *types.Page, selector string, keep func(*url.URL) bool) []string {
	if !page.Usable() {
		return nil
	}
	var found []string
	host := page.Host()
	page.Doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(utils.AbsoluteURL(page.URL, href))
		if err != nil || !u.IsAbs() || strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") != host {
			return
		}
		u.RawQuery, u.Fragment = "", ""
		if keep(u) {
			found = append(found, u.String())
		}
	})
	return normalize.Dedupe(found)
}
