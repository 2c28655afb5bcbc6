package adapters

import (
	"context"
	"regexp"

	"product-extractor/internal/types"
	"product-extractor/normalize"
	"product-extractor/structured"
	"product-extractor/utils"
)

// TemuAdapter extracts Temu goods pages from the window.rawData store
type TemuAdapter struct {
	*BaseAdapter
}

// NewTemuAdapter creates a new Temu adapter
func NewTemuAdapter(deps Deps) *TemuAdapter {
	return &TemuAdapter{BaseAdapter: NewBaseAdapter(types.PlatformTemu, deps)}
}

// Extract extracts the canonical product from a Temu page
func (t *TemuAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return t.extract(ctx, page, t)
}

var rawDataBlob = structured.Blob{Signature: "window.rawData", Anchor: "="}

func (t *TemuAdapter) structured(page *types.Page) *types.Product {
	data := structured.ReadBlob(page.Doc, rawDataBlob)
	store := structured.Map(data, "store")
	if store == nil {
		return jsonLDProduct(page)
	}
	return normalize.Merge(temuFromStore(store), jsonLDProduct(page))
}

func temuFromStore(store map[string]any) *types.Product {
	goods := structured.Map(store, "goods")
	p := &types.Product{
		Title:       structured.String(goods, "goodsName"),
		SKU:         structured.String(goods, "goodsId"),
		Description: structured.String(goods, "goodsDesc"),
		Seller:      structured.FirstString(store, "mall.mallName", "goods.mallName"),
		Category:    structured.String(goods, "catName"),
		Currency:    structured.String(goods, "priceInfo.currency"),
	}

	// prices come either formatted ("$12.34") or in cents
	if raw := structured.String(goods, "priceInfo.priceStr"); raw != "" {
		p.Price = utils.ParsePrice(raw)
		if p.Currency == "" {
			p.Currency = utils.DetectCurrency(raw, "")
		}
	} else {
		p.Price = centsAt(goods, "priceInfo.price")
	}
	original := utils.ParsePrice(structured.String(goods, "priceInfo.marketPriceStr"))
	if original <= 0 {
		original = centsAt(goods, "priceInfo.marketPrice")
	}
	if original > p.Price {
		p.OriginalPrice = &original
	}

	for _, img := range structured.Slice(goods, "gallery") {
		if u := structured.FirstString(img, "url", ""); u != "" {
			p.Images = append(p.Images, u)
		}
	}
	if u := structured.String(goods, "hdThumbUrl"); u != "" {
		p.Images = append(p.Images, u)
	}

	if v, ok := structured.Float(goods, "goodsRating"); ok && v > 0 {
		p.Rating = &v
	}
	if n, ok := structured.Int(goods, "reviewNum"); ok {
		p.ReviewCount = int(n)
	}

	skus := structured.Slice(store, "sku")
	p.Variants = temuVariants(skus)
	if len(skus) > 0 {
		p.Availability = types.OutOfStock
		for _, v := range p.Variants {
			if v.Available {
				p.Availability = types.InStock
				break
			}
		}
	}
	return p
}

// temuVariants emits one variant per (specKey, specValue) across all SKUs
func temuVariants(skus []any) []types.Variant {
	type key struct{ axis, value string }
	index := make(map[key]int)
	var out []types.Variant

	for _, sku := range skus {
		qty, ok := structured.Int(sku, "stockQuantity")
		available := !ok || qty > 0
		if onSale, ok := structured.Int(sku, "isOnSale"); ok && onSale == 0 {
			available = false
		}
		for _, spec := range structured.Slice(sku, "specs") {
			k := key{structured.String(spec, "specKey"), structured.String(spec, "specValue")}
			if k.value == "" {
				continue
			}
			if at, seen := index[k]; seen {
				out[at].Available = out[at].Available || available
				continue
			}
			index[k] = len(out)
			out = append(out, types.Variant{
				Type:      k.axis,
				Value:     k.value,
				Image:     structured.String(sku, "thumbUrl"),
				Available: available,
				ID:        structured.String(sku, "skuId"),
			})
		}
	}
	return out
}

var reTemuGoodsID = regexp.MustCompile(`-g-(\d+)\.html`)

func (t *TemuAdapter) scrape(*types.Page, *types.Product) {}

func (t *TemuAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		if m := reTemuGoodsID.FindStringSubmatch(page.URL); m != nil {
			p.SKU = m[1]
		}
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Condition == "" {
		p.Condition = types.ConditionNew
	}
}
