package adapters

import (
	"context"
	"regexp"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/normalize"
	"product-extractor/structured"
	"product-extractor/utils"
)

// SheinAdapter extracts Shein product pages from productIntroData
type SheinAdapter struct {
	*BaseAdapter
}

// NewSheinAdapter creates a new Shein adapter
func NewSheinAdapter(deps Deps) *SheinAdapter {
	return &SheinAdapter{BaseAdapter: NewBaseAdapter(types.PlatformShein, deps)}
}

// Extract extracts the canonical product from a Shein page
func (s *SheinAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return s.extract(ctx, page, s)
}

var productIntroBlob = structured.Blob{Signature: "productIntroData"}

func (s *SheinAdapter) structured(page *types.Page) *types.Product {
	intro := structured.ReadBlob(page.Doc, productIntroBlob)
	if intro == nil {
		return jsonLDProduct(page)
	}
	return normalize.Merge(sheinFromIntro(intro), jsonLDProduct(page))
}

func sheinFromIntro(intro map[string]any) *types.Product {
	detail := structured.Map(intro, "detail")
	p := &types.Product{
		Title:    structured.String(detail, "goods_name"),
		SKU:      structured.FirstString(detail, "goods_sn", "goods_id"),
		Brand:    structured.FirstString(detail, "brandInfo.name", "brand"),
		Category: structured.FirstString(intro, "currentCat.cat_name", "parentCats.cat_name"),
	}

	sale := structured.FirstString(detail, "salePrice.amountWithSymbol", "salePrice.amount")
	retail := structured.FirstString(detail, "retailPrice.amountWithSymbol", "retailPrice.amount")
	p.Price = utils.ParsePrice(sale)
	p.Currency = utils.DetectCurrency(sale, "")
	if v := utils.ParsePrice(retail); v > p.Price {
		p.OriginalPrice = &v
	}

	var specs []string
	for _, attr := range structured.Slice(detail, "productDetails") {
		name, value := structured.String(attr, "attr_name"), structured.String(attr, "attr_value")
		if name != "" && value != "" {
			specs = append(specs, name+": "+value)
		}
	}
	p.Description = strings.Join(specs, "; ")

	if main := structured.String(intro, "goods_imgs.main_image.origin_image"); main != "" {
		p.Images = append(p.Images, main)
	}
	for _, img := range structured.Slice(intro, "goods_imgs.detail_image") {
		if u := structured.String(img, "origin_image"); u != "" {
			p.Images = append(p.Images, u)
		}
	}

	if v, ok := structured.Float(intro, "commentInfo.comment_rank_average"); ok && v > 0 {
		p.Rating = &v
	}
	if n, ok := structured.Int(intro, "commentInfo.comment_num"); ok {
		p.ReviewCount = int(n)
	}

	p.Variants = sheinVariants(intro, detail)
	if sizes := structured.Slice(intro, "attrSizeList"); len(sizes) > 0 {
		p.Availability = types.OutOfStock
		for _, v := range p.Variants {
			if v.Available && v.Type == "Size" {
				p.Availability = types.InStock
				break
			}
		}
	} else if stock, ok := structured.Int(detail, "stock"); ok {
		p.Availability = types.OutOfStock
		if stock > 0 {
			p.Availability = types.InStock
		}
	}
	return p
}

// sheinVariants reads the current colour, sibling colours and the size list
func sheinVariants(intro, detail map[string]any) []types.Variant {
	var out []types.Variant

	if color := structured.String(detail, "mainSaleAttribute.0.attr_value"); color != "" {
		out = append(out, types.Variant{
			Type:      "Color",
			Value:     color,
			Image:     structured.String(detail, "color_image"),
			Available: true,
			ID:        structured.String(detail, "goods_id"),
		})
	}
	for _, rel := range structured.Slice(intro, "relation_color") {
		value := structured.FirstString(rel, "mainSaleAttribute.0.attr_value", "goods_color_name")
		if value == "" {
			continue
		}
		out = append(out, types.Variant{
			Type:      "Color",
			Value:     value,
			Image:     structured.String(rel, "goods_color_image"),
			Available: inStock(rel),
			ID:        structured.String(rel, "goods_id"),
		})
	}
	for _, size := range structured.Slice(intro, "attrSizeList") {
		value := structured.FirstString(size, "attr_value_name", "attr_value")
		if value == "" {
			continue
		}
		out = append(out, types.Variant{
			Type:      "Size",
			Value:     value,
			Available: inStock(size),
			ID:        structured.String(size, "sku_code"),
		})
	}
	return out
}

// inStock reads Shein's stock counters, which arrive as numbers or strings
func inStock(node any) bool {
	if n, ok := structured.Int(node, "stock"); ok {
		return n > 0
	}
	if n, ok := structured.Int(node, "is_on_sale"); ok {
		return n > 0
	}
	return true
}

var (
	reSheinGoodsID = regexp.MustCompile(`-p-(\d+)(?:-cat-\d+)?\.html`)
	reSKUPrefix    = regexp.MustCompile(`(?i)^\s*sku\s*:\s*`)
)

func (s *SheinAdapter) scrape(_ *types.Page, draft *types.Product) {
	draft.SKU = reSKUPrefix.ReplaceAllString(draft.SKU, "")
}

func (s *SheinAdapter) fallback(page *types.Page, p *types.Product) {
	p.SKU = reSKUPrefix.ReplaceAllString(p.SKU, "")
	if p.SKU == "" {
		if m := reSheinGoodsID.FindStringSubmatch(page.URL); m != nil {
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
