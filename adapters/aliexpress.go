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

// AliExpressAdapter extracts AliExpress item pages. Item data comes from the
// inline runParams or _init_data_ blobs, then JSON-LD, then the DOM.
type AliExpressAdapter struct {
	*BaseAdapter
}

// NewAliExpressAdapter creates a new AliExpress adapter
func NewAliExpressAdapter(deps Deps) *AliExpressAdapter {
	return &AliExpressAdapter{BaseAdapter: NewBaseAdapter(types.PlatformAliExpress, deps)}
}

// Extract extracts the canonical product from an AliExpress page
func (a *AliExpressAdapter) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	return a.extract(ctx, page, a)
}

var (
	runParamsBlob = structured.Blob{Signature: "runParams", Anchor: "data:"}
	initDataBlob  = structured.Blob{Signature: "_init_data_", Anchor: "data:"}
)

func (a *AliExpressAdapter) structured(page *types.Page) *types.Product {
	var blob *types.Product
	if data := structured.ReadBlob(page.Doc, runParamsBlob); data != nil {
		blob = aliexpressFromRunParams(data)
	} else if data := structured.ReadBlob(page.Doc, initDataBlob); data != nil {
		if fields := structured.Map(data, "root.fields"); fields != nil {
			blob = aliexpressFromFields(fields)
		}
	}
	if blob == nil {
		return jsonLDProduct(page)
	}
	return normalize.Merge(blob, jsonLDProduct(page))
}

// aliexpressFromRunParams maps the legacy module layout (titleModule, priceModule, ...)
func aliexpressFromRunParams(data map[string]any) *types.Product {
	p := &types.Product{
		Title:  structured.String(data, "titleModule.subject"),
		Images: structured.Strings(data, "imageModule.imagePathList"),
		SKU:    structured.String(data, "actionModule.productId"),
		Seller: structured.String(data, "storeModule.storeName"),
	}

	sale, hasSale := structured.Float(data, "priceModule.minActivityAmount.value")
	regular, hasRegular := structured.Float(data, "priceModule.minAmount.value")
	switch {
	case hasSale && sale > 0:
		p.Price = sale
		if hasRegular && regular > sale {
			p.OriginalPrice = &regular
		}
	case hasRegular:
		p.Price = regular
	default:
		raw := structured.FirstString(data, "priceModule.formatedActivityPrice", "priceModule.formatedPrice")
		p.Price = utils.ParsePrice(raw)
		p.Currency = utils.DetectCurrency(raw, "")
	}
	if c := structured.FirstString(data, "priceModule.minActivityAmount.currency", "priceModule.minAmount.currency"); c != "" {
		p.Currency = c
	}

	if v, ok := structured.Float(data, "titleModule.feedbackRating.averageStar"); ok && v > 0 {
		p.Rating = &v
	}
	if n, ok := structured.Int(data, "titleModule.feedbackRating.totalValidNum"); ok {
		p.ReviewCount = int(n)
	}
	if n, ok := structured.Int(data, "quantityModule.totalAvailQuantity"); ok {
		p.Availability = types.OutOfStock
		if n > 0 {
			p.Availability = types.InStock
		}
	}

	var crumbs []string
	for _, crumb := range structured.Slice(data, "crossLinkModule.breadCrumbPathList") {
		crumbs = append(crumbs, structured.String(crumb, "name"))
	}
	p.Category = joinCategory(crumbs)

	for _, prop := range structured.Slice(data, "specsModule.props") {
		if strings.EqualFold(structured.String(prop, "attrName"), "Brand Name") {
			p.Brand = structured.String(prop, "attrValue")
		}
	}

	p.Variants = aliexpressVariants(
		structured.Slice(data, "skuModule.productSKUPropertyList"),
		structured.Slice(data, "skuModule.skuPriceList"),
	)
	return p
}

// aliexpressFromFields maps the component layout served in _init_data_
func aliexpressFromFields(fields map[string]any) *types.Product {
	p := &types.Product{
		Title:  structured.String(fields, "PRODUCT_TITLE.text"),
		Images: structured.Strings(fields, "HEADER_IMAGE_PC.imagePathList"),
		Seller: structured.String(fields, "SHOP_CARD_PC.storeName"),
		SKU:    structured.String(fields, "PRODUCT_ID"),
	}

	sale := structured.FirstString(fields, "PRICE.targetSkuPriceInfo.salePriceString", "PRICE.targetSkuPriceInfo.salePrice.formatedAmount")
	p.Price = utils.ParsePrice(sale)
	p.Currency = structured.String(fields, "PRICE.targetSkuPriceInfo.salePrice.currency")
	if p.Currency == "" {
		p.Currency = utils.DetectCurrency(sale, "")
	}
	if v := utils.ParsePrice(structured.String(fields, "PRICE.targetSkuPriceInfo.originalPrice.formatedAmount")); v > p.Price {
		p.OriginalPrice = &v
	}

	if v, ok := structured.Float(fields, "PC_RATING.rating"); ok && v > 0 {
		p.Rating = &v
	}
	if n, ok := structured.Int(fields, "PC_RATING.totalValidNum"); ok {
		p.ReviewCount = int(n)
	}

	p.Variants = aliexpressVariants(
		structured.Slice(fields, "SKU.skuProperties"),
		structured.Slice(fields, "SKU.skuPaths"),
	)
	return p
}

// aliexpressVariants emits one variant per property value. A value is
// available when any SKU combination containing it still has stock.
func aliexpressVariants(properties, skus []any) []types.Variant {
	stock := make(map[string]bool)
	for _, sku := range skus {
		qty, ok := structured.Int(sku, "skuVal.availQuantity")
		if !ok {
			qty, ok = structured.Int(sku, "skuStock")
		}
		inStock := !ok || qty > 0
		for _, id := range splitSkuIDs(structured.FirstString(sku, "skuPropIds", "skuAttr")) {
			stock[id] = stock[id] || inStock
		}
	}

	var out []types.Variant
	for _, prop := range properties {
		axis := structured.String(prop, "skuPropertyName")
		for _, value := range structured.Slice(prop, "skuPropertyValues") {
			id := structured.String(value, "propertyValueId")
			if id == "" {
				id = structured.String(value, "propertyValueIdLong")
			}
			available, known := stock[id]
			out = append(out, types.Variant{
				Type:      axis,
				Value:     structured.FirstString(value, "propertyValueDisplayName", "propertyValueName", "skuPropertyTips"),
				Image:     structured.FirstString(value, "skuPropertyImagePath", "skuPropertyImageSummPath"),
				Available: available || !known,
				ID:        id,
			})
		}
	}
	return out
}

var reSkuAttrID = regexp.MustCompile(`\d+:(\d+)`)

// splitSkuIDs reads "193,361386" and "14:193#Red;5:361386" forms
func splitSkuIDs(raw string) []string {
	if strings.Contains(raw, ":") {
		var ids []string
		for _, m := range reSkuAttrID.FindAllStringSubmatch(raw, -1) {
			ids = append(ids, m[1])
		}
		return ids
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

var reAliItemID = regexp.MustCompile(`/item/(\d+)\.html`)

func (a *AliExpressAdapter) scrape(*types.Page, *types.Product) {}

func (a *AliExpressAdapter) fallback(page *types.Page, p *types.Product) {
	if p.SKU == "" {
		if m := reAliItemID.FindStringSubmatch(page.URL); m != nil {
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
