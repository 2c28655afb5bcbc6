package adapters

import (
	"strings"

	"product-extractor/internal/types"
	"product-extractor/structured"
	"product-extractor/utils"
)

// productFromJSONLD maps a schema.org Product node to a draft
func productFromJSONLD(node map[string]any) *types.Product {
	p := &types.Product{
		Title:       structured.String(node, "name"),
		Description: htmlText(structured.String(node, "description")),
		SKU:         structured.FirstString(node, "sku", "mpn", "productID", "gtin13", "gtin"),
		Brand:       nameOf(structured.Lookup(node, "brand")),
		Category:    structured.String(node, "category"),
		Condition:   conditionOf(structured.String(node, "itemCondition")),
		Images:      imagesOf(structured.Lookup(node, "image")),
	}
	if p.Brand == "" {
		p.Brand = nameOf(structured.Lookup(node, "manufacturer"))
	}

	applyJSONLDOffers(p, structured.Lookup(node, "offers"))
	applyJSONLDRating(p, structured.Map(node, "aggregateRating"))

	for _, raw := range structured.Slice(node, "review") {
		if r, ok := reviewFromJSONLD(raw); ok {
			p.Reviews = append(p.Reviews, r)
		}
	}
	p.Variants = variantsFromJSONLD(structured.Slice(node, "hasVariant"))
	return p
}

func applyJSONLDOffers(p *types.Product, raw any) {
	list := structured.Slice(raw, "")
	// AggregateOffer nests the individual listings
	if len(list) == 1 {
		if nested := structured.Slice(list[0], "offers"); len(nested) > 0 {
			if low := offerPrice(list[0]); low > 0 {
				p.Price = low
			}
			p.Currency = offerCurrency(list[0])
			list = nested
		}
	}

	for _, offer := range list {
		price := offerPrice(offer)
		if p.Price <= 0 && price > 0 {
			p.Price = price
		}
		if p.Currency == "" {
			p.Currency = offerCurrency(offer)
		}
		if p.Availability == "" {
			if a := structured.String(offer, "availability"); a != "" {
				p.Availability = utils.ParseAvailability(a)
			}
		}
		if p.Condition == "" {
			p.Condition = conditionOf(structured.String(offer, "itemCondition"))
		}
		seller := nameOf(structured.Lookup(offer, "seller"))
		if p.Seller == "" {
			p.Seller = seller
		}
		if p.OriginalPrice == nil {
			if v := listPrice(offer); v > 0 && v > price {
				p.OriginalPrice = &v
			}
		}
		if len(list) > 1 {
			p.Offers = append(p.Offers, types.Offer{
				Price:     price,
				Seller:    seller,
				Condition: conditionOf(structured.String(offer, "itemCondition")),
			})
		}
	}
}

func offerPrice(offer any) float64 {
	for _, path := range []string{"price", "lowPrice", "priceSpecification.price", "priceSpecification.0.price"} {
		if v := utils.ParsePrice(structured.String(offer, path)); v > 0 {
			return v
		}
	}
	return 0
}

func offerCurrency(offer any) string {
	return strings.ToUpper(structured.FirstString(offer,
		"priceCurrency",
		"priceSpecification.priceCurrency",
		"priceSpecification.0.priceCurrency",
	))
}

// listPrice reads a strikethrough price from a priceSpecification list
func listPrice(offer any) float64 {
	for _, spec := range structured.Slice(offer, "priceSpecification") {
		kind := strings.ToLower(structured.String(spec, "priceType"))
		if strings.HasSuffix(kind, "listprice") || strings.HasSuffix(kind, "strikethroughprice") {
			return utils.ParsePrice(structured.String(spec, "price"))
		}
	}
	return 0
}

func applyJSONLDRating(p *types.Product, rating map[string]any) {
	if rating == nil {
		return
	}
	if v, ok := structured.Float(rating, "ratingValue"); ok {
		if best, ok := structured.Float(rating, "bestRating"); ok && best > 5 {
			v = v * 5 / best
		}
		p.Rating = &v
	}
	for _, path := range []string{"reviewCount", "ratingCount"} {
		if n, ok := structured.Int(rating, path); ok && n > 0 {
			p.ReviewCount = int(n)
			return
		}
	}
}

func reviewFromJSONLD(raw any) (types.Review, bool) {
	node, ok := raw.(map[string]any)
	if !ok {
		return types.Review{}, false
	}
	r := types.Review{
		Author: nameOf(structured.Lookup(node, "author")),
		Body:   structured.FirstString(node, "reviewBody", "description"),
		Date:   structured.String(node, "datePublished"),
		Images: imagesOf(structured.Lookup(node, "image")),
	}
	if v, ok := structured.Float(node, "reviewRating.ratingValue"); ok {
		if best, ok := structured.Float(node, "reviewRating.bestRating"); ok && best > 5 {
			v = v * 5 / best
		}
		r.Rating = v
	}
	return r, true
}

var variantAxes = []struct {
	key   string
	label string
}{
	{"color", "Color"},
	{"size", "Size"},
	{"material", "Material"},
	{"pattern", "Pattern"},
}

// variantsFromJSONLD reads ProductGroup.hasVariant entries, one variant per
// axis value they carry
func variantsFromJSONLD(list []any) []types.Variant {
	var out []types.Variant
	for _, raw := range list {
		available := true
		if a := structured.String(raw, "offers.availability"); a != "" {
			available = utils.ParseAvailability(a) != types.OutOfStock
		}
		image := ""
		if imgs := imagesOf(structured.Lookup(raw, "image")); len(imgs) > 0 {
			image = imgs[0]
		}
		for _, axis := range variantAxes {
			value := nameOf(structured.Lookup(raw, axis.key))
			if value == "" {
				continue
			}
			out = append(out, types.Variant{
				Type:      axis.label,
				Value:     value,
				Image:     image,
				Available: available,
				ID:        structured.String(raw, "sku"),
			})
		}
	}
	return out
}

// breadcrumbFromJSONLD joins a BreadcrumbList into "A > B > C"
func breadcrumbFromJSONLD(node map[string]any) string {
	if node == nil {
		return ""
	}
	var crumbs []string
	for _, item := range structured.Slice(node, "itemListElement") {
		name := structured.FirstString(item, "name", "item.name")
		crumbs = append(crumbs, name)
	}
	return joinCategory(crumbs)
}

// nameOf reads values that are either a plain string or an object with a name
func nameOf(v any) string {
	switch node := v.(type) {
	case string:
		return strings.TrimSpace(node)
	case map[string]any:
		return structured.FirstString(node, "name", "@value")
	case []any:
		if len(node) > 0 {
			return nameOf(node[0])
		}
	}
	return ""
}

// imagesOf accepts a URL, an ImageObject or a list of either
func imagesOf(v any) []string {
	var out []string
	for _, item := range structured.Slice(v, "") {
		switch img := item.(type) {
		case string:
			out = append(out, strings.TrimSpace(img))
		case map[string]any:
			if u := structured.FirstString(img, "url", "contentUrl", "@id"); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

func conditionOf(raw string) string {
	if raw == "" {
		return ""
	}
	// schema.org values: NewCondition, UsedCondition, RefurbishedCondition, DamagedCondition
	s := strings.TrimSuffix(raw[strings.LastIndex(raw, "/")+1:], "Condition")
	return utils.ParseCondition(s)
}
