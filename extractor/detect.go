package extractor

import (
	"strings"

	"product-extractor/internal/types"
)

var hostRules = []struct {
	marker   string
	platform types.Platform
}{
	{"amazon.", types.PlatformAmazon},
	{"aliexpress.", types.PlatformAliExpress},
	{"rakuten.", types.PlatformRakuten},
	{"priceminister.", types.PlatformRakuten},
	{"ebay.", types.PlatformEbay},
	{"temu.com", types.PlatformTemu},
	{"shein.com", types.PlatformShein},
	{"myshopify.com", types.PlatformShopify},
}

// shopifyMarkers identify self-hosted Shopify storefronts
var shopifyMarkers = []string{
	"script[data-product-json]",
	"script[id^=ProductJson-]",
	"link[href*='cdn.shopify.com']",
	"script[src*='cdn.shopify.com']",
	"meta[name='shopify-checkout-api-token']",
}

// DetectPlatform picks the platform for a page: by host first, then by
// Shopify markers in the document, else Generic
func DetectPlatform(page *types.Page) types.Platform {
	host := page.Host()
	for _, rule := range hostRules {
		if hostMatches(host, rule.marker) {
			return rule.platform
		}
	}

	if page.Usable() {
		for _, marker := range shopifyMarkers {
			if page.Doc.Find(marker).Length() > 0 {
				return types.PlatformShopify
			}
		}
		if strings.Contains(page.Doc.Find("script").Text(), "Shopify.shop") {
			return types.PlatformShopify
		}
	}
	return types.PlatformGeneric
}

// hostMatches treats "amazon." as a brand label under any TLD and
// "temu.com" as a registrable domain including its subdomains
func hostMatches(host, marker string) bool {
	if strings.HasSuffix(marker, ".") {
		return strings.HasPrefix(host, marker) || strings.Contains(host, "."+marker)
	}
	return host == marker || strings.HasSuffix(host, "."+marker)
}
