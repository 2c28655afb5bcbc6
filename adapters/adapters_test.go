package adapters

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"product-extractor/internal/types"
	"product-extractor/registry"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu      sync.Mutex
	reports []types.Field
}

func (r *recordingReporter) ReportBroken(_ types.Platform, field types.Field, _ types.ReportContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, field)
}

// overrideSource serves custom chains for some fields and the defaults otherwise
type overrideSource struct {
	chains map[types.Field][]string
	base   *registry.Registry
}

func (o overrideSource) Selectors(platform types.Platform, field types.Field) []string {
	if chain, ok := o.chains[field]; ok {
		return chain
	}
	return o.base.Selectors(platform, field)
}

func (o overrideSource) Version() string { return "test-1" }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDeps(reporter types.SelectorReporter) Deps {
	return Deps{Reporter: reporter, Logger: testLogger()}
}

func mustPage(t *testing.T, url, html string) *types.Page {
	t.Helper()
	page, err := types.NewPage(url, html)
	require.NoError(t, err)
	return page
}

const amazonPage = `<html><head>
<title>Amazon.com: Wireless Earbuds Pro : Electronics</title>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Wireless Earbuds Pro",
 "brand":{"@type":"Brand","name":"SoundCo"},
 "offers":{"@type":"Offer","price":"10.00","priceCurrency":"USD","availability":"https://schema.org/InStock"}}
</script></head>
<body>
<span id="productTitle">  Wireless Earbuds Pro - Best Seller 2024 </span>
<div id="corePrice_feature_div"><span class="a-price"><span class="a-offscreen">$12.00</span></span></div>
<div id="imgTagWrapperId">
  <img id="landingImage" src="https://m.media-amazon.com/images/I/main._AC_SX300_.jpg"
       data-old-hires="https://m.media-amazon.com/images/I/main._AC_SL1500_.jpg"
       data-a-dynamic-image='{"https://m.media-amazon.com/images/I/main._AC_SX300_.jpg":[300,300],"https://m.media-amazon.com/images/I/main._AC_SX679_.jpg":[679,679]}'>
</div>
<div id="altImages">
  <img src="https://m.media-amazon.com/images/I/side._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/back._AC_US40_.jpg">
</div>
<span id="acrPopover" title="4.5 out of 5 stars"></span>
<span id="acrCustomerReviewText">1,234 ratings</span>
<a id="bylineInfo">Visit the SoundCo Store</a>
<div id="twister">
  <div id="variation_color_name">
    <label class="a-form-label">Color: </label><span class="selection">Black</span>
    <ul>
      <li data-defaultasin="B0BLACK001" title="Click to select Black"><img src="https://m.media-amazon.com/images/I/black._SS36_.jpg" alt="Black"></li>
      <li data-defaultasin="B0WHITE001" title="Click to select White" class="swatchUnavailable"><img src="https://m.media-amazon.com/images/I/white._SS36_.jpg" alt="White"></li>
    </ul>
  </div>
  <div id="variation_size_name">
    <label class="a-form-label">Size: </label>
    <ul><li data-defaultasin="B0LARGE001" title="Click to select Large"><span class="a-button-text">Large</span></li></ul>
  </div>
</div>
<div data-hook="review">
  <span class="a-profile-name">Jane</span>
  <i data-hook="review-star-rating"><span class="a-icon-alt">5.0 out of 5 stars</span></i>
  <span data-hook="review-date">Reviewed in the United States on May 1, 2024</span>
  <span data-hook="review-body"><span>Great sound.</span></span>
</div>
</body></html>`

func TestAmazon_StructuredPriceWinsOverDOM(t *testing.T) {
	adapter := NewAmazonAdapter(testDeps(nil))
	page := mustPage(t, "https://www.amazon.com/Wireless-Earbuds/dp/B0ABCDEFGH/ref=sr_1_1", amazonPage)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, types.PlatformAmazon, p.Platform)
	assert.Equal(t, "Wireless Earbuds Pro", p.Title)
	assert.Equal(t, 10.0, p.Price)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "SoundCo", p.Brand)
	assert.Equal(t, "B0ABCDEFGH", p.SKU)
	assert.Equal(t, types.InStock, p.Availability)
	assert.Equal(t, types.ConditionNew, p.Condition)

	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.5, *p.Rating)
	assert.Equal(t, 1234, p.ReviewCount)

	require.NotEmpty(t, p.Images)
	assert.LessOrEqual(t, len(p.Images), 10)
	assert.Equal(t, "https://m.media-amazon.com/images/I/main._AC_SL1500_.jpg", p.Images[0])
	assert.Contains(t, p.Images, "https://m.media-amazon.com/images/I/side._AC_SL1500_.jpg")

	require.Len(t, p.Variants, 3)
	assert.Equal(t, types.Variant{Type: "Color", Value: "Black", Image: p.Variants[0].Image, Available: true, ID: "B0BLACK001"}, p.Variants[0])
	assert.NotEmpty(t, p.Variants[0].Image)
	assert.Equal(t, "White", p.Variants[1].Value)
	assert.False(t, p.Variants[1].Available)
	assert.Equal(t, types.Variant{Type: "Size", Value: "Large", Available: true, ID: "B0LARGE001"}, p.Variants[2])

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "Jane", p.Reviews[0].Author)
	assert.Equal(t, 5.0, p.Reviews[0].Rating)
	assert.Equal(t, "Great sound.", p.Reviews[0].Body)
	assert.Equal(t, "United States", p.Reviews[0].Country)
	assert.Equal(t, "May 1, 2024", p.Reviews[0].Date)
	assert.NotNil(t, p.Offers)
}

func TestAmazon_CurrencyFollowsStorefront(t *testing.T) {
	adapter := NewAmazonAdapter(testDeps(nil))
	page := mustPage(t, "https://www.amazon.co.uk/dp/B0ABCDEFGH", `<html><body>
		<span id="productTitle">Kettle</span>
		<span class="a-price"><span class="a-offscreen">£24.99</span></span>
	</body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 24.99, p.Price)
	assert.Equal(t, "GBP", p.Currency)
}

func TestExtract_DegradesGracefully(t *testing.T) {
	reporter := &recordingReporter{}
	var misses []types.Field
	deps := testDeps(reporter)
	deps.OnMiss = func(_ types.Platform, f types.Field) { misses = append(misses, f) }

	adapter := NewAmazonAdapter(deps)
	page := mustPage(t, "https://www.amazon.com/dp/B0ABCDEFGH", `<html><body><p>Robot check</p></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Empty(t, p.Title)
	assert.Equal(t, 0.0, p.Price)
	assert.Nil(t, p.Rating)
	assert.Equal(t, types.AvailabilityUnknown, p.Availability)
	assert.NotNil(t, p.Images)
	assert.Empty(t, p.Images)
	assert.NotNil(t, p.Variants)
	assert.Empty(t, p.Variants)
	assert.NotNil(t, p.Reviews)
	assert.Empty(t, p.Reviews)

	assert.ElementsMatch(t, []types.Field{types.FieldTitle, types.FieldPrice}, reporter.reports)
	assert.ElementsMatch(t, []types.Field{types.FieldTitle, types.FieldPrice}, misses)
}

func TestExtract_UnusablePage(t *testing.T) {
	adapter := NewGenericAdapter(testDeps(nil))

	p, err := adapter.Extract(context.Background(), nil)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, types.ErrUnusablePage))

	p, err = adapter.Extract(context.Background(), &types.Page{URL: "https://shop.example.com"})
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, types.ErrUnusablePage))
}

func TestExtract_RemoteSelectorsTakePrecedence(t *testing.T) {
	source := overrideSource{
		chains: map[types.Field][]string{types.FieldTitle: {"h2.renamed-title"}},
		base:   registry.New(nil, types.RegistryConfig{}, "", testLogger()),
	}
	adapter := NewEbayAdapter(Deps{Source: source, Logger: testLogger()})
	page := mustPage(t, "https://www.ebay.com/itm/123456789012", `<html><body>
		<h1 class="x-item-title__mainTitle">Old layout title</h1>
		<h2 class="renamed-title">Vintage Camera</h2>
		<div class="x-price-primary"><span class="ux-textspans">US $45.00</span></div>
	</body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "Vintage Camera", p.Title)
	assert.Equal(t, 45.0, p.Price)
	assert.Equal(t, "123456789012", p.SKU)
	assert.Equal(t, "USD", p.Currency)
}

func TestEbay_ItemSpecificsBrandAndTLDCurrency(t *testing.T) {
	adapter := NewEbayAdapter(testDeps(nil))
	page := mustPage(t, "https://www.ebay.co.uk/itm/Vintage-Lens/234567890123?hash=item", `<html><body>
		<h1 class="x-item-title__mainTitle"><span>Vintage Lens 50mm</span></h1>
		<div class="x-price-primary"><span class="ux-textspans">£80.00</span></div>
		<div class="x-item-condition-text"><span class="ux-textspans">Used</span></div>
		<div class="ux-labels-values">
			<div class="ux-labels-values__labels">Brand:</div>
			<div class="ux-labels-values__values">Helios</div>
		</div>
	</body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "Vintage Lens 50mm", p.Title)
	assert.Equal(t, 80.0, p.Price)
	assert.Equal(t, "GBP", p.Currency)
	assert.Equal(t, "Helios", p.Brand)
	assert.Equal(t, types.ConditionUsed, p.Condition)
	assert.Equal(t, "234567890123", p.SKU)
	assert.Empty(t, p.Offers)
}

func TestAmazon_StructuredSKUWinsOverURL(t *testing.T) {
	adapter := NewAmazonAdapter(testDeps(nil))
	page := mustPage(t, "https://www.amazon.com/dp/B0ABCDEFGH", `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Kettle","sku":"KT-100",
 "offers":{"@type":"Offer","price":"39.00","priceCurrency":"USD"}}
</script></head><body></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "KT-100", p.SKU)
}

func TestEbay_StructuredSKUWinsOverURL(t *testing.T) {
	adapter := NewEbayAdapter(testDeps(nil))
	page := mustPage(t, "https://www.ebay.com/itm/Kettle/234567890123", `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Kettle","sku":"KT-100",
 "offers":{"@type":"Offer","price":"39.00","priceCurrency":"USD"}}
</script></head><body></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "KT-100", p.SKU)

	page = mustPage(t, "https://www.ebay.com/itm/Kettle/234567890123", `<html><body><h1>Kettle</h1></body></html>`)
	p, err = adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "234567890123", p.SKU)
}

const aliexpressPage = `<html><body>
<h1 data-pl="product-title">DOM title should lose</h1>
<script>
window.runParams = {
  data: {
    "titleModule": {"subject": "USB-C Cable {2m} \"braided\"", "feedbackRating": {"averageStar": "4.7", "totalValidNum": 3521}},
    "priceModule": {"minAmount": {"value": 5.99, "currency": "USD"}, "minActivityAmount": {"value": 3.49, "currency": "USD"}},
    "imageModule": {"imagePathList": ["https://ae01.alicdn.com/kf/cable.jpg_640x640.jpg", "https://ae01.alicdn.com/kf/cable2.jpg"]},
    "actionModule": {"productId": 1005001234567890},
    "storeModule": {"storeName": "Cable World Store"},
    "quantityModule": {"totalAvailQuantity": 120},
    "crossLinkModule": {"breadCrumbPathList": [{"name": "Home"}, {"name": "Consumer Electronics"}, {"name": "Cables"}]},
    "skuModule": {
      "productSKUPropertyList": [
        {"skuPropertyName": "Color", "skuPropertyValues": [
          {"propertyValueId": 193, "propertyValueDisplayName": "Black", "skuPropertyImagePath": "https://ae01.alicdn.com/kf/black.jpg_50x50.jpg"},
          {"propertyValueId": 29, "propertyValueDisplayName": "White"}
        ]},
        {"skuPropertyName": "Length", "skuPropertyValues": [
          {"propertyValueId": 200003528, "propertyValueDisplayName": "2m"}
        ]}
      ],
      "skuPriceList": [
        {"skuPropIds": "193,200003528", "skuVal": {"availQuantity": 50}},
        {"skuPropIds": "29,200003528", "skuVal": {"availQuantity": 0}}
      ]
    }
  },
  csrfToken: 'abc'
};
</script>
</body></html>`

func TestAliExpress_RunParamsBlob(t *testing.T) {
	adapter := NewAliExpressAdapter(testDeps(nil))
	page := mustPage(t, "https://www.aliexpress.com/item/1005001234567890.html", aliexpressPage)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, `USB-C Cable {2m} "braided"`, p.Title)
	assert.Equal(t, 3.49, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 5.99, *p.OriginalPrice)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "1005001234567890", p.SKU)
	assert.Equal(t, "Cable World Store", p.Seller)
	assert.Equal(t, "Consumer Electronics > Cables", p.Category)
	assert.Equal(t, types.InStock, p.Availability)
	assert.Equal(t, 3521, p.ReviewCount)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.7, *p.Rating)
	assert.Equal(t, []string{"https://ae01.alicdn.com/kf/cable.jpg", "https://ae01.alicdn.com/kf/cable2.jpg"}, p.Images)

	require.Len(t, p.Variants, 3)
	assert.Equal(t, "Black", p.Variants[0].Value)
	assert.True(t, p.Variants[0].Available)
	assert.Equal(t, "https://ae01.alicdn.com/kf/black.jpg", p.Variants[0].Image)
	assert.Equal(t, "White", p.Variants[1].Value)
	assert.False(t, p.Variants[1].Available)
	assert.Equal(t, types.Variant{Type: "Length", Value: "2m", Available: true, ID: "200003528"}, p.Variants[2])
}

const shopifyPage = `<html><head>
<link rel="stylesheet" href="//cdn.shopify.com/s/files/theme.css">
<meta property="og:site_name" content="Lamp House">
</head><body>
<h1 class="product__title"><span>DOM Lamp</span></h1>
<script type="application/json" data-product-json>
{"product": {
  "id": 7001, "title": "Arc Floor Lamp", "vendor": "Lumen", "type": "Lighting",
  "description": "<p>Brass <strong>arc</strong> lamp.</p>",
  "price": 12900, "compare_at_price": 15900, "available": true,
  "images": ["//cdn.shopify.com/s/files/1/products/arc_300x300.jpg", "//cdn.shopify.com/s/files/1/products/arc-side.jpg"],
  "options": [{"name": "Color"}, {"name": "Size"}],
  "variants": [
    {"id": 1, "option1": "Brass", "option2": "Small", "available": true, "sku": "ARC-BR-S", "price": 12900},
    {"id": 2, "option1": "Brass", "option2": "Large", "available": false, "sku": "ARC-BR-L", "price": 15900},
    {"id": 3, "option1": "Black", "option2": "Large", "available": false, "sku": "ARC-BK-L", "price": 15900,
     "featured_image": {"src": "//cdn.shopify.com/s/files/1/products/arc-black.jpg"}}
  ]
}}
</script>
<script>Shopify.currency = {"active":"EUR","rate":"1.0"};</script>
<a href="/collections/lamps/products/arc-floor-lamp?variant=1">Arc</a>
<a href="/products/desk-lamp">Desk</a>
<a href="/products/desk-lamp#reviews">Desk reviews</a>
<a href="https://other.example.com/products/elsewhere">Elsewhere</a>
<a href="/collections/lamps">Lamps</a>
</body></html>`

func TestShopify_ProductJSONInCents(t *testing.T) {
	adapter := NewShopifyAdapter(testDeps(nil))
	page := mustPage(t, "https://lamphouse.example.com/products/arc-floor-lamp", shopifyPage)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Arc Floor Lamp", p.Title)
	assert.Equal(t, 129.0, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 159.0, *p.OriginalPrice)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "Lumen", p.Brand)
	assert.Equal(t, "Lighting", p.Category)
	assert.Equal(t, "Brass arc lamp.", p.Description)
	assert.Equal(t, "ARC-BR-S", p.SKU)
	assert.Equal(t, types.InStock, p.Availability)
	assert.Equal(t, []string{
		"https://cdn.shopify.com/s/files/1/products/arc.jpg",
		"https://cdn.shopify.com/s/files/1/products/arc-side.jpg",
	}, p.Images)

	require.Len(t, p.Variants, 4)
	assert.Equal(t, types.Variant{Type: "Color", Value: "Brass", Available: true}, p.Variants[0])
	assert.Equal(t, types.Variant{Type: "Size", Value: "Small", Available: true}, p.Variants[1])
	assert.Equal(t, types.Variant{Type: "Size", Value: "Large", Available: false}, p.Variants[2])
	assert.Equal(t, "Black", p.Variants[3].Value)
	assert.False(t, p.Variants[3].Available)
	assert.Equal(t, "https://cdn.shopify.com/s/files/1/products/arc-black.jpg", p.Variants[3].Image)
}

func TestShopify_ProductURLs(t *testing.T) {
	adapter := NewShopifyAdapter(testDeps(nil))
	page := mustPage(t, "https://lamphouse.example.com/collections/lamps", shopifyPage)

	urls, err := adapter.ProductURLs(page)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://lamphouse.example.com/products/arc-floor-lamp",
		"https://lamphouse.example.com/products/desk-lamp",
	}, urls)

	collections, err := adapter.CollectionURLs(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://lamphouse.example.com/collections/lamps"}, collections)

	_, err = adapter.ProductURLs(mustPage(t, "https://lamphouse.example.com/", `<html><body></body></html>`))
	assert.Error(t, err)
}

func TestShopify_SingleDefaultVariantIsDropped(t *testing.T) {
	adapter := NewShopifyAdapter(testDeps(nil))
	page := mustPage(t, "https://mugs.example.com/products/mug", `<html><body>
	<script type="application/json" data-product-json>
	{"title": "Mug", "price": 1500, "options": ["Title"],
	 "variants": [{"id": 9, "option1": "Default Title", "available": true, "price": 1500}]}
	</script></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.Price)
	assert.Equal(t, "USD", p.Currency)
	assert.Empty(t, p.Variants)
}

func TestTemu_RawDataStore(t *testing.T) {
	adapter := NewTemuAdapter(testDeps(nil))
	page := mustPage(t, "https://www.temu.com/desk-organizer-g-601099512345678.html", `<html><body><script>
	window.rawData = {"store": {
	  "goods": {"goodsName": "Desk Organizer", "goodsId": "601099512345678",
	    "priceInfo": {"priceStr": "$8.97", "marketPriceStr": "$19.99"},
	    "gallery": [{"url": "https://img.kwcdn.com/product/organizer.jpg"}],
	    "goodsRating": 4.8, "reviewNum": 2210},
	  "mall": {"mallName": "HomeGoods Mall"},
	  "sku": [
	    {"skuId": "17592186044416", "stockQuantity": 10, "thumbUrl": "https://img.kwcdn.com/product/white.jpg",
	     "specs": [{"specKey": "Color", "specValue": "White"}]},
	    {"skuId": "17592186044417", "stockQuantity": 0,
	     "specs": [{"specKey": "Color", "specValue": "Grey"}]}
	  ]}};
	</script></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Desk Organizer", p.Title)
	assert.Equal(t, 8.97, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 19.99, *p.OriginalPrice)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "601099512345678", p.SKU)
	assert.Equal(t, "HomeGoods Mall", p.Seller)
	assert.Equal(t, 2210, p.ReviewCount)
	assert.Equal(t, types.InStock, p.Availability)
	assert.Equal(t, []string{"https://img.kwcdn.com/product/organizer.jpg"}, p.Images)

	require.Len(t, p.Variants, 2)
	assert.Equal(t, types.Variant{Type: "Color", Value: "White", Image: "https://img.kwcdn.com/product/white.jpg", Available: true, ID: "17592186044416"}, p.Variants[0])
	assert.False(t, p.Variants[1].Available)
}

func TestShein_ProductIntroData(t *testing.T) {
	adapter := NewSheinAdapter(testDeps(nil))
	page := mustPage(t, "https://us.shein.com/Floral-Dress-p-12345678-cat-1727.html", `<html><body>
	<div class="product-intro__head-sku">SKU: sw2211012345</div>
	<script>
	window.gbRawData = {
	  productIntroData: {
	    "detail": {"goods_name": "Floral Print Dress", "goods_id": "12345678",
	      "salePrice": {"amount": "17.49", "amountWithSymbol": "$17.49"},
	      "retailPrice": {"amount": "24.99", "amountWithSymbol": "$24.99"},
	      "productDetails": [{"attr_name": "Color", "attr_value": "Multicolor"}, {"attr_name": "Sleeve Length", "attr_value": "Short Sleeve"}],
	      "mainSaleAttribute": [{"attr_value": "Multicolor"}]},
	    "goods_imgs": {"main_image": {"origin_image": "//img.ltwebstatic.com/images3/dress_thumbnail_405x552.jpg"},
	      "detail_image": [{"origin_image": "//img.ltwebstatic.com/images3/dress-back.jpg"}]},
	    "attrSizeList": [{"attr_value_name": "S", "stock": 3}, {"attr_value_name": "M", "stock": "0"}],
	    "commentInfo": {"comment_rank_average": "4.9", "comment_num": 812}
	  }
	};
	</script></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Floral Print Dress", p.Title)
	assert.Equal(t, 17.49, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 24.99, *p.OriginalPrice)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "Color: Multicolor; Sleeve Length: Short Sleeve", p.Description)
	assert.Equal(t, []string{
		"https://img.ltwebstatic.com/images3/dress.jpg",
		"https://img.ltwebstatic.com/images3/dress-back.jpg",
	}, p.Images)
	assert.Equal(t, 812, p.ReviewCount)
	assert.Equal(t, types.InStock, p.Availability)

	require.Len(t, p.Variants, 3)
	assert.Equal(t, "Multicolor", p.Variants[0].Value)
	assert.Equal(t, types.Variant{Type: "Size", Value: "S", Available: true}, p.Variants[1])
	assert.Equal(t, types.Variant{Type: "Size", Value: "M", Available: false}, p.Variants[2])
}

func TestShein_SKUPrefixStrippedFromDOM(t *testing.T) {
	adapter := NewSheinAdapter(testDeps(nil))
	page := mustPage(t, "https://us.shein.com/Dress-p-12345678.html", `<html><body>
		<h1 class="product-intro__head-name">Dress</h1>
		<div class="product-intro__head-sku">SKU: sw2211012345</div>
	</body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "sw2211012345", p.SKU)
}

const rakutenPage = `<html><body>
<h1 class="detailHeadline">Nintendo Switch OLED</h1>
<div class="advertList">
  <div class="advert"><span class="price">289,99 €</span><span class="sellerName">GameShop</span><span class="productState">Occasion - Très bon état</span></div>
  <div class="advert"><span class="price">319,00 €</span><span class="sellerName">MegaStore</span><span class="productState">Neuf</span></div>
  <div class="advert"><span class="price"></span><span class="sellerName"></span></div>
</div>
<div class="reviewItem"><span class="author">Luc</span><span class="rating">4</span><div class="reviewBody">Parfait</div></div>
</body></html>`

func TestRakuten_OffersAndBuyBox(t *testing.T) {
	adapter := NewRakutenAdapter(testDeps(nil))
	page := mustPage(t, "https://fr.shopping.rakuten.com/offer/buy/7712345678/nintendo-switch-oled.html", rakutenPage)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Nintendo Switch OLED", p.Title)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "7712345678", p.SKU)
	require.Len(t, p.Offers, 2)
	assert.Equal(t, types.Offer{Price: 289.99, Seller: "GameShop", Condition: types.ConditionUsed}, p.Offers[0])
	assert.Equal(t, types.Offer{Price: 319, Seller: "MegaStore", Condition: types.ConditionNew}, p.Offers[1])

	// the buy box follows the cheapest listing
	assert.Equal(t, 289.99, p.Price)
	assert.Equal(t, "GameShop", p.Seller)
	assert.Equal(t, types.ConditionUsed, p.Condition)

	require.Len(t, p.Reviews, 1)
	assert.Equal(t, types.Review{Author: "Luc", Rating: 4, Body: "Parfait", Images: []string{}}, p.Reviews[0])
}

func TestGeneric_JSONLDGraphAndTitleFallback(t *testing.T) {
	adapter := NewGenericAdapter(testDeps(nil))
	page := mustPage(t, "https://www.boutique.example.fr/produits/theiere-4521", `<html><head>
	<title>Théière en fonte | Boutique Example</title>
	<script type="application/ld+json">
	{"@context": "https://schema.org", "@graph": [
	  {"@type": "WebSite", "name": "Boutique Example"},
	  {"@type": "BreadcrumbList", "itemListElement": [
	    {"@type": "ListItem", "position": 1, "name": "Accueil"},
	    {"@type": "ListItem", "position": 2, "item": {"name": "Cuisine"}},
	    {"@type": "ListItem", "position": 3, "name": "Thé"}]},
	  {"@type": ["Product", "Thing"], "sku": "TH-4521",
	   "image": [{"@type": "ImageObject", "url": "https://cdn.example.fr/theiere.jpg"}, "https://cdn.example.fr/theiere-2.jpg"],
	   "aggregateRating": {"ratingValue": "9", "bestRating": "10", "reviewCount": "12"},
	   "offers": {"@type": "AggregateOffer", "lowPrice": "39,90", "highPrice": "49,90", "priceCurrency": "EUR",
	     "offers": [{"@type": "Offer", "price": "39.90", "availability": "https://schema.org/OutOfStock",
	       "itemCondition": "https://schema.org/NewCondition"}]},
	   "review": [{"@type": "Review", "author": {"@type": "Person", "name": "Anne"},
	     "reviewRating": {"ratingValue": 5}, "reviewBody": "Superbe"}]}
	]}
	</script></head><body></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Théière en fonte", p.Title)
	assert.Equal(t, 39.9, p.Price)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "TH-4521", p.SKU)
	assert.Equal(t, "Cuisine > Thé", p.Category)
	assert.Equal(t, types.OutOfStock, p.Availability)
	assert.Equal(t, types.ConditionNew, p.Condition)
	assert.Equal(t, []string{"https://cdn.example.fr/theiere.jpg", "https://cdn.example.fr/theiere-2.jpg"}, p.Images)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 4.5, *p.Rating, 0.001)
	assert.Equal(t, 12, p.ReviewCount)
	require.Len(t, p.Reviews, 1)
	assert.Equal(t, "Anne", p.Reviews[0].Author)
	assert.Empty(t, p.Offers)
}

func TestGeneric_OpenGraphFallback(t *testing.T) {
	adapter := NewGenericAdapter(testDeps(nil))
	page := mustPage(t, "https://shop.example.com/item/98765", `<html><head>
	<meta property="og:site_name" content="Example Shop">
	<meta property="og:title" content="Canvas Tote | Example Shop">
	<meta property="og:image" content="https://shop.example.com/img/tote.png">
	<meta property="product:price:amount" content="25.00">
	<meta property="product:price:currency" content="CAD">
	</head><body></body></html>`)

	p, err := adapter.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, "Canvas Tote", p.Title)
	assert.Equal(t, 25.0, p.Price)
	assert.Equal(t, "CAD", p.Currency)
	assert.Equal(t, "98765", p.SKU)
	assert.Equal(t, []string{"https://shop.example.com/img/tote.png"}, p.Images)
}

func TestTitleFromDocument(t *testing.T) {
	tests := []struct {
		url   string
		title string
		want  string
	}{
		{"https://www.amazon.com/dp/B0ABCDEFGH", "Amazon.com: Wireless Earbuds : Electronics", "Wireless Earbuds"},
		{"https://shop.example.com/p/1", "Canvas Tote – Example", "Canvas Tote"},
		{"https://shop.example.com/p/1", "", ""},
	}
	for _, tt := range tests {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head><title>" + tt.title + "</title></head></html>"))
		require.NoError(t, err)
		assert.Equal(t, tt.want, titleFromDocument(&types.Page{URL: tt.url, Doc: doc}), tt.title)
	}
}

func TestCleanHelpers(t *testing.T) {
	assert.Equal(t, "SoundCo", cleanBrand("Visit the SoundCo Store"))
	assert.Equal(t, "Acme", cleanBrand("Brand: Acme"))
	assert.Equal(t, "Color", cleanAxisLabel("Color: Red"))
	assert.Equal(t, "Option", cleanAxisLabel(""))
	assert.Equal(t, "Electronics > Audio", joinCategory([]string{"Home", " Electronics ", "›", "Audio"}))
	assert.Equal(t, "rakuten", siteName("fr.shopping.rakuten.com"))
	assert.Equal(t, "amazon", siteName("amazon.co.uk"))
	assert.Equal(t, []string{"193", "361386"}, splitSkuIDs("14:193#Red;5:361386"))
	assert.Equal(t, []string{"193", "361386"}, splitSkuIDs("193, 361386"))
}
