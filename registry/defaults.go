package registry

import (
	"time"

	"product-extractor/internal/types"
)

// DefaultVersion tags the built-in selector tables
const DefaultVersion = "builtin-2026.10.1"

// Table maps a field to its ordered selector chain
type Table map[types.Field][]string

// Defaults returns the built-in selector snapshot. It is used until a remote
// snapshot has been fetched, and whenever the remote one lacks a field.
func Defaults() *Snapshot {
	return &Snapshot{
		Version:   DefaultVersion,
		Source:    SourceDefault,
		UpdatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Selectors: map[types.Platform]Table{
			types.PlatformAmazon:     amazonSelectors(),
			types.PlatformAliExpress: aliexpressSelectors(),
			types.PlatformRakuten:    rakutenSelectors(),
			types.PlatformShopify:    shopifySelectors(),
			types.PlatformEbay:       ebaySelectors(),
			types.PlatformTemu:       temuSelectors(),
			types.PlatformShein:      sheinSelectors(),
			types.PlatformGeneric:    genericSelectors(),
		},
	}
}

func amazonSelectors() Table {
	return Table{
		types.FieldTitle: {"#productTitle", "#title", "h1.a-size-large"},
		types.FieldPrice: {
			"#corePrice_feature_div .a-price .a-offscreen",
			"#corePriceDisplay_desktop_feature_div .priceToPay .a-offscreen",
			"#apex_desktop .a-price .a-offscreen",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
			"#price_inside_buybox",
			".a-price .a-offscreen",
		},
		types.FieldOriginalPrice: {
			"#corePriceDisplay_desktop_feature_div .basisPrice .a-offscreen",
			".basisPrice .a-offscreen",
			".a-price.a-text-price .a-offscreen",
			"#priceblock_listprice",
		},
		types.FieldDescription: {"#productDescription", "#feature-bullets", "#bookDescription_feature_div"},
		types.FieldImages: {
			"#landingImage@data-old-hires",
			"#landingImage@src",
			"#imgTagWrapperId img@src",
			"#altImages img@src",
		},
		types.FieldSKU:          {"input#ASIN@value", "#averageCustomerReviews@data-asin"},
		types.FieldBrand:        {"#bylineInfo", "#brand", "#productOverview_feature_div .po-brand .po-break-word"},
		types.FieldCategory:     {"#wayfinding-breadcrumbs_feature_div ul li a"},
		types.FieldSeller:       {"#sellerProfileTriggerId", "#merchant-info a", "#merchantInfoFeature_feature_div .offer-display-feature-text-message"},
		types.FieldCondition:    {"#renewedBuyBoxHeader", "#usedBuySection .a-text-bold"},
		types.FieldAvailability: {"#availability span", "#availability", "#outOfStock"},
		types.FieldRating:       {"#acrPopover@title", "#averageCustomerReviews .a-icon-alt", "[data-hook=rating-out-of-text]"},
		types.FieldReviewCount:  {"#acrCustomerReviewText", "[data-hook=total-review-count]"},

		types.FieldVariants:       {"#twister div[id^=variation_]", "#inline-twister-expander-content div[id^=inline-twister-row-]"},
		types.FieldVariantLabel:   {"label.a-form-label", "[id^=inline-twister-dim-title] .a-text-bold", ".a-form-label"},
		types.FieldVariantOption:  {"li[data-defaultasin]", "li[data-asin]"},
		types.FieldVariantValue:   {"img@alt", ".twisterTextDiv p", ".a-button-text", "&@title"},
		types.FieldVariantImage:   {"img@src"},
		types.FieldVariantID:      {"&@data-defaultasin", "&@data-asin"},
		types.FieldVariantBlocked: {".swatchUnavailable", ".a-button-unavailable"},

		types.FieldOffers:         {"#aod-pinned-offer", "#aod-offer", ".olpOffer"},
		types.FieldOfferPrice:     {".a-price .a-offscreen", ".olpOfferPrice"},
		types.FieldOfferSeller:    {"#aod-offer-soldBy a", "#aod-offer-soldBy .a-col-right .a-size-small", ".olpSellerName"},
		types.FieldOfferCondition: {"#aod-offer-heading h5", "#aod-offer-heading", ".olpCondition"},

		types.FieldReviews:      {"[data-hook=review]"},
		types.FieldReviewAuthor: {".a-profile-name"},
		types.FieldReviewRating: {"[data-hook=review-star-rating] .a-icon-alt", "[data-hook=cmps-review-star-rating] .a-icon-alt", "i.review-rating"},
		types.FieldReviewBody:   {"[data-hook=review-body]"},
		types.FieldReviewDate:   {"[data-hook=review-date]"},
		types.FieldReviewImages: {"img.review-image-tile@src", "[data-hook=review-image-tile]@src"},
	}
}

func aliexpressSelectors() Table {
	return Table{
		types.FieldTitle:         {"h1[data-pl=product-title]", ".product-title-text", "h1"},
		types.FieldPrice:         {".product-price-current", "[class*=price--current]", ".uniform-banner-box-price"},
		types.FieldOriginalPrice: {".product-price-original", "[class*=price--original]", ".uniform-banner-box-discounts span"},
		types.FieldDescription:   {"#product-description", ".product-description", "[class*=description--product-description]"},
		types.FieldImages: {
			".images-view-item img@src",
			"[class*=slider--img] img@src",
			".magnifier-image@src",
			"meta[property='og:image']@content",
		},
		types.FieldCategory:     {".breadcrumb a", "nav[class*=breadcrumb] a"},
		types.FieldSeller:       {"[data-pl=store-name]", ".shop-name a", "[class*=store-header--storeName]"},
		types.FieldAvailability: {".product-quantity-tip", "[class*=quantity--info]"},
		types.FieldRating:       {".overview-rating-average", "[data-pl=product-reviewer] strong"},
		types.FieldReviewCount:  {".product-reviewer-reviews", "[data-pl=product-reviewer] a"},

		types.FieldVariants:       {".sku-property", "[class*=sku-item--property]"},
		types.FieldVariantLabel:   {".sku-title", "[class*=sku-item--title]"},
		types.FieldVariantOption:  {".sku-property-item", "[class*=sku-item--image]", "[class*=sku-item--text]"},
		types.FieldVariantValue:   {"img@title", "img@alt", "&@title", ".sku-property-text", "&"},
		types.FieldVariantImage:   {"img@src"},
		types.FieldVariantBlocked: {".disabled", "[class*=sku-item--soldOut]"},

		types.FieldReviews:       {".feedback-item", "[class*=list--itemBox]"},
		types.FieldReviewAuthor:  {".user-name", "[class*=list--itemInfo] span"},
		types.FieldReviewRating:  {".star-view@data-rating", "[class*=stars--box]@data-rating"},
		types.FieldReviewBody:    {".buyer-feedback span", "[class*=list--itemReview]"},
		types.FieldReviewDate:    {".r-time-new", "[class*=list--itemInfo] time"},
		types.FieldReviewImages:  {".r-photo-list img@src", "[class*=list--itemThumbnails] img@src"},
		types.FieldReviewCountry: {".user-country b", ".user-country"},
	}
}

func rakutenSelectors() Table {
	return Table{
		types.FieldTitle:         {"h1.detailHeadline", "h1[itemprop=name]", "h1"},
		types.FieldPrice:         {"[itemprop=price]@content", "#prdBuyBox .price", ".buyBoxPrice", ".price"},
		types.FieldOriginalPrice: {".oldPrice", ".crossedPrice", ".strikePrice"},
		types.FieldCurrency:      {"[itemprop=priceCurrency]@content"},
		types.FieldDescription:   {"#prdDescription", "[itemprop=description]", ".edito"},
		types.FieldImages: {
			"#prdMainPhoto img@src",
			".prdMainPhoto img@src",
			".thumbnails img@data-src",
			".thumbnails img@src",
			"[itemprop=image]@src",
		},
		types.FieldSKU:          {"[itemprop=sku]@content", "[itemprop=gtin13]@content"},
		types.FieldBrand:        {"[itemprop=brand] [itemprop=name]", "[itemprop=brand]", ".brand a"},
		types.FieldCategory:     {".breadcrumb a", "[itemtype*=BreadcrumbList] [itemprop=name]"},
		types.FieldSeller:       {"#prdBuyBox .sellerName", ".sellerName", ".seller-name"},
		types.FieldCondition:    {"#prdBuyBox .productState", "[itemprop=itemCondition]@href", ".productState"},
		types.FieldAvailability: {"[itemprop=availability]@href", "[itemprop=availability]@content", ".availability"},
		types.FieldRating:       {"[itemprop=ratingValue]@content", "[itemprop=ratingValue]", ".ratingValue"},
		types.FieldReviewCount:  {"[itemprop=reviewCount]@content", "[itemprop=reviewCount]", ".nbReviews"},

		types.FieldVariants:       {".productVariants .variantGroup", "[data-qa=variant-selector]"},
		types.FieldVariantLabel:   {".variantLabel", "label"},
		types.FieldVariantOption:  {".variantValue", "option"},
		types.FieldVariantValue:   {"&@title", "&"},
		types.FieldVariantImage:   {"img@src"},
		types.FieldVariantBlocked: {".unavailable", "[disabled]"},

		types.FieldOffers:         {".advertList .advert", "[data-qa=advert]", ".offer-item"},
		types.FieldOfferPrice:     {".price", "[data-qa=advert-price]"},
		types.FieldOfferSeller:    {".sellerName", ".seller-name", "[data-qa=seller-name]"},
		types.FieldOfferCondition: {".productState", ".condition", "[data-qa=advert-condition]"},

		types.FieldReviews:      {".reviewItem", "[itemprop=review]"},
		types.FieldReviewAuthor: {"[itemprop=author]", ".author"},
		types.FieldReviewRating: {"[itemprop=ratingValue]@content", ".rating"},
		types.FieldReviewBody:   {"[itemprop=reviewBody]", ".reviewBody", ".content"},
		types.FieldReviewDate:   {"[itemprop=datePublished]@content", ".date"},
	}
}

func shopifySelectors() Table {
	return Table{
		types.FieldTitle: {".product__title h1", ".product-single__title", "h1.product-title", "h1[itemprop=name]", "h1"},
		types.FieldPrice: {
			".price__sale .price-item--sale",
			".price__regular .price-item--regular",
			".product__price",
			"[data-product-price]",
			"meta[property='og:price:amount']@content",
			".price",
		},
		types.FieldOriginalPrice: {".price__sale .price-item--regular", ".product__price--compare", "[data-compare-price]"},
		types.FieldCurrency:      {"meta[property='og:price:currency']@content"},
		types.FieldDescription:   {".product__description", ".product-single__description", "[itemprop=description]", "meta[property='og:description']@content"},
		types.FieldImages: {
			".product__media img@src",
			".product__media img@data-src",
			".product-single__photo img@src",
			".product__media img@srcset",
			"meta[property='og:image:secure_url']@content",
			"meta[property='og:image']@content",
		},
		types.FieldSKU:          {"[data-product-sku]", ".product-single__sku", ".sku"},
		types.FieldBrand:        {".product__vendor", ".product-single__vendor", "[itemprop=brand]"},
		types.FieldCategory:     {".breadcrumbs a", "nav.breadcrumb a"},
		types.FieldSeller:       {"meta[property='og:site_name']@content"},
		types.FieldAvailability: {"link[itemprop=availability]@href", "[itemprop=availability]@href", ".product-form__submit", "button[name=add]"},
		types.FieldRating:       {".jdgm-prev-badge@data-average-rating", ".spr-badge@data-rating", "[itemprop=ratingValue]@content"},
		types.FieldReviewCount:  {".jdgm-prev-badge@data-number-of-reviews", ".spr-badge-caption", "[itemprop=reviewCount]@content"},

		types.FieldVariants:       {"variant-radios fieldset", "variant-selects .product-form__input", ".product-form__input", ".selector-wrapper"},
		types.FieldVariantLabel:   {"legend", "label"},
		types.FieldVariantOption:  {"input[type=radio]", "option"},
		types.FieldVariantValue:   {"&", "&@value"},
		types.FieldVariantBlocked: {".disabled", "[disabled]"},

		types.FieldReviews:      {".jdgm-rev", ".spr-review"},
		types.FieldReviewAuthor: {".jdgm-rev__author", ".spr-review-header-byline strong"},
		types.FieldReviewRating: {".jdgm-rev__rating@data-score", ".spr-starratings@aria-label"},
		types.FieldReviewBody:   {".jdgm-rev__body", ".spr-review-content-body"},
		types.FieldReviewDate:   {".jdgm-rev__timestamp@data-content", ".spr-review-header-byline em"},
		types.FieldReviewImages: {".jdgm-rev__pics img@data-src", ".jdgm-rev__pics img@src"},
	}
}

func ebaySelectors() Table {
	return Table{
		types.FieldTitle:         {"h1.x-item-title__mainTitle", "#itemTitle", "h1"},
		types.FieldPrice:         {".x-price-primary .ux-textspans", "#prcIsum@content", "#prcIsum", "#mm-saleDscPrc", "[itemprop=price]@content"},
		types.FieldOriginalPrice: {".x-price-transparency--was .ux-textspans", ".ux-textspans--STRIKETHROUGH", "#orgPrc"},
		types.FieldCurrency:      {"[itemprop=priceCurrency]@content"},
		types.FieldDescription:   {".x-item-description-child", "#viTabs_0_is", "#desc_div"},
		types.FieldImages: {
			".ux-image-carousel-item img@data-zoom-src",
			".ux-image-carousel-item img@src",
			".ux-image-carousel-item img@data-src",
			"#icImg@src",
			".ux-image-filmstrip-carousel img@src",
		},
		types.FieldSKU:          {".ux-layout-section__textual-display--itemId .ux-textspans--BOLD", "#descItemNumber"},
		types.FieldBrand:        {".ux-labels-values--brand .ux-labels-values__values .ux-textspans", "[itemprop=brand] [itemprop=name]"},
		types.FieldCategory:     {".seo-breadcrumbs-container a", "nav.breadcrumbs a", "#vi-VR-brumb-lnkLst a"},
		types.FieldSeller:       {".x-sellercard-atf__info__about-seller a span", ".ux-seller-section__item--seller a", ".mbg-nw"},
		types.FieldCondition:    {".x-item-condition-text .ux-textspans", ".x-item-condition-value .ux-textspans", "#vi-itm-cond"},
		types.FieldAvailability: {".d-quantity__availability .ux-textspans", ".x-quantity__availability .ux-textspans", "#qtySubTxt"},
		types.FieldRating:       {".ux-summary__start--rating .ux-textspans", "[itemprop=ratingValue]@content"},
		types.FieldReviewCount:  {".ux-summary__count .ux-textspans", "[itemprop=reviewCount]@content"},

		types.FieldVariants:       {".x-msku__box-cont", ".x-msku__select-box-wrapper"},
		types.FieldVariantLabel:   {".x-msku__label", "label"},
		types.FieldVariantOption:  {"option"},
		types.FieldVariantValue:   {"&"},
		types.FieldVariantID:      {"&@value"},
		types.FieldVariantBlocked: {"[disabled]"},

		types.FieldReviews:      {".ebay-review-section", ".fdbk-container"},
		types.FieldReviewAuthor: {".review-item-author", ".fdbk-container__details__info__username span"},
		types.FieldReviewRating: {".star-rating@aria-label", "[itemprop=ratingValue]@content"},
		types.FieldReviewBody:   {".review-item-content", ".fdbk-container__details__comment span"},
		types.FieldReviewDate:   {".review-item-date", ".fdbk-container__details__time span"},
	}
}

func temuSelectors() Table {
	return Table{
		types.FieldTitle:         {"h1", "[class*=goodsName]", "meta[property='og:title']@content"},
		types.FieldPrice:         {"[data-type=price]", "[class*=goodsPrice]", "[aria-label*=Price]@aria-label"},
		types.FieldOriginalPrice: {"[class*=marketPrice]", "[class*=linePrice]"},
		types.FieldDescription:   {"meta[name=description]@content", "meta[property='og:description']@content"},
		types.FieldImages: {
			"[class*=mainImg] img@src",
			"[class*=goodsImage] img@src",
			"[class*=thumbnail] img@src",
			"meta[property='og:image']@content",
		},
		types.FieldSeller:      {"[class*=mallName]", "[class*=storeName]"},
		types.FieldRating:      {"[aria-label*=stars]@aria-label", "[class*=goodsRating]"},
		types.FieldReviewCount: {"[class*=reviewCount]", "[class*=commentNum]"},

		types.FieldVariants:       {"[role=radiogroup]"},
		types.FieldVariantLabel:   {"&@aria-label", "[class*=specTitle]"},
		types.FieldVariantOption:  {"[role=radio]"},
		types.FieldVariantValue:   {"&@aria-label", "img@alt", "&"},
		types.FieldVariantImage:   {"img@src"},
		types.FieldVariantBlocked: {"[aria-disabled=true]", "[class*=soldOut]"},

		types.FieldReviews:       {"[class*=reviewItem]"},
		types.FieldReviewAuthor:  {"[class*=userName]"},
		types.FieldReviewRating:  {"[aria-label*=stars]@aria-label"},
		types.FieldReviewBody:    {"[class*=reviewContent]", "[class*=commentText]"},
		types.FieldReviewDate:    {"[class*=reviewTime]"},
		types.FieldReviewImages:  {"[class*=reviewImg] img@src"},
		types.FieldReviewCountry: {"[class*=userCountry]"},
	}
}

func sheinSelectors() Table {
	return Table{
		types.FieldTitle: {"h1.product-intro__head-name", ".product-intro__head-name", "h1"},
		types.FieldPrice: {
			".product-intro__head-mainprice .from",
			".product-intro__head-price .discount",
			".product-intro__head-mainprice",
			"[class*=productPrice]",
		},
		types.FieldOriginalPrice: {".product-intro__head-mainprice .del-price", ".del-price"},
		types.FieldDescription:   {".product-intro__description-table", ".product-intro__description"},
		types.FieldImages: {
			".product-intro__main-item img@src",
			".crop-image-container@data-before-crop-src",
			".product-intro__thumbs-item img@data-src",
			".product-intro__thumbs-item img@src",
		},
		types.FieldSKU:         {".product-intro__head-sku", "[class*=product-intro__head-sku]"},
		types.FieldCategory:    {".bread-crumb__inner a", ".bread-crumb__item a"},
		types.FieldRating:      {".product-intro__head-reviews .rate-num", ".rate-num"},
		types.FieldReviewCount: {".product-intro__head-reviews-text", ".j-expose__review-count"},

		types.FieldVariants:       {".product-intro__color", ".product-intro__size"},
		types.FieldVariantLabel:   {".product-intro__color-title", ".product-intro__size-title", ".title"},
		types.FieldVariantOption:  {".product-intro__color-block", ".product-intro__color-radio", ".product-intro__size-radio"},
		types.FieldVariantValue:   {"&@aria-label", ".product-intro__size-radio-inner", "img@alt", "&"},
		types.FieldVariantImage:   {"img@src"},
		types.FieldVariantBlocked: {".product-intro__size-radio_soldout", ".product-intro__size-radio_disabled", "[class*=soldout]"},

		types.FieldReviews:      {".common-reviews__list-item", ".j-expose__common-reviews__list-item"},
		types.FieldReviewAuthor: {".nikename"},
		types.FieldReviewRating: {".rate-star@aria-label"},
		types.FieldReviewBody:   {".rate-des"},
		types.FieldReviewDate:   {".date"},
		types.FieldReviewImages: {".common-reviews__list-item-pic img@src"},
	}
}

func genericSelectors() Table {
	return Table{
		types.FieldTitle: {"meta[property='og:title']@content", "[itemprop=name]", "h1"},
		types.FieldPrice: {
			"[itemprop=price]@content",
			"[itemprop=price]",
			"meta[property='product:price:amount']@content",
			"meta[property='og:price:amount']@content",
			".price",
		},
		types.FieldOriginalPrice: {".price del", ".price s", ".old-price", ".was-price", ".compare-price"},
		types.FieldCurrency: {
			"[itemprop=priceCurrency]@content",
			"meta[property='product:price:currency']@content",
			"meta[property='og:price:currency']@content",
		},
		types.FieldDescription: {"meta[property='og:description']@content", "[itemprop=description]", "meta[name=description]@content"},
		types.FieldImages: {
			"meta[property='og:image']@content",
			"meta[property='og:image:secure_url']@content",
			"[itemprop=image]@src",
			"[itemprop=image]@content",
			".product-gallery img@src",
			".product img@src",
		},
		types.FieldSKU:          {"[itemprop=sku]@content", "[itemprop=sku]", "[data-sku]@data-sku"},
		types.FieldBrand:        {"[itemprop=brand] [itemprop=name]", "[itemprop=brand]@content", "[itemprop=brand]", "meta[property='product:brand']@content"},
		types.FieldCategory:     {".breadcrumb a", "nav[aria-label=breadcrumb] a", "[itemtype*=BreadcrumbList] [itemprop=name]"},
		types.FieldCondition:    {"[itemprop=itemCondition]@href", "[itemprop=itemCondition]@content", "meta[property='product:condition']@content"},
		types.FieldAvailability: {"[itemprop=availability]@href", "[itemprop=availability]@content", "meta[property='product:availability']@content", "meta[property='og:availability']@content"},
		types.FieldRating:       {"[itemprop=ratingValue]@content", "[itemprop=ratingValue]"},
		types.FieldReviewCount:  {"[itemprop=reviewCount]@content", "[itemprop=reviewCount]", "[itemprop=ratingCount]@content"},

		types.FieldVariants:       {".product-options .option-group", "fieldset.variant"},
		types.FieldVariantLabel:   {"legend", "label"},
		types.FieldVariantOption:  {"option", "input[type=radio]"},
		types.FieldVariantValue:   {"&", "&@value"},
		types.FieldVariantBlocked: {"[disabled]"},

		types.FieldReviews:      {"[itemprop=review]"},
		types.FieldReviewAuthor: {"[itemprop=author] [itemprop=name]", "[itemprop=author]"},
		types.FieldReviewRating: {"[itemprop=ratingValue]@content", "[itemprop=ratingValue]"},
		types.FieldReviewBody:   {"[itemprop=reviewBody]", "[itemprop=description]"},
		types.FieldReviewDate:   {"[itemprop=datePublished]@content", "[itemprop=datePublished]"},
	}
}
