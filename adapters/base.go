package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/normalize"
	"product-extractor/registry"
	"product-extractor/selectors"
	"product-extractor/structured"
	"product-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// Deps are the collaborators injected into every platform adapter
type Deps struct {
	Source   types.SelectorSource
	Reporter types.SelectorReporter
	Logger   types.Logger
	// OnMiss is called when a required field stays empty after every source
	OnMiss func(platform types.Platform, field types.Field)
}

// BaseAdapter provides the extraction pipeline shared by all platform
// adapters. Each adapter supplies platformRules; BaseAdapter runs them in a
// fixed order around the selector engine and the normalizer.
type BaseAdapter struct {
	platform    types.Platform
	engine      *selectors.Engine
	source      types.SelectorSource
	reporter    types.SelectorReporter
	logger      types.Logger
	limits      normalize.Limits
	marketplace bool
	onMiss      func(types.Platform, types.Field)
}

// platformRules is what a platform contributes to the pipeline:
// structured data first, then DOM quirks, then last-resort heuristics
type platformRules interface {
	structured(page *types.Page) *types.Product
	scrape(page *types.Page, draft *types.Product)
	fallback(page *types.Page, p *types.Product)
}

// NewBaseAdapter creates the shared adapter core for a platform
func NewBaseAdapter(platform types.Platform, deps Deps) *BaseAdapter {
	b := &BaseAdapter{
		platform: platform,
		engine:   selectors.NewEngine(deps.Logger),
		source:   deps.Source,
		reporter: deps.Reporter,
		logger:   deps.Logger,
		limits:   normalize.LimitsFor(platform),
		onMiss:   deps.OnMiss,
	}
	if b.source == nil {
		b.source = registry.New(nil, types.RegistryConfig{}, "", deps.Logger)
	}
	return b
}

// Platform returns the platform this adapter extracts
func (b *BaseAdapter) Platform() types.Platform {
	return b.platform
}

// extract runs the pipeline. Only an unusable page (or a panic escaping the
// field layer) yields an error; everything else degrades to empty fields.
func (b *BaseAdapter) extract(ctx context.Context, page *types.Page, rules platformRules) (product *types.Product, err error) {
	if !page.Usable() {
		return nil, types.ErrUnusablePage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("%s extraction aborted for %s: %v", b.platform, page.URL, r)
			product, err = nil, fmt.Errorf("%w: %v", types.ErrUnusablePage, r)
		}
	}()

	primary := b.safeStructured(page, rules)
	dom := b.scrapeDOM(page, primary)
	b.guard("scrape", page, func() { rules.scrape(page, dom) })

	merged := normalize.Merge(primary, dom)
	merged.Platform = b.platform
	merged.SourceURL = page.URL
	b.guard("fallback", page, func() { rules.fallback(page, merged) })

	if merged.Title == "" {
		merged.Title = titleFromDocument(page)
	}
	if !b.marketplace {
		merged.Offers = nil
	}
	b.reportMisses(page, merged)

	return normalize.Finalize(merged, b.limits), nil
}

func (b *BaseAdapter) safeStructured(page *types.Page, rules platformRules) (p *types.Product) {
	b.guard("structured data", page, func() { p = rules.structured(page) })
	if p == nil {
		b.logger.Debugf("No structured data for %s on %s", b.platform, page.URL)
	}
	return p
}

// guard runs fn and turns a panic into a logged field-level miss
func (b *BaseAdapter) guard(stage string, page *types.Page, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warnf("%s %s failed on %s: %v", b.platform, stage, page.URL, r)
		}
	}()
	fn()
}

func (b *BaseAdapter) reportMisses(page *types.Page, p *types.Product) {
	required := []struct {
		field types.Field
		empty bool
	}{
		{types.FieldTitle, p.Title == ""},
		{types.FieldPrice, p.Price <= 0},
	}
	for _, r := range required {
		if !r.empty {
			continue
		}
		chain := b.sels(r.field)
		b.logger.Debugf("%s: no %s on %s after %d selectors", b.platform, r.field, page.URL, len(chain))
		if b.onMiss != nil {
			b.onMiss(b.platform, r.field)
		}
		if b.reporter != nil {
			b.reporter.ReportBroken(b.platform, r.field, types.ReportContext{
				URL:     page.URL,
				Details: fmt.Sprintf("structured data and %d selectors returned nothing (selectors %s)", len(chain), b.source.Version()),
			})
		}
	}
}

// scrapeDOM resolves every field the structured draft left empty through
// the platform's selector chains. Images are always collected.
func (b *BaseAdapter) scrapeDOM(page *types.Page, have *types.Product) *types.Product {
	if have == nil {
		have = &types.Product{}
	}
	root := page.Doc.Selection
	p := &types.Product{}

	if have.Title == "" {
		p.Title, _ = b.text(root, types.FieldTitle)
	}
	if have.Price <= 0 {
		if raw, ok := b.text(root, types.FieldPrice); ok {
			p.Price = utils.ParsePrice(raw)
			p.Currency = utils.DetectCurrency(raw, "")
		}
	}
	if have.Currency == "" {
		if raw, ok := b.text(root, types.FieldCurrency); ok && len(strings.TrimSpace(raw)) == 3 {
			p.Currency = strings.ToUpper(strings.TrimSpace(raw))
		}
	}
	if have.OriginalPrice == nil {
		if raw, ok := b.text(root, types.FieldOriginalPrice); ok {
			if v := utils.ParsePrice(raw); v > 0 {
				p.OriginalPrice = &v
			}
		}
	}
	if have.Description == "" {
		p.Description, _ = b.text(root, types.FieldDescription)
	}
	if have.SKU == "" {
		p.SKU, _ = b.text(root, types.FieldSKU)
	}
	if have.Brand == "" {
		raw, _ := b.text(root, types.FieldBrand)
		p.Brand = cleanBrand(raw)
	}
	if have.Category == "" {
		p.Category = joinCategory(b.all(root, types.FieldCategory))
	}
	if have.Seller == "" {
		p.Seller, _ = b.text(root, types.FieldSeller)
	}
	if have.Condition == "" {
		raw, _ := b.text(root, types.FieldCondition)
		p.Condition = utils.ParseCondition(raw)
	}
	if have.Availability == "" || have.Availability == types.AvailabilityUnknown {
		raw, _ := b.text(root, types.FieldAvailability)
		p.Availability = utils.ParseAvailability(raw)
	}
	if have.Rating == nil {
		if raw, ok := b.text(root, types.FieldRating); ok {
			if v, ok := utils.ParseRating(raw); ok {
				p.Rating = &v
			}
		}
	}
	if have.ReviewCount <= 0 {
		raw, _ := b.text(root, types.FieldReviewCount)
		p.ReviewCount = utils.ParseCount(raw)
	}

	p.Images = b.all(root, types.FieldImages)

	if len(have.Variants) == 0 {
		p.Variants = b.variantsFromDOM(root)
	}
	if b.marketplace && len(have.Offers) == 0 {
		p.Offers = b.offersFromDOM(root)
	}
	if len(have.Reviews) == 0 {
		p.Reviews = b.reviewsFromDOM(root)
	}
	return p
}

func (b *BaseAdapter) sels(field types.Field) []string {
	return b.source.Selectors(b.platform, field)
}

func (b *BaseAdapter) text(root *goquery.Selection, field types.Field) (string, bool) {
	return b.engine.First(root, b.sels(field))
}

func (b *BaseAdapter) all(root *goquery.Selection, field types.Field) []string {
	return b.engine.All(root, b.sels(field))
}

func (b *BaseAdapter) blocks(root *goquery.Selection, field types.Field) *goquery.Selection {
	return b.engine.Blocks(root, b.sels(field))
}

var (
	rePlaceholderOption = regexp.MustCompile(`(?i)^(?:-+\s*)?(?:select|choose|please select|sélectionner|choisir)\b`)
	reStockNote         = regexp.MustCompile(`(?i)\s*[\[(][^\])]*(?:out of stock|sold out|unavailable|épuisé|indisponible)[^\])]*[\])]`)
)

// variantsFromDOM emits one variant per (axis, option) pair. Any number of
// axes is accepted, including axes with a single option.
func (b *BaseAdapter) variantsFromDOM(root *goquery.Selection) []types.Variant {
	out := []types.Variant{}
	b.blocks(root, types.FieldVariants).Each(func(_ int, axis *goquery.Selection) {
		label, _ := b.text(axis, types.FieldVariantLabel)
		label = cleanAxisLabel(label)

		b.blocks(axis, types.FieldVariantOption).Each(func(_ int, opt *goquery.Selection) {
			value, ok := b.text(opt, types.FieldVariantValue)
			if !ok {
				return
			}
			value = strings.TrimSpace(strings.TrimPrefix(value, "Click to select "))
			if rePlaceholderOption.MatchString(value) {
				return
			}

			unavailable := b.engine.Matches(opt, b.sels(types.FieldVariantBlocked))
			if reStockNote.MatchString(value) {
				unavailable = true
				value = strings.TrimSpace(reStockNote.ReplaceAllString(value, ""))
			}

			image, _ := b.text(opt, types.FieldVariantImage)
			id, _ := b.text(opt, types.FieldVariantID)
			out = append(out, types.Variant{
				Type:      label,
				Value:     value,
				Image:     image,
				Available: !unavailable,
				ID:        id,
			})
		})
	})
	return out
}

func (b *BaseAdapter) offersFromDOM(root *goquery.Selection) []types.Offer {
	out := []types.Offer{}
	b.blocks(root, types.FieldOffers).Each(func(_ int, block *goquery.Selection) {
		priceRaw, _ := b.text(block, types.FieldOfferPrice)
		seller, _ := b.text(block, types.FieldOfferSeller)
		condition, _ := b.text(block, types.FieldOfferCondition)
		out = append(out, types.Offer{
			Price:     utils.ParsePrice(priceRaw),
			Seller:    seller,
			Condition: utils.ParseCondition(condition),
		})
	})
	return out
}

func (b *BaseAdapter) reviewsFromDOM(root *goquery.Selection) []types.Review {
	out := []types.Review{}
	b.blocks(root, types.FieldReviews).Each(func(_ int, block *goquery.Selection) {
		r := types.Review{Images: b.all(block, types.FieldReviewImages)}
		r.Author, _ = b.text(block, types.FieldReviewAuthor)
		r.Body, _ = b.text(block, types.FieldReviewBody)
		r.Date, _ = b.text(block, types.FieldReviewDate)
		r.Country, _ = b.text(block, types.FieldReviewCountry)
		if raw, ok := b.text(block, types.FieldReviewRating); ok {
			r.Rating, _ = utils.ParseRating(raw)
		}
		out = append(out, r)
	})
	return out
}

// cleanAxisLabel turns "Color: Red" or "Size :" into "Color" / "Size"
func cleanAxisLabel(label string) string {
	if i := strings.Index(label, ":"); i >= 0 {
		label = label[:i]
	}
	label = utils.CleanText(label)
	if label == "" {
		return "Option"
	}
	return label
}

var reBrandNoise = regexp.MustCompile(`(?i)^(?:brand\s*:\s*|marque\s*:\s*|visit the\s+)|\s+store$`)

// cleanBrand strips byline decorations such as "Visit the Acme Store"
func cleanBrand(raw string) string {
	return strings.TrimSpace(reBrandNoise.ReplaceAllString(utils.CleanText(raw), ""))
}

var breadcrumbNoise = map[string]bool{
	"home":            true,
	"accueil":         true,
	"back to results": true,
	"all categories":  true,
	"›":               true,
	">":               true,
}

// joinCategory joins breadcrumb entries with " > ", skipping navigation noise
func joinCategory(crumbs []string) string {
	parts := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		c = utils.CleanText(c)
		if c == "" || breadcrumbNoise[strings.ToLower(c)] {
			continue
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, " > ")
}

var reTitleSeparators = regexp.MustCompile(`\s+[|:–—-]\s+|\s*\|\s*|:\s+`)

// titleFromDocument derives a title from <title>, dropping segments that
// only name the site
func titleFromDocument(page *types.Page) string {
	raw := utils.CleanText(page.Doc.Find("title").First().Text())
	if raw == "" {
		return ""
	}
	site := siteName(page.Host())
	for _, seg := range reTitleSeparators.Split(raw, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if site != "" && strings.Contains(strings.ToLower(seg), site) {
			continue
		}
		return seg
	}
	return ""
}

// siteName returns the registrable label of a host: "fr.shopping.rakuten.com" -> "rakuten"
func siteName(host string) string {
	labels := strings.Split(host, ".")
	for i := len(labels) - 2; i >= 0; i-- {
		switch labels[i] {
		case "co", "com", "net", "org":
			continue
		}
		return labels[i]
	}
	return ""
}

// currencyByTLD covers the storefront country domains of Amazon and eBay
var currencyByTLD = []struct {
	suffix   string
	currency string
}{
	{".co.uk", "GBP"},
	{".com.au", "AUD"},
	{".com.br", "BRL"},
	{".com.mx", "MXN"},
	{".com.tr", "TRY"},
	{".co.jp", "JPY"},
	{".ca", "CAD"},
	{".de", "EUR"},
	{".fr", "EUR"},
	{".it", "EUR"},
	{".es", "EUR"},
	{".nl", "EUR"},
	{".be", "EUR"},
	{".ie", "EUR"},
	{".at", "EUR"},
	{".in", "INR"},
	{".se", "SEK"},
	{".pl", "PLN"},
	{".ae", "AED"},
	{".sg", "SGD"},
	{".ch", "CHF"},
	{".com", "USD"},
}

func currencyForHost(host string) string {
	for _, c := range currencyByTLD {
		if strings.HasSuffix(host, c.suffix) {
			return c.currency
		}
	}
	return ""
}

// applyHostCurrency prefers the storefront's country currency over a bare
// "$" guess, which DetectCurrency always reads as USD
func applyHostCurrency(page *types.Page, p *types.Product, fallback string) {
	hostCurrency := currencyForHost(page.Host())
	switch {
	case hostCurrency != "" && (p.Currency == "" || p.Currency == "USD"):
		p.Currency = hostCurrency
	case p.Currency == "":
		p.Currency = fallback
	}
}

// htmlText flattens an HTML fragment (product JSON descriptions) to text
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return utils.CleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.CleanText(fragment)
	}
	doc.Find("script, style").Remove()
	return utils.CleanText(doc.Text())
}

// jsonLDProduct maps the page's JSON-LD Product (plus its BreadcrumbList) to a draft
func jsonLDProduct(page *types.Page) *types.Product {
	node := structured.ReadJSONLD(page.Doc)
	if node == nil {
		return nil
	}
	p := productFromJSONLD(node)
	if p.Category == "" {
		p.Category = breadcrumbFromJSONLD(structured.FindJSONLD(page.Doc, "BreadcrumbList"))
	}
	return p
}
