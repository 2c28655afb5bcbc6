// Package normalize merges per-source product drafts and sanitises the result
// into the canonical record. Everything here is pure and synchronous.
package normalize

import (
	"math"
	"strings"

	"product-extractor/internal/types"
	"product-extractor/utils"
)

// Limits caps the size of a platform's output
type Limits struct {
	Images      int
	Description int
	Variants    int
	Offers      int
	Reviews     int
}

const (
	maxVariants     = 100
	maxOffers       = 20
	maxReviews      = 20
	maxReviewImages = 10
)

var platformLimits = map[types.Platform]Limits{
	types.PlatformAmazon:     {Images: 10, Description: 5000},
	types.PlatformAliExpress: {Images: 20, Description: 3000},
	types.PlatformRakuten:    {Images: 10, Description: 3000},
	types.PlatformShopify:    {Images: 30, Description: 5000},
	types.PlatformEbay:       {Images: 24, Description: 3000},
	types.PlatformTemu:       {Images: 20, Description: 2000},
	types.PlatformShein:      {Images: 20, Description: 2000},
	types.PlatformGeneric:    {Images: 10, Description: 1000},
}

// LimitsFor returns the caps for a platform. Unknown platforms get the generic caps.
func LimitsFor(platform types.Platform) Limits {
	l, ok := platformLimits[platform]
	if !ok {
		l = platformLimits[types.PlatformGeneric]
	}
	l.Variants = maxVariants
	l.Offers = maxOffers
	l.Reviews = maxReviews
	return l
}

// Merge combines two drafts field by field. The primary (structured) value
// wins whenever it is non-empty; images are unioned primary-first.
func Merge(primary, secondary *types.Product) *types.Product {
	if primary == nil {
		primary = &types.Product{}
	}
	if secondary == nil {
		secondary = &types.Product{}
	}

	out := &types.Product{
		Platform:     firstPlatform(primary.Platform, secondary.Platform),
		SourceURL:    firstString(primary.SourceURL, secondary.SourceURL),
		Title:        firstString(primary.Title, secondary.Title),
		Price:        firstPositive(primary.Price, secondary.Price),
		Currency:     firstString(primary.Currency, secondary.Currency),
		Description:  firstString(primary.Description, secondary.Description),
		SKU:          firstString(primary.SKU, secondary.SKU),
		Brand:        firstString(primary.Brand, secondary.Brand),
		Category:     firstString(primary.Category, secondary.Category),
		Seller:       firstString(primary.Seller, secondary.Seller),
		Condition:    firstString(primary.Condition, secondary.Condition),
		Availability: firstAvailability(primary.Availability, secondary.Availability),
		ReviewCount:  int(firstPositive(float64(primary.ReviewCount), float64(secondary.ReviewCount))),
	}

	out.OriginalPrice = primary.OriginalPrice
	if out.OriginalPrice == nil || *out.OriginalPrice <= 0 {
		out.OriginalPrice = secondary.OriginalPrice
	}
	out.Rating = primary.Rating
	if out.Rating == nil {
		out.Rating = secondary.Rating
	}

	out.Images = append(append([]string{}, primary.Images...), secondary.Images...)

	out.Variants = primary.Variants
	if len(out.Variants) == 0 {
		out.Variants = secondary.Variants
	}
	out.Offers = primary.Offers
	if len(out.Offers) == 0 {
		out.Offers = secondary.Offers
	}
	out.Reviews = primary.Reviews
	if len(out.Reviews) == 0 {
		out.Reviews = secondary.Reviews
	}
	return out
}

func firstString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPlatform(a, b types.Platform) types.Platform {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b float64) float64 {
	if a > 0 && !math.IsNaN(a) {
		return a
	}
	return b
}

func firstAvailability(a, b string) string {
	if a != "" && a != types.AvailabilityUnknown {
		return a
	}
	if b != "" {
		return b
	}
	return a
}

// Images runs the image pipeline: resolve against base, upgrade to full
// resolution, drop invalid URLs, dedup in first-seen order, then cap.
// max <= 0 means no cap.
func Images(urls []string, base string, max int) []string {
	upgraded := make([]string, 0, len(urls))
	for _, raw := range urls {
		u := utils.UpgradeImageURL(utils.AbsoluteURL(base, raw))
		if utils.IsValidImageURL(u) {
			upgraded = append(upgraded, u)
		}
	}
	out := Dedupe(upgraded)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Dedupe removes repeated entries, keeping the first occurrence. Never nil.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Finalize sanitises a merged draft into the canonical record. The input is
// not modified.
func Finalize(p *types.Product, limits Limits) *types.Product {
	if p == nil {
		p = &types.Product{}
	}
	out := *p

	out.Title = utils.CleanTitle(p.Title)
	if out.Title == "" {
		out.Title = utils.CleanText(p.Title)
	}
	out.Description = utils.Truncate(utils.CleanText(p.Description), limits.Description)
	out.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	out.SKU = strings.TrimSpace(p.SKU)
	out.Brand = utils.CleanText(p.Brand)
	out.Category = utils.CleanText(p.Category)
	out.Seller = utils.CleanText(p.Seller)

	out.Price = clampNonNegative(p.Price)
	out.OriginalPrice = nil
	if p.OriginalPrice != nil && clampNonNegative(*p.OriginalPrice) > 0 {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	out.Rating = nil
	if p.Rating != nil && !math.IsNaN(*p.Rating) {
		v := ClampRating(*p.Rating)
		out.Rating = &v
	}
	if out.ReviewCount < 0 {
		out.ReviewCount = 0
	}

	switch p.Condition {
	case types.ConditionNew, types.ConditionUsed:
	default:
		out.Condition = utils.ParseCondition(p.Condition)
	}
	switch p.Availability {
	case types.InStock, types.OutOfStock, types.AvailabilityUnknown:
	case "":
		out.Availability = types.AvailabilityUnknown
	default:
		out.Availability = utils.ParseAvailability(p.Availability)
	}

	out.Images = Images(p.Images, p.SourceURL, limits.Images)
	out.Variants = variants(p.Variants, p.SourceURL, limits.Variants)
	out.Offers = offers(p.Offers, limits.Offers)
	out.Reviews = reviews(p.Reviews, p.SourceURL, limits.Reviews)
	return &out
}

// ClampRating bounds a rating to [0, 5]
func ClampRating(v float64) float64 {
	return math.Max(0, math.Min(5, v))
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func variants(in []types.Variant, base string, max int) []types.Variant {
	out := make([]types.Variant, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v.Type = utils.CleanText(v.Type)
		v.Value = utils.CleanText(v.Value)
		v.ID = strings.TrimSpace(v.ID)
		if v.Value == "" {
			continue
		}
		key := strings.ToLower(v.Type + "\x00" + v.Value)
		if seen[key] {
			continue
		}
		seen[key] = true

		if v.Image != "" {
			img := utils.UpgradeImageURL(utils.AbsoluteURL(base, v.Image))
			if !utils.IsValidImageURL(img) {
				img = ""
			}
			v.Image = img
		}
		out = append(out, v)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func offers(in []types.Offer, max int) []types.Offer {
	out := make([]types.Offer, 0, len(in))
	for _, o := range in {
		o.Price = clampNonNegative(o.Price)
		o.Seller = utils.CleanText(o.Seller)
		if o.Condition != types.ConditionNew && o.Condition != types.ConditionUsed {
			o.Condition = utils.ParseCondition(o.Condition)
		}
		if o.Price == 0 && o.Seller == "" {
			continue
		}
		out = append(out, o)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func reviews(in []types.Review, base string, max int) []types.Review {
	out := make([]types.Review, 0, len(in))
	for _, r := range in {
		r.Author = utils.CleanText(r.Author)
		r.Body = utils.CleanText(r.Body)
		r.Date = utils.CleanText(r.Date)
		r.Country = utils.CleanText(r.Country)
		r.Rating = ClampRating(clampNonNegative(r.Rating))
		r.Images = Images(r.Images, base, maxReviewImages)
		if r.Body == "" && r.Rating == 0 {
			continue
		}
		out = append(out, r)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
