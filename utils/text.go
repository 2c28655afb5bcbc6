package utils

import (
	"net/url"
	"regexp"
	"strings"

	"product-extractor/internal/types"
)

// titleSpamPhrases are promotional phrases stripped from product titles
var titleSpamPhrases = []string{
	"hot sale",
	"free shipping",
	"premium quality",
	"new arrival",
	"best seller",
	"high quality",
	"top quality",
	"limited offer",
	"big sale",
	"dropshipping",
	"wholesale",
	"factory price",
}

var (
	reTitleSpam  = buildSpamPattern(titleSpamPhrases)
	reBareYear   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	reDigitsRun  = regexp.MustCompile(`\d+`)
	titleTrimSet = " -|,/:;!+*~"
)

func buildSpamPattern(phrases []string) *regexp.Regexp {
	parts := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		parts = append(parts, strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// CleanTitle strips promotional phrases and bare years from a title. Matching
// is on word boundaries, so "Wholesaler" survives while "Wholesale" does not.
func CleanTitle(raw string) string {
	s := reTitleSpam.ReplaceAllString(raw, " ")
	s = reBareYear.ReplaceAllString(s, " ")
	s = CleanText(s)
	return strings.Trim(s, titleTrimSet)
}

// CleanText collapses all whitespace runs into single spaces
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}

var outOfStockMarkers = []string{
	"not available",
	"not in stock",
	"no disponible",
	"no está disponible",
	"pas disponible",
	"nicht lieferbar",
	"nicht auf lager",
	"non disponibile",
	"outofstock",
	"out of stock",
	"out-of-stock",
	"soldout",
	"sold out",
	"discontinued",
	"unavailable",
	"indisponible",
	"non disponible",
	"rupture",
	"épuisé",
	"agotado",
	"ausverkauft",
	"nicht verfügbar",
}

var inStockMarkers = []string{
	"instock",
	"in stock",
	"in-stock",
	"limitedavailability",
	"onlineonly",
	"preorder",
	"en stock",
	"disponible",
	"available",
	"auf lager",
	"left in stock",
}

// ParseAvailability maps schema.org values and storefront wording to a canonical availability
func ParseAvailability(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return types.AvailabilityUnknown
	}
	for _, marker := range outOfStockMarkers {
		if strings.Contains(s, marker) {
			return types.OutOfStock
		}
	}
	for _, marker := range inStockMarkers {
		if strings.Contains(s, marker) {
			return types.InStock
		}
	}
	return types.AvailabilityUnknown
}

var usedMarkers = []string{"used", "like new", "open box", "très bon état", "refurbished", "renewed", "pre-owned", "occasion", "comme neuf", "bon état", "état correct", "reconditionné", "gebraucht", "second hand", "damaged", "usado"}
var newMarkers = []string{"new", "neuf", "neu", "nuevo", "nuovo"}

// ParseCondition maps condition wording to "new", "used" or "" when unknown
func ParseCondition(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, marker := range usedMarkers {
		if strings.Contains(s, marker) {
			return types.ConditionUsed
		}
	}
	for _, marker := range newMarkers {
		if strings.Contains(s, marker) {
			return types.ConditionNew
		}
	}
	return ""
}

// AbsoluteURL resolves ref against base. Protocol-relative references become https.
func AbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return refURL.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// LastNumericSegment returns the last run of at least minDigits digits in the URL path
func LastNumericSegment(rawURL string, minDigits int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	found := ""
	for _, run := range reDigitsRun.FindAllString(u.Path, -1) {
		if len(run) >= minDigits {
			found = run
		}
	}
	return found
}

// LastPathSlug returns the last non-empty path segment without its extension
func LastPathSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if dot := strings.LastIndex(seg, "."); dot > 0 {
			seg = seg[:dot]
		}
		if seg != "" {
			return seg
		}
	}
	return ""
}
