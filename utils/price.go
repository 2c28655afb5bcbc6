package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// "10 - 20", "€10–€20", "10 to 20": only the lower bound is kept
	rePriceRange = regexp.MustCompile(`(\d)\s*(?:-|–|—|to|à)\s*\D{0,4}\d`)
	rePriceStrip = regexp.MustCompile(`[^\d.,]`)
	reRating     = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	reCount      = regexp.MustCompile(`(\d[\d.,\s]*)([kKmM]\b)?`)
	reNonDigit   = regexp.MustCompile(`\D`)
	reISOCode    = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|CAD|AUD|CHF|CNY|INR|BRL|MXN|PLN|SEK|NOK|DKK|KRW|TRY|RUB|HKD|SGD|NZD)\b`)
)

// currencySymbols is checked in order; multi-character symbols come first
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"R$", "BRL"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"US $", "USD"},
	{"US$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"￥", "JPY"},
	{"₹", "INR"},
	{"₩", "KRW"},
	{"zł", "PLN"},
	{"₺", "TRY"},
	{"₽", "RUB"},
	{"$", "USD"},
}

// ParsePrice converts a displayed price into a decimal amount.
//
// Every character other than digits, commas and periods is dropped. When both
// separators appear, the last one is the decimal point. A single comma on its
// own is a decimal point (European notation). Digits are kept as written, with
// no rounding to cents. Zero is returned for anything
// unparseable, zero or negative, so a free product and a missing price look
// the same to callers.
func ParsePrice(raw string) float64 {
	d, ok := parsePriceDecimal(raw)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

func parsePriceDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	if loc := rePriceRange.FindStringIndex(s); loc != nil {
		s = s[:loc[0]+1]
	}

	if isNegativeAmount(s) {
		return decimal.Zero, false
	}

	s = rePriceStrip.ReplaceAllString(s, "")
	s = normalizeSeparators(strings.Trim(s, ".,"))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// isNegativeAmount reports a minus sign ahead of the first digit
func isNegativeAmount(s string) bool {
	idx := strings.IndexAny(s, "0123456789")
	if idx <= 0 {
		return false
	}
	prefix := s[:idx]
	return strings.Contains(prefix, "-") || strings.Contains(prefix, "−")
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// CentsToAmount converts an integer minor-unit amount (Shopify, Temu) to a decimal amount
func CentsToAmount(cents int64) float64 {
	if cents <= 0 {
		return 0
	}
	return decimal.New(cents, -2).InexactFloat64()
}

// DetectCurrency guesses an ISO currency code from a price string
func DetectCurrency(raw, fallback string) string {
	if m := reISOCode.FindStringSubmatch(strings.ToUpper(raw)); m != nil {
		return m[1]
	}
	for _, cs := range currencySymbols {
		if strings.Contains(raw, cs.symbol) {
			return cs.code
		}
	}
	return fallback
}

// ParseRating pulls the first number out of strings like "4.5 out of 5 stars"
// or "4,6 sur 5 étoiles"
func ParseRating(raw string) (float64, bool) {
	m := reRating.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseCount parses counts like "1,234 ratings", "(2 345 avis)" or "1.2K sold"
func ParseCount(raw string) int {
	m := reCount.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}

	number := strings.TrimSpace(m[1])
	if suffix := strings.ToLower(m[2]); suffix != "" {
		d, err := decimal.NewFromString(strings.Replace(strings.Trim(number, ".,"), ",", ".", 1))
		if err != nil {
			return 0
		}
		multiplier := decimal.NewFromInt(1000)
		if suffix == "m" {
			multiplier = decimal.NewFromInt(1000000)
		}
		return int(d.Mul(multiplier).IntPart())
	}

	n, err := strconv.Atoi(reNonDigit.ReplaceAllString(number, ""))
	if err != nil {
		return 0
	}
	return n
}
