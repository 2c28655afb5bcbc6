package types

import (
	"strings"
	"time"
)

// Platform identifies the storefront a product page belongs to
type Platform string

const (
	PlatformAmazon     Platform = "amazon"
	PlatformAliExpress Platform = "aliexpress"
	PlatformRakuten    Platform = "rakuten"
	PlatformShopify    Platform = "shopify"
	PlatformEbay       Platform = "ebay"
	PlatformTemu       Platform = "temu"
	PlatformShein      Platform = "shein"
	PlatformGeneric    Platform = "generic"
)

// AllPlatforms lists every supported platform in detection order
func AllPlatforms() []Platform {
	return []Platform{
		PlatformAmazon,
		PlatformAliExpress,
		PlatformRakuten,
		PlatformShopify,
		PlatformEbay,
		PlatformTemu,
		PlatformShein,
		PlatformGeneric,
	}
}

// ParsePlatform maps a platform name to its Platform value
func ParsePlatform(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "priceminister" {
		return PlatformRakuten, true
	}
	for _, p := range AllPlatforms() {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// Field names a logical product field. Sub-fields of repeated blocks
// (a review's author, an offer's seller) use dotted names.
type Field string

const (
	FieldTitle         Field = "title"
	FieldPrice         Field = "price"
	FieldOriginalPrice Field = "originalPrice"
	FieldCurrency      Field = "currency"
	FieldDescription   Field = "description"
	FieldImages        Field = "images"
	FieldSKU           Field = "sku"
	FieldBrand         Field = "brand"
	FieldCategory      Field = "category"
	FieldSeller        Field = "seller"
	FieldCondition     Field = "condition"
	FieldAvailability  Field = "availability"
	FieldRating        Field = "rating"
	FieldReviewCount   Field = "reviewCount"

	FieldVariants       Field = "variants"
	FieldVariantLabel   Field = "variants.label"
	FieldVariantOption  Field = "variants.option"
	FieldVariantValue   Field = "variants.value"
	FieldVariantImage   Field = "variants.image"
	FieldVariantID      Field = "variants.id"
	FieldVariantBlocked Field = "variants.unavailable"

	FieldOffers         Field = "offers"
	FieldOfferPrice     Field = "offers.price"
	FieldOfferSeller    Field = "offers.seller"
	FieldOfferCondition Field = "offers.condition"

	FieldReviews       Field = "reviews"
	FieldReviewAuthor  Field = "reviews.author"
	FieldReviewRating  Field = "reviews.rating"
	FieldReviewBody    Field = "reviews.body"
	FieldReviewDate    Field = "reviews.date"
	FieldReviewImages  Field = "reviews.images"
	FieldReviewCountry Field = "reviews.country"
)

// Availability values
const (
	InStock             = "in_stock"
	OutOfStock          = "out_of_stock"
	AvailabilityUnknown = "unknown"
)

// Condition values
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Variant is one (axis, value) pair discovered on the page
type Variant struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Image     string `json:"image,omitempty"`
	Available bool   `json:"available"`
	ID        string `json:"id,omitempty"`
}

// Offer is one seller's listing on a marketplace page
type Offer struct {
	Price     float64 `json:"price"`
	Seller    string  `json:"seller"`
	Condition string  `json:"condition"`
}

// Review is a single customer review
type Review struct {
	Author  string   `json:"author"`
	Rating  float64  `json:"rating"`
	Body    string   `json:"body"`
	Date    string   `json:"date"`
	Images  []string `json:"images"`
	Country string   `json:"country"`
}

// Product is the canonical, platform-independent product record
type Product struct {
	Platform        Platform  `json:"platform"`
	SourceURL       string    `json:"sourceUrl"`
	Title           string    `json:"title"`
	Price           float64   `json:"price"`
	OriginalPrice   *float64  `json:"originalPrice"`
	Currency        string    `json:"currency"`
	Description     string    `json:"description"`
	Images          []string  `json:"images"`
	SKU             string    `json:"sku"`
	Brand           string    `json:"brand"`
	Category        string    `json:"category"`
	Seller          string    `json:"seller"`
	Condition       string    `json:"condition"`
	Availability    string    `json:"availability"`
	Rating          *float64  `json:"rating"`
	ReviewCount     int       `json:"reviewCount"`
	Variants        []Variant `json:"variants"`
	Offers          []Offer   `json:"offers"`
	Reviews         []Review  `json:"reviews"`
	ExtractedAt     time.Time `json:"extractedAt"`
	SelectorVersion string    `json:"selectorVersion,omitempty"`
}

// BatchItem is the outcome of extracting one page inside a batch
type BatchItem struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Platform Platform `json:"platform,omitempty"`
	Product  *Product `json:"product,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// BatchResult represents the complete batch extraction result
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Config holds the configuration for the extractor
type Config struct {
	RequestDelay          time.Duration `mapstructure:"request_delay"`
	MaxRetries            int           `mapstructure:"max_retries"`
	Timeout               time.Duration `mapstructure:"timeout"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests"`
	UseHeadlessBrowser    bool          `mapstructure:"use_headless_browser"`
	UserAgent             string        `mapstructure:"user_agent"`
	ItemTimeout           time.Duration `mapstructure:"item_timeout"`
	LogLevel              string        `mapstructure:"log_level"`

	Registry RegistryConfig `mapstructure:"registry"`
	Import   ImportConfig   `mapstructure:"import"`
	Server   ServerConfig   `mapstructure:"server"`
}

// RegistryConfig configures the remote selector registry
type RegistryConfig struct {
	URL              string        `mapstructure:"url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	ReportsPerMinute int           `mapstructure:"reports_per_minute"`
}

// ImportConfig configures the product-creation API client
type ImportConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DefaultUserAgent is sent on every outbound request
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:          1 * time.Second,
		MaxRetries:            3,
		Timeout:               30 * time.Second,
		MaxConcurrentRequests: 5,
		UseHeadlessBrowser:    false,
		UserAgent:             DefaultUserAgent,
		ItemTimeout:           20 * time.Second,
		LogLevel:              "info",
		Registry: RegistryConfig{
			Timeout:          5 * time.Second,
			RefreshInterval:  15 * time.Minute,
			ReportsPerMinute: 10,
		},
		Import: ImportConfig{
			Timeout: 15 * time.Second,
		},
		Server: ServerConfig{
			Port:           "8080",
			Environment:    "development",
			AllowedOrigins: []string{"chrome-extension://*"},
		},
	}
}

// SelectorSource supplies the ordered selector list for a platform field
type SelectorSource interface {
	Selectors(platform Platform, field Field) []string
	Version() string
}

// ReportContext describes where a selector chain came up empty
type ReportContext struct {
	URL     string
	Details string
}

// SelectorReporter receives broken-selector notifications. Implementations
// must not block the caller.
type SelectorReporter interface {
	ReportBroken(platform Platform, field Field, rc ReportContext)
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
