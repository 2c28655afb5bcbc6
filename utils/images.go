package utils

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// imageRewrite replaces a size token in an image URL with its full-size form
type imageRewrite struct {
	hostContains string
	re           *regexp.Regexp
	repl         string
}

var imageRewrites = []imageRewrite{
	// Amazon: 71abc._AC_SX679_.jpg -> 71abc._AC_SL1500_.jpg
	{hostContains: "amazon", re: regexp.MustCompile(`\._[A-Z0-9_,]+_\.(jpe?g|png|webp|gif)`), repl: "._AC_SL1500_.$1"},
	// AliExpress: abc.jpg_220x220q75.jpg_.webp -> abc.jpg
	{re: regexp.MustCompile(`(?i)(\.(?:jpe?g|png|webp))_\d+x\d+[^/?#]*`), repl: "$1"},
	// Shein: abc_thumbnail_405x552.jpg -> abc.jpg
	{re: regexp.MustCompile(`(?i)_thumbnail_\d+x\d*`), repl: ""},
	// Shopify and friends: shirt_300x300_crop_center@2x.jpg -> shirt.jpg
	{re: regexp.MustCompile(`(?i)_(?:\d+x\d*|x\d+)(?:_crop_[a-z]+)?(?:@\dx)?_?(\.(?:jpe?g|png|webp|gif))`), repl: "$1"},
	// eBay: s-l64.jpg -> s-l1600.jpg
	{hostContains: "ebayimg", re: regexp.MustCompile(`/s-l\d+\.(jpe?g|png|webp)`), repl: "/s-l1600.$1"},
}

// sizeQueryParams are query parameters that only select a rendition size
var sizeQueryParams = []string{"width", "height", "w", "h", "_ex", "imwidth", "resize", "size"}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
	".bmp":  true,
}

// imageCDNHosts serve images from extension-less paths
var imageCDNHosts = []string{
	"media-amazon.com",
	"ssl-images-amazon.com",
	"images-amazon.com",
	"alicdn.com",
	"aliexpress-media.com",
	"cdn.shopify.com",
	"ebayimg.com",
	"rakuten.co.jp",
	"rakuten.com",
	"kwcdn.com",
	"ltwebstatic.com",
}

// placeholderTokens name a stand-in image when they make up a file's whole
// base name, optionally padded with dimension or filler tokens
var placeholderTokens = map[string]bool{
	"placeholder": true,
	"spacer":      true,
	"transparent": true,
	"blank":       true,
	"pixel":       true,
	"loading":     true,
	"lazyload":    true,
	"noimage":     true,
	"spinner":     true,
}

var placeholderFiller = map[string]bool{
	"grey":  true,
	"gray":  true,
	"img":   true,
	"image": true,
	"lazy":  true,
	"load":  true,
}

var (
	rePlaceholderSplit = regexp.MustCompile(`[._\-\s]+`)
	rePlaceholderSize  = regexp.MustCompile(`^(?:\d+x\d+|\d+)$`)
)

// isPlaceholderName reports whether the file name at the end of p is a
// placeholder such as spacer.gif or grey-pixel_1x1.png. Product files that
// merely contain such a word, like transparent-phone-case.jpg, are not.
func isPlaceholderName(p string) bool {
	base := strings.ToLower(path.Base(p))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("no-image", "noimage", "no_image", "noimage").Replace(base)
	if base == "" || base == "." || base == "/" {
		return false
	}

	marked := false
	for _, token := range rePlaceholderSplit.Split(base, -1) {
		switch {
		case token == "":
		case placeholderTokens[token]:
			marked = true
		case placeholderFiller[token], rePlaceholderSize.MatchString(token):
		default:
			return false
		}
	}
	return marked
}

// UpgradeImageURL rewrites thumbnail URLs to their highest-resolution form.
// Applying it twice yields the same URL as applying it once.
func UpgradeImageURL(raw string) string {
	current := strings.TrimSpace(raw)
	if current == "" || strings.HasPrefix(strings.ToLower(current), "data:") {
		return current
	}
	for i := 0; i < 5; i++ {
		next := upgradeOnce(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func upgradeOnce(raw string) string {
	s := raw
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	if strings.HasPrefix(s, "http://") {
		s = "https://" + strings.TrimPrefix(s, "http://")
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	host := strings.ToLower(u.Hostname())

	for _, rw := range imageRewrites {
		if rw.hostContains != "" && !strings.Contains(host, rw.hostContains) {
			continue
		}
		u.Path = rw.re.ReplaceAllString(u.Path, rw.repl)
	}
	u.RawPath = ""

	if strings.HasPrefix(u.RawQuery, "imageView2") || strings.Contains(u.RawQuery, "x-oss-process") {
		u.RawQuery = ""
	} else if u.RawQuery != "" {
		q := u.Query()
		removed := false
		for _, key := range sizeQueryParams {
			if _, ok := q[key]; ok {
				q.Del(key)
				removed = true
			}
		}
		if removed {
			u.RawQuery = q.Encode()
		}
	}

	return u.String()
}

// IsValidImageURL reports whether raw is an absolute http(s) URL that points
// at a raster image, either by extension or by a known image CDN host
func IsValidImageURL(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(strings.ToLower(s), "data:") {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	lowerPath := strings.ToLower(u.Path)
	if isPlaceholderName(lowerPath) {
		return false
	}

	if imageExtensions[path.Ext(lowerPath)] {
		return true
	}

	for _, cdn := range imageCDNHosts {
		if host == cdn || strings.HasSuffix(host, "."+cdn) {
			return true
		}
	}
	return false
}
