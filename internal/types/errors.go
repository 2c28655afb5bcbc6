package types

import "errors"

var (
	// ErrUnusablePage is returned when the page handle cannot be read at all
	ErrUnusablePage = errors.New("page is unusable")

	// ErrUnsupportedPlatform is returned when no extractor is registered for a platform
	ErrUnsupportedPlatform = errors.New("no extractor registered for platform")

	// ErrRegistryUnavailable is returned when the selector registry cannot be reached
	ErrRegistryUnavailable = errors.New("selector registry unavailable")

	// ErrImportFailed is returned when the product-creation API rejects a product
	ErrImportFailed = errors.New("product import failed")

	// ErrInvalidSelector is returned when a selector string does not compile
	ErrInvalidSelector = errors.New("invalid selector")
)
