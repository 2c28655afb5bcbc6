package utils

import (
	"context"
	"fmt"

	"product-extractor/internal/types"
)

// PageFetcher loads product pages on behalf of the host (CLI or batch job).
// The extraction core never fetches pages itself.
type PageFetcher struct {
	config        *types.Config
	logger        types.Logger
	httpClient    *HTTPClient
	browserClient *BrowserClient
}

// NewPageFetcher creates a fetcher with initialized HTTP and browser clients
func NewPageFetcher(config *types.Config, logger types.Logger) *PageFetcher {
	return &PageFetcher{
		config:        config,
		logger:        logger,
		httpClient:    NewHTTPClient(config, logger),
		browserClient: NewBrowserClient(config, logger),
	}
}

// GetPageContent retrieves the HTML content of a page using either the HTTP
// client or the headless browser, depending on UseHeadlessBrowser
func (f *PageFetcher) GetPageContent(ctx context.Context, url string) (string, error) {
	if f.config.UseHeadlessBrowser {
		return f.browserClient.GetPageContent(ctx, url)
	}

	body, err := f.httpClient.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchPage downloads and parses a page
func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*types.Page, error) {
	html, err := f.GetPageContent(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return types.NewPage(url, html)
}

// Close cleans up resources
func (f *PageFetcher) Close() {
	if f.httpClient != nil {
		f.httpClient.Close()
	}
}
