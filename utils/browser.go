package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"product-extractor/internal/types"

	"github.com/chromedp/chromedp"
)

// BrowserClient renders pages in headless Chrome so that storefronts which
// build the product section client-side can still be extracted
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// GetPageContent retrieves the rendered HTML of a page
func (b *BrowserClient) GetPageContent(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.config.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancel()

	var html string

	// Product pages hydrate their gallery and price blocks after load
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}
