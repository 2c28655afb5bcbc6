package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"product-extractor/adapters"
	"product-extractor/internal/types"
	"product-extractor/metrics"
	"product-extractor/registry"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Extractor turns a parsed page of one platform into a canonical product
type Extractor interface {
	Platform() types.Platform
	Extract(ctx context.Context, page *types.Page) (*types.Product, error)
}

// Fetcher loads pages for URL-based extraction
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (*types.Page, error)
	Close()
}

// Service dispatches pages to the platform extractors and runs batches
type Service struct {
	config     *types.Config
	logger     types.Logger
	extractors map[types.Platform]Extractor
	registry   *registry.Registry
	metrics    *metrics.Registry
	fetcher    Fetcher
	shopify    *adapters.ShopifyAdapter
}

// Option configures a Service
type Option func(*Service)

// WithRegistry shares an existing selector registry
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithMetrics records extraction outcomes
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFetcher enables URL-based extraction
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithExtractor overrides the extractor for its platform
func WithExtractor(e Extractor) Option {
	return func(s *Service) { s.extractors[e.Platform()] = e }
}

// NewService creates a service with one extractor per platform
func NewService(config *types.Config, logger types.Logger, opts ...Option) *Service {
	s := &Service{
		config:     config,
		logger:     logger,
		extractors: make(map[types.Platform]Extractor),
	}
	overrides := make(map[types.Platform]Extractor)
	for _, opt := range opts {
		opt(s)
	}
	for p, e := range s.extractors {
		overrides[p] = e
	}

	if s.registry == nil {
		var client *registry.Client
		if config.Registry.URL != "" {
			client = registry.NewClient(config.Registry.URL, config.Registry.Timeout, config.UserAgent, logger)
		}
		s.registry = registry.New(client, config.Registry, config.UserAgent, logger, registry.WithMetrics(s.metrics))
	}

	deps := adapters.Deps{
		Source:   s.registry,
		Reporter: s.registry,
		Logger:   logger,
		OnMiss: func(p types.Platform, f types.Field) {
			s.metrics.FieldMiss(string(p), string(f))
		},
	}
	s.shopify = adapters.NewShopifyAdapter(deps)
	for _, e := range []Extractor{
		adapters.NewAmazonAdapter(deps),
		adapters.NewAliExpressAdapter(deps),
		adapters.NewRakutenAdapter(deps),
		s.shopify,
		adapters.NewEbayAdapter(deps),
		adapters.NewTemuAdapter(deps),
		adapters.NewSheinAdapter(deps),
		adapters.NewGenericAdapter(deps),
	} {
		s.extractors[e.Platform()] = e
	}
	for p, e := range overrides {
		s.extractors[p] = e
	}
	return s
}

// Registry returns the shared selector registry
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Extract detects the page's platform and extracts it
func (s *Service) Extract(ctx context.Context, page *types.Page) (*types.Product, error) {
	if !page.Usable() {
		return nil, types.ErrUnusablePage
	}
	return s.ExtractAs(ctx, DetectPlatform(page), page)
}

// ExtractAs extracts a page with the extractor of an explicit platform
func (s *Service) ExtractAs(ctx context.Context, platform types.Platform, page *types.Page) (*types.Product, error) {
	extractor, ok := s.extractors[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedPlatform, platform)
	}

	if err := s.registry.Load(ctx); err != nil {
		s.logger.Debugf("Using %s selectors: %v", s.registry.Version(), err)
	}

	start := time.Now()
	product, err := extractor.Extract(ctx, page)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveExtraction(string(platform), "error", elapsed)
		return nil, fmt.Errorf("failed to extract %s page %s: %w", platform, page.URL, err)
	}

	product.ExtractedAt = time.Now().UTC()
	product.SelectorVersion = s.registry.Version()
	s.metrics.ObserveExtraction(string(platform), "success", elapsed)
	s.logger.Debugf("Extracted %s product %q from %s in %v", platform, product.Title, page.URL, elapsed)
	return product, nil
}

// ExtractBatch extracts many pages with bounded concurrency. Each item runs
// under its own timeout and a failed item never aborts the batch.
func (s *Service) ExtractBatch(ctx context.Context, pages []*types.Page) *types.BatchResult {
	return s.runBatch(ctx, len(pages), func(i int) string {
		if pages[i] == nil {
			return ""
		}
		return pages[i].URL
	}, func(ctx context.Context, i int) (*types.Page, error) {
		return pages[i], nil
	})
}

// ExtractURLs fetches and extracts each URL through the configured fetcher
func (s *Service) ExtractURLs(ctx context.Context, urls []string) (*types.BatchResult, error) {
	if s.fetcher == nil {
		return nil, errors.New("no page fetcher configured")
	}
	return s.runBatch(ctx, len(urls), func(i int) string {
		return urls[i]
	}, func(ctx context.Context, i int) (*types.Page, error) {
		return s.fetcher.FetchPage(ctx, urls[i])
	}), nil
}

// DiscoverProductURLs lists the product pages linked from a storefront
// collection page
func (s *Service) DiscoverProductURLs(ctx context.Context, collectionURL string) ([]string, error) {
	if s.fetcher == nil {
		return nil, errors.New("no page fetcher configured")
	}
	page, err := s.fetcher.FetchPage(ctx, collectionURL)
	if err != nil {
		return nil, err
	}
	return s.shopify.ProductURLs(page)
}

func (s *Service) runBatch(ctx context.Context, n int, urlOf func(int) string, load func(context.Context, int) (*types.Page, error)) *types.BatchResult {
	startTime := time.Now()
	s.logger.Infof("Starting batch of %d pages at %v", n, startTime.Format("15:04:05.000"))

	items := make([]types.BatchItem, n)
	g, gctx := errgroup.WithContext(ctx)
	limit := s.config.MaxConcurrentRequests
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			items[i] = s.batchItem(gctx, urlOf(i), func(ctx context.Context) (*types.Page, error) {
				return load(ctx, i)
			})
			return nil
		})
	}
	_ = g.Wait()

	result := &types.BatchResult{Items: items}
	for _, item := range items {
		if item.Error != "" {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	s.logger.Infof("Batch completed in %v: %d succeeded, %d failed", time.Since(startTime), result.Succeeded, result.Failed)
	return result
}

func (s *Service) batchItem(ctx context.Context, url string, load func(context.Context) (*types.Page, error)) types.BatchItem {
	item := types.BatchItem{ID: uuid.NewString(), URL: url}

	timeout := s.config.ItemTimeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().ItemTimeout
	}
	itemCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		platform types.Platform
		product  *types.Product
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		page, err := load(itemCtx)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		if !page.Usable() {
			done <- outcome{err: types.ErrUnusablePage}
			return
		}
		platform := DetectPlatform(page)
		product, err := s.ExtractAs(itemCtx, platform, page)
		done <- outcome{platform: platform, product: product, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-itemCtx.Done():
		res.err = fmt.Errorf("item timed out after %v: %w", timeout, itemCtx.Err())
	}

	item.Platform = res.platform
	if res.err != nil {
		s.logger.Warnf("Batch item %s failed: %v", url, res.err)
		s.metrics.BatchItem("error")
		item.Error = res.err.Error()
		return item
	}
	s.metrics.BatchItem("success")
	item.Product = res.product
	return item
}

// ExtractToJSON fetches and extracts the URLs and saves the batch to a JSON file
func (s *Service) ExtractToJSON(ctx context.Context, urls []string, filename string) error {
	result, err := s.ExtractURLs(ctx, urls)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}

	s.logger.Infof("Results saved to %s", filename)
	return nil
}

// Close drains pending selector reports and releases the fetcher
func (s *Service) Close() {
	s.registry.Close()
	if s.fetcher != nil {
		s.fetcher.Close()
	}
}

func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
