// Package importer sends extracted products to the product-creation API.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"product-extractor/internal/types"
	"product-extractor/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Result is the import API's answer for one product
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client posts products to the import API
type Client struct {
	httpClient  *http.Client
	url         string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      types.Logger
	metrics     *metrics.Registry
	backoff     func(attempt int) time.Duration
}

// NewClient creates an import client from the import configuration
func NewClient(cfg types.ImportConfig, logger types.Logger, m *metrics.Registry) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		url:         cfg.URL,
		apiKey:      cfg.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:      logger,
		metrics:     m,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*500) * time.Millisecond
		},
	}
}

// Import creates one product. Server errors are retried with the same
// Idempotency-Key so a retried request never creates a duplicate.
func (c *Client) Import(ctx context.Context, product *types.Product) (*Result, error) {
	if product == nil {
		return nil, fmt.Errorf("%w: nil product", types.ErrImportFailed)
	}

	body, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}
	key := uuid.NewString()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		result, retry, err := c.post(ctx, body, key)
		if err == nil {
			c.metrics.Import("success")
			c.logger.Infof("Imported %s product %q as %s", product.Platform, product.Title, result.ID)
			return result, nil
		}
		lastErr = err
		if !retry {
			break
		}

		c.logger.Warnf("Import attempt %d for %s failed: %v", attempt, product.SourceURL, err)
		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.metrics.Import("error")
	return nil, lastErr
}

// post sends one attempt and reports whether a failure is worth retrying
func (c *Client) post(ctx context.Context, body []byte, key string) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", types.ErrImportFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read response: %v", types.ErrImportFailed, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("%w: status %d", types.ErrImportFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, false, fmt.Errorf("%w: status %d, body: %s", types.ErrImportFailed, resp.StatusCode, string(payload))
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Success {
		return nil, false, fmt.Errorf("%w: %s", types.ErrImportFailed, result.Message)
	}
	return &result, false, nil
}

// ImportBatch imports every successful item of a batch and returns how many
// were created. Failures are logged and skipped.
func (c *Client) ImportBatch(ctx context.Context, batch *types.BatchResult) int {
	imported := 0
	for _, item := range batch.Items {
		if item.Product == nil {
			continue
		}
		if _, err := c.Import(ctx, item.Product); err != nil {
			c.logger.Warnf("Failed to import %s: %v", item.URL, err)
			continue
		}
		imported++
	}
	c.logger.Infof("Imported %d of %d products", imported, batch.Succeeded)
	return imported
}
