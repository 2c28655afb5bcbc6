// Package registry serves selector chains per platform and field, refreshed
// from a remote registry so broken selectors can be patched without a release.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"product-extractor/internal/types"
	"product-extractor/selectors"

	"golang.org/x/time/rate"
)

// Snapshot sources
const (
	SourceDefault = "default"
	SourceRemote  = "remote"
)

// Snapshot is an immutable, versioned selector set. Published snapshots are
// replaced on refresh, never modified.
type Snapshot struct {
	Version   string
	Source    string
	UpdatedAt time.Time
	Selectors map[types.Platform]Table
}

// lookup returns the chain for platform/field, or nil
func (s *Snapshot) lookup(platform types.Platform, field types.Field) []string {
	if s == nil {
		return nil
	}
	return s.Selectors[platform][field]
}

// fetchResponse is the registry GET payload
type fetchResponse struct {
	Success   bool                           `json:"success"`
	Version   string                         `json:"version"`
	Selectors map[string]map[string][]string `json:"selectors"`
	UpdatedAt string                         `json:"updatedAt"`
	Message   string                         `json:"message,omitempty"`
}

// Report is the broken-selector payload posted to {base}/report
type Report struct {
	Platform      string `json:"platform"`
	SelectorType  string `json:"selectorType"`
	CurrentURL    string `json:"currentUrl"`
	UserAgent     string `json:"userAgent"`
	LocalVersion  string `json:"localVersion"`
	RemoteVersion string `json:"remoteVersion"`
	Details       string `json:"details"`
	Timestamp     string `json:"timestamp"`
}

type reportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client talks to the remote selector registry
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      types.Logger
}

// NewClient creates a registry client for baseURL
func NewClient(baseURL string, timeout time.Duration, userAgent string, logger types.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:      logger,
	}
}

// FetchSelectors downloads the current selector snapshot. Selectors that do
// not compile are dropped so one bad entry cannot poison a whole chain.
func (c *Client) FetchSelectors(ctx context.Context) (*Snapshot, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", types.ErrRegistryUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", types.ErrRegistryUnavailable, resp.StatusCode)
	}

	var payload fetchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", types.ErrRegistryUnavailable, err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("%w: %s", types.ErrRegistryUnavailable, payload.Message)
	}

	return c.toSnapshot(&payload), nil
}

func (c *Client) toSnapshot(payload *fetchResponse) *Snapshot {
	snap := &Snapshot{
		Version:   payload.Version,
		Source:    SourceRemote,
		Selectors: make(map[types.Platform]Table, len(payload.Selectors)),
	}
	if updated, err := time.Parse(time.RFC3339, payload.UpdatedAt); err == nil {
		snap.UpdatedAt = updated
	}

	for name, fields := range payload.Selectors {
		platform, ok := types.ParsePlatform(name)
		if !ok {
			c.logger.Debugf("Ignoring selectors for unknown platform %q", name)
			continue
		}
		table := make(Table, len(fields))
		for field, chain := range fields {
			valid := make([]string, 0, len(chain))
			for _, sel := range chain {
				if err := selectors.Validate(sel); err != nil {
					c.logger.Warnf("Dropping remote selector for %s/%s: %v", platform, field, err)
					continue
				}
				valid = append(valid, sel)
			}
			if len(valid) > 0 {
				table[types.Field(field)] = valid
			}
		}
		snap.Selectors[platform] = table
	}
	return snap
}

// Report posts a broken-selector report
func (c *Client) Report(ctx context.Context, report Report) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/report", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	var result reportResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode report response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		return fmt.Errorf("report rejected (status %d): %s", resp.StatusCode, result.Message)
	}
	return nil
}
