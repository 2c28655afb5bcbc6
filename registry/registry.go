package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"product-extractor/internal/types"
	"product-extractor/metrics"

	"golang.org/x/time/rate"
)

// Registry hands out selector chains. Readers see an immutable snapshot
// through an atomic pointer; Load swaps in a new one at most once per
// refresh interval.
type Registry struct {
	client          *Client
	defaults        *Snapshot
	current         atomic.Pointer[Snapshot]
	refreshInterval time.Duration
	userAgent       string
	logger          types.Logger
	metrics         *metrics.Registry

	mu          sync.Mutex
	lastAttempt time.Time

	reportBudget  *rate.Limiter
	reportTimeout time.Duration
	reports       sync.WaitGroup
}

// Option configures a Registry
type Option func(*Registry)

// WithMetrics records fetch and report outcomes
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithDefaults replaces the built-in selector tables
func WithDefaults(s *Snapshot) Option {
	return func(r *Registry) { r.defaults = s }
}

// New creates a registry. A nil client serves the built-in defaults only.
func New(client *Client, cfg types.RegistryConfig, userAgent string, logger types.Logger, opts ...Option) *Registry {
	perMinute := cfg.ReportsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := &Registry{
		client:          client,
		defaults:        Defaults(),
		refreshInterval: cfg.RefreshInterval,
		userAgent:       userAgent,
		logger:          logger,
		reportBudget:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		reportTimeout:   timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(r.defaults)
	r.metrics.SetActiveSnapshot(r.defaults.Version, r.defaults.Source)
	return r
}

// Load refreshes the snapshot from the remote registry when the refresh
// interval has elapsed. Concurrent callers share one fetch. On failure the
// last-known-good snapshot stays active and the error is returned for logging.
func (r *Registry) Load(ctx context.Context) error {
	if r.client == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastAttempt.IsZero() && (r.refreshInterval <= 0 || time.Since(r.lastAttempt) < r.refreshInterval) {
		return nil
	}
	r.lastAttempt = time.Now()

	snap, err := r.client.FetchSelectors(ctx)
	if err != nil {
		r.metrics.SelectorFetch("error")
		active := r.Snapshot()
		r.logger.Warnf("Selector registry unavailable, keeping %s selectors (version %s): %v", active.Source, active.Version, err)
		return fmt.Errorf("failed to refresh selectors: %w", err)
	}

	r.current.Store(snap)
	r.metrics.SelectorFetch("success")
	r.metrics.SetActiveSnapshot(snap.Version, snap.Source)
	r.logger.Infof("Loaded remote selectors version %s", snap.Version)
	return nil
}

// Snapshot returns the active snapshot. Callers must treat it as read-only.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Selectors returns the active chain for platform/field, falling back to the
// built-in chain when the remote snapshot has none
func (r *Registry) Selectors(platform types.Platform, field types.Field) []string {
	if chain := r.Snapshot().lookup(platform, field); len(chain) > 0 {
		return chain
	}
	return r.defaults.lookup(platform, field)
}

// Version returns the active snapshot version
func (r *Registry) Version() string {
	return r.Snapshot().Version
}

// ReportBroken notifies the registry that a selector chain came up empty.
// It never blocks: reports over budget are dropped and delivery happens in
// the background.
func (r *Registry) ReportBroken(platform types.Platform, field types.Field, rc types.ReportContext) {
	if r.client == nil {
		return
	}
	if !r.reportBudget.Allow() {
		r.metrics.SelectorReport(string(platform), "dropped")
		r.logger.Debugf("Dropping broken-selector report for %s/%s: over budget", platform, field)
		return
	}

	report := Report{
		Platform:      string(platform),
		SelectorType:  string(field),
		CurrentURL:    rc.URL,
		UserAgent:     r.userAgent,
		LocalVersion:  r.defaults.Version,
		RemoteVersion: r.Version(),
		Details:       rc.Details,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	r.reports.Add(1)
	go func() {
		defer r.reports.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.reportTimeout)
		defer cancel()

		if err := r.client.Report(ctx, report); err != nil {
			r.metrics.SelectorReport(report.Platform, "error")
			r.logger.Debugf("Broken-selector report for %s/%s failed: %v", platform, field, err)
			return
		}
		r.metrics.SelectorReport(report.Platform, "sent")
	}()
}

// Close waits for in-flight reports
func (r *Registry) Close() {
	r.reports.Wait()
}
