package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Extractions        *prometheus.CounterVec
	ExtractionSeconds  *prometheus.HistogramVec
	FieldMisses        *prometheus.CounterVec
	BatchItems         *prometheus.CounterVec
	SelectorFetches    *prometheus.CounterVec
	SelectorReports    *prometheus.CounterVec
	ActiveSelectorInfo *prometheus.GaugeVec
	Imports            *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_extractions_total",
		Help: "Product extractions by platform and outcome.",
	}, []string{"platform", "outcome"})
	extractionSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "extractor_extraction_seconds",
		Help:    "Time spent extracting one product page.",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})
	fieldMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_field_misses_total",
		Help: "Required fields left empty after every source was tried.",
	}, []string{"platform", "field"})
	batchItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_batch_items_total",
		Help: "Batch items by outcome.",
	}, []string{"outcome"})
	selectorFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_selector_fetches_total",
		Help: "Remote selector registry fetches by outcome.",
	}, []string{"outcome"})
	selectorReports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_selector_reports_total",
		Help: "Broken-selector reports by platform and outcome.",
	}, []string{"platform", "outcome"})
	activeSelectors := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "extractor_selector_snapshot_info",
		Help: "Active selector snapshot (value is always 1).",
	}, []string{"version", "source"})
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extractor_imports_total",
		Help: "Products sent to the import API by outcome.",
	}, []string{"outcome"})

	r.MustRegister(extractions, extractionSeconds, fieldMisses, batchItems, selectorFetches, selectorReports, activeSelectors, imports)
	return &Registry{
		reg:                r,
		Extractions:        extractions,
		ExtractionSeconds:  extractionSeconds,
		FieldMisses:        fieldMisses,
		BatchItems:         batchItems,
		SelectorFetches:    selectorFetches,
		SelectorReports:    selectorReports,
		ActiveSelectorInfo: activeSelectors,
		Imports:            imports,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// The helpers below are no-ops on a nil *Registry so metrics stay optional.

func (r *Registry) ObserveExtraction(platform, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Extractions.WithLabelValues(platform, outcome).Inc()
	r.ExtractionSeconds.WithLabelValues(platform).Observe(elapsed.Seconds())
}

func (r *Registry) FieldMiss(platform, field string) {
	if r == nil {
		return
	}
	r.FieldMisses.WithLabelValues(platform, field).Inc()
}

func (r *Registry) BatchItem(outcome string) {
	if r == nil {
		return
	}
	r.BatchItems.WithLabelValues(outcome).Inc()
}

func (r *Registry) SelectorFetch(outcome string) {
	if r == nil {
		return
	}
	r.SelectorFetches.WithLabelValues(outcome).Inc()
}

func (r *Registry) SelectorReport(platform, outcome string) {
	if r == nil {
		return
	}
	r.SelectorReports.WithLabelValues(platform, outcome).Inc()
}

// SetActiveSnapshot records the selector snapshot in use, replacing the previous one
func (r *Registry) SetActiveSnapshot(version, source string) {
	if r == nil {
		return
	}
	r.ActiveSelectorInfo.Reset()
	r.ActiveSelectorInfo.WithLabelValues(version, source).Set(1)
}

func (r *Registry) Import(outcome string) {
	if r == nil {
		return
	}
	r.Imports.WithLabelValues(outcome).Inc()
}
