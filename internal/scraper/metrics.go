package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl pipeline.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesVisited    *prometheus.CounterVec
	RecordsSaved    *prometheus.CounterVec
	Duplicates      *prometheus.CounterVec
	Rejected        *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_pages_visited_total",
			Help: "Catalog pages visited per supplier.",
		},
		[]string{"supplier"},
	)
	saved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_records_saved_total",
			Help: "Product records admitted and persisted per supplier.",
		},
		[]string{"supplier"},
	)
	duplicates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_duplicates_skipped_total",
			Help: "Records skipped by the deduplication gate per supplier.",
		},
		[]string{"supplier"},
	)
	rejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_records_rejected_total",
			Help: "Listings rejected for missing title or price per supplier.",
		},
		[]string{"supplier"},
	)
	errs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_errors_total",
			Help: "Pipeline errors per supplier and type.",
		},
		[]string{"supplier", "error_type"},
	)

	registry.MustRegister(pages, saved, duplicates, rejected, errs)

	return &Metrics{
		Registry:     registry,
		PagesVisited: pages,
		RecordsSaved: saved,
		Duplicates:   duplicates,
		Rejected:     rejected,
		Errors:       errs,
	}
}

// IncPage increments the visited-pages counter.
func (m *Metrics) IncPage(supplier string) {
	if m == nil {
		return
	}
	m.PagesVisited.WithLabelValues(supplier).Inc()
}

// IncSaved increments the saved-records counter.
func (m *Metrics) IncSaved(supplier string) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues(supplier).Inc()
}

// IncDuplicate increments the duplicate-skip counter.
func (m *Metrics) IncDuplicate(supplier string) {
	if m == nil {
		return
	}
	m.Duplicates.WithLabelValues(supplier).Inc()
}

// IncRejected increments the rejected-listings counter.
func (m *Metrics) IncRejected(supplier string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(supplier).Inc()
}

// IncError increments the error counter for a type.
func (m *Metrics) IncError(supplier, errorType string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(supplier, errorType).Inc()
}
