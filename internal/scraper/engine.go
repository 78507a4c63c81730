package scraper

import (
	"context"
	"fmt"

	"github.com/prixtn/pricewatch/logger"
	"github.com/prixtn/pricewatch/services/cache"
	"github.com/prixtn/pricewatch/services/publisher"
)

// Engine wires fetcher, builder, gate and walker for the configured
// suppliers and runs one supplier+category crawl at a time. Concurrent
// crawls of different supplier/category pairs are safe; each run owns its
// session and targets a disjoint collection.
type Engine struct {
	suppliers  map[string]SupplierConfig
	store      Store
	pub        publisher.Publisher
	cacheSvc   cache.CacheService
	chromeAddr string
	metrics    *Metrics
	pageCap    int
}

// NewEngine creates the crawl engine. pub, cacheSvc and metrics may be nil;
// chromeAddr may be empty to disable rendered fetching.
func NewEngine(suppliers map[string]SupplierConfig, store Store, pub publisher.Publisher, cacheSvc cache.CacheService, chromeAddr string, metrics *Metrics, pageCap int) *Engine {
	return &Engine{
		suppliers:  suppliers,
		store:      store,
		pub:        pub,
		cacheSvc:   cacheSvc,
		chromeAddr: chromeAddr,
		metrics:    metrics,
		pageCap:    pageCap,
	}
}

// Suppliers returns the configured supplier slugs.
func (e *Engine) Suppliers() map[string]SupplierConfig {
	return e.suppliers
}

// Crawl runs one supplier+category crawl and returns its counters.
func (e *Engine) Crawl(ctx context.Context, supplier, category string, startPage int) (Stats, error) {
	cfg, ok := e.suppliers[supplier]
	if !ok {
		return Stats{}, fmt.Errorf("unknown supplier %q", supplier)
	}
	if _, ok := cfg.CategoryPaths[category]; !ok {
		return Stats{}, fmt.Errorf("supplier %s has no category %q", supplier, category)
	}

	sess := NewSession(supplier, category)
	fetcher := FetcherFor(cfg, e.cacheSvc, e.chromeAddr)
	builder := NewBuilder(cfg)
	gate := NewGate(e.store, e.pub)
	walker := NewWalker(cfg, fetcher, builder, gate, e.metrics, e.pageCap)

	log := logger.ForRun(supplier, category)
	log.Info().Int("start_page", startPage).Msg("Starting crawl")

	err := walker.Run(ctx, sess, startPage)

	log.Info().
		Int("pages_visited", sess.Stats.PagesVisited).
		Int("saved", sess.Stats.Saved).
		Int("duplicates", sess.Stats.Duplicates).
		Int("rejected", sess.Stats.Rejected).
		Int("errors", sess.Stats.Errors).
		Msg("Crawl finished")

	return sess.Stats, err
}
