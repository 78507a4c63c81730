package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prixtn/pricewatch/config"
	"github.com/prixtn/pricewatch/internal/scraper"
	"github.com/prixtn/pricewatch/internal/store"
	"github.com/prixtn/pricewatch/logger"
	"github.com/prixtn/pricewatch/services/cache"
	"github.com/prixtn/pricewatch/services/publisher"
	"github.com/prixtn/pricewatch/services/worker"
)

func main() {
	godotenv.Load()

	logger.Init()
	log := logger.Default

	supplierFlag := flag.String("supplier", "", "run only this supplier (slug)")
	categoryFlag := flag.String("category", "", "run only this category label")
	startPageFlag := flag.Int("start-page", 0, "page number to start from (overrides START_PAGE)")
	pageCapFlag := flag.Int("page-cap", 0, "maximum pages per run (overrides PAGE_CAP)")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *startPageFlag > 0 {
		cfg.StartPage = *startPageFlag
	}
	if *pageCapFlag > 0 {
		cfg.PageCap = *pageCapFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// An unreachable store is the one unrecoverable setup failure.
	st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the product store")
	}
	defer st.Close(context.Background())

	suppliers := scraper.Suppliers(cfg)

	slugs := make([]string, 0, len(suppliers))
	for slug := range suppliers {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	if err := st.EnsureIndexes(ctx, slugs); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure dedup indexes")
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
	}

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		pub = publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
		defer pub.Close()
		log.Info().Str("addr", cfg.RedisAddr).Str("stream", cfg.RedisStream).Msg("Connected to Redis")
	}

	metrics := scraper.NewMetrics()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metrics)
	}

	engine := scraper.NewEngine(suppliers, st, pub, cacheSvc, cfg.ChromeAddr, metrics, cfg.PageCap)

	jobs, err := buildJobs(suppliers, *supplierFlag, *categoryFlag, cfg.StartPage)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid crawl selection")
	}

	log.Info().
		Int("job_count", len(jobs)).
		Str("environment", cfg.Environment).
		Msg("Starting crawl worker")

	w := worker.NewWorker(ctx, jobs, engine.Crawl, pub, cfg.CrawlInterval)
	if err := w.Start(); err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError("worker", err, "Worker exited with error")
	}

	log.Info().Msg("Shutting down")
}

// buildJobs selects the crawl jobs: one supplier+category when both flags
// are given, every configured pair otherwise.
func buildJobs(suppliers map[string]scraper.SupplierConfig, supplier, category string, startPage int) ([]worker.Job, error) {
	if supplier != "" {
		cfg, ok := suppliers[supplier]
		if !ok {
			return nil, errors.New("unknown supplier: " + supplier)
		}
		if category != "" {
			if _, ok := cfg.CategoryPaths[category]; !ok {
				return nil, errors.New("supplier " + supplier + " has no category " + category)
			}
			return []worker.Job{{Supplier: supplier, Category: category, StartPage: startPage}}, nil
		}
		return supplierJobs(cfg, startPage), nil
	}

	var jobs []worker.Job
	for _, cfg := range suppliers {
		jobs = append(jobs, supplierJobs(cfg, startPage)...)
	}
	return jobs, nil
}

func supplierJobs(cfg scraper.SupplierConfig, startPage int) []worker.Job {
	categories := make([]string, 0, len(cfg.CategoryPaths))
	for category := range cfg.CategoryPaths {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	jobs := make([]worker.Job, 0, len(categories))
	for _, category := range categories {
		jobs = append(jobs, worker.Job{Supplier: cfg.Slug, Category: category, StartPage: startPage})
	}
	return jobs
}

func serveMetrics(addr string, metrics *scraper.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server stopped: %v", err)
	}
}
