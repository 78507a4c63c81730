package scraper

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/prixtn/pricewatch/logger"
	"github.com/prixtn/pricewatch/pkg/errors"
)

// Walker drives the pagination loop for one supplier+category run:
// load page -> wait for the product grid -> extract listings -> find the
// next control -> repeat or terminate. It is the only place in the pipeline
// with retry/backoff semantics; everything below it recovers locally or
// skips.
type Walker struct {
	cfg     SupplierConfig
	fetcher Fetcher
	builder *Builder
	gate    *Gate
	metrics *Metrics
	log     *logger.Logger

	// Tunables, set to defaults by NewWalker.
	MaxRetries     int
	Backoff        time.Duration
	EmptyPageLimit int
	PageCap        int
	GridAttempts   int
	GridDelay      time.Duration
	Limiter        *rate.Limiter
}

// NewWalker creates a walker with default tunables. metrics may be nil.
func NewWalker(cfg SupplierConfig, fetcher Fetcher, builder *Builder, gate *Gate, metrics *Metrics, pageCap int) *Walker {
	return &Walker{
		cfg:            cfg,
		fetcher:        fetcher,
		builder:        builder,
		gate:           gate,
		metrics:        metrics,
		log:            logger.ForSupplier(cfg.Slug),
		MaxRetries:     3,
		Backoff:        2 * time.Second,
		EmptyPageLimit: 5,
		PageCap:        pageCap,
		GridAttempts:   3,
		GridDelay:      2 * time.Second,
		Limiter:        rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Run walks the catalog starting at startPage until termination. Reaching
// the end of results, the empty-page threshold or the page cap are all
// normal terminations. Retryable load failures consume the retry budget;
// non-retryable ones (parse failures, rate-limit blocks) end the run
// immediately. The run is cancellable between pages via ctx.
func (w *Walker) Run(ctx context.Context, sess *Session, startPage int) error {
	page := startPage
	consecErrors := 0
	consecEmpty := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sess.Stats.PagesVisited >= w.PageCap {
			w.log.Info().Int("page_cap", w.PageCap).Msg("Page cap reached, stopping")
			return nil
		}
		if w.Limiter != nil {
			if err := w.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		url, err := w.cfg.PageURL(sess.Category, page)
		if err != nil {
			return errors.NewConfiguration("cannot build page URL", err)
		}

		// LoadingPage
		doc, err := w.loadPage(ctx, url)
		if err != nil {
			w.metrics.IncError(w.cfg.Slug, errorType(err))
			if !errors.Retryable(err) {
				// Parse failures and rate-limit blocks do not heal within
				// the backoff window.
				return err
			}
			consecErrors++
			if consecErrors > w.MaxRetries {
				return errors.NewNetwork(w.cfg.Slug, "retry budget exhausted at "+url, err)
			}
			w.log.Warn().Err(err).Int("attempt", consecErrors).Str("url", url).Msg("Page load failed, retrying")
			if err := sleepCtx(ctx, w.Backoff*time.Duration(consecErrors)); err != nil {
				return err
			}
			continue
		}
		consecErrors = 0
		sess.Stats.PagesVisited++
		w.metrics.IncPage(w.cfg.Slug)

		// WaitingForGrid
		listings, doc := w.awaitGrid(ctx, url, doc)

		// ExtractingListings
		if listings == nil || listings.Length() == 0 {
			consecEmpty++
			w.log.Debug().Int("page", page).Int("consecutive_empty", consecEmpty).Msg("No listings on page")
			if consecEmpty >= w.EmptyPageLimit {
				w.log.Info().Int("empty_pages", consecEmpty).Msg("Empty-page threshold reached, stopping")
				return nil
			}
		} else {
			consecEmpty = 0
			w.extractListings(ctx, listings, sess)
		}

		// Paginating
		if !w.hasNext(doc) {
			w.log.Info().Int("page", page).Msg("No next-page control, stopping")
			return nil
		}
		page++
	}
}

// loadPage fetches and parses one catalog page. Fetch failures that are not
// already typed are navigation errors, the retryable kind.
func (w *Walker) loadPage(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := w.fetcher.Fetch(ctx, url)
	if err != nil {
		var ce *errors.CrawlError
		if stderrors.As(err, &ce) {
			return nil, err
		}
		return nil, errors.NewNetwork(w.cfg.Slug, "page load failed for "+url, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing(w.cfg.Slug, "HTML parse failed for "+url, err)
	}
	return doc, nil
}

// errorType resolves the metrics label for a load error.
func errorType(err error) string {
	var ce *errors.CrawlError
	if stderrors.As(err, &ce) {
		return string(ce.Type)
	}
	return string(errors.ErrorTypeNetwork)
}

// awaitGrid tries the grid-root candidates until one yields listing handles.
// For rendered pages the grid may materialize late, so the page is reloaded
// a bounded number of times before giving up; plain HTTP pages are served
// complete and get a single pass.
func (w *Walker) awaitGrid(ctx context.Context, url string, doc *goquery.Document) (*goquery.Selection, *goquery.Document) {
	for attempt := 0; ; attempt++ {
		for _, sel := range w.cfg.Grid {
			if nodes := doc.Find(sel); nodes.Length() > 0 {
				return nodes, doc
			}
		}
		if !w.cfg.UseRendered || attempt >= w.GridAttempts {
			return nil, doc
		}
		if err := sleepCtx(ctx, w.GridDelay); err != nil {
			return nil, doc
		}
		fresh, err := w.loadPage(ctx, url)
		if err != nil {
			return nil, doc
		}
		doc = fresh
	}
}

// extractListings runs the record builder and the dedup gate over every
// listing handle on the page. A bad listing never aborts the page.
func (w *Walker) extractListings(ctx context.Context, listings *goquery.Selection, sess *Session) {
	listings.Each(func(i int, s *goquery.Selection) {
		rec, err := w.builder.Build(s, sess.Category)
		if err != nil {
			sess.Stats.Rejected++
			w.metrics.IncRejected(w.cfg.Slug)
			w.log.Debug().Err(err).Int("listing", i).Msg("Listing rejected")
			return
		}

		admitted, err := w.gate.Admit(ctx, rec, sess)
		if err != nil {
			sess.Stats.Errors++
			w.metrics.IncError(w.cfg.Slug, "persistence")
			w.log.Error().Err(err).Str("title", rec.Title).Msg("Failed to persist record")
			return
		}
		if admitted {
			sess.Stats.Saved++
			w.metrics.IncSaved(w.cfg.Slug)
		} else {
			sess.Stats.Duplicates++
			w.metrics.IncDuplicate(w.cfg.Slug)
		}
	})
}

// hasNext reports whether an enabled next-page control is present.
func (w *Walker) hasNext(doc *goquery.Document) bool {
	for _, sel := range w.cfg.Next {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		if w.cfg.DisabledClass != "" && nodes.HasClass(w.cfg.DisabledClass) {
			continue
		}
		if _, disabled := nodes.First().Attr("disabled"); disabled {
			continue
		}
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
