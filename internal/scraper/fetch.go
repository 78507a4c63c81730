package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prixtn/pricewatch/helpers"
	"github.com/prixtn/pricewatch/pkg/errors"
	"github.com/prixtn/pricewatch/services/cache"
)

// Fetcher loads one catalog page and returns its UTF-8 HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}

// HTTPFetcher fetches pages over plain HTTP with browser-like headers. When
// a cache service is configured, rate-limit responses set a shared block key
// so concurrent runs against the same supplier back off together.
type HTTPFetcher struct {
	supplier  string
	cacheSvc  cache.CacheService
	rateKey   string
	blockTime time.Duration
}

// NewHTTPFetcher creates a fetcher for one supplier. cacheSvc may be nil.
func NewHTTPFetcher(cfg SupplierConfig, cacheSvc cache.CacheService) *HTTPFetcher {
	return &HTTPFetcher{
		supplier:  cfg.Slug,
		cacheSvc:  cacheSvc,
		rateKey:   cfg.RateLimitKey,
		blockTime: time.Duration(cfg.BlockTime) * time.Second,
	}
}

// Fetch loads the URL unless the supplier is currently blocked.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	if f.cacheSvc != nil && f.rateKey != "" {
		if _, err := f.cacheSvc.Get(f.rateKey); err == nil {
			return nil, errors.NewRateLimit(f.supplier, f.blockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(ctx, url)
	if err != nil {
		if f.cacheSvc != nil && f.rateKey != "" && strings.Contains(err.Error(), "rate limited") {
			f.cacheSvc.Set(f.rateKey, []byte(fmt.Sprintf("%d", int(f.blockTime.Seconds()))), f.blockTime)
		}
		return nil, err
	}

	return body, nil
}

// RenderedFetcher loads pages through a remote headless-Chrome HTTP service
// for supplier themes whose price blocks are JS-rendered.
type RenderedFetcher struct {
	chromeAddr string
	client     *http.Client
}

// NewRenderedFetcher creates a fetcher backed by the rendering service.
func NewRenderedFetcher(chromeAddr string) *RenderedFetcher {
	return &RenderedFetcher{
		chromeAddr: chromeAddr,
		client:     &http.Client{Timeout: 45 * time.Second},
	}
}

type renderRequest struct {
	URL string `json:"url"`
}

// Fetch asks the rendering service for the fully-rendered HTML of the URL.
func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	payload, err := json.Marshal(renderRequest{URL: url})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.chromeAddr+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d for %s", resp.StatusCode, url)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered body: %w", err)
	}

	return bytes.NewReader(html), nil
}

// FetcherFor picks the fetch path for a supplier config.
func FetcherFor(cfg SupplierConfig, cacheSvc cache.CacheService, chromeAddr string) Fetcher {
	if cfg.UseRendered && chromeAddr != "" {
		return NewRenderedFetcher(chromeAddr)
	}
	return NewHTTPFetcher(cfg, cacheSvc)
}
