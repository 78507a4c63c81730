package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/internal/scraper"
)

// memStore is an in-memory scraper.Store mirroring the real upsert
// semantics: keyed by product URL, insert reports false on a hit.
type memStore struct {
	mu      sync.Mutex
	records map[string]product.Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]product.Record)}
}

func (m *memStore) Exists(ctx context.Context, supplier, title string, price float64, productURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if productURL != "" {
		if _, ok := m.records[productURL]; ok {
			return true, nil
		}
	}
	for _, rec := range m.records {
		if rec.Supplier == supplier && rec.Title == title && rec.Price == price {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(ctx context.Context, rec *product.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ProductURL]; ok {
		return false, nil
	}
	m.records[rec.ProductURL] = *rec
	return true, nil
}

const (
	syntheticListing = `<article class="product-item">
		<a class="product-link" href="/p/%d.html"><h2 class="product-title">%s</h2></a>
		<span class="price">%s</span>
	</article>`
	syntheticTitleless = `<article class="product-item">
		<a class="product-link" href="/p/999.html"></a>
		<span class="price">100,000</span>
	</article>`
)

// syntheticCatalog serves a 3-page catalog: page 1 has two valid listings,
// page 2 one valid and one without a title, page 3 is empty with no next
// control.
func syntheticCatalog(t *testing.T) *httptest.Server {
	t.Helper()

	page := func(next bool, listings string) string {
		nextHTML := ""
		if next {
			nextHTML = `<a class="next" href="#">Suivant</a>`
		}
		return fmt.Sprintf(`<html><body><div class="products">%s</div>%s</body></html>`, listings, nextHTML)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, page(true,
				fmt.Sprintf(syntheticListing, 1, "PC Portable Asus X515", "1.299,000 DT")+
					fmt.Sprintf(syntheticListing, 2, "PC Portable Lenovo V15", "999,000 DT")))
		case "2":
			fmt.Fprint(w, page(true,
				fmt.Sprintf(syntheticListing, 3, "PC Portable HP 250", "1.450,000 DT")+
					syntheticTitleless))
		default:
			fmt.Fprint(w, page(false, ""))
		}
	})
	return httptest.NewServer(mux)
}

func syntheticSupplier(baseURL string) scraper.SupplierConfig {
	return scraper.SupplierConfig{
		Slug:          "synthetic",
		Name:          "Synthetic",
		BaseURL:       baseURL,
		CategoryPaths: map[string]string{"pc-portable": "/catalog"},
		PageParam:     "page",
		Grid:          []string{".products .product-item"},
		Fields: scraper.FieldSelectors{
			Title:      scraper.Cascade{scraper.Sel(".product-title")},
			Price:      scraper.Cascade{scraper.Sel(".price")},
			ProductURL: scraper.Cascade{scraper.Attr(".product-link", "href")},
		},
		Next:                []string{"a.next"},
		DisabledClass:       "disabled",
		DefaultAvailability: product.Backorder,
	}
}

func TestCrawlSyntheticCatalog(t *testing.T) {
	srv := syntheticCatalog(t)
	defer srv.Close()

	sup := syntheticSupplier(srv.URL)
	st := newMemStore()
	engine := scraper.NewEngine(
		map[string]scraper.SupplierConfig{sup.Slug: sup},
		st, nil, nil, "", nil, 100,
	)

	stats, err := engine.Crawl(context.Background(), "synthetic", "pc-portable", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.PagesVisited)
	assert.Equal(t, 3, stats.Saved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t, 0, stats.Errors)
	assert.Len(t, st.records, 3)

	rec, ok := st.records[srv.URL+"/p/1.html"]
	require.True(t, ok)
	assert.Equal(t, "PC Portable Asus X515", rec.Title)
	assert.InDelta(t, 1299.0, rec.Price, 0.0001)
	assert.Equal(t, "synthetic", rec.Supplier)
	assert.Equal(t, "pc-portable", rec.Category)
}

func TestCrawlSyntheticCatalogRerunSkipsPersisted(t *testing.T) {
	srv := syntheticCatalog(t)
	defer srv.Close()

	sup := syntheticSupplier(srv.URL)
	st := newMemStore()

	// Pre-populate the store with page 1's two records, as a previous run
	// would have left them.
	for _, rec := range []product.Record{
		{Title: "PC Portable Asus X515", Price: 1299, Supplier: "synthetic", Category: "pc-portable", ProductURL: srv.URL + "/p/1.html"},
		{Title: "PC Portable Lenovo V15", Price: 999, Supplier: "synthetic", Category: "pc-portable", ProductURL: srv.URL + "/p/2.html"},
	} {
		inserted, err := st.Insert(context.Background(), &rec)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	engine := scraper.NewEngine(
		map[string]scraper.SupplierConfig{sup.Slug: sup},
		st, nil, nil, "", nil, 100,
	)

	stats, err := engine.Crawl(context.Background(), "synthetic", "pc-portable", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.PagesVisited)
	assert.Equal(t, 1, stats.Saved, "only page 2's valid listing is new")
	assert.Equal(t, 2, stats.Duplicates, "page 1's listings hit the persisted store")
	assert.Equal(t, 1, stats.Rejected)
	assert.Len(t, st.records, 3)
}
