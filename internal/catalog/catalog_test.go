package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/internal/store"
)

// memStore serves canned records per supplier and applies Filter the way
// the real store does, so Search sees realistic inputs.
type memStore struct {
	records map[string][]product.Record
	err     error
}

func (m *memStore) Exists(ctx context.Context, supplier, title string, price float64, productURL string) (bool, error) {
	return false, nil
}

func (m *memStore) Insert(ctx context.Context, rec *product.Record) (bool, error) {
	m.records[rec.Supplier] = append(m.records[rec.Supplier], *rec)
	return true, nil
}

func (m *memStore) FindBySupplier(ctx context.Context, supplier string, f store.Filter) ([]product.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Record
	for _, rec := range m.records[supplier] {
		if f.Category != "" && rec.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && rec.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && rec.Price > f.MaxPrice {
			continue
		}
		if f.TitleQuery != "" && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(f.TitleQuery)) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) Close(ctx context.Context) error { return nil }

func rec(supplier, title, category string, price float64) product.Record {
	return product.Record{
		Title:        title,
		Price:        price,
		Category:     category,
		Supplier:     supplier,
		Availability: product.InStock,
		ProductURL:   "https://" + supplier + ".tn/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
	}
}

func testBrands() map[string]string {
	return map[string]string{
		"tunisianet": "Tunisianet",
		"mytek":      "Mytek",
	}
}

func seededStore() *memStore {
	return &memStore{records: map[string][]product.Record{
		"tunisianet": {
			rec("tunisianet", "PC Asus X515", "pc-portable", 1299),
			rec("tunisianet", "PC Lenovo V15", "pc-portable", 999),
			rec("tunisianet", "Samsung Galaxy A55", "smartphone", 1150),
		},
		"mytek": {
			rec("mytek", "PC Asus X515", "pc-portable", 1349),
			rec("mytek", "Imprimante HP Deskjet", "imprimante", 189),
		},
	}}
}

func TestSearchMergesAndSortsByPrice(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	page, err := svc.Search(context.Background(), Query{})
	require.NoError(t, err)

	require.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 5)
	for i := 1; i < len(page.Items); i++ {
		assert.LessOrEqual(t, page.Items[i-1].Price, page.Items[i].Price)
	}
	assert.Equal(t, "Imprimante HP Deskjet", page.Items[0].Title)
	assert.Equal(t, "Mytek", page.Items[0].Brand)
}

func TestSearchBrandSelectsOneCollection(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	page, err := svc.Search(context.Background(), Query{Brand: "mytek"})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	for _, item := range page.Items {
		assert.Equal(t, "Mytek", item.Brand)
	}
}

func TestSearchUnknownBrand(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	_, err := svc.Search(context.Background(), Query{Brand: "jumia"})
	assert.Error(t, err)
}

func TestSearchCategoryAndPriceFilter(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	page, err := svc.Search(context.Background(), Query{
		Category: "pc-portable",
		MinPrice: 1000,
		MaxPrice: 1300,
	})
	require.NoError(t, err)

	require.Equal(t, 1, page.Total)
	assert.Equal(t, "PC Asus X515", page.Items[0].Title)
	assert.Equal(t, "Tunisianet", page.Items[0].Brand)
}

func TestSearchPagination(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	page, err := svc.Search(context.Background(), Query{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Len(t, page.Items, 2)
}

func TestSearchPageBeyondEnd(t *testing.T) {
	svc := NewService(seededStore(), testBrands())

	page, err := svc.Search(context.Background(), Query{Page: 40, Limit: 10})
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Total)
}

func TestNormalizePaging(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, defaultLimit},
		{-3, -1, 1, defaultLimit},
		{2, 50, 2, 50},
		{1, 1000, 1, maxLimit},
	}
	for _, tc := range cases {
		page, limit := normalizePaging(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantLimit, limit)
	}
}
