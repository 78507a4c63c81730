// Package catalog merges the per-supplier collections into one paginated
// product listing for the web client: each hit is tagged with the brand
// label derived from the collection it came from, concatenated with the
// other suppliers' hits, sorted and paginated in application code.
package catalog

import (
	"context"
	"sort"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/internal/store"
	"github.com/prixtn/pricewatch/pkg/errors"
)

const (
	defaultLimit = 24
	maxLimit     = 100
)

// Query narrows a catalog search. Brand selects a single supplier
// collection; empty reads them all.
type Query struct {
	Category   string
	Brand      string
	TitleQuery string
	MinPrice   float64
	MaxPrice   float64
	Page       int
	Limit      int
}

// Item is one catalog hit: a product record plus its brand label.
type Item struct {
	product.Record
	Brand string `json:"brand"`
}

// Page is one page of merged catalog results.
type Page struct {
	Items []Item `json:"items"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
}

// Service answers catalog queries against the product store.
type Service struct {
	store store.ProductStore
	// brands maps a supplier slug to its display label, in stable order.
	slugs  []string
	brands map[string]string
}

// NewService creates a catalog service over the given suppliers
// (slug -> brand label).
func NewService(st store.ProductStore, brands map[string]string) *Service {
	slugs := make([]string, 0, len(brands))
	for slug := range brands {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	return &Service{store: st, slugs: slugs, brands: brands}
}

// Search reads the selected collections, tags, merges, sorts by price and
// paginates.
func (s *Service) Search(ctx context.Context, q Query) (*Page, error) {
	slugs := s.slugs
	if q.Brand != "" {
		if _, ok := s.brands[q.Brand]; !ok {
			return nil, errors.NewValidation(q.Brand, "unknown brand")
		}
		slugs = []string{q.Brand}
	}

	filter := store.Filter{
		Category:   q.Category,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		TitleQuery: q.TitleQuery,
	}

	var items []Item
	for _, slug := range slugs {
		records, err := s.store.FindBySupplier(ctx, slug, filter)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			items = append(items, Item{Record: rec, Brand: s.brands[slug]})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price < items[j].Price
	})

	page, limit := normalizePaging(q.Page, q.Limit)
	total := len(items)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &Page{
		Items: items[start:end],
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
