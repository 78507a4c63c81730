// Package store persists normalized product records into per-supplier
// collections and serves the filtered reads the catalog API merges.
package store

import (
	"context"

	"github.com/prixtn/pricewatch/internal/product"
)

// Filter narrows a per-collection read. Zero values mean "no constraint".
type Filter struct {
	Category   string
	MinPrice   float64
	MaxPrice   float64
	TitleQuery string
}

// ProductStore is the persistence surface of the pipeline and the catalog.
type ProductStore interface {
	// Exists reports whether a record with the same product URL, or the same
	// (title, price) pair, is already persisted for the supplier.
	Exists(ctx context.Context, supplier, title string, price float64, productURL string) (bool, error)

	// Insert persists the record. When the record carries a product URL the
	// write is an upsert keyed on it, so concurrent runs cannot double-insert;
	// the return value reports whether a new document was created.
	Insert(ctx context.Context, rec *product.Record) (bool, error)

	// FindBySupplier returns the supplier's records matching the filter.
	FindBySupplier(ctx context.Context, supplier string, f Filter) ([]product.Record, error)

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}
