package scraper

import (
	"strings"

	"github.com/prixtn/pricewatch/internal/product"
)

// ClassifyAvailability maps a free-text stock-status string onto the closed
// availability set. Matching is case-insensitive substring. The out-of-stock
// labels embed the in-stock ones as substrings ("Indisponible", "unavailable"),
// so they are checked first. Anything unmatched falls back to Backorder,
// mirroring how the supplier sites label listings that can still be ordered.
func ClassifyAvailability(text string) product.Availability {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "indisponible"), strings.Contains(t, "unavailable"),
		strings.Contains(t, "epuis"), strings.Contains(t, "épuis"),
		strings.Contains(t, "outofstock"), strings.Contains(t, "rupture"):
		return product.OutOfStock
	case strings.Contains(t, "en stock"), strings.Contains(t, "instock"),
		strings.Contains(t, "available"), strings.Contains(t, "disponible"):
		return product.InStock
	case strings.Contains(t, "commande"), strings.Contains(t, "order"):
		return product.Backorder
	default:
		return product.Backorder
	}
}
