package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/prixtn/pricewatch/internal/product"
)

// Transform mutates a raw extracted string. Returning "" marks the candidate
// as missed so the cascade falls through to the next one.
type Transform func(string) string

// Candidate is one selector the extractor tries for a field. An empty
// Selector targets the listing handle itself; an empty Attr reads the text
// content.
type Candidate struct {
	Selector  string
	Attr      string
	Transform Transform
}

// Cascade is an ordered fallback list of candidates; the first candidate
// producing a non-empty value wins. Supplier markup drifts release-to-release
// and across categories, so every field is extracted through a cascade.
type Cascade []Candidate

// Sel is shorthand for a text-content candidate.
func Sel(selector string) Candidate {
	return Candidate{Selector: selector}
}

// Attr is shorthand for an attribute candidate.
func Attr(selector, attr string) Candidate {
	return Candidate{Selector: selector, Attr: attr}
}

// FieldSelectors groups the per-field cascades of one supplier.
type FieldSelectors struct {
	Title        Cascade
	Price        Cascade
	Reference    Cascade
	Description  Cascade
	Availability Cascade
	Image        Cascade
	ProductURL   Cascade
}

// SupplierConfig describes one supplier site as a data value. The crawl
// engine is shared; only these values differ between the four suppliers.
type SupplierConfig struct {
	// Slug names the target collection and the brand label derived from it.
	Slug string
	// Name is the display name stored on records ("Tunisianet").
	Name string
	// BaseURL is the site origin relative links are resolved against.
	BaseURL string
	// CategoryPaths maps a crawl category label to the site path serving it.
	CategoryPaths map[string]string
	// PageParam is the query parameter carrying the page number.
	PageParam string
	// Grid lists the selector candidates yielding the listing handles.
	Grid []string
	// Fields holds the per-field extraction cascades.
	Fields FieldSelectors
	// Next lists the "next page" control candidates.
	Next []string
	// DisabledClass marks the next control as inert when present.
	DisabledClass string
	// DefaultAvailability is used when the availability cascade misses.
	DefaultAvailability product.Availability
	// UseRendered routes page loads through the rendering service.
	UseRendered bool
	// RateLimitKey and BlockTime drive the cross-process block cache.
	RateLimitKey string
	BlockTime    int
}

// PageURL builds the catalog URL for (category, page).
func (c SupplierConfig) PageURL(category string, page int) (string, error) {
	path, ok := c.CategoryPaths[category]
	if !ok {
		return "", fmt.Errorf("supplier %s has no category %q", c.Slug, category)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL for %s: %w", c.Slug, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid category path %q: %w", path, err)
	}
	u = u.ResolveReference(ref)

	q := u.Query()
	q.Set(c.PageParam, fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResolveURL resolves a possibly-relative link against the supplier origin.
func (c SupplierConfig) ResolveURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
