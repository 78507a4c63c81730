package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/pkg/errors"
)

// Description blocks on the supplier sites repeat the reference code and the
// stock banner; both are stripped so the description carries only free text.
var (
	referenceBoilerplateRe = regexp.MustCompile(`(?i)r[ée]f(?:[ée]rence)?\s*:?\s*[A-Za-z0-9./-]*`)
	stockBoilerplateRe     = regexp.MustCompile(`(?i)(en stock|sur commande|[ée]puis[ée]e?|rupture de stock|disponible)`)
	spaceRunRe             = regexp.MustCompile(`\s{2,}`)
)

// Builder composes the field extractor, the price normalizer and the
// availability classifier into one normalized record per listing handle.
type Builder struct {
	cfg SupplierConfig
}

// NewBuilder creates a builder for one supplier.
func NewBuilder(cfg SupplierConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build extracts one product record from a listing handle. Supplier and
// category come from the run parameters, never from page content. A missing
// title or an unparseable price rejects the listing.
func (b *Builder) Build(s *goquery.Selection, category string) (*product.Record, error) {
	title, ok := ExtractField(s, b.cfg.Fields.Title)
	if !ok {
		return nil, errors.NewValidation(b.cfg.Slug, "listing has no title")
	}

	price, ok := ExtractPrice(s, b.cfg.Fields.Price)
	if !ok {
		return nil, errors.NewValidation(b.cfg.Slug, "listing has no usable price: "+title)
	}

	rec := &product.Record{
		Title:        title,
		Price:        price,
		Category:     category,
		Supplier:     b.cfg.Slug,
		Availability: b.cfg.DefaultAvailability,
	}

	if ref, ok := ExtractField(s, b.cfg.Fields.Reference); ok {
		rec.Reference = product.NormalizeReference(ref)
	}

	if desc, ok := ExtractField(s, b.cfg.Fields.Description); ok {
		rec.Description = stripBoilerplate(desc)
	}

	if avail, ok := ExtractField(s, b.cfg.Fields.Availability); ok {
		rec.Availability = ClassifyAvailability(avail)
	}

	if img, ok := ExtractField(s, b.cfg.Fields.Image); ok {
		rec.Image = b.cfg.ResolveURL(img)
	}

	if link, ok := ExtractField(s, b.cfg.Fields.ProductURL); ok {
		rec.ProductURL = b.cfg.ResolveURL(link)
	}

	return rec, nil
}

func stripBoilerplate(text string) string {
	text = referenceBoilerplateRe.ReplaceAllString(text, "")
	text = stockBoilerplateRe.ReplaceAllString(text, "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
