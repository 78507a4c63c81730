package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prixtn/pricewatch/internal/product"
	pkgerrors "github.com/prixtn/pricewatch/pkg/errors"
)

func testSupplierConfig() SupplierConfig {
	return SupplierConfig{
		Slug:    "tunisianet",
		Name:    "Tunisianet",
		BaseURL: "https://www.tunisianet.com.tn",
		Fields: FieldSelectors{
			Title:        Cascade{Sel(".product-title")},
			Price:        Cascade{Sel(".price")},
			Reference:    Cascade{Sel(".ref")},
			Description:  Cascade{Sel(".desc")},
			Availability: Cascade{Sel(".stock")},
			Image:        Cascade{Attr("img", "src")},
			ProductURL:   Cascade{Attr("a", "href")},
		},
		DefaultAvailability: product.Backorder,
	}
}

func TestBuildFullListing(t *testing.T) {
	s := listingFromHTML(t, `<article>
		<a href="/pc/asus-x515.html"><h2 class="product-title">PC Portable Asus X515</h2></a>
		<span class="price">1.299,000 DT</span>
		<span class="ref">X515-EJ</span>
		<p class="desc">Référence: X515-EJ  Ecran 15.6" FHD  En stock</p>
		<span class="stock">En stock</span>
		<img src="/img/x515.jpg">
	</article>`)

	b := NewBuilder(testSupplierConfig())
	rec, err := b.Build(s, "pc-portable")
	require.NoError(t, err)

	assert.Equal(t, "PC Portable Asus X515", rec.Title)
	assert.InDelta(t, 1299.0, rec.Price, 0.0001)
	assert.Equal(t, "X515EJ", rec.Reference)
	assert.Equal(t, product.InStock, rec.Availability)
	assert.Equal(t, "pc-portable", rec.Category)
	assert.Equal(t, "tunisianet", rec.Supplier)
	assert.Equal(t, "https://www.tunisianet.com.tn/pc/asus-x515.html", rec.ProductURL)
	assert.Equal(t, "https://www.tunisianet.com.tn/img/x515.jpg", rec.Image)

	assert.NotContains(t, rec.Description, "Référence")
	assert.NotContains(t, rec.Description, "En stock")
	assert.Contains(t, rec.Description, `Ecran 15.6" FHD`)
}

func TestBuildMissingTitleRejects(t *testing.T) {
	s := listingFromHTML(t, `<article>
		<span class="price">199,000 DT</span>
	</article>`)

	b := NewBuilder(testSupplierConfig())
	rec, err := b.Build(s, "pc-portable")

	assert.Nil(t, rec)
	require.Error(t, err)
	var cerr *pkgerrors.CrawlError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, pkgerrors.ErrorTypeValidation, cerr.Type)
}

func TestBuildUnparseablePriceRejects(t *testing.T) {
	s := listingFromHTML(t, `<article>
		<h2 class="product-title">Ecran Samsung</h2>
		<span class="price">Prix sur demande</span>
	</article>`)

	b := NewBuilder(testSupplierConfig())
	rec, err := b.Build(s, "pc-portable")

	assert.Nil(t, rec)
	assert.Error(t, err)
}

func TestBuildOptionalFieldsMayMiss(t *testing.T) {
	s := listingFromHTML(t, `<article>
		<h2 class="product-title">Cable HDMI</h2>
		<span class="price">19,900</span>
	</article>`)

	b := NewBuilder(testSupplierConfig())
	rec, err := b.Build(s, "accessoire")
	require.NoError(t, err)

	assert.Empty(t, rec.Reference)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.Image)
	assert.Empty(t, rec.ProductURL)
	assert.Equal(t, product.Backorder, rec.Availability, "availability miss falls back to the supplier default")
}

func TestBuildAvailabilityOverridesDefault(t *testing.T) {
	s := listingFromHTML(t, `<article>
		<h2 class="product-title">Imprimante HP</h2>
		<span class="price">450,000</span>
		<span class="stock">Rupture de stock</span>
	</article>`)

	b := NewBuilder(testSupplierConfig())
	rec, err := b.Build(s, "imprimante")
	require.NoError(t, err)

	assert.Equal(t, product.OutOfStock, rec.Availability)
}

func TestStripBoilerplate(t *testing.T) {
	got := stripBoilerplate("Réf: AB-12/3  PC complet  En stock  garantie 1 an")
	assert.Equal(t, "PC complet garantie 1 an", got)
}
