package scraper

import (
	"strconv"
	"strings"

	"github.com/prixtn/pricewatch/config"
	"github.com/prixtn/pricewatch/helpers"
	"github.com/prixtn/pricewatch/internal/product"
)

// The four supplier sites, each as a config value consumed by the shared
// engine. Two run PrestaShop themes, one Magento, one an older PrestaShop
// with a JS-rendered price widget; the cascades encode each site's quirks
// plus fallbacks for its known theme variants.

// Tunisianet returns the config for tunisianet.com.tn (PrestaShop).
func Tunisianet(baseURL string) SupplierConfig {
	return SupplierConfig{
		Slug:    "tunisianet",
		Name:    "Tunisianet",
		BaseURL: baseURL,
		CategoryPaths: map[string]string{
			"pc-portable": "/301-pc-portable-tunisie",
			"smartphone":  "/596-smartphone-tunisie",
			"tablette":    "/389-tablette-tactile-tunisie",
			"imprimante":  "/313-imprimante-tunisie",
		},
		PageParam: "page",
		Grid: []string{
			"#js-product-list div.products article.product-miniature",
			"div.products article",
		},
		Fields: FieldSelectors{
			Title: Cascade{
				Sel("h2.product-title a"),
				Attr("h2.product-title a", "title"),
				Sel(".product-title"),
			},
			Price: Cascade{
				Sel("div.product-price-and-shipping span.price"),
				Sel("span.price"),
			},
			Reference: Cascade{
				Sel("span.product-reference"),
				Attr("article.product-miniature", "data-id-product"),
			},
			Description: Cascade{
				Sel("div.product-description-short"),
				Sel("div.listds"),
			},
			Availability: Cascade{
				Sel("span.product-availability"),
				Sel("div.product-availabilities span"),
			},
			Image: Cascade{
				Attr("img", "data-full-size-image-url"),
				Attr("img", "data-src"),
				Attr("img", "src"),
			},
			ProductURL: Cascade{
				Attr("h2.product-title a", "href"),
				Attr("a.thumbnail", "href"),
			},
		},
		Next:                []string{"a[rel='next']", "li.pagination_next a"},
		DisabledClass:       "disabled",
		DefaultAvailability: product.Backorder,
		RateLimitKey:        "tunisianet_rate_limited",
		BlockTime:           300,
	}
}

// Mytek returns the config for mytek.tn (Magento 2).
func Mytek(baseURL string) SupplierConfig {
	return SupplierConfig{
		Slug:    "mytek",
		Name:    "Mytek",
		BaseURL: baseURL,
		CategoryPaths: map[string]string{
			"pc-portable": "/informatique/ordinateurs-portables.html",
			"smartphone":  "/telephonie-tunisie/smartphone-tunisie.html",
			"tablette":    "/informatique/tablettes-tactiles.html",
			"imprimante":  "/impression/imprimantes.html",
		},
		PageParam: "p",
		Grid: []string{
			"ol.products.list.items.product-items li.item.product.product-item",
			"li.product-item",
		},
		Fields: FieldSelectors{
			Title: Cascade{
				Sel("strong.product-item-name a"),
				Sel("a.product-item-link"),
			},
			Price: Cascade{
				Sel("span.special-price span.price"),
				Sel("span.price-wrapper span.price"),
				Sel("span.price"),
			},
			Reference: Cascade{
				Sel("div.product-item-sku"),
				Sel("div.sku span.value"),
			},
			Description: Cascade{
				Sel("div.product-item-description"),
			},
			Availability: Cascade{
				Sel("div.stock.available span"),
				Sel("div.stock span"),
				Sel("p.availability span"),
			},
			Image: Cascade{
				Attr("img.product-image-photo", "src"),
				Attr("img", "data-original"),
			},
			ProductURL: Cascade{
				Attr("a.product-item-link", "href"),
				Attr("a.product-item-photo", "href"),
			},
		},
		Next:                []string{"li.pages-item-next a.action.next", "a.action.next"},
		DisabledClass:       "disabled",
		DefaultAvailability: product.Backorder,
		RateLimitKey:        "mytek_rate_limited",
		BlockTime:           300,
	}
}

// Spacenet returns the config for spacenet.tn (PrestaShop).
func Spacenet(baseURL string) SupplierConfig {
	return SupplierConfig{
		Slug:    "spacenet",
		Name:    "SpaceNet",
		BaseURL: baseURL,
		CategoryPaths: map[string]string{
			"pc-portable": "/pc-portable-tunisie",
			"smartphone":  "/smartphone-mobile-tunisie",
			"tablette":    "/tablette-tunisie",
			"imprimante":  "/imprimante-tunisie",
		},
		PageParam: "page",
		Grid: []string{
			"div.products.row article.product-miniature",
			"div#js-product-list article",
		},
		Fields: FieldSelectors{
			Title: Cascade{
				Sel("h3.product-title a"),
				Sel("h2.product-title a"),
				Attr("a.product-thumbnail", "title"),
			},
			Price: Cascade{
				Sel("span.price.sale-price"),
				Sel("div.product-price-and-shipping span.price"),
				Sel("span.price"),
			},
			Reference: Cascade{
				Sel("span.product-reference"),
				// The listing URL's last segment starts with the product id
				// ("/pc-portable/12345-hp-15.html").
				Candidate{Selector: "h3.product-title a", Attr: "href", Transform: func(link string) string {
					seg := link[strings.LastIndex(link, "/")+1:]
					id, err := helpers.GetSplitPart(seg, "-", 0)
					if err != nil {
						return ""
					}
					if _, err := strconv.Atoi(id); err != nil {
						return ""
					}
					return id
				}},
			},
			Description: Cascade{
				Sel("div.product-description-short"),
			},
			Availability: Cascade{
				Sel("span.product-availability"),
				Sel("div.availability span"),
			},
			Image: Cascade{
				Attr("img", "data-src"),
				Attr("img", "src"),
			},
			ProductURL: Cascade{
				Attr("h3.product-title a", "href"),
				Attr("h2.product-title a", "href"),
				Attr("a.product-thumbnail", "href"),
			},
		},
		Next:                []string{"a.next.js-search-link", "a[rel='next']"},
		DisabledClass:       "disabled",
		DefaultAvailability: product.Backorder,
		RateLimitKey:        "spacenet_rate_limited",
		BlockTime:           300,
	}
}

// Scoop returns the config for scoop.com.tn (older PrestaShop; the price
// block is JS-rendered, so pages go through the rendering service when one
// is configured).
func Scoop(baseURL string) SupplierConfig {
	return SupplierConfig{
		Slug:    "scoop",
		Name:    "Scoop",
		BaseURL: baseURL,
		CategoryPaths: map[string]string{
			"pc-portable": "/16-ordinateurs-portables",
			"smartphone":  "/132-smartphones",
			"tablette":    "/40-tablettes",
			"imprimante":  "/54-imprimantes",
		},
		PageParam: "p",
		Grid: []string{
			"ul.product_list li.ajax_block_product",
			"div.product-container",
		},
		Fields: FieldSelectors{
			Title: Cascade{
				Sel("h5[itemprop='name'] a"),
				Attr("a.product-name", "title"),
				Sel("a.product-name"),
			},
			Price: Cascade{
				Sel("span.price.product-price"),
				Sel("div.content_price span.price"),
				Sel("span.price"),
			},
			Reference: Cascade{
				Sel("span.product-reference"),
			},
			Description: Cascade{
				Sel("p.product-desc"),
			},
			Availability: Cascade{
				Sel("span.availability span"),
				// schema.org/InStock or /OutOfStock; the classifier keys on it.
				Attr("link[itemprop='availability']", "href"),
			},
			Image: Cascade{
				Attr("img.replace-2x", "src"),
				Attr("img", "src"),
			},
			ProductURL: Cascade{
				Attr("h5[itemprop='name'] a", "href"),
				Attr("a.product_img_link", "href"),
			},
		},
		Next:                []string{"li#pagination_next a", "a[rel='next']"},
		DisabledClass:       "disabled",
		DefaultAvailability: product.Backorder,
		UseRendered:         true,
		RateLimitKey:        "scoop_rate_limited",
		BlockTime:           300,
	}
}

// Suppliers builds every supplier config from the application config,
// keyed by slug.
func Suppliers(cfg config.Config) map[string]SupplierConfig {
	list := []SupplierConfig{
		Tunisianet(cfg.TunisianetURL),
		Mytek(cfg.MytekURL),
		Spacenet(cfg.SpacenetURL),
		Scoop(cfg.ScoopURL),
	}

	suppliers := make(map[string]SupplierConfig, len(list))
	for _, s := range list {
		suppliers[s.Slug] = s
	}
	return suppliers
}
