package catalog

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/prixtn/pricewatch/logger"
	pkgerrors "github.com/prixtn/pricewatch/pkg/errors"
)

// Router builds the catalog HTTP API.
func Router(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/api/products", handleProducts(svc))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleProducts(svc *Service) http.HandlerFunc {
	log := logger.ForComponent("catalog-api")

	return func(w http.ResponseWriter, r *http.Request) {
		q := Query{
			Category:   r.URL.Query().Get("category"),
			Brand:      r.URL.Query().Get("brand"),
			TitleQuery: r.URL.Query().Get("q"),
			MinPrice:   parseFloat(r.URL.Query().Get("min_price")),
			MaxPrice:   parseFloat(r.URL.Query().Get("max_price")),
			Page:       parseInt(r.URL.Query().Get("page")),
			Limit:      parseInt(r.URL.Query().Get("limit")),
		}

		result, err := svc.Search(r.Context(), q)
		if err != nil {
			var ce *pkgerrors.CrawlError
			if stderrors.As(err, &ce) && ce.Type == pkgerrors.ErrorTypeValidation {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": ce.Message})
				return
			}
			log.Error().Err(err).Msg("Catalog search failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search failed"})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
