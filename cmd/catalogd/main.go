package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prixtn/pricewatch/config"
	"github.com/prixtn/pricewatch/internal/catalog"
	"github.com/prixtn/pricewatch/internal/scraper"
	"github.com/prixtn/pricewatch/internal/store"
	"github.com/prixtn/pricewatch/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the product store")
	}
	defer st.Close(context.Background())

	brands := make(map[string]string)
	for slug, sup := range scraper.Suppliers(cfg) {
		brands[slug] = sup.Name
	}

	svc := catalog.NewService(st, brands)

	srv := &http.Server{
		Addr:    cfg.CatalogAddr,
		Handler: catalog.Router(svc),
	}

	go func() {
		log.Info().Str("addr", cfg.CatalogAddr).Msg("Catalog API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Catalog API failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down catalog API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
