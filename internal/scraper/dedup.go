package scraper

import (
	"context"
	"encoding/json"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/logger"
	"github.com/prixtn/pricewatch/pkg/errors"
	"github.com/prixtn/pricewatch/services/publisher"
)

// Store is the persistence surface the gate needs. Insert reports false when
// the record already existed (the upsert found a document with the same
// product URL), which keeps admission atomic under concurrent runs.
type Store interface {
	Exists(ctx context.Context, supplier, title string, price float64, productURL string) (bool, error)
	Insert(ctx context.Context, rec *product.Record) (bool, error)
}

// Gate decides whether a built record is persisted. Two checks, either one
// sufficient to skip: the session seen-URL set, then the persisted store.
type Gate struct {
	store Store
	pub   publisher.Publisher
	log   *logger.Logger
}

// NewGate creates a gate. pub may be nil when no publisher is configured.
func NewGate(store Store, pub publisher.Publisher) *Gate {
	return &Gate{
		store: store,
		pub:   pub,
		log:   logger.ForComponent("dedup-gate"),
	}
}

// Admit persists the record unless it is a duplicate. Returns true when the
// record was saved, false when it was skipped as a duplicate.
func (g *Gate) Admit(ctx context.Context, rec *product.Record, sess *Session) (bool, error) {
	if !rec.Valid() {
		return false, errors.NewValidation(rec.Supplier, "record violates persistence invariants: "+rec.Title)
	}
	if rec.ProductURL != "" && sess.Seen(rec.ProductURL) {
		return false, nil
	}

	exists, err := g.store.Exists(ctx, rec.Supplier, rec.Title, rec.Price, rec.ProductURL)
	if err != nil {
		return false, errors.NewPersistence(rec.Supplier, "existence lookup failed", err)
	}
	if exists {
		sess.MarkSeen(rec.ProductURL)
		return false, nil
	}

	inserted, err := g.store.Insert(ctx, rec)
	if err != nil {
		return false, errors.NewPersistence(rec.Supplier, "insert failed: "+rec.Title, err)
	}
	sess.MarkSeen(rec.ProductURL)
	if !inserted {
		// Another run won the upsert race.
		return false, nil
	}

	g.publish(rec)
	return true, nil
}

// publish announces the admitted record; failures are logged, never fatal.
func (g *Gate) publish(rec *product.Record) {
	if g.pub == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		g.log.Error().Err(err).Str("title", rec.Title).Msg("Failed to marshal record")
		return
	}
	if err := g.pub.Publish(rec.Supplier, data); err != nil {
		g.log.Error().Err(err).Str("title", rec.Title).Msg("Failed to publish record")
	}
}
