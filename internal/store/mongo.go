package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prixtn/pricewatch/internal/product"
	"github.com/prixtn/pricewatch/logger"
)

const (
	collectionPrefix = "products_"
	opTimeout        = 10 * time.Second
)

// MongoStore implements ProductStore on MongoDB, one collection per
// supplier ("products_tunisianet", ...).
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

// NewMongoStore connects to MongoDB and pings it; an unreachable store is a
// setup failure the caller must treat as fatal.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	log := logger.ForComponent("mongo-store")
	log.Info().Str("database", database).Msg("Connected to MongoDB")

	return &MongoStore{
		client: client,
		db:     client.Database(database),
		log:    log,
	}, nil
}

func (s *MongoStore) collection(supplier string) *mongo.Collection {
	return s.db.Collection(collectionPrefix + supplier)
}

// EnsureIndexes creates the dedup indexes on every supplier collection: a
// unique sparse index on product_url (makes admission atomic) and a
// secondary (title, price) index for the heuristic lookup.
func (s *MongoStore) EnsureIndexes(ctx context.Context, suppliers []string) error {
	for _, supplier := range suppliers {
		coll := s.collection(supplier)
		_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "product_url", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{
				Keys: bson.D{{Key: "title", Value: 1}, {Key: "price", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "category", Value: 1}},
			},
		})
		if err != nil {
			return fmt.Errorf("index creation failed for %s: %w", supplier, err)
		}
	}
	return nil
}

// Exists implements the persisted-store dedup check.
func (s *MongoStore) Exists(ctx context.Context, supplier, title string, price float64, productURL string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := s.collection(supplier).CountDocuments(opCtx, existsFilter(title, price, productURL), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert persists the record; an upsert keyed on product_url when one is
// present, a plain insert otherwise.
func (s *MongoStore) Insert(ctx context.Context, rec *product.Record) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	coll := s.collection(rec.Supplier)

	if rec.ProductURL == "" {
		_, err := coll.InsertOne(opCtx, rec)
		return err == nil, err
	}

	res, err := coll.UpdateOne(opCtx,
		bson.M{"product_url": rec.ProductURL},
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// FindBySupplier returns matching records sorted by price.
func (s *MongoStore) FindBySupplier(ctx context.Context, supplier string, f Filter) ([]product.Record, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.collection(supplier).Find(opCtx, findFilter(f),
		options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(opCtx)

	var records []product.Record
	if err := cursor.All(opCtx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// existsFilter matches on product URL or on the (title, price) pair; the URL
// clause is dropped when the listing had none.
func existsFilter(title string, price float64, productURL string) bson.M {
	titlePrice := bson.M{"title": title, "price": price}
	if productURL == "" {
		return titlePrice
	}
	return bson.M{"$or": bson.A{
		bson.M{"product_url": productURL},
		titlePrice,
	}}
}

// findFilter translates a Filter into a Mongo query document.
func findFilter(f Filter) bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}

	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	if f.TitleQuery != "" {
		query["title"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(f.TitleQuery),
			Options: "i",
		}
	}
	return query
}
