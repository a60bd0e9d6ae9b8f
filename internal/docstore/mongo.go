package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/pkg/types"
)

const defaultFuzzyLimit = 50

// MongoStore implements MaterialStore over two MongoDB collections, one for
// in-stock inventory and one for the full FDA catalog.
type MongoStore struct {
	client  *mongo.Client
	inStock *mongo.Collection
	allFDA  *mongo.Collection
	log     *logger.Logger
}

// MongoConfig holds connection settings for the document store.
type MongoConfig struct {
	URI               string
	Database          string
	InStockCollection string
	FDACollection     string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig, log *logger.Logger) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: mongodb URI not set", types.ErrStoreUnavailable)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping failed: %v", types.ErrStoreUnavailable, err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client:  client,
		inStock: db.Collection(cfg.InStockCollection),
		allFDA:  db.Collection(cfg.FDACollection),
		log:     log,
	}, nil
}

func (s *MongoStore) collection(col types.Collection) (*mongo.Collection, error) {
	switch col {
	case types.CollectionInStock:
		return s.inStock, nil
	case types.CollectionAllFDA:
		return s.allFDA, nil
	default:
		return nil, fmt.Errorf("unroutable collection %q", col)
	}
}

func (s *MongoStore) FindByCode(ctx context.Context, col types.Collection, code string) (*types.MaterialDocument, error) {
	mc, err := s.collection(col)
	if err != nil {
		return nil, err
	}

	// Codes are stored normalized (uppercase, no dashes) but older documents
	// may carry the dashed form, so match either spelling.
	filter := bson.M{"material_code": bson.M{
		"$regex":   "^" + codePattern(code) + "$",
		"$options": "i",
	}}

	var doc types.MaterialDocument
	if err := mc.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("find by code: %w", err)
	}
	return &doc, nil
}

func (s *MongoStore) FindFuzzy(ctx context.Context, col types.Collection, term string, limit int) ([]types.MaterialDocument, error) {
	mc, err := s.collection(col)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFuzzyLimit
	}

	pattern := regexp.QuoteMeta(term)
	re := bson.M{"$regex": pattern, "$options": "i"}
	filter := bson.M{"$or": []bson.M{
		{"material_code": re},
		{"trade_name": re},
		{"inci_name": re},
	}}

	cursor, err := mc.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("fuzzy find: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []types.MaterialDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode fuzzy results: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) FindByBenefit(ctx context.Context, col types.Collection, benefit string, limit int) ([]types.MaterialDocument, error) {
	mc, err := s.collection(col)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFuzzyLimit
	}

	filter := bson.M{"benefits": bson.M{
		"$regex":   regexp.QuoteMeta(benefit),
		"$options": "i",
	}}

	cursor, err := mc.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("benefit find: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []types.MaterialDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode benefit results: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) ListAll(ctx context.Context, col types.Collection) ([]types.MaterialDocument, error) {
	mc, err := s.collection(col)
	if err != nil {
		return nil, err
	}

	cursor, err := mc.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []types.MaterialDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) Count(ctx context.Context, col types.Collection) (int64, error) {
	mc, err := s.collection(col)
	if err != nil {
		return 0, err
	}
	n, err := mc.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// codePattern builds a regex body matching a material code with or without
// the dash separator. "RM000123" and "RM-000123" refer to the same material.
func codePattern(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	compact := strings.ReplaceAll(code, "-", "")

	// Insert an optional dash after the alphabetic prefix.
	i := 0
	for i < len(compact) && compact[i] >= 'A' && compact[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(compact) {
		return regexp.QuoteMeta(compact)
	}
	return regexp.QuoteMeta(compact[:i]) + "-?" + regexp.QuoteMeta(compact[i:])
}
