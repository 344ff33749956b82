package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const locationCollectionName = "locations"

// LocationRepository implements domain.LocationRepository over MongoDB.
// Only active catalog rows are ever returned.
type LocationRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewLocationRepository creates the repository and ensures the slug index.
func NewLocationRepository(db *mongo.Database, log *logger.Logger) (*LocationRepository, error) {
	collection := db.Collection(locationCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "county", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to ensure indexes for locations", zap.Error(err))
	}

	return &LocationRepository{
		collection: collection,
		logger:     log.Named("LocationRepository"),
	}, nil
}

// FindBySlug resolves an active location by its URL slug.
func (r *LocationRepository) FindBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	var doc locationDocument
	err := r.collection.FindOne(ctx, bson.M{"slug": slug, "is_active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLocationNotFound
		}
		r.logger.Error("Location lookup by slug failed", zap.String("slug", slug), zap.Error(err))
		return nil, mapStoreError(err)
	}
	return doc.toDomain(), nil
}

// FindByName resolves an active location by display name and type. Names are
// compared case-insensitively; catalog casing is not reliable.
func (r *LocationRepository) FindByName(ctx context.Context, name string, locType domain.LocationType) (*domain.Location, error) {
	query := bson.M{
		"name":      primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
		"type":      string(locType),
		"is_active": true,
	}

	var doc locationDocument
	err := r.collection.FindOne(ctx, query).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLocationNotFound
		}
		r.logger.Error("Location lookup by name failed",
			zap.String("name", name), zap.String("type", string(locType)), zap.Error(err))
		return nil, mapStoreError(err)
	}
	return doc.toDomain(), nil
}

// ListActive returns every active location, counties first then by name, the
// order the coverage audit walks them in.
func (r *LocationRepository) ListActive(ctx context.Context) ([]*domain.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "county", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		r.logger.Error("Listing active locations failed", zap.Error(err))
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	var docs []locationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Location cursor decode failed", zap.Error(err))
		return nil, mapStoreError(err)
	}

	locations := make([]*domain.Location, 0, len(docs))
	for i := range docs {
		locations = append(locations, docs[i].toDomain())
	}
	return locations, nil
}
