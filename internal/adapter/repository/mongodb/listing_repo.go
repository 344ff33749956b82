package mongodb

import (
	"context"
	"errors"
	"fmt"
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

const listingCollectionName = "property_listings"

// ListingRepository implements domain.ListingRepository over MongoDB.
// Substring clauses are anchored-nowhere case-insensitive regexes because the
// geographic fields carry legacy free text ("Nairobi" vs "Nairobi County").
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository creates the repository and ensures the query indexes.
func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_approved", Value: 1}, {Key: "transaction_type", Value: 1}}},
		{Keys: bson.D{{Key: "county", Value: 1}}},
		{Keys: bson.D{{Key: "is_featured", Value: -1}, {Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist or be managed out of band; log and move on.
		log.Warn("Failed to ensure indexes for property_listings", zap.Error(err))
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

// Find runs the filter and returns matches ordered is_featured desc,
// created_at desc. Unapproved listings are excluded unconditionally.
func (r *ListingRepository) Find(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := buildListingQuery(filter)

	opts := options.Find().
		SetSort(bson.D{{Key: "is_featured", Value: -1}, {Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts = opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Listing query failed", zap.Error(err))
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Listing cursor decode failed", zap.Error(err))
		return nil, mapStoreError(err)
	}

	listings := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].toDomain())
	}
	return listings, nil
}

// Count returns the number of approved listings matching the filter,
// ignoring the limit.
func (r *ListingRepository) Count(ctx context.Context, filter domain.ListingFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildListingQuery(filter))
	if err != nil {
		r.logger.Error("Listing count failed", zap.Error(err))
		return 0, mapStoreError(err)
	}
	return count, nil
}

// buildListingQuery translates the domain filter into a bson predicate.
func buildListingQuery(filter domain.ListingFilter) bson.M {
	query := bson.M{"is_approved": true}

	if filter.TransactionType != "" {
		query["transaction_type"] = string(filter.TransactionType)
	}
	if filter.PropertyType != "" {
		query["property_type"] = containsRegex(filter.PropertyType)
	}
	if filter.County != "" {
		query["county"] = containsRegex(filter.County)
	}
	if filter.Area != "" {
		if filter.AreaAddressOnly {
			query["address"] = containsRegex(filter.Area)
		} else {
			query["$or"] = bson.A{
				bson.M{"city": containsRegex(filter.Area)},
				bson.M{"address": containsRegex(filter.Area)},
			}
		}
	}
	if filter.City != "" {
		query["city"] = containsRegex(filter.City)
	}
	if filter.Bedrooms > 0 {
		query["bedrooms"] = filter.Bedrooms
	}

	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	return query
}

// containsRegex builds a case-insensitive substring clause. The needle is
// quoted: listing data contains parentheses and other regex metacharacters.
func containsRegex(needle string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(needle), Options: "i"}
}

// mapStoreError normalizes driver-level connectivity failures to the domain
// sentinel so call sites can retry without knowing about the driver.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
