package mongodb

import (
	"time"

	"github.com/newkenyan/property-search/internal/search/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// locationDocument mirrors the locations collection. Catalog rows were
// bulk-imported, so the document shape follows the import scripts rather
// than Go conventions.
type locationDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Slug     string             `bson:"slug"`
	Type     string             `bson:"type"`
	County   string             `bson:"county"`
	City     string             `bson:"city,omitempty"`
	IsActive bool               `bson:"is_active"`
}

func (d *locationDocument) toDomain() *domain.Location {
	return &domain.Location{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Slug:     d.Slug,
		Type:     domain.LocationType(d.Type),
		County:   d.County,
		City:     d.City,
		IsActive: d.IsActive,
	}
}

// listingDocument mirrors the property_listings collection.
type listingDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"property_title"`
	PropertyType    string             `bson:"property_type"`
	TransactionType string             `bson:"transaction_type"`
	Price           float64            `bson:"price"`
	Bedrooms        int32              `bson:"bedrooms,omitempty"`
	Amenities       []string           `bson:"amenities,omitempty"`
	County          string             `bson:"county"`
	City            string             `bson:"city"`
	Address         string             `bson:"address"`
	IsApproved      bool               `bson:"is_approved"`
	IsFeatured      bool               `bson:"is_featured"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		PropertyType:    d.PropertyType,
		TransactionType: domain.TransactionType(d.TransactionType),
		Price:           d.Price,
		Bedrooms:        d.Bedrooms,
		Amenities:       d.Amenities,
		County:          d.County,
		City:            d.City,
		Address:         d.Address,
		IsApproved:      d.IsApproved,
		IsFeatured:      d.IsFeatured,
		CreatedAt:       d.CreatedAt,
	}
}
