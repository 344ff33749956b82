package domain

import "context"

// LocationRepository is the read side of the location catalog.
type LocationRepository interface {
	FindBySlug(ctx context.Context, slug string) (*Location, error)
	// FindByName resolves an active location by display name and type.
	// The comparison is case-insensitive.
	FindByName(ctx context.Context, name string, locType LocationType) (*Location, error)
	// ListActive returns every active location, counties first.
	ListActive(ctx context.Context) ([]*Location, error)
}

// ListingRepository is the read side of the listing store. Implementations
// must never return unapproved listings and must order results by
// is_featured desc, created_at desc.
type ListingRepository interface {
	Find(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	Count(ctx context.Context, filter ListingFilter) (int64, error)
}
