package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Find(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Count(ctx context.Context, filter domain.ListingFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockLocationRepository struct{ mock.Mock }

func (m *MockLocationRepository) FindBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByName(ctx context.Context, name string, locType domain.LocationType) (*domain.Location, error) {
	args := m.Called(ctx, name, locType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockLocationRepository) ListActive(ctx context.Context) ([]*domain.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Location), args.Error(1)
}

func nairobiCounty() *domain.Location {
	return &domain.Location{
		ID:       "county-nairobi",
		Name:     "Nairobi County",
		Slug:     "nairobi-county",
		Type:     domain.LocationTypeCounty,
		County:   "Nairobi County",
		IsActive: true,
	}
}

func kilimaniNeighborhood() *domain.Location {
	return &domain.Location{
		ID:       "hood-kilimani",
		Name:     "Kilimani",
		Slug:     "kilimani",
		Type:     domain.LocationTypeNeighborhood,
		County:   "Nairobi",
		City:     "Nairobi",
		IsActive: true,
	}
}

func gardenEstate() *domain.Location {
	return &domain.Location{
		ID:       "estate-garden",
		Name:     "Garden Estate",
		Slug:     "garden-estate-nairobi",
		Type:     domain.LocationTypeEstate,
		County:   "Nairobi",
		City:     "Nairobi",
		IsActive: true,
	}
}

func makeListings(n int, prefix string) []*domain.Listing {
	listings := make([]*domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		listings = append(listings, &domain.Listing{
			ID:              fmt.Sprintf("%s-%d", prefix, i),
			Title:           fmt.Sprintf("%s listing %d", prefix, i),
			PropertyType:    "Apartment",
			TransactionType: domain.TransactionForRent,
			Price:           float64(10000 * (i + 1)),
			County:          "Nairobi",
			City:            "Nairobi",
			Address:         "Test Road",
			IsApproved:      true,
			CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(-i) * time.Hour),
		})
	}
	return listings
}
