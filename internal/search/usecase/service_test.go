package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(listings *MockListingRepository, locations *MockLocationRepository, timeout time.Duration) *SearchService {
	log := logger.NewLogger()
	matcher := NewMatcher(listings, log, 12)
	broadener := NewBroadener(matcher, locations, log)
	return NewSearchService(locations, matcher, broadener, log, timeout, 3, 8)
}

func TestSearchService_UnknownSlug(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	svc := newTestService(listings, locations, time.Second)

	locations.On("FindBySlug", mock.Anything, "nowhere").Return(nil, domain.ErrLocationNotFound).Once()

	_, err := svc.Search(context.Background(), SearchRequest{LocationSlug: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestSearchService_InvalidTransaction(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	svc := newTestService(listings, locations, time.Second)

	_, err := svc.Search(context.Background(), SearchRequest{LocationSlug: "kilimani", TransactionType: "swap"})
	assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
	locations.AssertNotCalled(t, "FindBySlug")
}

func TestSearchService_SufficientPrimarySkipsBroadening(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	svc := newTestService(listings, locations, time.Second)

	locations.On("FindBySlug", mock.Anything, "kilimani").Return(kilimaniNeighborhood(), nil).Once()
	listings.On("Find", mock.Anything, mock.Anything).Return(makeListings(4, "exact"), nil).Once()

	result, err := svc.Search(context.Background(), SearchRequest{LocationSlug: "kilimani"})
	require.NoError(t, err)
	assert.Len(t, result.Listings, 4)
	locations.AssertNotCalled(t, "FindByName")
}

func TestSearchService_ThinPrimaryGetsBroadened(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	svc := newTestService(listings, locations, time.Second)

	locations.On("FindBySlug", mock.Anything, "kilimani").Return(kilimaniNeighborhood(), nil).Once()
	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()

	exact := makeListings(1, "exact")
	wider := makeListings(5, "county")
	listings.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Area == "Kilimani"
	})).Return(exact, nil).Once()
	listings.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Area == ""
	})).Return(wider, nil).Once()

	result, err := svc.Search(context.Background(), SearchRequest{LocationSlug: "kilimani"})
	require.NoError(t, err)
	require.Len(t, result.Listings, 6)
	assert.Equal(t, domain.MatchScopeExact, result.Listings[0].Scope)
	assert.Equal(t, domain.MatchScopeBroadened, result.Listings[1].Scope)
	assert.Equal(t, 6, result.Stats.TotalCount)
}

func TestSearchService_StoreFailureDegradesThenBroadens(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	// A short timeout keeps the retry loop from stretching the test.
	svc := newTestService(listings, locations, 50*time.Millisecond)

	locations.On("FindBySlug", mock.Anything, "kilimani").Return(kilimaniNeighborhood(), nil).Once()
	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()

	transient := fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)
	listings.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Area == "Kilimani"
	})).Return(nil, transient)
	listings.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Area == ""
	})).Return(makeListings(3, "county"), nil).Once()

	result, err := svc.Search(context.Background(), SearchRequest{LocationSlug: "kilimani"})
	require.NoError(t, err)
	require.Len(t, result.Listings, 3)
	for _, m := range result.Listings {
		assert.Equal(t, domain.MatchScopeBroadened, m.Scope)
	}
}
