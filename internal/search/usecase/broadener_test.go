package usecase

import (
	"context"
	"testing"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBroadener(listings *MockListingRepository, locations *MockLocationRepository) *Broadener {
	log := logger.NewLogger()
	return NewBroadener(NewMatcher(listings, log, 12), locations, log)
}

func emptyResult() *domain.MatchResult {
	return &domain.MatchResult{Stats: Summarize(nil)}
}

func exactResult(listings []*domain.Listing) *domain.MatchResult {
	result := &domain.MatchResult{}
	for _, l := range listings {
		result.Listings = append(result.Listings, domain.MatchedListing{Listing: l, Scope: domain.MatchScopeExact})
	}
	result.Stats = Summarize(listings)
	return result
}

func TestBroadener_NeighborhoodWidensToCounty(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	county := nairobiCounty()
	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(county, nil).Once()

	countyListings := makeListings(5, "county")
	listings.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		// The wider query drops the narrow clause, keeping only the county.
		return f.County == "Nairobi" && f.Area == ""
	})).Return(countyListings, nil).Once()

	criteria := domain.MatchCriteria{
		Location:        kilimaniNeighborhood(),
		PropertyType:    "Apartment",
		TransactionType: domain.TransactionForRent,
	}
	merged, err := b.Broaden(context.Background(), emptyResult(), criteria, 3, 8)
	require.NoError(t, err)
	require.Len(t, merged.Listings, 5)
	for _, m := range merged.Listings {
		assert.Equal(t, domain.MatchScopeBroadened, m.Scope)
	}
	assert.False(t, merged.Partial)
	locations.AssertExpectations(t)
	listings.AssertExpectations(t)
}

func TestBroadener_EstateSkipsUnresolvableNeighborhood(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	estate := gardenEstate()
	// Neither the estate's city nor its own name resolves to a neighborhood.
	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeNeighborhood).Return(nil, domain.ErrLocationNotFound).Once()
	locations.On("FindByName", mock.Anything, "Garden Estate", domain.LocationTypeNeighborhood).Return(nil, domain.ErrLocationNotFound).Once()
	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()

	primaryListings := makeListings(1, "exact")
	countyListings := append(makeListings(1, "exact"), makeListings(3, "county")...)
	listings.On("Find", mock.Anything, mock.Anything).Return(countyListings, nil).Once()

	criteria := domain.MatchCriteria{Location: estate}
	merged, err := b.Broaden(context.Background(), exactResult(primaryListings), criteria, 3, 8)
	require.NoError(t, err)

	// The county result repeats the exact listing; it must not be duplicated.
	require.Len(t, merged.Listings, 4)
	assert.Equal(t, domain.MatchScopeExact, merged.Listings[0].Scope)
	for _, m := range merged.Listings[1:] {
		assert.Equal(t, domain.MatchScopeBroadened, m.Scope)
	}
	locations.AssertExpectations(t)
}

func TestBroadener_CountyIsRootScope(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	primary := emptyResult()
	merged, err := b.Broaden(context.Background(), primary, domain.MatchCriteria{Location: nairobiCounty()}, 3, 8)
	require.NoError(t, err)
	assert.Same(t, primary, merged)
	locations.AssertNotCalled(t, "FindByName")
	listings.AssertNotCalled(t, "Find")
}

func TestBroadener_SufficientPrimaryUnchanged(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	primary := exactResult(makeListings(3, "exact"))
	merged, err := b.Broaden(context.Background(), primary, domain.MatchCriteria{Location: kilimaniNeighborhood()}, 3, 8)
	require.NoError(t, err)
	assert.Same(t, primary, merged)
	listings.AssertNotCalled(t, "Find")
}

func TestBroadener_CapBoundsAdditions(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()
	listings.On("Find", mock.Anything, mock.Anything).Return(makeListings(12, "county"), nil).Once()

	merged, err := b.Broaden(context.Background(), emptyResult(), domain.MatchCriteria{Location: kilimaniNeighborhood()}, 3, 8)
	require.NoError(t, err)
	assert.Len(t, merged.Listings, 8)
}

func TestBroadener_Idempotent(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil)
	listings.On("Find", mock.Anything, mock.Anything).Return(makeListings(4, "county"), nil)

	primary := exactResult(makeListings(1, "exact"))
	criteria := domain.MatchCriteria{Location: kilimaniNeighborhood()}

	first, err := b.Broaden(context.Background(), primary, criteria, 3, 8)
	require.NoError(t, err)
	second, err := b.Broaden(context.Background(), primary, criteria, 3, 8)
	require.NoError(t, err)

	assert.Equal(t, first.IDs(), second.IDs())
	assert.GreaterOrEqual(t, len(first.Listings), len(primary.Listings))
}

func TestBroadener_ExactAlwaysPrecedesBroadened(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()
	listings.On("Find", mock.Anything, mock.Anything).Return(makeListings(5, "county"), nil).Once()

	primary := exactResult(makeListings(2, "exact"))
	merged, err := b.Broaden(context.Background(), primary, domain.MatchCriteria{Location: kilimaniNeighborhood()}, 3, 8)
	require.NoError(t, err)

	sawBroadened := false
	for _, m := range merged.Listings {
		if m.Scope == domain.MatchScopeBroadened {
			sawBroadened = true
		} else {
			assert.False(t, sawBroadened, "exact match after a broadened one")
		}
	}
	assert.True(t, sawBroadened)
}

func TestBroadener_InconsistentContainmentMarksPartial(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	orphan := kilimaniNeighborhood()
	orphan.County = "Atlantis"
	locations.On("FindByName", mock.Anything, "Atlantis", domain.LocationTypeCounty).Return(nil, domain.ErrLocationNotFound).Once()

	merged, err := b.Broaden(context.Background(), emptyResult(), domain.MatchCriteria{Location: orphan}, 3, 8)
	require.NoError(t, err)
	assert.Empty(t, merged.Listings)
	assert.True(t, merged.Partial)
	listings.AssertNotCalled(t, "Find")
}

func TestBroadener_WidenedStoreFailureKeepsNarrowerResult(t *testing.T) {
	listings := new(MockListingRepository)
	locations := new(MockLocationRepository)
	b := newTestBroadener(listings, locations)

	locations.On("FindByName", mock.Anything, "Nairobi", domain.LocationTypeCounty).Return(nairobiCounty(), nil).Once()
	listings.On("Find", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	primary := exactResult(makeListings(1, "exact"))
	merged, err := b.Broaden(context.Background(), primary, domain.MatchCriteria{Location: kilimaniNeighborhood()}, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, primary.IDs(), merged.IDs())
}
