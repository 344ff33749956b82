package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestMatcher(repo *MockListingRepository) *Matcher {
	return NewMatcher(repo, logger.NewLogger(), 12)
}

func TestMatcher_CountyScope(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	expected := makeListings(2, "house")
	repo.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.County == "Nairobi" && // " County" suffix stripped
			f.Area == "" &&
			f.PropertyType == "house" &&
			f.TransactionType == domain.TransactionForRent &&
			f.Limit == 12
	})).Return(expected, nil).Once()

	result, err := matcher.Match(context.Background(), domain.MatchCriteria{
		Location:        nairobiCounty(),
		PropertyType:    "house",
		TransactionType: domain.TransactionForRent,
	})
	require.NoError(t, err)
	require.Len(t, result.Listings, 2)
	for _, m := range result.Listings {
		assert.Equal(t, domain.MatchScopeExact, m.Scope)
	}
	assert.Equal(t, 2, result.Stats.TotalCount)
	repo.AssertExpectations(t)
}

func TestMatcher_NeighborhoodScope(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	repo.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.County == "Nairobi" &&
			f.Area == "Kilimani" &&
			!f.AreaAddressOnly
	})).Return([]*domain.Listing{}, nil).Once()

	result, err := matcher.Match(context.Background(), domain.MatchCriteria{Location: kilimaniNeighborhood()})
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	repo.AssertExpectations(t)
}

func TestMatcher_EstateScopeMatchesAddressOnly(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	repo.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.County == "Nairobi" &&
			f.Area == "Garden Estate" &&
			f.AreaAddressOnly
	})).Return([]*domain.Listing{}, nil).Once()

	_, err := matcher.Match(context.Background(), domain.MatchCriteria{Location: gardenEstate()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMatcher_SecondaryFiltersPassedThrough(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	repo.On("Find", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Bedrooms == 3 && f.MinPrice == 20000 && f.MaxPrice == 80000 && f.City == "Nairobi"
	})).Return([]*domain.Listing{}, nil).Once()

	_, err := matcher.Match(context.Background(), domain.MatchCriteria{
		Location: nairobiCounty(),
		Bedrooms: 3,
		MinPrice: 20000,
		MaxPrice: 80000,
		City:     "Nairobi",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMatcher_ZeroMatchesIsNotAnError(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.Listing{}, nil).Once()

	result, err := matcher.Match(context.Background(), domain.MatchCriteria{Location: nairobiCounty()})
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	assert.Equal(t, 0, result.Stats.TotalCount)
	assert.Equal(t, float64(0), result.Stats.MinPrice)
}

func TestMatcher_UnresolvedLocation(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	_, err := matcher.Match(context.Background(), domain.MatchCriteria{Location: nil})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	inactive := nairobiCounty()
	inactive.IsActive = false
	_, err = matcher.Match(context.Background(), domain.MatchCriteria{Location: inactive})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
	repo.AssertNotCalled(t, "Find")
}

func TestMatcher_InvalidTransactionType(t *testing.T) {
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	_, err := matcher.Match(context.Background(), domain.MatchCriteria{
		Location:        nairobiCounty(),
		TransactionType: "short_lease",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
}

func TestMatcher_RetriesTransientStoreFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff sleeps")
	}
	repo := new(MockListingRepository)
	matcher := newTestMatcher(repo)

	transient := fmt.Errorf("%w: connection reset", domain.ErrStoreUnavailable)
	repo.On("Find", mock.Anything, mock.Anything).Return(nil, transient).Twice()
	repo.On("Find", mock.Anything, mock.Anything).Return(makeListings(1, "late"), nil).Once()

	result, err := matcher.Match(context.Background(), domain.MatchCriteria{Location: nairobiCounty()})
	require.NoError(t, err)
	assert.Len(t, result.Listings, 1)
	repo.AssertNumberOfCalls(t, "Find", 3)
}
