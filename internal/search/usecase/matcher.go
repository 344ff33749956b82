package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"go.uber.org/zap"
)

const storeRetries = 3

// Matcher translates a resolved location plus filter criteria into a
// listing-store query at that location's own scope. It never widens; that is
// the Broadener's job.
type Matcher struct {
	listings domain.ListingRepository
	logger   *logger.Logger
	pageSize int64
}

// NewMatcher creates a Matcher. pageSize caps the exact-scope result.
func NewMatcher(listings domain.ListingRepository, log *logger.Logger, pageSize int64) *Matcher {
	return &Matcher{
		listings: listings,
		logger:   log.Named("Matcher"),
		pageSize: pageSize,
	}
}

// Match runs the exact-scope query for criteria. Zero matches is a normal
// outcome, returned as an empty result with zero statistics.
func (m *Matcher) Match(ctx context.Context, criteria domain.MatchCriteria) (*domain.MatchResult, error) {
	loc := criteria.Location
	if loc == nil || !loc.IsActive {
		return nil, domain.ErrLocationNotFound
	}
	if criteria.TransactionType != "" && !criteria.TransactionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidCriteria, criteria.TransactionType)
	}

	listings, err := m.matchAt(ctx, criteria, loc, m.pageSize)
	if err != nil {
		return nil, err
	}

	result := &domain.MatchResult{
		Listings: make([]domain.MatchedListing, 0, len(listings)),
	}
	for _, l := range listings {
		result.Listings = append(result.Listings, domain.MatchedListing{Listing: l, Scope: domain.MatchScopeExact})
	}
	result.Stats = Summarize(listings)

	m.logger.Debug("Exact-scope match completed",
		zap.String("location", loc.Slug),
		zap.String("location_type", string(loc.Type)),
		zap.Int("count", len(listings)))
	return result, nil
}

// matchAt runs the full predicate build and query with the geographic clause
// of the given location, which may be wider than criteria.Location.
func (m *Matcher) matchAt(ctx context.Context, criteria domain.MatchCriteria, loc *domain.Location, limit int64) ([]*domain.Listing, error) {
	filter := buildFilter(criteria, loc, limit)

	var listings []*domain.Listing
	operation := func() error {
		var err error
		listings, err = m.listings.Find(ctx, filter)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			m.logger.Warn("Listing store unavailable, retrying", zap.String("location", loc.Slug), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("listing query at %s scope: %w", loc.Type, err)
	}
	return listings, nil
}

// countAt counts matches for the predicate at the given location's scope,
// ignoring any page limit.
func (m *Matcher) countAt(ctx context.Context, criteria domain.MatchCriteria, loc *domain.Location) (int64, error) {
	filter := buildFilter(criteria, loc, 0)

	var count int64
	operation := func() error {
		var err error
		count, err = m.listings.Count(ctx, filter)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			m.logger.Warn("Listing store unavailable, retrying", zap.String("location", loc.Slug), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, fmt.Errorf("listing count at %s scope: %w", loc.Type, err)
	}
	return count, nil
}

// buildFilter assembles the store predicate. The base clauses (approval is
// implicit in the repository, transaction equality, property-type substring,
// secondary filters) are the same at every scope; only the geographic clause
// changes with the location type.
func buildFilter(criteria domain.MatchCriteria, loc *domain.Location, limit int64) domain.ListingFilter {
	filter := domain.ListingFilter{
		TransactionType: criteria.TransactionType,
		PropertyType:    criteria.PropertyType,
		City:            criteria.City,
		Bedrooms:        criteria.Bedrooms,
		MinPrice:        criteria.MinPrice,
		MaxPrice:        criteria.MaxPrice,
		Limit:           limit,
	}

	switch loc.Type {
	case domain.LocationTypeCounty:
		filter.County = loc.CountySearchName()
	case domain.LocationTypeNeighborhood:
		filter.County = loc.CountySearchName()
		filter.Area = loc.Name
	case domain.LocationTypeEstate:
		filter.County = loc.CountySearchName()
		filter.Area = loc.Name
		filter.AreaAddressOnly = true
	}
	return filter
}
