package usecase

import (
	"context"
	"errors"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"go.uber.org/zap"
)

// Broadener widens a too-small exact-scope result by walking the containment
// hierarchy outward (estate -> neighborhood -> county) and merging in
// deduplicated listings from each wider scope.
type Broadener struct {
	matcher   *Matcher
	locations domain.LocationRepository
	logger    *logger.Logger
}

// NewBroadener creates a Broadener that re-runs the given Matcher at parent
// scopes resolved through the location catalog.
func NewBroadener(matcher *Matcher, locations domain.LocationRepository, log *logger.Logger) *Broadener {
	return &Broadener{
		matcher:   matcher,
		locations: locations,
		logger:    log.Named("Broadener"),
	}
}

// Broaden merges up to cap additional listings from wider scopes into primary
// when the primary holds fewer than minimum listings. The returned result
// keeps every exact match first, appends broadened matches in store order,
// and never contains a listing ID twice. Counties are the root scope and are
// returned unchanged.
func (b *Broadener) Broaden(ctx context.Context, primary *domain.MatchResult, criteria domain.MatchCriteria, minimum, cap int) (*domain.MatchResult, error) {
	loc := criteria.Location
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	if len(primary.Listings) >= minimum || cap <= 0 {
		return primary, nil
	}

	path := loc.WideningPath()
	if len(path) == 0 {
		return primary, nil
	}

	merged := &domain.MatchResult{
		Listings: append([]domain.MatchedListing(nil), primary.Listings...),
		Partial:  primary.Partial,
	}
	added := 0

	for _, scope := range path {
		if added >= cap {
			break
		}

		parent, err := b.resolveParent(ctx, scope)
		if err != nil {
			// Containment data is broken: the declared county resolves to
			// no catalog entry. Surface it on the result instead of failing
			// the whole search.
			if errors.Is(err, domain.ErrInconsistentContainment) {
				b.logger.Warn("Cannot widen past inconsistent containment",
					zap.String("location", loc.Slug),
					zap.String("declared_county", loc.County))
				merged.Partial = true
				continue
			}
			return nil, err
		}
		if parent == nil {
			// No catalog entry at this level (common for estates without a
			// neighborhood record); move straight to the next wider scope.
			continue
		}

		wider, err := b.matcher.matchAt(ctx, criteria, parent, int64(cap+len(primary.Listings)))
		if err != nil {
			// Widening is best effort: a store failure here degrades to
			// whatever has been merged so far.
			b.logger.Error("Widened query failed, keeping narrower result",
				zap.String("location", loc.Slug),
				zap.String("widened_to", parent.Slug),
				zap.Error(err))
			continue
		}

		for _, l := range wider {
			if added >= cap {
				break
			}
			if merged.Contains(l.ID) {
				continue
			}
			merged.Listings = append(merged.Listings, domain.MatchedListing{Listing: l, Scope: domain.MatchScopeBroadened})
			added++
		}
	}

	if added > 0 {
		b.logger.Info("Broadened result",
			zap.String("location", loc.Slug),
			zap.Int("exact", len(primary.Listings)),
			zap.Int("broadened", added))
	}

	all := make([]*domain.Listing, 0, len(merged.Listings))
	for _, m := range merged.Listings {
		all = append(all, m.Listing)
	}
	merged.Stats = Summarize(all)
	return merged, nil
}

// resolveParent finds the catalog entry for one widening step. A missing
// neighborhood is reported as nil (skip the level); a missing county is an
// ErrInconsistentContainment since every non-county location must declare a
// resolvable county.
func (b *Broadener) resolveParent(ctx context.Context, scope domain.ParentScope) (*domain.Location, error) {
	for _, name := range scope.Names {
		if name == "" {
			continue
		}
		parent, err := b.locations.FindByName(ctx, name, scope.Type)
		if err != nil {
			if errors.Is(err, domain.ErrLocationNotFound) {
				continue
			}
			return nil, err
		}
		return parent, nil
	}
	if scope.Type == domain.LocationTypeCounty {
		return nil, domain.ErrInconsistentContainment
	}
	return nil, nil
}
